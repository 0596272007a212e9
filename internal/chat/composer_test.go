package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nfrund/eventhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	drafts []Draft
	err    error
}

func (r *recordingSender) send(_ context.Context, d Draft) error {
	r.drafts = append(r.drafts, d)
	return r.err
}

func TestComposer_SubmitBlankDraft(t *testing.T) {
	for _, content := range []string{"", "   ", "\n\t "} {
		rec := &recordingSender{}
		c := NewComposer(rec.send)
		c.SetContent(content)

		err := c.Submit(context.Background())

		assert.ErrorIs(t, err, ErrEmptyDraft)
		assert.Empty(t, rec.drafts, "send must not be called")
		assert.Equal(t, content, c.Content(), "draft must be left as is")
	}
}

func TestComposer_SubmitSendsOnceAndClears(t *testing.T) {
	rec := &recordingSender{}
	c := NewComposer(rec.send)
	require.NoError(t, c.SetType(domain.MessageQuestion))
	c.SetContent("When does the keynote start?")

	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, rec.drafts, 1)
	assert.Equal(t, "When does the keynote start?", rec.drafts[0].Content)
	assert.Equal(t, domain.MessageQuestion, rec.drafts[0].Type)
	assert.Nil(t, rec.drafts[0].Reply)
	assert.Empty(t, c.Content())
}

func TestComposer_SubmitClearsOnSendError(t *testing.T) {
	boom := errors.New("store unavailable")
	rec := &recordingSender{err: boom}
	c := NewComposer(rec.send)
	c.SetContent("hello")
	c.ReplyTo(domain.ChatMessage{ID: "m1", UserName: "Ann", Content: "hi"})

	err := c.Submit(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Len(t, rec.drafts, 1)
	assert.Empty(t, c.Content())
	assert.NotNil(t, c.Reply(), "reply target survives a failed send")
}

func TestComposer_Reply(t *testing.T) {
	rec := &recordingSender{}
	c := NewComposer(rec.send)
	long := strings.Repeat("x", 80)
	c.ReplyTo(domain.ChatMessage{ID: "m1", UserName: "Ann", Content: long})

	ref := c.Reply()
	require.NotNil(t, ref)
	assert.Equal(t, "m1", ref.MessageID)
	assert.Equal(t, "Ann", ref.Author)
	assert.Equal(t, strings.Repeat("x", 50)+"...", ref.Excerpt)

	c.SetContent("agreed")
	c.CancelReply()
	assert.Nil(t, c.Reply())
	assert.Equal(t, "agreed", c.Content(), "cancel keeps the draft")

	c.ReplyTo(domain.ChatMessage{ID: "m2", UserName: "Bo", Content: "short"})
	assert.Equal(t, "short", c.Reply().Excerpt)
	require.NoError(t, c.Submit(context.Background()))
	require.Len(t, rec.drafts, 1)
	assert.Equal(t, "m2", rec.drafts[0].Reply.MessageID)
	assert.Nil(t, c.Reply(), "successful submit clears the reply")
}

func TestComposer_SetType(t *testing.T) {
	c := NewComposer(func(context.Context, Draft) error { return nil })
	assert.Equal(t, domain.MessageText, c.Type())
	assert.Error(t, c.SetType(domain.MessageAnnouncement))
	assert.Error(t, c.SetType(domain.MessageSystem))
	assert.Equal(t, domain.MessageText, c.Type())
}
