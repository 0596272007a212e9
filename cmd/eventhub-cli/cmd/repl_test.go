package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/nfrund/eventhub/internal/chat"
	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/modules/eventchat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	messages []domain.ChatMessage
	sent     []chat.Draft
	sendErr  error
	upvoted  []string
	filters  []chat.Filter
}

func (f *fakeAPI) View(_ context.Context, eventID string, filter chat.Filter) (*eventchat.RoomView, error) {
	f.filters = append(f.filters, filter)
	return &eventchat.RoomView{
		EventID:          eventID,
		Filter:           filter,
		Messages:         chat.Apply(f.messages, filter, "user:ann"),
		ParticipantCount: 2,
	}, nil
}

func (f *fakeAPI) Upvote(_ context.Context, _, messageID string) (domain.UpvoteResult, error) {
	f.upvoted = append(f.upvoted, messageID)
	return domain.UpvoteResult{MessageID: messageID, Upvotes: 1, HasUpvoted: true}, nil
}

func (f *fakeAPI) Sender(string) chat.SendFunc {
	return func(_ context.Context, d chat.Draft) error {
		f.sent = append(f.sent, d)
		return f.sendErr
	}
}

func newTestREPL() (*repl, *fakeAPI, *bytes.Buffer) {
	api := &fakeAPI{messages: []domain.ChatMessage{
		{ID: "m1", UserName: "Olga", Content: "Welcome everyone", Type: domain.MessageAnnouncement, IsOrganizer: true},
		{ID: "m2", UserName: "Ann", Content: "Is there parking?", Type: domain.MessageQuestion, Upvotes: 3},
	}}
	var out bytes.Buffer
	return newREPL(api, "evt-launch", chat.FilterAll, &out), api, &out
}

func TestREPL_SendsDrafts(t *testing.T) {
	ctx := context.Background()
	r, api, _ := newTestREPL()

	require.NoError(t, r.handle(ctx, "   "))
	assert.Empty(t, api.sent, "blank lines are never sent")

	require.NoError(t, r.handle(ctx, "/question"))
	require.NoError(t, r.handle(ctx, "When does it start?"))
	require.Len(t, api.sent, 1)
	assert.Equal(t, "When does it start?", api.sent[0].Content)
	assert.Equal(t, domain.MessageQuestion, api.sent[0].Type)
	assert.Empty(t, r.composer.Content())
}

func TestREPL_Reply(t *testing.T) {
	ctx := context.Background()
	r, api, out := newTestREPL()

	assert.Error(t, r.handle(ctx, "/reply 1"), "nothing listed yet")

	require.NoError(t, r.handle(ctx, "/list"))
	assert.Contains(t, out.String(), "Olga (organizer) [announcement]: Welcome everyone")
	assert.Contains(t, out.String(), "[question ▲3]: Is there parking?")

	require.NoError(t, r.handle(ctx, "/reply 2"))
	assert.Equal(t, "m2", r.composer.Reply().MessageID)

	api.sendErr = errors.New("offline")
	assert.Error(t, r.handle(ctx, "Yes, level B"))
	assert.NotNil(t, r.composer.Reply(), "a failed send keeps the reply target")

	api.sendErr = nil
	require.NoError(t, r.handle(ctx, "Yes, level B"))
	require.Len(t, api.sent, 2)
	assert.Equal(t, "m2", api.sent[1].Reply.MessageID)
	assert.Nil(t, r.composer.Reply())

	require.NoError(t, r.handle(ctx, "/reply m1"))
	r.composer.SetContent("draft")
	require.NoError(t, r.handle(ctx, "/cancel"))
	assert.Nil(t, r.composer.Reply())
	assert.Equal(t, "draft", r.composer.Content())
}

func TestREPL_FilterAndUpvote(t *testing.T) {
	ctx := context.Background()
	r, api, out := newTestREPL()

	require.NoError(t, r.handle(ctx, "/filter questions"))
	assert.Equal(t, chat.FilterQuestions, r.filter)
	require.Len(t, r.listed, 1)
	assert.NotContains(t, out.String(), "Welcome everyone")

	assert.ErrorIs(t, r.handle(ctx, "/filter nope"), chat.ErrUnknownFilter)
	assert.Equal(t, chat.FilterQuestions, r.filter)

	require.NoError(t, r.handle(ctx, "/upvote 1"))
	assert.Equal(t, []string{"m2"}, api.upvoted)
	assert.Contains(t, out.String(), "Upvoted message m2 (1 upvotes)")
}

func TestREPL_Commands(t *testing.T) {
	ctx := context.Background()
	r, _, out := newTestREPL()

	assert.ErrorIs(t, r.handle(ctx, "/quit"), errQuit)
	assert.Error(t, r.handle(ctx, "/dance"))
	require.NoError(t, r.handle(ctx, "/help"))
	assert.Contains(t, out.String(), "/reply <n|id>")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "Eventhub CLI v"+version+"\n", out.String())
}
