package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nfrund/eventhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

func rid(table, key string) *surrealmodels.RecordID {
	id := surrealmodels.NewRecordID(table, key)
	return &id
}

func TestMessageStore_ListByEvent(t *testing.T) {
	store, exec := newTestMessageStore(t)
	created := time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC)
	exec.push([]messageRecord{{
		ID:        rid("chat_message", "m1"),
		EventID:   "event:1",
		UserID:    "user:a",
		Content:   "hello",
		Type:      "announcement",
		UpvotedBy: []string{"user:b", "user:c"},
		CreatedAt: datetime(created),
	}}, nil)

	msgs, err := store.ListByEvent(context.Background(), "event:1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	m := msgs[0]
	assert.Equal(t, "chat_message:m1", m.ID)
	assert.Equal(t, domain.MessageAnnouncement, m.Type)
	assert.Equal(t, 2, m.Upvotes)
	assert.True(t, created.Equal(m.CreatedAt))

	require.Len(t, exec.calls, 1)
	assert.Contains(t, exec.calls[0].query, "ORDER BY created_at ASC")
	assert.Equal(t, "event:1", exec.calls[0].params["event"])
}

func TestMessageStore_Create(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fixedNow(t, now)

	t.Run("stores a valid message", func(t *testing.T) {
		store, exec := newTestMessageStore(t)
		exec.push([]messageRecord{{
			ID: rid("chat_message", "new"), EventID: "event:1", UserID: "user:a",
			Content: "hi", Type: "text", CreatedAt: datetime(now),
		}}, nil)

		msg := &domain.ChatMessage{EventID: "event:1", UserID: "user:a", Content: "hi", Type: domain.MessageText}
		out, err := store.Create(context.Background(), msg)
		require.NoError(t, err)
		assert.Equal(t, "chat_message:new", out.ID)
		assert.Equal(t, now, msg.CreatedAt)

		require.Len(t, exec.calls, 1)
		data := exec.calls[0].params["data"].(*messageRecord)
		assert.Equal(t, "hi", data.Content)
		assert.Equal(t, []string{}, data.UpvotedBy)
		assert.Equal(t, "chat_message", exec.calls[0].params["tb"])
		assert.NotEmpty(t, exec.calls[0].params["key"])
	})

	t.Run("rejects an invalid message without a query", func(t *testing.T) {
		store, exec := newTestMessageStore(t)
		msg := &domain.ChatMessage{EventID: "event:1", UserID: "user:a", Content: "psst", Type: domain.MessageText, IsPrivate: true}
		_, err := store.Create(context.Background(), msg)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, exec.calls)
	})

	t.Run("wraps driver errors", func(t *testing.T) {
		store, exec := newTestMessageStore(t)
		boom := errors.New("socket closed")
		exec.push(nil, boom)
		msg := &domain.ChatMessage{EventID: "event:1", UserID: "user:a", Content: "hi", Type: domain.MessageText}
		_, err := store.Create(context.Background(), msg)
		assert.ErrorIs(t, err, boom)
		var dbErr *DBError
		assert.ErrorAs(t, err, &dbErr)
	})
}

func TestMessageStore_Get(t *testing.T) {
	store, exec := newTestMessageStore(t)

	_, err := store.Get(context.Background(), "user:1")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = store.Get(context.Background(), "chat_message:missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "missing", exec.calls[0].params["key"])
}

func TestMessageStore_ToggleUpvote(t *testing.T) {
	store, exec := newTestMessageStore(t)
	exec.push([]messageRecord{{
		ID: rid("chat_message", "m1"), EventID: "event:1",
		UpvotedBy: []string{"user:x", "user:me"},
	}}, nil)

	res, err := store.ToggleUpvote(context.Background(), "chat_message:m1", "user:me")
	require.NoError(t, err)
	assert.Equal(t, domain.UpvoteResult{MessageID: "chat_message:m1", Upvotes: 2, HasUpvoted: true}, res)
	assert.Equal(t, "user:me", exec.calls[0].params["user"])

	_, err = store.ToggleUpvote(context.Background(), "chat_message:gone", "user:me")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
