package database

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/nfrund/eventhub/internal/config"
	"github.com/nfrund/eventhub/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// messageRecord is the stored shape of a chat message. The upvote count is
// derived from upvoted_by so a toggle is a single atomic update.
type messageRecord struct {
	ID            *surrealmodels.RecordID       `json:"id,omitempty"`
	EventID       string                        `json:"event_id"`
	UserID        string                        `json:"user_id"`
	UserName      string                        `json:"user_name"`
	UserAvatar    string                        `json:"user_avatar,omitempty"`
	Content       string                        `json:"content"`
	Type          string                        `json:"type"`
	IsOrganizer   bool                          `json:"is_organizer"`
	ParentID      string                        `json:"parent_id,omitempty"`
	IsPrivate     bool                          `json:"is_private"`
	RecipientID   string                        `json:"recipient_id,omitempty"`
	RecipientName string                        `json:"recipient_name,omitempty"`
	UpvotedBy     []string                      `json:"upvoted_by"`
	CreatedAt     *surrealmodels.CustomDateTime `json:"created_at,omitempty"`
}

func (r *messageRecord) toDomain() domain.ChatMessage {
	upvotedBy := r.UpvotedBy
	if upvotedBy == nil {
		upvotedBy = []string{}
	}
	return domain.ChatMessage{
		ID:            recordString(r.ID),
		EventID:       r.EventID,
		UserID:        r.UserID,
		UserName:      r.UserName,
		UserAvatar:    r.UserAvatar,
		Content:       r.Content,
		Type:          domain.MessageType(r.Type),
		CreatedAt:     timeOf(r.CreatedAt),
		IsOrganizer:   r.IsOrganizer,
		ParentID:      r.ParentID,
		Upvotes:       len(upvotedBy),
		IsPrivate:     r.IsPrivate,
		RecipientID:   r.RecipientID,
		RecipientName: r.RecipientName,
		UpvotedBy:     upvotedBy,
	}
}

func messageRecordFrom(m *domain.ChatMessage) *messageRecord {
	return &messageRecord{
		EventID:       m.EventID,
		UserID:        m.UserID,
		UserName:      m.UserName,
		UserAvatar:    m.UserAvatar,
		Content:       m.Content,
		Type:          string(m.Type),
		IsOrganizer:   m.IsOrganizer,
		ParentID:      m.ParentID,
		IsPrivate:     m.IsPrivate,
		RecipientID:   m.RecipientID,
		RecipientName: m.RecipientName,
		UpvotedBy:     []string{},
		CreatedAt:     datetime(m.CreatedAt),
	}
}

var _ domain.MessageRepository = (*MessageStore)(nil)

// MessageStore implements domain.MessageRepository on SurrealDB.
type MessageStore struct {
	client Client[messageRecord]
}

// NewMessageStore creates a message store over conn.
func NewMessageStore(conn Conn, cfg config.Provider, opts ...ClientOption[messageRecord]) (*MessageStore, error) {
	client, err := NewClient[messageRecord](conn, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &MessageStore{client: client}, nil
}

// ListByEvent returns the event's messages oldest first.
func (s *MessageStore) ListByEvent(ctx context.Context, eventID string) ([]domain.ChatMessage, error) {
	query := "SELECT * FROM chat_message WHERE event_id = $event ORDER BY created_at ASC"
	rows, err := s.client.Query(ctx, query, map[string]any{"event": eventID})
	if err != nil {
		return nil, WrapError(err, "list messages")
	}
	out := make([]domain.ChatMessage, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// Get returns a single message.
func (s *MessageStore) Get(ctx context.Context, id string) (*domain.ChatMessage, error) {
	key, err := splitRecordID(id, tableMessage)
	if err != nil {
		return nil, err
	}
	rec, err := s.client.QueryOne(ctx, "SELECT * FROM type::thing($tb, $key)", map[string]any{"tb": tableMessage, "key": key})
	if err != nil {
		return nil, WrapError(err, "get message")
	}
	if rec == nil {
		return nil, NewDBError(ErrNotFound, "message "+id)
	}
	m := rec.toDomain()
	return &m, nil
}

// Create stores msg with a generated id and creation time. The stored
// message is returned.
func (s *MessageStore) Create(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	if msg == nil {
		return nil, NewDBError(ErrInvalidInput, "message cannot be nil")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = timeNow()
	}
	if err := msg.Validate(); err != nil {
		return nil, NewDBError(errors.Join(ErrInvalidInput, err), "create message")
	}

	key := strings.ReplaceAll(uuid.NewString(), "-", "")
	query := "CREATE type::thing($tb, $key) CONTENT $data"
	rec, err := s.client.QueryOne(ctx, query, map[string]any{
		"tb":   tableMessage,
		"key":  key,
		"data": messageRecordFrom(msg),
	})
	if err != nil {
		return nil, WrapError(err, "create message")
	}
	if rec == nil {
		return nil, NewDBError(ErrNotFound, "create message returned no record")
	}
	m := rec.toDomain()
	return &m, nil
}

// ToggleUpvote adds or removes userID from the message's upvoters in one
// statement and reports the stored outcome.
func (s *MessageStore) ToggleUpvote(ctx context.Context, messageID, userID string) (domain.UpvoteResult, error) {
	key, err := splitRecordID(messageID, tableMessage)
	if err != nil {
		return domain.UpvoteResult{}, err
	}
	query := `UPDATE type::thing($tb, $key) SET upvoted_by = IF upvoted_by CONTAINS $user
		THEN array::complement(upvoted_by, [$user])
		ELSE array::union(upvoted_by, [$user]) END
		WHERE event_id != NONE RETURN AFTER`
	rec, err := s.client.QueryOne(ctx, query, map[string]any{"tb": tableMessage, "key": key, "user": userID})
	if err != nil {
		return domain.UpvoteResult{}, WrapError(err, "toggle upvote")
	}
	if rec == nil {
		return domain.UpvoteResult{}, NewDBError(ErrNotFound, "message "+messageID)
	}
	m := rec.toDomain().ForViewer(userID)
	return domain.UpvoteResult{MessageID: m.ID, Upvotes: m.Upvotes, HasUpvoted: m.HasUpvoted}, nil
}
