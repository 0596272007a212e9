package database

import (
	"context"

	"github.com/nfrund/eventhub/internal/config"
	"github.com/nfrund/eventhub/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

type roomRecord struct {
	ID           *surrealmodels.RecordID       `json:"id,omitempty"`
	EventID      string                        `json:"event_id"`
	Organizers   []string                      `json:"organizers"`
	Participants []string                      `json:"participants"`
	Pinned       []string                      `json:"pinned"`
	CreatedAt    *surrealmodels.CustomDateTime `json:"created_at,omitempty"`
}

func (r *roomRecord) toDomain() *domain.RoomInfo {
	return &domain.RoomInfo{
		EventID:      r.EventID,
		Organizers:   nonNil(r.Organizers),
		Participants: nonNil(r.Participants),
		Pinned:       nonNil(r.Pinned),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ domain.RoomRepository = (*RoomStore)(nil)

// RoomStore implements domain.RoomRepository. Rooms are keyed by event id,
// which a unique index enforces.
type RoomStore struct {
	client Client[roomRecord]
}

// NewRoomStore creates a room store over conn.
func NewRoomStore(conn Conn, cfg config.Provider, opts ...ClientOption[roomRecord]) (*RoomStore, error) {
	client, err := NewClient[roomRecord](conn, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &RoomStore{client: client}, nil
}

// Get returns the room of eventID.
func (s *RoomStore) Get(ctx context.Context, eventID string) (*domain.RoomInfo, error) {
	rec, err := s.client.QueryOne(ctx, "SELECT * FROM event_chat_room WHERE event_id = $event LIMIT 1", map[string]any{"event": eventID})
	if err != nil {
		return nil, WrapError(err, "get room")
	}
	if rec == nil {
		return nil, NewDBError(ErrNotFound, "room for event "+eventID)
	}
	return rec.toDomain(), nil
}

// Create opens a room with organizerID as its first organizer and participant.
func (s *RoomStore) Create(ctx context.Context, eventID, organizerID string) (*domain.RoomInfo, error) {
	if eventID == "" || organizerID == "" {
		return nil, NewDBError(ErrInvalidInput, "event and organizer are required")
	}
	existing, err := s.client.QueryOne(ctx, "SELECT * FROM event_chat_room WHERE event_id = $event LIMIT 1", map[string]any{"event": eventID})
	if err != nil {
		return nil, WrapError(err, "create room")
	}
	if existing != nil {
		return nil, NewDBError(ErrAlreadyExists, "room for event "+eventID)
	}

	rec, err := s.client.QueryOne(ctx, "CREATE event_chat_room CONTENT $data", map[string]any{
		"data": map[string]any{
			"event_id":     eventID,
			"organizers":   []string{organizerID},
			"participants": []string{organizerID},
			"pinned":       []string{},
			"created_at":   datetime(timeNow()),
		},
	})
	if err != nil {
		return nil, WrapError(err, "create room")
	}
	if rec == nil {
		return nil, NewDBError(ErrNotFound, "create room returned no record")
	}
	return rec.toDomain(), nil
}

// AddParticipant adds userID to the room. Adding an existing participant is a no-op.
func (s *RoomStore) AddParticipant(ctx context.Context, eventID, userID string) error {
	return s.updateSet(ctx, "add participant", eventID,
		"UPDATE event_chat_room SET participants = array::union(participants, [$value]) WHERE event_id = $event RETURN AFTER", userID)
}

// Pin adds messageID to the pinned set.
func (s *RoomStore) Pin(ctx context.Context, eventID, messageID string) error {
	return s.updateSet(ctx, "pin message", eventID,
		"UPDATE event_chat_room SET pinned = array::union(pinned, [$value]) WHERE event_id = $event RETURN AFTER", messageID)
}

// Unpin removes messageID from the pinned set.
func (s *RoomStore) Unpin(ctx context.Context, eventID, messageID string) error {
	return s.updateSet(ctx, "unpin message", eventID,
		"UPDATE event_chat_room SET pinned = array::complement(pinned, [$value]) WHERE event_id = $event RETURN AFTER", messageID)
}

func (s *RoomStore) updateSet(ctx context.Context, op, eventID, query, value string) error {
	rec, err := s.client.QueryOne(ctx, query, map[string]any{"event": eventID, "value": value})
	if err != nil {
		return WrapError(err, op)
	}
	if rec == nil {
		return NewDBError(ErrNotFound, "room for event "+eventID)
	}
	return nil
}
