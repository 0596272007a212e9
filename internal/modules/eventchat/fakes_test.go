package eventchat

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/pubsub"
)

// memMessages is an in-memory domain.MessageRepository.
type memMessages struct {
	mu      sync.Mutex
	byEvent map[string][]domain.ChatMessage
	creates int
	listErr error
}

func newMemMessages() *memMessages {
	return &memMessages{byEvent: make(map[string][]domain.ChatMessage)}
}

func (m *memMessages) add(msg domain.ChatMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEvent[msg.EventID] = append(m.byEvent[msg.EventID], msg)
}

func (m *memMessages) ListByEvent(_ context.Context, eventID string) ([]domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return slices.Clone(m.byEvent[eventID]), nil
}

func (m *memMessages) Get(_ context.Context, id string) (*domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msgs := range m.byEvent {
		for _, msg := range msgs {
			if msg.ID == id {
				return &msg, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memMessages) Create(_ context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	created := *msg
	created.ID = fmt.Sprintf("chat_message:%d", m.creates)
	m.byEvent[msg.EventID] = append(m.byEvent[msg.EventID], created)
	return &created, nil
}

func (m *memMessages) ToggleUpvote(_ context.Context, messageID, userID string) (domain.UpvoteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for eventID, msgs := range m.byEvent {
		for i, msg := range msgs {
			if msg.ID != messageID {
				continue
			}
			if idx := slices.Index(msg.UpvotedBy, userID); idx >= 0 {
				msg.UpvotedBy = slices.Delete(msg.UpvotedBy, idx, idx+1)
			} else {
				msg.UpvotedBy = append(msg.UpvotedBy, userID)
			}
			msg.Upvotes = len(msg.UpvotedBy)
			m.byEvent[eventID][i] = msg
			return domain.UpvoteResult{
				MessageID:  messageID,
				Upvotes:    msg.Upvotes,
				HasUpvoted: slices.Contains(msg.UpvotedBy, userID),
			}, nil
		}
	}
	return domain.UpvoteResult{}, domain.ErrNotFound
}

// memRooms is an in-memory domain.RoomRepository.
type memRooms struct {
	mu    sync.Mutex
	rooms map[string]*domain.RoomInfo
}

func newMemRooms() *memRooms {
	return &memRooms{rooms: make(map[string]*domain.RoomInfo)}
}

func (r *memRooms) Get(_ context.Context, eventID string) (*domain.RoomInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.rooms[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *info
	cp.Organizers = slices.Clone(info.Organizers)
	cp.Participants = slices.Clone(info.Participants)
	cp.Pinned = slices.Clone(info.Pinned)
	return &cp, nil
}

func (r *memRooms) Create(_ context.Context, eventID, organizerID string) (*domain.RoomInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[eventID]; ok {
		return nil, domain.ErrConflict
	}
	info := &domain.RoomInfo{
		EventID:      eventID,
		Organizers:   []string{organizerID},
		Participants: []string{organizerID},
		Pinned:       []string{},
	}
	r.rooms[eventID] = info
	return info, nil
}

func (r *memRooms) update(eventID string, fn func(*domain.RoomInfo)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.rooms[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	fn(info)
	return nil
}

func (r *memRooms) AddParticipant(_ context.Context, eventID, userID string) error {
	return r.update(eventID, func(info *domain.RoomInfo) {
		if !slices.Contains(info.Participants, userID) {
			info.Participants = append(info.Participants, userID)
		}
	})
}

func (r *memRooms) Pin(_ context.Context, eventID, messageID string) error {
	return r.update(eventID, func(info *domain.RoomInfo) {
		if !slices.Contains(info.Pinned, messageID) {
			info.Pinned = append(info.Pinned, messageID)
		}
	})
}

func (r *memRooms) Unpin(_ context.Context, eventID, messageID string) error {
	return r.update(eventID, func(info *domain.RoomInfo) {
		info.Pinned = slices.DeleteFunc(info.Pinned, func(id string) bool { return id == messageID })
	})
}

// mockPublisher records every published message.
type mockPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
	err      error
}

func (m *mockPublisher) Publish(_ context.Context, msg pubsub.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) published() []pubsub.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.messages)
}

const (
	testEvent = "event:launch"
	organizer = "user:org"
	attendee  = "user:ann"
	outsider  = "user:out"
)

func sessionFor(userID, name string) domain.Session {
	return domain.Session{UserID: userID, Name: name, Authenticated: true}
}

// seededService returns a service over a room organised by organizer with
// attendee as participant.
func seededService() (*Service, *memMessages, *memRooms, *mockPublisher) {
	messages := newMemMessages()
	rooms := newMemRooms()
	pub := &mockPublisher{}
	rooms.rooms[testEvent] = &domain.RoomInfo{
		EventID:      testEvent,
		Organizers:   []string{organizer},
		Participants: []string{organizer, attendee},
		Pinned:       []string{},
	}
	svc := NewService(messages, rooms, pub)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC) }
	return svc, messages, rooms, pub
}
