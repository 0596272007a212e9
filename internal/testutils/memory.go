package testutils

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nfrund/eventhub/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// NewTestRecordID creates a new RecordID for testing purposes.
func NewTestRecordID(table string) *surrealmodels.RecordID {
	id := surrealmodels.NewRecordID(table, uuid.NewString())
	return &id
}

// MemoryStore is an in-memory implementation of every repository the
// server needs. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	messages []domain.ChatMessage
	rooms    map[string]*domain.RoomInfo
	bookings map[string]domain.Booking
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*domain.User),
		rooms:    make(map[string]*domain.RoomInfo),
		bookings: make(map[string]domain.Booking),
	}
}

// Users returns the store as a domain.UserRepository.
func (s *MemoryStore) Users() domain.UserRepository { return (*memoryUsers)(s) }

// Messages returns the store as a domain.MessageRepository.
func (s *MemoryStore) Messages() domain.MessageRepository { return (*memoryMessages)(s) }

// Rooms returns the store as a domain.RoomRepository.
func (s *MemoryStore) Rooms() domain.RoomRepository { return (*memoryRooms)(s) }

// Bookings returns the store as a domain.BookingRepository.
func (s *MemoryStore) Bookings() domain.BookingRepository { return (*memoryBookings)(s) }

func recordKey(id *surrealmodels.RecordID) string {
	return id.Table + ":" + toString(id.ID)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

type memoryUsers MemoryStore

func (s *memoryUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, domain.ErrUserAlreadyExists
		}
	}
	created := *u
	created.ID = NewTestRecordID("user")
	s.users[recordKey(created.ID)] = &created
	return &created, nil
}

func (s *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (s *memoryUsers) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memoryMessages MemoryStore

func (s *memoryMessages) ListByEvent(_ context.Context, eventID string) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ChatMessage
	for _, m := range s.messages {
		if m.EventID == eventID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memoryMessages) Get(_ context.Context, id string) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memoryMessages) Create(_ context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *msg
	created.ID = "chat_message:" + uuid.NewString()
	created.UpvotedBy = slices.Clone(msg.UpvotedBy)
	s.messages = append(s.messages, created)
	return &created, nil
}

func (s *memoryMessages) ToggleUpvote(_ context.Context, messageID, userID string) (domain.UpvoteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		m := &s.messages[i]
		if m.ID != messageID {
			continue
		}
		if idx := slices.Index(m.UpvotedBy, userID); idx >= 0 {
			m.UpvotedBy = slices.Delete(m.UpvotedBy, idx, idx+1)
		} else {
			m.UpvotedBy = append(m.UpvotedBy, userID)
		}
		m.Upvotes = len(m.UpvotedBy)
		return domain.UpvoteResult{
			MessageID:  messageID,
			Upvotes:    m.Upvotes,
			HasUpvoted: slices.Contains(m.UpvotedBy, userID),
		}, nil
	}
	return domain.UpvoteResult{}, domain.ErrNotFound
}

type memoryRooms MemoryStore

func (s *memoryRooms) Get(_ context.Context, eventID string) (*domain.RoomInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.rooms[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.RoomInfo{
		EventID:      info.EventID,
		Organizers:   slices.Clone(info.Organizers),
		Participants: slices.Clone(info.Participants),
		Pinned:       slices.Clone(info.Pinned),
	}, nil
}

func (s *memoryRooms) Create(_ context.Context, eventID, organizerID string) (*domain.RoomInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[eventID]; ok {
		return nil, domain.ErrConflict
	}
	s.rooms[eventID] = &domain.RoomInfo{
		EventID:      eventID,
		Organizers:   []string{organizerID},
		Participants: []string{organizerID},
		Pinned:       []string{},
	}
	return &domain.RoomInfo{
		EventID:      eventID,
		Organizers:   []string{organizerID},
		Participants: []string{organizerID},
		Pinned:       []string{},
	}, nil
}

func (s *memoryRooms) update(eventID string, fn func(*domain.RoomInfo)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.rooms[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	fn(info)
	return nil
}

func (s *memoryRooms) AddParticipant(_ context.Context, eventID, userID string) error {
	return s.update(eventID, func(info *domain.RoomInfo) {
		if !slices.Contains(info.Participants, userID) {
			info.Participants = append(info.Participants, userID)
		}
	})
}

func (s *memoryRooms) Pin(_ context.Context, eventID, messageID string) error {
	return s.update(eventID, func(info *domain.RoomInfo) {
		if !slices.Contains(info.Pinned, messageID) {
			info.Pinned = append(info.Pinned, messageID)
		}
	})
}

func (s *memoryRooms) Unpin(_ context.Context, eventID, messageID string) error {
	return s.update(eventID, func(info *domain.RoomInfo) {
		info.Pinned = slices.DeleteFunc(info.Pinned, func(id string) bool { return id == messageID })
	})
}

type memoryBookings MemoryStore

func (s *memoryBookings) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ConfirmationCode]; ok {
		return nil, domain.ErrConflict
	}
	created := *b
	created.ID = "booking:" + uuid.NewString()
	s.bookings[b.ConfirmationCode] = created
	return &created, nil
}

func (s *memoryBookings) FindByCode(_ context.Context, code string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}
