package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEventMismatch    = errors.New("message belongs to a different event")
	ErrUnknownParent    = errors.New("reply references a message outside the room")
	ErrMissingRecipient = errors.New("private message requires a recipient")
	ErrUnknownMessage   = errors.New("message is not part of the room")
	ErrDuplicateMessage = errors.New("message already in the room")
)

// EventChatRoom is the in-memory view of one event's chat. Messages are kept
// in the order they were appended, which callers feed chronologically.
type EventChatRoom struct {
	eventID      string
	messages     []ChatMessage
	index        map[string]int
	participants map[string]struct{}
	organizers   map[string]struct{}
	pinned       map[string]struct{}
}

// NewRoom creates an empty room for eventID.
func NewRoom(eventID string) *EventChatRoom {
	return &EventChatRoom{
		eventID:      eventID,
		index:        make(map[string]int),
		participants: make(map[string]struct{}),
		organizers:   make(map[string]struct{}),
		pinned:       make(map[string]struct{}),
	}
}

// LoadRoom rebuilds a room from its stored info and message list. Pins that
// no longer reference a message in the room are dropped.
func LoadRoom(info *RoomInfo, messages []ChatMessage) (*EventChatRoom, error) {
	r := NewRoom(info.EventID)
	for _, id := range info.Organizers {
		r.AddOrganizer(id)
	}
	for _, id := range info.Participants {
		r.AddParticipant(id)
	}
	for _, m := range messages {
		if err := r.Append(m); err != nil {
			return nil, fmt.Errorf("load message %s: %w", m.ID, err)
		}
	}
	for _, id := range info.Pinned {
		_ = r.Pin(id)
	}
	return r, nil
}

// EventID returns the owning event identifier.
func (r *EventChatRoom) EventID() string { return r.eventID }

// Append adds a message to the room, enforcing the room invariants.
func (r *EventChatRoom) Append(m ChatMessage) error {
	if m.EventID != r.eventID {
		return ErrEventMismatch
	}
	if m.IsPrivate && m.RecipientID == "" {
		return ErrMissingRecipient
	}
	if m.ParentID != "" {
		if _, ok := r.index[m.ParentID]; !ok {
			return ErrUnknownParent
		}
	}
	if m.ID != "" {
		if _, ok := r.index[m.ID]; ok {
			return ErrDuplicateMessage
		}
		r.index[m.ID] = len(r.messages)
	}
	r.messages = append(r.messages, m)
	return nil
}

// Has reports whether a message with id is in the room.
func (r *EventChatRoom) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Message returns the message with id.
func (r *EventChatRoom) Message(id string) (ChatMessage, bool) {
	i, ok := r.index[id]
	if !ok {
		return ChatMessage{}, false
	}
	return r.messages[i], true
}

// Messages returns a copy of the room's messages in order.
func (r *EventChatRoom) Messages() []ChatMessage {
	out := make([]ChatMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

// Pin marks a message as pinned. Only messages in the room can be pinned.
func (r *EventChatRoom) Pin(id string) error {
	if !r.Has(id) {
		return ErrUnknownMessage
	}
	r.pinned[id] = struct{}{}
	return nil
}

// Unpin removes a pin. Unpinning an unpinned message is a no-op.
func (r *EventChatRoom) Unpin(id string) {
	delete(r.pinned, id)
}

// Pinned returns the pinned messages in room order.
func (r *EventChatRoom) Pinned() []ChatMessage {
	var out []ChatMessage
	for _, m := range r.messages {
		if _, ok := r.pinned[m.ID]; ok {
			out = append(out, m)
		}
	}
	return out
}

// IsPinned reports whether the message id is pinned.
func (r *EventChatRoom) IsPinned(id string) bool {
	_, ok := r.pinned[id]
	return ok
}

// AddParticipant grants userID access to the room.
func (r *EventChatRoom) AddParticipant(userID string) {
	r.participants[userID] = struct{}{}
}

// AddOrganizer marks userID as an organizer. Organizers are participants too.
func (r *EventChatRoom) AddOrganizer(userID string) {
	r.organizers[userID] = struct{}{}
	r.participants[userID] = struct{}{}
}

// IsParticipant reports whether userID may read and write in the room.
func (r *EventChatRoom) IsParticipant(userID string) bool {
	_, ok := r.participants[userID]
	return ok
}

// IsOrganizer reports whether userID organizes the event.
func (r *EventChatRoom) IsOrganizer(userID string) bool {
	_, ok := r.organizers[userID]
	return ok
}

// ParticipantCount returns the number of participants.
func (r *EventChatRoom) ParticipantCount() int {
	return len(r.participants)
}
