package eventchat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nfrund/eventhub/internal/chat"
	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/pubsub"
)

// MessageCreated is published after a message has been stored.
var MessageCreated = pubsub.NewEvent[domain.ChatMessage]("eventchat.message.created")

// PostInput is a message submitted by a participant.
type PostInput struct {
	Content       string             `json:"content" form:"content"`
	Type          domain.MessageType `json:"type" form:"type"`
	ParentID      string             `json:"parentId" form:"parentId"`
	RecipientID   string             `json:"recipientId" form:"recipientId"`
	RecipientName string             `json:"recipientName" form:"recipientName"`
}

// RoomView is a room as seen by one participant.
type RoomView struct {
	EventID          string               `json:"eventId"`
	Filter           chat.Filter          `json:"filter"`
	Messages         []domain.ChatMessage `json:"messages"`
	Pinned           []domain.ChatMessage `json:"pinned"`
	ParticipantCount int                  `json:"participantCount"`
	IsOrganizer      bool                 `json:"isOrganizer"`
}

// Service holds the event chat business rules. Every operation takes the
// acting session explicitly.
type Service struct {
	messages  domain.MessageRepository
	rooms     domain.RoomRepository
	publisher pubsub.Publisher
	now       func() time.Time
}

// NewService creates a Service.
func NewService(messages domain.MessageRepository, rooms domain.RoomRepository, publisher pubsub.Publisher) *Service {
	return &Service{messages: messages, rooms: rooms, publisher: publisher, now: time.Now}
}

// Room loads the room of eventID with all of its messages.
func (s *Service) Room(ctx context.Context, eventID string) (*domain.EventChatRoom, error) {
	info, err := s.rooms.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", eventID, err)
	}
	messages, err := s.messages.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load messages of %s: %w", eventID, err)
	}
	return domain.LoadRoom(info, messages)
}

// participantRoom loads the room and checks that viewer belongs to it.
func (s *Service) participantRoom(ctx context.Context, viewer domain.Session, eventID string) (*domain.EventChatRoom, error) {
	if err := viewer.RequireAuth(); err != nil {
		return nil, err
	}
	room, err := s.Room(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !room.IsParticipant(viewer.UserID) {
		return nil, chat.ErrNotInRoom
	}
	return room, nil
}

// View returns the messages selected by f that viewer may see.
func (s *Service) View(ctx context.Context, viewer domain.Session, eventID string, f chat.Filter) (*RoomView, error) {
	room, err := s.participantRoom(ctx, viewer, eventID)
	if err != nil {
		return nil, err
	}

	visible := chat.Visible(room.Messages(), viewer.UserID)
	selected := chat.Apply(visible, f, viewer.UserID)
	for i := range selected {
		selected[i] = selected[i].ForViewer(viewer.UserID)
	}
	pinned := chat.Visible(room.Pinned(), viewer.UserID)
	for i := range pinned {
		pinned[i] = pinned[i].ForViewer(viewer.UserID)
	}

	return &RoomView{
		EventID:          eventID,
		Filter:           f,
		Messages:         selected,
		Pinned:           pinned,
		ParticipantCount: room.ParticipantCount(),
		IsOrganizer:      room.IsOrganizer(viewer.UserID),
	}, nil
}

// Post stores a new message from author. Blank content is rejected before
// anything is loaded or stored.
func (s *Service) Post(ctx context.Context, author domain.Session, eventID string, in PostInput) (*domain.ChatMessage, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, chat.ErrEmptyDraft
	}
	room, err := s.participantRoom(ctx, author, eventID)
	if err != nil {
		return nil, err
	}

	typ := in.Type
	if typ == "" {
		typ = domain.MessageText
	}
	switch typ {
	case domain.MessageText, domain.MessageQuestion:
	case domain.MessageAnnouncement:
		if !room.IsOrganizer(author.UserID) {
			return nil, fmt.Errorf("%w: only organizers can post announcements", domain.ErrForbidden)
		}
	default:
		return nil, fmt.Errorf("%w: message type %q", domain.ErrValidation, typ)
	}

	msg := domain.ChatMessage{
		EventID:       eventID,
		UserID:        author.UserID,
		UserName:      author.Name,
		UserAvatar:    author.Avatar,
		Content:       content,
		Type:          typ,
		CreatedAt:     s.now().UTC(),
		IsOrganizer:   room.IsOrganizer(author.UserID),
		ParentID:      in.ParentID,
		IsPrivate:     in.RecipientID != "",
		RecipientID:   in.RecipientID,
		RecipientName: in.RecipientName,
	}
	if msg.IsPrivate && !room.IsParticipant(msg.RecipientID) {
		return nil, fmt.Errorf("%w: recipient is not in the room", domain.ErrValidation)
	}
	// A reply may only thread onto a message its author can see.
	if msg.ParentID != "" {
		parent, ok := room.Message(msg.ParentID)
		if !ok || len(chat.Visible([]domain.ChatMessage{parent}, author.UserID)) == 0 {
			return nil, domain.ErrUnknownParent
		}
	}
	// The draft has no id yet, so appending only checks the room invariants.
	if err := room.Append(msg); err != nil {
		return nil, err
	}

	created, err := s.messages.Create(ctx, &msg)
	if err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}
	if err := pubsub.Publish(ctx, s.publisher, MessageCreated, author.UserID, *created); err != nil {
		slog.Warn("Failed to publish message event", "eventID", eventID, "messageID", created.ID, "error", err)
	}

	out := created.ForViewer(author.UserID)
	return &out, nil
}

// Upvote toggles viewer's upvote on messageID and returns the stored result.
func (s *Service) Upvote(ctx context.Context, viewer domain.Session, eventID, messageID string) (domain.UpvoteResult, error) {
	room, err := s.participantRoom(ctx, viewer, eventID)
	if err != nil {
		return domain.UpvoteResult{}, err
	}
	m, ok := room.Message(messageID)
	if !ok || len(chat.Visible([]domain.ChatMessage{m}, viewer.UserID)) == 0 {
		return domain.UpvoteResult{}, domain.ErrUnknownMessage
	}
	return s.messages.ToggleUpvote(ctx, messageID, viewer.UserID)
}

// SetPinned pins or unpins messageID. Only organizers may change pins.
func (s *Service) SetPinned(ctx context.Context, viewer domain.Session, eventID, messageID string, pinned bool) error {
	room, err := s.participantRoom(ctx, viewer, eventID)
	if err != nil {
		return err
	}
	if !room.IsOrganizer(viewer.UserID) {
		return fmt.Errorf("%w: only organizers can pin messages", domain.ErrForbidden)
	}
	if !pinned {
		return s.rooms.Unpin(ctx, eventID, messageID)
	}
	if err := room.Pin(messageID); err != nil {
		return err
	}
	return s.rooms.Pin(ctx, eventID, messageID)
}

// Join adds viewer to the participants of an existing room.
func (s *Service) Join(ctx context.Context, viewer domain.Session, eventID string) error {
	if err := viewer.RequireAuth(); err != nil {
		return err
	}
	if _, err := s.rooms.Get(ctx, eventID); err != nil {
		return fmt.Errorf("join room %s: %w", eventID, err)
	}
	return s.rooms.AddParticipant(ctx, eventID, viewer.UserID)
}

// Create opens the room of eventID with viewer as organizer.
func (s *Service) Create(ctx context.Context, viewer domain.Session, eventID string) (*domain.RoomInfo, error) {
	if err := viewer.RequireAuth(); err != nil {
		return nil, err
	}
	return s.rooms.Create(ctx, eventID, viewer.UserID)
}

// SourceFor returns a message source limited to what viewer may see. It
// feeds watchers so private announcements only reach their audience.
func (s *Service) SourceFor(viewer domain.Session) chat.MessageSource {
	return viewerSource{messages: s.messages, viewerID: viewer.UserID}
}

type viewerSource struct {
	messages domain.MessageRepository
	viewerID string
}

func (v viewerSource) ListByEvent(ctx context.Context, eventID string) ([]domain.ChatMessage, error) {
	messages, err := v.messages.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return chat.Visible(messages, v.viewerID), nil
}
