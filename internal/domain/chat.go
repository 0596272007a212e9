package domain

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a package-level validator instance.
// Using a single instance is more efficient as it caches struct information.
var validatorInstance = validator.New()

// MessageType classifies a chat entry.
type MessageType string

const (
	MessageText         MessageType = "text"
	MessageAnnouncement MessageType = "announcement"
	MessageQuestion     MessageType = "question"
	MessageSystem       MessageType = "system"
)

// Valid reports whether t is one of the known message types.
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageAnnouncement, MessageQuestion, MessageSystem:
		return true
	}
	return false
}

// ChatMessage is a single entry in an event chat room.
type ChatMessage struct {
	ID            string      `json:"id"`
	EventID       string      `json:"eventId" validate:"required"`
	UserID        string      `json:"userId" validate:"required"`
	UserName      string      `json:"userName"`
	UserAvatar    string      `json:"userAvatar,omitempty"`
	Content       string      `json:"content" validate:"required,max=4000"`
	Type          MessageType `json:"type" validate:"required,oneof=text announcement question system"`
	CreatedAt     time.Time   `json:"timestamp"`
	IsOrganizer   bool        `json:"isOrganizer"`
	ParentID      string      `json:"parentId,omitempty"`
	Upvotes       int         `json:"upvotes"`
	HasUpvoted    bool        `json:"hasUpvoted"`
	IsPrivate     bool        `json:"isPrivate"`
	RecipientID   string      `json:"recipientId,omitempty" validate:"required_if=IsPrivate true"`
	RecipientName string      `json:"recipientName,omitempty"`

	// UpvotedBy lists the users that upvoted the message. It is used to
	// derive HasUpvoted for a viewer and is never sent to clients.
	UpvotedBy []string `json:"-"`
}

// Validate checks the message shape: required fields, a known type and a
// recipient on private messages.
func (m *ChatMessage) Validate() error {
	return validatorInstance.Struct(m)
}

// ForViewer returns a copy of the message with HasUpvoted computed for viewerID.
func (m ChatMessage) ForViewer(viewerID string) ChatMessage {
	m.HasUpvoted = false
	for _, id := range m.UpvotedBy {
		if id == viewerID {
			m.HasUpvoted = true
			break
		}
	}
	return m
}

// UpvoteResult is the persisted outcome of an upvote toggle. Callers render
// this value instead of flipping local state ahead of the store.
type UpvoteResult struct {
	MessageID  string `json:"messageId"`
	Upvotes    int    `json:"upvotes"`
	HasUpvoted bool   `json:"hasUpvoted"`
}

// MessageRepository is the message store contract.
type MessageRepository interface {
	// ListByEvent returns all messages of an event in chronological order.
	ListByEvent(ctx context.Context, eventID string) ([]ChatMessage, error)
	Get(ctx context.Context, id string) (*ChatMessage, error)
	Create(ctx context.Context, msg *ChatMessage) (*ChatMessage, error)
	ToggleUpvote(ctx context.Context, messageID, userID string) (UpvoteResult, error)
}

// RoomRepository stores room membership and pins.
type RoomRepository interface {
	Get(ctx context.Context, eventID string) (*RoomInfo, error)
	Create(ctx context.Context, eventID, organizerID string) (*RoomInfo, error)
	AddParticipant(ctx context.Context, eventID, userID string) error
	Pin(ctx context.Context, eventID, messageID string) error
	Unpin(ctx context.Context, eventID, messageID string) error
}

// RoomInfo is the persisted part of a room. Messages live in their own table.
type RoomInfo struct {
	EventID      string   `json:"eventId"`
	Organizers   []string `json:"organizers"`
	Participants []string `json:"participants"`
	Pinned       []string `json:"pinned"`
}
