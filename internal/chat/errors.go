package chat

import (
	"errors"

	"github.com/nfrund/eventhub/internal/domain"
)

var (
	ErrEmptyDraft = errors.New("draft is empty")
	ErrNotInRoom  = errors.New("user is not a participant of this room")

	// Room invariant violations, shared with the domain model.
	ErrEventMismatch    = domain.ErrEventMismatch
	ErrUnknownParent    = domain.ErrUnknownParent
	ErrMissingRecipient = domain.ErrMissingRecipient
)
