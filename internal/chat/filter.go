package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nfrund/eventhub/internal/domain"
)

// Filter selects a subset of a room's messages for display.
type Filter string

const (
	FilterAll           Filter = "all"
	FilterQuestions     Filter = "questions"
	FilterAnnouncements Filter = "announcements"
	FilterPrivate       Filter = "private"
)

// Filters lists the selectors in display order.
var Filters = []Filter{FilterAll, FilterQuestions, FilterAnnouncements, FilterPrivate}

var ErrUnknownFilter = errors.New("unknown filter")

// ParseFilter maps a selector name to a Filter. An empty name selects all.
func ParseFilter(name string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(name)))
	if f == "" {
		return FilterAll, nil
	}
	for _, known := range Filters {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, name)
}

// Match reports whether m is selected by f for viewerID.
func (f Filter) Match(m domain.ChatMessage, viewerID string) bool {
	switch f {
	case FilterQuestions:
		return m.Type == domain.MessageQuestion
	case FilterAnnouncements:
		return m.Type == domain.MessageAnnouncement
	case FilterPrivate:
		return m.IsPrivate && (m.RecipientID == viewerID || m.UserID == viewerID)
	case FilterAll:
		return true
	}
	return false
}

// Apply returns the messages selected by f in their original order. The input
// slice is not modified.
func Apply(messages []domain.ChatMessage, f Filter, viewerID string) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if f.Match(m, viewerID) {
			out = append(out, m)
		}
	}
	return out
}

// Visible drops private messages that viewerID neither sent nor received.
// The server applies it before any Filter so "all" never leaks a private
// conversation.
func Visible(messages []domain.ChatMessage, viewerID string) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.IsPrivate && m.UserID != viewerID && m.RecipientID != viewerID {
			continue
		}
		out = append(out, m)
	}
	return out
}
