package assistant

import (
	"context"
	"errors"
	"strings"
)

// ErrNotConfigured is returned by providers without credentials.
var ErrNotConfigured = errors.New("provider API key not configured")

// Turn is one earlier exchange in the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the input of one completion.
type Request struct {
	System  string
	History []Turn
	Message string
}

// Provider completes a chat request. Name is the tag reported to clients as
// the reply's source.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// normalizeRole maps client roles onto user and assistant.
func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "assistant", "model", "bot":
		return "assistant"
	default:
		return "user"
	}
}
