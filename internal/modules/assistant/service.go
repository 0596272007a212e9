package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoProviders is returned when the chain is empty.
var ErrNoProviders = errors.New("no assistant providers configured")

const systemPrompt = `You are the Eventhub assistant. You help people discover events, ` +
	`understand bookings and tickets, and find their way around event chats. ` +
	`Answer briefly and in a friendly tone. If you do not know something about ` +
	`a specific event, say so and suggest asking the organizers in the event chat.`

// Reply is a successful completion and the provider that produced it.
type Reply struct {
	Message string `json:"message"`
	Source  string `json:"source"`
}

// Service asks each provider in order until one answers.
type Service struct {
	providers []Provider
	logger    *slog.Logger
}

// NewService creates a Service trying providers in the given order.
func NewService(providers ...Provider) *Service {
	return &Service{providers: providers, logger: slog.Default()}
}

// Chat completes message with the first provider that succeeds. The
// returned error wraps the last provider failure.
func (s *Service) Chat(ctx context.Context, message, eventContext string, history []Turn) (Reply, error) {
	req := Request{
		System:  buildSystemPrompt(eventContext),
		History: history,
		Message: message,
	}

	lastErr := ErrNoProviders
	for _, p := range s.providers {
		text, err := p.Complete(ctx, req)
		if err == nil {
			return Reply{Message: text, Source: p.Name()}, nil
		}
		s.logger.Warn("Assistant provider failed, trying next", "provider", p.Name(), "error", err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return Reply{}, fmt.Errorf("all assistant providers failed: %w", lastErr)
}

func buildSystemPrompt(eventContext string) string {
	eventContext = strings.TrimSpace(eventContext)
	if eventContext == "" {
		return systemPrompt
	}
	return systemPrompt + "\n\nContext about what the user is looking at:\n" + eventContext
}
