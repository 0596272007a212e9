package app

import (
	"time"

	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/modules/assistant"
	"github.com/nfrund/eventhub/internal/modules/booking"
	"github.com/nfrund/eventhub/internal/modules/eventchat"
	"github.com/nfrund/eventhub/internal/pubsub"
)

// Dependencies holds the core services that are required by the application's modules.
// This struct is passed from the main application entrypoint to wire up the modules.
type Dependencies struct {
	Publisher    pubsub.Publisher
	Messages     domain.MessageRepository
	Rooms        domain.RoomRepository
	Bookings     domain.BookingRepository
	PollInterval time.Duration

	// AssistantProviders replaces the configured provider chain when set.
	AssistantProviders []assistant.Provider
}

// eventChatDeps creates the dependency struct for the eventchat module.
func eventChatDeps(deps Dependencies) eventchat.Dependencies {
	return eventchat.Dependencies{
		Messages:     deps.Messages,
		Rooms:        deps.Rooms,
		Publisher:    deps.Publisher,
		PollInterval: deps.PollInterval,
	}
}

// assistantDeps creates the dependency struct for the assistant module.
func assistantDeps(deps Dependencies) assistant.Dependencies {
	return assistant.Dependencies{Providers: deps.AssistantProviders}
}

// bookingDeps creates the dependency struct for the booking module.
func bookingDeps(deps Dependencies) booking.Dependencies {
	return booking.Dependencies{Bookings: deps.Bookings}
}
