package app

import (
	"github.com/nfrund/eventhub/internal/module"
	"github.com/nfrund/eventhub/internal/modules/assistant"
	"github.com/nfrund/eventhub/internal/modules/booking"
	"github.com/nfrund/eventhub/internal/modules/eventchat"
)

// NewModules creates and returns the list of all active modules for the application.
// This is the single source of truth for which features are enabled.
// eventchat registers the room store that booking boots against, so it
// comes first.
func NewModules(deps Dependencies) []module.Module {
	return []module.Module{
		eventchat.New(eventChatDeps(deps)),
		booking.New(bookingDeps(deps)),
		assistant.New(assistantDeps(deps)),
	}
}
