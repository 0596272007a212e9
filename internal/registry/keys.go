package registry

import (
	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/pubsub"
	"github.com/nfrund/eventhub/internal/storage"
)

// Service keys for dependency injection. Using constants prevents typos.
const (
	// Core services, set by the server before modules register.
	PublisherKey  Key[pubsub.Publisher]   = "core.publisher"
	SubscriberKey Key[pubsub.Subscriber]  = "core.subscriber"
	FilesKey      Key[storage.Store]      = "core.files"
	EmailerKey    Key[domain.EmailSender] = "core.emailer"

	// RoomsKey is registered by the eventchat module.
	RoomsKey Key[domain.RoomRepository] = "eventchat.rooms"
)
