package eventchat

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/middleware"
	"github.com/nfrund/eventhub/internal/module"
	"github.com/nfrund/eventhub/internal/pubsub"
	"github.com/nfrund/eventhub/internal/registry"
)

// EventChatModule implements the module.Module interface for event chat rooms.
type EventChatModule struct {
	module.BaseModule
	messages     domain.MessageRepository
	rooms        domain.RoomRepository
	publisher    pubsub.Publisher
	pollInterval time.Duration
}

// Dependencies holds all the services that the EventChatModule requires to operate.
type Dependencies struct {
	Messages     domain.MessageRepository
	Rooms        domain.RoomRepository
	Publisher    pubsub.Publisher
	PollInterval time.Duration
}

// New creates a new instance of the EventChatModule, injecting its dependencies.
func New(deps Dependencies) *EventChatModule {
	return &EventChatModule{
		messages:     deps.Messages,
		rooms:        deps.Rooms,
		publisher:    deps.Publisher,
		pollInterval: deps.PollInterval,
	}
}

// Name returns the module name.
func (m *EventChatModule) Name() string {
	return "eventchat"
}

// Prefix mounts the module below one event.
func (m *EventChatModule) Prefix() string {
	return "/app/events/:eventID/chat"
}

// Register shares the room store so other modules can add participants.
func (m *EventChatModule) Register(reg *registry.Registry) error {
	registry.Set(reg, registry.RoomsKey, m.rooms)
	return nil
}

// Boot sets up the routes for the chat module.
func (m *EventChatModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	slog.Info("Booting EventChatModule: Setting up routes...")
	var origins []string
	if cfg := reg.Config(); cfg != nil {
		origins = originPatterns(cfg.GetAppBaseURL())
	}
	handler := NewHandler(NewService(m.messages, m.rooms, m.publisher), m.pollInterval, origins...)
	routes(g, handler)
	return nil
}

func routes(g *echo.Group, handler *Handler) {
	g.Use(middleware.RequireAuth)
	g.GET("", handler.Page)
	g.POST("", handler.CreateRoom)
	g.POST("/join", handler.Join)
	g.GET("/messages", handler.Messages)
	g.POST("/messages", handler.PostMessage)
	g.POST("/messages/:messageID/upvote", handler.Upvote)
	g.POST("/pins/:messageID", handler.Pin)
	g.DELETE("/pins/:messageID", handler.Unpin)
	g.GET("/notifications", handler.Notifications)
	g.GET("/ws", handler.ServeWS)
}
