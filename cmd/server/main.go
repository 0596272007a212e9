package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/nfrund/eventhub/internal/app"
	"github.com/nfrund/eventhub/internal/config"
	"github.com/nfrund/eventhub/internal/database"
	"github.com/nfrund/eventhub/internal/email"
	"github.com/nfrund/eventhub/internal/logging"
	"github.com/nfrund/eventhub/internal/pubsub"
	"github.com/nfrund/eventhub/internal/registry"
	"github.com/nfrund/eventhub/internal/server"
	"github.com/nfrund/eventhub/internal/storage"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.New()
	logging.New()

	conn := database.NewConnection(cfg)
	if err := conn.Connect(ctx); err != nil {
		return err
	}
	conn.StartMonitoring()

	stores, err := newStores(ctx, conn, cfg)
	if err != nil {
		conn.Close(ctx)
		return err
	}

	emailer, err := email.NewEmailService(cfg)
	if err != nil {
		conn.Close(ctx)
		return err
	}

	files, err := storage.NewDiskStore(cfg.GetStorageDir())
	if err != nil {
		conn.Close(ctx)
		return err
	}

	bus := pubsub.NewWatermillBridge()

	s, err := server.New(server.Dependencies{
		Config:     cfg,
		Users:      stores.users,
		Emailer:    emailer,
		Publisher:  bus,
		Subscriber: bus,
		Files:      files,
		DB:         conn,
	})
	if err != nil {
		return err
	}
	s.RegisterRoutes()

	modules := app.NewModules(app.Dependencies{
		Publisher:    bus,
		Messages:     stores.messages,
		Rooms:        stores.rooms,
		Bookings:     stores.bookings,
		PollInterval: cfg.GetChatPollInterval(),
	})
	if err := s.InitModules(ctx, modules, registry.New(cfg)); err != nil {
		return err
	}

	return s.Start(ctx)
}

type stores struct {
	users    *database.UserStore
	messages *database.MessageStore
	rooms    *database.RoomStore
	bookings *database.BookingStore
}

// newStores applies the schema and opens one store per table.
func newStores(ctx context.Context, conn *database.Connection, cfg config.Provider) (*stores, error) {
	schemaClient, err := database.NewClient[any](conn, cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, schemaClient); err != nil {
		return nil, err
	}

	var s stores
	if s.users, err = database.NewUserStore(conn, cfg); err != nil {
		return nil, err
	}
	if s.messages, err = database.NewMessageStore(conn, cfg); err != nil {
		return nil, err
	}
	if s.rooms, err = database.NewRoomStore(conn, cfg); err != nil {
		return nil, err
	}
	if s.bookings, err = database.NewBookingStore(conn, cfg); err != nil {
		return nil, err
	}
	return &s, nil
}
