package booking

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/module"
	"github.com/nfrund/eventhub/internal/registry"
)

// BookingModule implements the module.Module interface for ticket bookings.
type BookingModule struct {
	module.BaseModule
	bookings domain.BookingRepository
}

// Dependencies holds all the services that the BookingModule requires.
// Shared services (rooms, files, bus, emailer) come from the registry.
type Dependencies struct {
	Bookings domain.BookingRepository
}

// New creates a new instance of the BookingModule.
func New(deps Dependencies) *BookingModule {
	return &BookingModule{bookings: deps.Bookings}
}

// Name returns the module name.
func (m *BookingModule) Name() string {
	return "booking"
}

// Prefix mounts the module at the root; it owns both API and public routes.
func (m *BookingModule) Prefix() string {
	return ""
}

// Boot starts the confirmation mailer and sets up the routes.
func (m *BookingModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	files := registry.MustGet(reg, registry.FilesKey)

	mailer := NewMailer(
		registry.MustGet(reg, registry.SubscriberKey),
		registry.MustGet(reg, registry.EmailerKey),
		files,
	)
	if err := mailer.Start(ctx); err != nil {
		return err
	}

	slog.Info("Booting BookingModule: Setting up routes...")
	service := NewService(
		m.bookings,
		registry.MustGet(reg, registry.RoomsKey),
		files,
		registry.MustGet(reg, registry.PublisherKey),
		reg.Config().GetAppBaseURL(),
	)
	handler := NewHandler(service)

	g.POST("/api/bookings/confirm", handler.Confirm)
	g.GET("/api/bookings/:code/qr", handler.QRCode)
	g.GET("/verify/:code", handler.Verify)
	return nil
}
