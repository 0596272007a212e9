package module

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/registry"
)

// Module is one feature of the server (chat rooms, bookings, the assistant).
// The kernel calls Register on every module before it boots any of them, so
// Boot may rely on services other modules registered.
type Module interface {
	Name() string
	Register(reg *registry.Registry) error
	// Boot mounts routes on router. ctx is cancelled at shutdown.
	Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error
	Shutdown(ctx context.Context) error
}

// Mounted is implemented by modules that choose their own route prefix.
// Modules without it are mounted under /app/<name>.
type Mounted interface {
	Prefix() string
}

// BaseModule gives a module no-op lifecycle hooks.
type BaseModule struct{}

func (BaseModule) Register(*registry.Registry) error                          { return nil }
func (BaseModule) Boot(context.Context, *echo.Group, *registry.Registry) error { return nil }
func (BaseModule) Shutdown(context.Context) error                             { return nil }
