package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/eventhub/internal/module"
	"github.com/nfrund/eventhub/internal/registry"
)

// registerCoreServices shares the server's services with the modules.
func (s *Server) registerCoreServices(reg *registry.Registry) {
	registry.Set(reg, registry.PublisherKey, s.publisher)
	registry.Set(reg, registry.SubscriberKey, s.subscriber)
	registry.Set(reg, registry.EmailerKey, s.Emailer)
	if s.files != nil {
		registry.Set(reg, registry.FilesKey, s.files)
	}
}

// InitModules runs the two-phase module lifecycle: every module registers
// its services first, then every module boots on its own route group.
// Background work started during Boot lives until Shutdown.
func (s *Server) InitModules(ctx context.Context, modules []module.Module, reg *registry.Registry) error {
	s.registerCoreServices(reg)

	for _, m := range modules {
		if err := m.Register(reg); err != nil {
			return fmt.Errorf("register module %s: %w", m.Name(), err)
		}
		slog.Debug("Module registered", "module", m.Name())
	}

	moduleCtx, cancel := context.WithCancel(ctx)
	s.cancelModules = cancel

	for _, m := range modules {
		prefix := "/app/" + m.Name()
		if mounted, ok := m.(module.Mounted); ok {
			prefix = mounted.Prefix()
		}
		if err := m.Boot(moduleCtx, s.E.Group(prefix), reg); err != nil {
			cancel()
			return fmt.Errorf("boot module %s: %w", m.Name(), err)
		}
		s.modules = append(s.modules, m)
		slog.Info("Module booted", "module", m.Name(), "prefix", prefix)
	}
	return nil
}
