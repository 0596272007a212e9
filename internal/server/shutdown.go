package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Shutdown stops accepting requests, stops the modules in reverse boot
// order, closes the bus and finally the database.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if err := s.E.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}

	if s.cancelModules != nil {
		s.cancelModules()
	}
	for i := len(s.modules) - 1; i >= 0; i-- {
		m := s.modules[i]
		if err := m.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("module %s: %w", m.Name(), err))
		}
	}

	if err := s.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("publisher: %w", err))
	}
	if any(s.subscriber) != any(s.publisher) {
		if err := s.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("subscriber: %w", err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		slog.Error("Shutdown finished with errors", "error", err)
	} else {
		slog.Info("Shutdown complete")
	}
	return err
}
