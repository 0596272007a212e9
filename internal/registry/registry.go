package registry

import (
	"fmt"
	"sync"

	"github.com/nfrund/eventhub/internal/config"
)

// Key names a shared service and fixes its type, e.g. Key[domain.RoomRepository]("eventchat.rooms").
type Key[T any] string

// Registry is where modules publish services for each other during Register
// and look them up during Boot. Safe for concurrent use.
type Registry struct {
	services sync.Map
	cfg      config.Provider
}

func New(cfg config.Provider) *Registry {
	return &Registry{cfg: cfg}
}

// Config is the application configuration the registry was built with.
func (r *Registry) Config() config.Provider {
	return r.cfg
}

// Set stores value under key, replacing any earlier value.
func Set[T any](r *Registry, key Key[T], value T) {
	r.services.Store(string(key), value)
}

// Get looks key up. It reports false when nothing of type T is stored there.
func Get[T any](r *Registry, key Key[T]) (T, bool) {
	if val, ok := r.services.Load(string(key)); ok {
		if v, ok := val.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// MustGet is Get for services a module cannot boot without.
func MustGet[T any](r *Registry, key Key[T]) T {
	v, ok := Get(r, key)
	if !ok {
		panic(fmt.Sprintf("registry: no service under %q", string(key)))
	}
	return v
}
