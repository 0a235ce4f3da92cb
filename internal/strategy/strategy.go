package strategy

import (
	"github.com/Remmy-coder/load-balancer/internal/backend"
)

// Strategy picks the backend for the next incoming connection. Backends
// are passed in pool order. Implementations skip backends that are in
// maintenance and return nil when none are available.
type Strategy interface {
	SelectBackend(backends []*backend.Backend) *backend.Backend
}
