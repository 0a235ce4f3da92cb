package loadbalancer

import (
	"sync"

	"github.com/Remmy-coder/load-balancer/internal/backend"
	"github.com/Remmy-coder/load-balancer/internal/strategy"
)

// LoadBalancer owns the fixed, ordered backend pool and the selection
// strategy. Selections are serialized under one mutex so stateful
// strategies see a single caller at a time.
type LoadBalancer struct {
	backends []*backend.Backend
	strategy strategy.Strategy
	mutex    sync.Mutex
}

func NewLoadBalancer(strat strategy.Strategy, backends []*backend.Backend) *LoadBalancer {
	return &LoadBalancer{
		backends: backends,
		strategy: strat,
	}
}

// NextBackend picks the backend for the next connection, or nil when the
// pool is empty or every backend is in maintenance. Counters are not
// touched here; the caller assigns the connection to the chosen backend.
func (lb *LoadBalancer) NextBackend() *backend.Backend {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()

	return lb.strategy.SelectBackend(lb.backends)
}

// Backends returns the pool in its configured order. The slice is fixed
// after construction and must not be modified by callers.
func (lb *LoadBalancer) Backends() []*backend.Backend {
	return lb.backends
}

// Lookup finds a backend by its host:port address.
func (lb *LoadBalancer) Lookup(address string) (*backend.Backend, bool) {
	for _, b := range lb.backends {
		if b.Address() == address {
			return b, true
		}
	}
	return nil, false
}

// Snapshots returns a copy of every backend's counters, in pool order.
func (lb *LoadBalancer) Snapshots() []backend.Stats {
	stats := make([]backend.Stats, 0, len(lb.backends))
	for _, b := range lb.backends {
		stats = append(stats, b.Snapshot())
	}
	return stats
}
