package strategy

import (
	"sync"

	"github.com/Remmy-coder/load-balancer/internal/backend"
)

type roundRobinStrategy struct {
	mutex   sync.Mutex
	current int
}

func (rr *roundRobinStrategy) SelectBackend(backends []*backend.Backend) *backend.Backend {
	n := len(backends)
	if n == 0 {
		return nil
	}

	rr.mutex.Lock()
	defer rr.mutex.Unlock()

	if rr.current >= n {
		rr.current = 0
	}

	// A backend skipped for maintenance still consumes its rotation slot.
	for i := 0; i < n; i++ {
		candidate := backends[rr.current]
		rr.current = (rr.current + 1) % n

		if !candidate.InMaintenance() {
			return candidate
		}
	}

	return nil
}

func NewRoundRobinStrategy() Strategy {
	return &roundRobinStrategy{}
}
