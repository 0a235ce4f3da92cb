package strategy

import (
	"math"

	"github.com/Remmy-coder/load-balancer/internal/backend"
)

type leastConnStrategy struct {
}

func (l *leastConnStrategy) SelectBackend(backends []*backend.Backend) *backend.Backend {
	var bestBackend *backend.Backend
	bestConns := math.MaxInt32

	// Strict less-than keeps the earliest backend on ties.
	for _, candidate := range backends {
		if candidate.InMaintenance() {
			continue
		}

		activeConns := candidate.ActiveConnections()
		if activeConns < bestConns {
			bestConns = activeConns
			bestBackend = candidate
		}
	}

	return bestBackend
}

func NewLeastConnStrategy() Strategy {
	return &leastConnStrategy{}
}
