package strategy

import (
	"math/rand"

	"github.com/Remmy-coder/load-balancer/internal/backend"
)

type randomStrategy struct{}

func (r *randomStrategy) SelectBackend(backends []*backend.Backend) *backend.Backend {
	available := make([]*backend.Backend, 0, len(backends))
	for _, candidate := range backends {
		if !candidate.InMaintenance() {
			available = append(available, candidate)
		}
	}

	if len(available) == 0 {
		return nil
	}

	return available[rand.Intn(len(available))]
}

func NewRandomStrategy() Strategy {
	return &randomStrategy{}
}
