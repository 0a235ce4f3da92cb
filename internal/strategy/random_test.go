package strategy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Remmy-coder/load-balancer/internal/backend"
	"github.com/Remmy-coder/load-balancer/internal/strategy"
)

var _ = Describe("Random", func() {
	var (
		strat    strategy.Strategy
		backends []*backend.Backend
	)

	BeforeEach(func() {
		strat = strategy.NewRandomStrategy()
		backends = makeBackends("127.0.0.1:8081", "127.0.0.1:8082", "127.0.0.1:8083")
	})

	It("should select a backend", func() {
		selected := strat.SelectBackend(backends)
		Expect(selected).NotTo(BeNil())
		Expect(backends).To(ContainElement(selected))
	})

	It("should distribute across backends over multiple calls", func() {
		backendSet := make(map[*backend.Backend]bool)

		for i := 0; i < 100; i++ {
			selected := strat.SelectBackend(backends)
			backendSet[selected] = true
		}

		Expect(len(backendSet)).To(BeNumerically(">=", 2))
	})

	It("should never select a backend in maintenance", func() {
		backends[1].SetMaintenance(true)

		for i := 0; i < 100; i++ {
			selected := strat.SelectBackend(backends)
			Expect(selected).NotTo(Equal(backends[1]))
		}
	})

	It("should return nil when all backends are in maintenance", func() {
		for _, b := range backends {
			b.SetMaintenance(true)
		}
		Expect(strat.SelectBackend(backends)).To(BeNil())
	})

	It("should return nil for an empty backend list", func() {
		Expect(strat.SelectBackend([]*backend.Backend{})).To(BeNil())
	})
})
