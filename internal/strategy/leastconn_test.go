package strategy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Remmy-coder/load-balancer/internal/backend"
	"github.com/Remmy-coder/load-balancer/internal/strategy"
)

var _ = Describe("Leastconn", func() {
	var (
		strat    strategy.Strategy
		backends []*backend.Backend
	)

	BeforeEach(func() {
		strat = strategy.NewLeastConnStrategy()
		backends = makeBackends("127.0.0.1:8081", "127.0.0.1:8082", "127.0.0.1:8083")
	})

	Describe("SelectBackend", func() {
		It("should select the backend with fewest connections", func() {
			backends[0].Assign()
			backends[0].Assign()
			backends[1].Assign()

			selected := strat.SelectBackend(backends)
			Expect(selected).To(Equal(backends[2]))
		})

		It("should select the earliest backend on ties", func() {
			backends[0].Assign()

			// backends[1] and backends[2] are tied at zero.
			selected := strat.SelectBackend(backends)
			Expect(selected).To(Equal(backends[1]))
		})

		It("should select the first backend when all are idle", func() {
			selected := strat.SelectBackend(backends)
			Expect(selected).To(Equal(backends[0]))
		})

		It("should skip backends in maintenance even when idle", func() {
			backends[0].SetMaintenance(true)
			backends[1].Assign()
			backends[2].Assign()
			backends[2].Assign()

			selected := strat.SelectBackend(backends)
			Expect(selected).To(Equal(backends[1]))
		})

		It("should track released connections", func() {
			backends[0].Assign()
			backends[1].Assign()
			backends[1].Assign()
			backends[1].Release()
			backends[1].Release()

			selected := strat.SelectBackend(backends)
			Expect(selected).To(Equal(backends[1]))
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
})
