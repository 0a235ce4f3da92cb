package strategy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Remmy-coder/load-balancer/internal/strategy"
)

var _ = Describe("Table-Driven Strategy Tests", func() {
	DescribeTable("All strategies can be instantiated",
		func(createStrat func() strategy.Strategy) {
			strat := createStrat()
			Expect(strat).NotTo(BeNil())
		},
		Entry("Round Robin", func() strategy.Strategy { return strategy.NewRoundRobinStrategy() }),
		Entry("Random", func() strategy.Strategy { return strategy.NewRandomStrategy() }),
		Entry("Least Connections", func() strategy.Strategy { return strategy.NewLeastConnStrategy() }),
	)

	DescribeTable("All strategies select a backend that is in service",
		func(createStrat func() strategy.Strategy) {
			strat := createStrat()
			backends := makeBackends("127.0.0.1:8081", "127.0.0.1:8082", "127.0.0.1:8083")

			selected := strat.SelectBackend(backends)
			Expect(selected).NotTo(BeNil())
			Expect(backends).To(ContainElement(selected))
		},
		Entry("Round Robin", func() strategy.Strategy { return strategy.NewRoundRobinStrategy() }),
		Entry("Random", func() strategy.Strategy { return strategy.NewRandomStrategy() }),
		Entry("Least Connections", func() strategy.Strategy { return strategy.NewLeastConnStrategy() }),
	)

	DescribeTable("All strategies skip backends in maintenance",
		func(createStrat func() strategy.Strategy) {
			strat := createStrat()
			backends := makeBackends("127.0.0.1:8081", "127.0.0.1:8082")
			backends[0].SetMaintenance(true)

			for i := 0; i < 20; i++ {
				Expect(strat.SelectBackend(backends)).To(Equal(backends[1]))
			}
		},
		Entry("Round Robin", func() strategy.Strategy { return strategy.NewRoundRobinStrategy() }),
		Entry("Random", func() strategy.Strategy { return strategy.NewRandomStrategy() }),
		Entry("Least Connections", func() strategy.Strategy { return strategy.NewLeastConnStrategy() }),
	)

	DescribeTable("All strategies return nil when nothing is selectable",
		func(createStrat func() strategy.Strategy) {
			strat := createStrat()

			Expect(strat.SelectBackend(nil)).To(BeNil())

			backends := makeBackends("127.0.0.1:8081", "127.0.0.1:8082")
			for _, b := range backends {
				b.SetMaintenance(true)
			}
			Expect(strat.SelectBackend(backends)).To(BeNil())
		},
		Entry("Round Robin", func() strategy.Strategy { return strategy.NewRoundRobinStrategy() }),
		Entry("Random", func() strategy.Strategy { return strategy.NewRandomStrategy() }),
		Entry("Least Connections", func() strategy.Strategy { return strategy.NewLeastConnStrategy() }),
	)
})
