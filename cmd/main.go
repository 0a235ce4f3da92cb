package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Remmy-coder/load-balancer/config"
	"github.com/Remmy-coder/load-balancer/internal/adminapi"
	"github.com/Remmy-coder/load-balancer/internal/backend"
	"github.com/Remmy-coder/load-balancer/internal/backendserver"
	"github.com/Remmy-coder/load-balancer/internal/forwarder"
	"github.com/Remmy-coder/load-balancer/internal/handler"
	"github.com/Remmy-coder/load-balancer/internal/healthcheck"
	"github.com/Remmy-coder/load-balancer/internal/loadbalancer"
	"github.com/Remmy-coder/load-balancer/internal/strategy"
	"github.com/Remmy-coder/load-balancer/internal/tcpserver"
	"github.com/Remmy-coder/load-balancer/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Demo.RunBackends {
		if err := startDemoBackends(ctx, cfg, log); err != nil {
			log.Error("Failed to start demo backends", slog.Any("err", err))
			os.Exit(1)
		}
	}

	backends, err := initializeBackends(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize backends", slog.Any("err", err))
		os.Exit(1)
	}

	strat, err := createStrategy(log, cfg.Strategy.Type)
	if err != nil {
		log.Error("Failed to create strategy",
			slog.String("strategy", cfg.Strategy.Type),
			slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Initializing load balancer",
		slog.Int("backends", len(backends)),
		slog.String("strategy", cfg.Strategy.Type))
	lb := loadbalancer.NewLoadBalancer(strat, backends)

	dialTimeout, err := time.ParseDuration(cfg.Forwarder.DialTimeout)
	if err != nil {
		log.Error("Failed to parse dial timeout", slog.Any("err", err))
		os.Exit(1)
	}

	connHandler := handler.NewConnectionHandler(log, lb, forwarder.New(log, dialTimeout))

	srv, err := tcpserver.New(cfg.Server.Address, connHandler, log)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	admin, err := adminapi.New(cfg.Admin.Address, cfg.Strategy.Type, lb, log)
	if err != nil {
		log.Error("Failed to create admin server", slog.Any("err", err))
		os.Exit(1)
	}

	statusInterval, err := time.ParseDuration(cfg.Status.Interval)
	if err != nil {
		log.Error("Failed to parse status interval", slog.Any("err", err))
		os.Exit(1)
	}
	go reportStatus(ctx, lb, statusInterval, log)

	srvErrCh := make(chan error, 2)

	go func() {
		srvErrCh <- srv.Start(ctx)
	}()

	go func() {
		srvErrCh <- admin.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
		if err := admin.Shutdown(context.Background()); err != nil {
			log.Error("Error during admin shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting load balancer", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func initializeBackends(ctx context.Context, cfg *config.Config, log *slog.Logger) ([]*backend.Backend, error) {
	var backends []*backend.Backend

	for _, bc := range cfg.Backends {
		log.Debug("Adding backend to pool", slog.String("backend", bc.Address))
		backends = append(backends, backend.New(bc.Address))
	}

	if len(backends) == 0 {
		return nil, os.ErrInvalid
	}

	if cfg.HealthCheck.Enabled {
		interval, err := time.ParseDuration(cfg.HealthCheck.Interval)
		if err != nil {
			return nil, err
		}

		timeout, err := time.ParseDuration(cfg.HealthCheck.Timeout)
		if err != nil {
			return nil, err
		}

		for _, b := range backends {
			go healthcheck.HealthCheck(ctx, b, interval, timeout, log)
		}
	}

	return backends, nil
}

func createStrategy(logger *slog.Logger, strategyType string) (strategy.Strategy, error) {
	switch strategyType {
	case config.StrategyRoundRobin:
		return strategy.NewRoundRobinStrategy(), nil
	case config.StrategyRandom:
		return strategy.NewRandomStrategy(), nil
	case config.StrategyLeastConn:
		return strategy.NewLeastConnStrategy(), nil
	default:
		logger.Warn("Unknown strategy, defaulting to round-robin", slog.String("requested", strategyType))
		return strategy.NewRoundRobinStrategy(), nil
	}
}

func startDemoBackends(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	for _, bc := range cfg.Backends {
		srv, err := backendserver.New(bc.Address, log)
		if err != nil {
			return err
		}

		go func(addr string) {
			if err := srv.Start(ctx); err != nil {
				log.Error("Demo backend stopped",
					slog.String("address", addr),
					slog.Any("err", err))
			}
		}(bc.Address)
	}

	return nil
}

func reportStatus(ctx context.Context, lb *loadbalancer.LoadBalancer, interval time.Duration, log *slog.Logger) {
	logStatus(lb, log)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logStatus(lb, log)
		}
	}
}

func logStatus(lb *loadbalancer.LoadBalancer, log *slog.Logger) {
	for i, stats := range lb.Snapshots() {
		log.Info("Backend status",
			slog.Int("index", i),
			slog.String("backend", stats.Address),
			slog.Int("active", stats.ActiveConnections),
			slog.Uint64("total", stats.TotalHandled),
			slog.Bool("maintenance", stats.Maintenance))
	}
}
