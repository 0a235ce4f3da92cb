package healthcheck

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/Remmy-coder/load-balancer/internal/backend"
	"github.com/Remmy-coder/load-balancer/internal/metrics"
)

// HealthCheck periodically probes a backend with a TCP dial and drives
// its maintenance flag from the result. A failed dial withdraws the
// backend from service; a successful one returns it. Transitions are
// logged once, not on every probe.
func HealthCheck(
	ctx context.Context,
	b *backend.Backend,
	interval time.Duration,
	timeout time.Duration,
	logger *slog.Logger,
) {
	dialer := &net.Dialer{Timeout: timeout}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Health check stopped",
				slog.String("backend", b.Address()))
			return

		case <-ticker.C:
			conn, err := dialer.DialContext(ctx, "tcp", b.Address())
			if err != nil {
				if b.SetMaintenance(true) {
					metrics.BackendMaintenance.WithLabelValues(b.Address()).Set(1)
					logger.Warn("Backend is down, withdrawing from service",
						slog.String("backend", b.Address()),
						slog.String("error", err.Error()))
				}
				continue
			}
			conn.Close()

			if b.SetMaintenance(false) {
				metrics.BackendMaintenance.WithLabelValues(b.Address()).Set(0)
				logger.Info("Backend is back up, returning to service",
					slog.String("backend", b.Address()))
			}
		}
	}
}
