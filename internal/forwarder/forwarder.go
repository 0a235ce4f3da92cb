package forwarder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/Remmy-coder/load-balancer/internal/backend"
	"github.com/Remmy-coder/load-balancer/internal/metrics"
)

const bufferSize = 32 * 1024

// Relay direction labels. "in" carries client bytes to the backend,
// "out" carries backend bytes to the client.
const (
	directionIn  = "in"
	directionOut = "out"
)

// Forwarder proxies accepted client connections to their assigned
// backend. It owns both sockets for the lifetime of the connection and
// keeps the backend's counters balanced on every exit path.
type Forwarder struct {
	logger      *slog.Logger
	dialTimeout time.Duration
	bufferPool  *sync.Pool
}

func New(logger *slog.Logger, dialTimeout time.Duration) *Forwarder {
	return &Forwarder{
		logger:      logger,
		dialTimeout: dialTimeout,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return make([]byte, bufferSize)
			},
		},
	}
}

// Handle assigns the client connection to the chosen backend, dials it,
// and relays bytes in both directions until each side has closed. It
// blocks until both relay directions have finished.
//
// The connection id is taken before dialing, so a failed dial still
// counts toward the backend's lifetime total. The active connection is
// released exactly once whether the dial fails or the relay completes.
func (f *Forwarder) Handle(ctx context.Context, clientConn net.Conn, b *backend.Backend) error {
	defer clientConn.Close()

	backendAddr := b.Address()
	connID := b.Assign()
	metrics.ConnectionsTotal.WithLabelValues(backendAddr).Inc()
	metrics.ConnectionsCurrent.WithLabelValues(backendAddr).Inc()

	release := func() {
		if !b.Release() {
			f.logger.Warn("Release without a matching assignment",
				slog.Uint64("conn_id", connID),
				slog.String("backend", backendAddr),
			)
			return
		}
		metrics.ConnectionsCurrent.WithLabelValues(backendAddr).Dec()
	}

	f.logger.Info("Forwarding connection",
		slog.Uint64("conn_id", connID),
		slog.String("client", clientConn.RemoteAddr().String()),
		slog.String("backend", backendAddr),
	)

	start := time.Now()

	dialer := &net.Dialer{Timeout: f.dialTimeout}
	backendConn, err := dialer.DialContext(ctx, "tcp", backendAddr)
	if err != nil {
		f.logger.Error("Failed to connect to backend",
			slog.Uint64("conn_id", connID),
			slog.String("backend", backendAddr),
			slog.String("error", err.Error()),
		)
		metrics.BackendDialFailuresTotal.WithLabelValues(backendAddr).Inc()
		release()
		return fmt.Errorf("connect to backend %s: %w", backendAddr, err)
	}
	defer backendConn.Close()

	f.logger.Debug("Connection established",
		slog.Uint64("conn_id", connID),
		slog.String("backend", backendAddr),
	)

	// Each direction drains to its own EOF. Neither relay closes or
	// signals the other, so a half-closed peer keeps its remaining
	// direction flowing until the other end closes too.
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		f.relay(backendConn, clientConn, connID, backendAddr, directionIn)
	}()

	go func() {
		defer wg.Done()
		f.relay(clientConn, backendConn, connID, backendAddr, directionOut)
	}()

	wg.Wait()

	duration := time.Since(start)
	release()

	metrics.ConnectionDuration.WithLabelValues(backendAddr).Observe(duration.Seconds())
	f.logger.Info("Connection completed",
		slog.Uint64("conn_id", connID),
		slog.String("backend", backendAddr),
		slog.Duration("duration", duration),
	)

	return nil
}

// relay copies bytes from src to dst until src reaches EOF or either
// side fails. Relay errors end the direction and are logged at debug,
// matching the byte count that made it through.
func (f *Forwarder) relay(dst, src net.Conn, connID uint64, backendAddr, direction string) {
	buf := f.bufferPool.Get().([]byte)
	defer f.bufferPool.Put(buf)

	n, err := io.CopyBuffer(dst, src, buf)
	metrics.BytesTransferred.WithLabelValues(direction).Add(float64(n))

	if err != nil {
		f.logger.Debug("Relay ended with error",
			slog.Uint64("conn_id", connID),
			slog.String("backend", backendAddr),
			slog.String("direction", direction),
			slog.Int64("bytes", n),
			slog.String("error", err.Error()),
		)
		return
	}

	f.logger.Debug("Relay finished",
		slog.Uint64("conn_id", connID),
		slog.String("backend", backendAddr),
		slog.String("direction", direction),
		slog.Int64("bytes", n),
	)
}
