package tcpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/Remmy-coder/load-balancer/internal/metrics"
)

// ConnHandler serves one accepted client connection and blocks until the
// connection is finished. Implementations own the connection and must
// close it.
type ConnHandler interface {
	HandleConn(ctx context.Context, conn net.Conn)
}

// Server accepts TCP connections and dispatches each one to the handler
// in its own goroutine. Accept errors are logged and skipped; the accept
// loop only stops when the listener is closed.
type Server struct {
	addr    string
	logger  *slog.Logger
	handler ConnHandler

	mutex     sync.Mutex
	listener  net.Listener
	wg        sync.WaitGroup
	connCount uint64
}

// New creates a TCP server for the given listen address.
// The address is validated before the server is created.
func New(addr string, handler ConnHandler, logger *slog.Logger) (*Server, error) {
	if err := validateHostPort(addr); err != nil {
		return nil, err
	}

	return &Server{
		addr:    addr,
		logger:  logger,
		handler: handler,
	}, nil
}

// Start listens on the configured address and accepts connections until
// the listener is closed. Each accepted connection runs in its own
// goroutine; a slow or stuck connection never blocks the accept loop.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	s.listener = ln
	s.mutex.Unlock()

	s.logger.Info("Server listening", slog.String("address", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			s.logger.Warn("Failed to accept connection", slog.String("error", err.Error()))
			metrics.AcceptErrorsTotal.Inc()
			continue
		}

		seq := atomic.AddUint64(&s.connCount, 1)
		s.logger.Info("Connection received",
			slog.Uint64("conn_seq", seq),
			slog.String("client", conn.RemoteAddr().String()))

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handler.HandleConn(ctx, conn)
		}()
	}
}

// Shutdown closes the listener and waits up to 5 seconds for in-flight
// connections to finish. Connections are never force-closed; ones that
// outlive the timeout are reported through the returned error.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s.mutex.Lock()
	ln := s.listener
	s.mutex.Unlock()

	if ln != nil {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownCtx.Done():
		return shutdownCtx.Err()
	}
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cant be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}
