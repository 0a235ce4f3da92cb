package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/Remmy-coder/load-balancer/internal/forwarder"
	"github.com/Remmy-coder/load-balancer/internal/loadbalancer"
	"github.com/Remmy-coder/load-balancer/internal/metrics"
)

const unavailableBody = "Service Unavailable - No healthy backends\n"

// unavailableResponse is the fixed payload written to clients when no
// backend can take the connection. It is a complete HTTP response so
// that HTTP clients probing the balancer get a parseable answer even
// though the balancer itself is protocol agnostic.
var unavailableResponse = []byte(fmt.Sprintf(
	"HTTP/1.1 503 Service Unavailable\r\nContent-Length: %d\r\nContent-Type: text/plain\r\nConnection: close\r\n\r\n%s",
	len(unavailableBody), unavailableBody,
))

// ConnectionHandler dispatches accepted client connections: it asks the
// balancer for a backend and hands the connection to the forwarder, or
// turns the client away when the pool has nothing selectable.
type ConnectionHandler struct {
	logger    *slog.Logger
	balancer  *loadbalancer.LoadBalancer
	forwarder *forwarder.Forwarder
}

func NewConnectionHandler(logger *slog.Logger, lb *loadbalancer.LoadBalancer, fwd *forwarder.Forwarder) *ConnectionHandler {
	return &ConnectionHandler{
		logger:    logger,
		balancer:  lb,
		forwarder: fwd,
	}
}

// HandleConn serves one accepted client connection and blocks until it
// is finished. The connection is closed on every path.
func (h *ConnectionHandler) HandleConn(ctx context.Context, clientConn net.Conn) {
	chosen := h.balancer.NextBackend()
	if chosen == nil {
		h.rejectClient(clientConn)
		return
	}

	if err := h.forwarder.Handle(ctx, clientConn, chosen); err != nil {
		h.logger.Error("Error handling client connection",
			slog.String("backend", chosen.Address()),
			slog.String("error", err.Error()))
	}
}

// rejectClient answers with the fixed 503 response and closes the
// connection. No backend counters are touched on this path.
func (h *ConnectionHandler) rejectClient(clientConn net.Conn) {
	defer clientConn.Close()

	clientAddr := clientConn.RemoteAddr().String()
	h.logger.Error("No backend available", slog.String("client", clientAddr))
	metrics.RejectedConnectionsTotal.Inc()

	if _, err := clientConn.Write(unavailableResponse); err != nil {
		h.logger.Warn("Failed to send unavailable response",
			slog.String("client", clientAddr),
			slog.String("error", err.Error()))
	}
}
