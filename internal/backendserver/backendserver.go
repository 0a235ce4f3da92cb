package backendserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/Remmy-coder/load-balancer/internal/tcpserver"
)

// Handler answers every connection with a fixed HTTP response naming the
// backend, then closes. It never reads the request, so it works with any
// client that writes first or not at all.
type Handler struct {
	logger   *slog.Logger
	name     string
	response []byte
}

func NewHandler(addr string, logger *slog.Logger) *Handler {
	name := backendName(addr)
	body := fmt.Sprintf("Response from backend %s\n", name)

	return &Handler{
		logger: logger,
		name:   name,
		response: []byte(fmt.Sprintf(
			"HTTP/1.1 200 OK\r\nContent-Length: %d\r\nContent-Type: text/plain\r\n\r\n%s",
			len(body), body,
		)),
	}
}

func (h *Handler) HandleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if _, err := conn.Write(h.response); err != nil {
		h.logger.Warn("Demo backend failed to write response",
			slog.String("backend", h.name),
			slog.String("client", conn.RemoteAddr().String()),
			slog.String("error", err.Error()))
		return
	}

	h.logger.Debug("Demo backend responded",
		slog.String("backend", h.name),
		slog.String("client", conn.RemoteAddr().String()))
}

// New builds a demo backend server listening on addr.
func New(addr string, logger *slog.Logger) (*tcpserver.Server, error) {
	return tcpserver.New(addr, NewHandler(addr, logger), logger)
}

// backendName is the port when the address parses, mirroring how the
// demo backends identify themselves in responses.
func backendName(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil && port != "" {
		return port
	}
	return addr
}
