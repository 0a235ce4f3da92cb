// Backend is a standalone stub backend used for load balancer testing.
// It accepts TCP connections and answers each with a small HTTP response
// naming its own port, without reading anything the client sent.
//
// Usage:
//
//	go run ./scripts/backend -port 8081
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Remmy-coder/load-balancer/internal/backendserver"
	"github.com/Remmy-coder/load-balancer/pkg/logger"
)

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	flag.Parse()

	log := logger.New("info", false, "dev")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := backendserver.New(fmt.Sprintf(":%d", *port), log)
	if err != nil {
		log.Error("Failed to create backend server", slog.Any("err", err))
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-errCh:
		if err != nil {
			log.Error("Backend server failed", slog.Any("err", err))
			os.Exit(1)
		}
	}
}
