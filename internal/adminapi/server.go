package adminapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Remmy-coder/load-balancer/internal/loadbalancer"
	"github.com/Remmy-coder/load-balancer/internal/metrics"
)

// Server exposes the operational HTTP API: pool status, maintenance
// control, and the Prometheus metrics endpoint. It runs on its own
// listen address, separate from the TCP proxy.
type Server struct {
	logger   *slog.Logger
	balancer *loadbalancer.LoadBalancer
	strategy string
	server   *http.Server
}

type backendStatus struct {
	Address           string `json:"address"`
	ActiveConnections int    `json:"active_connections"`
	TotalHandled      uint64 `json:"total_handled"`
	Maintenance       bool   `json:"maintenance"`
}

// New creates the admin server for the given listen address.
// The address is validated before the server is created.
func New(addr string, strategyName string, lb *loadbalancer.LoadBalancer, logger *slog.Logger) (*Server, error) {
	if err := validateHostPort(addr); err != nil {
		return nil, err
	}

	s := &Server{
		logger:   logger,
		balancer: lb,
		strategy: strategyName,
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins serving the admin API.
// Returns an error unless the server is shut down cleanly.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the admin server with a 5-second timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Handler returns the admin API routes.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) setupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/status", s.handleStatus).Methods("GET")
	v1.HandleFunc("/backends/{address}/maintenance", s.handleSetMaintenance).Methods("PUT")

	return router
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snaps := s.balancer.Snapshots()

	backends := make([]backendStatus, 0, len(snaps))
	for _, snap := range snaps {
		backends = append(backends, backendStatus{
			Address:           snap.Address,
			ActiveConnections: snap.ActiveConnections,
			TotalHandled:      snap.TotalHandled,
			Maintenance:       snap.Maintenance,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"strategy": s.strategy,
		"backends": backends,
	})
}

func (s *Server) handleSetMaintenance(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	var req struct {
		Maintenance *bool `json:"maintenance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Maintenance == nil {
		s.writeError(w, http.StatusBadRequest, `Body must be {"maintenance": true|false}`)
		return
	}

	b, ok := s.balancer.Lookup(address)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Unknown backend")
		return
	}

	changed := b.SetMaintenance(*req.Maintenance)
	if changed {
		if *req.Maintenance {
			metrics.BackendMaintenance.WithLabelValues(address).Set(1)
			s.logger.Info("Backend placed in maintenance",
				slog.String("backend", address))
		} else {
			metrics.BackendMaintenance.WithLabelValues(address).Set(0)
			s.logger.Info("Backend returned to service",
				slog.String("backend", address))
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":     address,
		"maintenance": *req.Maintenance,
		"changed":     changed,
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("Admin API request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("client", r.RemoteAddr),
			slog.Duration("duration", time.Since(start)))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
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
