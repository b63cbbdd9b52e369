// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ufunda-bots/internal/common/config"
	"ufunda-bots/internal/common/logger"
)

// Server bundles the application HTTP server (webhook + status API) and the
// ops server (metrics + pprof) on their configured ports.
type Server struct {
	app    *http.Server
	ops    *http.Server
	logger logger.Logger
}

func New(cfg config.ServerConfig, webhook *WebhookHandler, api *API, log logger.Logger) *Server {
	appMux := http.NewServeMux()
	appMux.Handle(cfg.WebhookPath, webhook)
	api.Register(appMux)
	appMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	opsMux := http.NewServeMux()
	opsMux.Handle("/metrics", promhttp.Handler())
	opsMux.HandleFunc("/debug/pprof/", pprof.Index)
	opsMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	opsMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	opsMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	opsMux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return &Server{
		app: &http.Server{
			Addr:         cfg.ListenAddr(),
			Handler:      appMux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		ops: &http.Server{
			Addr:    cfg.OpsAddr(),
			Handler: opsMux,
		},
		logger: log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Start launches both listeners. Listener failures after startup are logged,
// not fatal; the caller owns process lifecycle.
func (s *Server) Start() {
	go func() {
		s.logger.Info("application server listening", map[string]interface{}{"addr": s.app.Addr})
		if err := s.app.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("application server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
	go func() {
		s.logger.Info("ops server listening", map[string]interface{}{"addr": s.ops.Addr})
		if err := s.ops.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("ops server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
}

// Shutdown drains both listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.Shutdown(ctx); err != nil {
		return err
	}
	return s.ops.Shutdown(ctx)
}
