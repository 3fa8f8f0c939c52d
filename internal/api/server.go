package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/FairForge/sentinel/internal/alerting"
	"github.com/FairForge/sentinel/internal/category"
	"github.com/FairForge/sentinel/internal/config"
	"github.com/FairForge/sentinel/internal/logging"
	"github.com/FairForge/sentinel/internal/metrics"
)

// Server exposes the pipeline to operators over HTTP
type Server struct {
	config     *config.Config
	logger     *zap.Logger
	pipeline   *logging.Logger
	bridge     *logging.Bridge
	patterns   *category.System
	alerts     *alerting.Engine
	metrics    *metrics.Metrics
	router     chi.Router
	httpServer *http.Server
	startTime  time.Time
}

// NewServer creates the API server
func NewServer(cfg *config.Config, logger *zap.Logger, pipeline *logging.Logger,
	bridge *logging.Bridge, patterns *category.System, alerts *alerting.Engine,
	m *metrics.Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:    cfg,
		logger:    logger,
		pipeline:  pipeline,
		bridge:    bridge,
		patterns:  patterns,
		alerts:    alerts,
		metrics:   m,
		router:    chi.NewRouter(),
		startTime: time.Now(),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.loggingMiddleware)

	s.router.Get("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/logs", s.handleIngestLog)
		r.Post("/console", s.handleForwardConsole)
		r.Get("/logs", s.handleGetLogs)
		r.Delete("/logs", s.handleClearLogs)
		r.Get("/logs/export", s.handleExportLogs)
		r.Get("/metrics/operations", s.handleGetOperationMetrics)

		r.Get("/patterns", s.handleGetPatterns)
		r.Post("/patterns/{id}/resolve", s.handleResolvePattern)
		r.Get("/insights", s.handleGetInsights)
		r.Get("/score", s.handleGetHealthScore)

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/rules", s.handleListRules)
			r.Post("/rules", s.handleAddRule)
			r.Get("/rules/{id}", s.handleGetRule)
			r.Patch("/rules/{id}", s.handleUpdateRule)
			r.Delete("/rules/{id}", s.handleRemoveRule)
			r.Get("/triggers", s.handleListTriggers)
			r.Post("/triggers/{id}/ack", s.handleAckTrigger)
			r.Get("/stats", s.handleAlertStats)
		})
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving. Blocks until the listener closes.
func (s *Server) Start() error {
	s.logger.Info("api server starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status": "healthy",
		"uptime": time.Since(s.startTime).Seconds(),
		"system": s.pipeline.GetSystemHealth(),
	}
	s.respondJSON(w, http.StatusOK, health)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("response encoding failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
