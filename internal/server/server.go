// Package server exposes the progression engine to the companion app over a
// local HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lifequest/engine/internal/engine"
	"github.com/lifequest/engine/internal/logger"
	"github.com/lifequest/engine/internal/metrics"
	"github.com/lifequest/engine/internal/sse"
)

// Pinger reports whether the persistence layer is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	httpServer *http.Server
	engine     *engine.Engine
}

// NewServer wires the engine behind a chi router. A nil hub disables the
// companion event stream.
func NewServer(port int, eng *engine.Engine, pinger Pinger, hub *sse.Hub) *Server {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	r.Use(SecurityHeadersMiddleware())
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handleHealthz())
	r.Get("/readyz", handleReadyz(pinger))

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/player", handleGetPlayer(eng))
		r.Get("/companion", handleGetCompanion(eng))
		r.Get("/activity", handleGetActivity(eng))

		r.Route("/quests", func(r chi.Router) {
			r.Get("/", handleListQuests(eng))
			r.Post("/", handleAddQuest(eng))
			r.Delete("/{id}", handleRemoveQuest(eng))
			r.Post("/{id}/complete", handleCompleteQuest(eng))
			r.Post("/{id}/progress", handleSetProgress(eng))
		})

		r.Route("/undo", func(r chi.Router) {
			r.Get("/", handleGetUndo(eng))
			r.Post("/", handleUndo(eng))
		})

		r.Route("/bosses", func(r chi.Router) {
			r.Get("/", handleListBosses(eng))
			r.Post("/", handleAddBoss(eng))
			r.Post("/{id}/tasks/{taskID}/complete", handleCompleteMicroTask(eng))
			r.Post("/{id}/goal", handleUpdateGoal(eng))
		})

		r.Route("/loot", func(r chi.Router) {
			r.Get("/", handleListLoot(eng))
			r.Post("/{id}/open", handleOpenLoot(eng))
		})

		r.Route("/penalties", func(r chi.Router) {
			r.Get("/", handleListPenalties(eng))
			r.Post("/{id}/complete", handleCompletePenalty(eng))
		})

		r.Route("/dungeon", func(r chi.Router) {
			r.Get("/", handleGetDungeon(eng))
			r.Post("/start", handleStartDungeon(eng))
			r.Post("/complete", handleCompleteDungeon(eng))
			r.Post("/abandon", handleAbandonDungeon(eng))
		})

		r.Route("/sync", func(r chi.Router) {
			r.Get("/export", handleExportSnapshot(eng))
			r.Post("/import", handleImportSnapshot(eng))
		})

		r.Post("/reconcile", handleReconcile(eng))

		if hub != nil {
			r.Get("/events", sse.Handler(hub))
		}
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		engine: eng,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)

		log.Info("Request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength)

		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info("Server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
