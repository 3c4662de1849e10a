package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lifequest/engine/internal/config"
	"github.com/lifequest/engine/internal/engine"
	"github.com/lifequest/engine/internal/event"
	"github.com/lifequest/engine/internal/scheduler"
	"github.com/lifequest/engine/internal/server"
	"github.com/lifequest/engine/internal/sse"
	"github.com/lifequest/engine/internal/store"
	"github.com/lifequest/engine/internal/tracker"
	"github.com/lifequest/engine/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	st, err := store.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open store", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer st.Close()

	trackers, err := tracker.NewRegistry()
	if err != nil {
		slog.Error("Failed to create tracker registry", "error", err)
		os.Exit(1)
	}

	bus := event.NewMemoryBus()
	registerNotificationHandlers(bus)

	// Companion event stream: bus events fan out to connected SSE clients
	hub := sse.NewHub()
	hub.Start()
	sse.NewSubscriber(hub, bus).Subscribe()

	publisher := event.NewResilientPublisher(bus, event.ResilientConfig{
		MaxRetries:     3,
		RetryDelay:     time.Second,
		DeadLetterPath: cfg.DeadLetterPath,
	})

	ctx := context.Background()
	eng, err := engine.New(ctx, st, trackers, publisher,
		engine.WithUndoWindow(cfg.UndoWindow))
	if err != nil {
		slog.Error("Failed to initialize engine", "error", err)
		os.Exit(1)
	}

	seedQuests(ctx, eng, cfg.QuestTemplatePath)

	// Settle any cycle windows that lapsed while the app was closed before
	// accepting completions
	eng.Reconcile(ctx)

	// Background jobs: periodic reconciliation and autosave
	pool := worker.NewPool(2, 16)
	pool.Start()
	sched := scheduler.New(pool)
	sched.Schedule(cfg.ReconcileInterval, worker.JobFunc(func(ctx context.Context) error {
		eng.Reconcile(ctx)
		return nil
	}))
	sched.Schedule(cfg.AutosaveInterval, worker.JobFunc(func(ctx context.Context) error {
		eng.Save(ctx)
		return nil
	}))

	srv := server.NewServer(cfg.Port, eng, st, hub)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
	case sig := <-quit:
		slog.Info("Shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop accepting requests first, then drain background work, then flush
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Server forced shutdown", "error", err)
	}
	sched.Stop()
	pool.Stop()
	hub.Stop()
	if err := eng.Shutdown(shutdownCtx); err != nil {
		slog.Error("Engine shutdown failed", "error", err)
	}
	if err := publisher.Shutdown(shutdownCtx); err != nil {
		slog.Error("Event publisher shutdown failed", "error", err)
	}

	slog.Info("Shutdown complete")
}

// seedQuests imports quest templates on a fresh install. An existing quest
// list means the player already customized their setup.
func seedQuests(ctx context.Context, eng *engine.Engine, path string) {
	if len(eng.Quests()) > 0 {
		return
	}
	templates, err := config.LoadQuestTemplates(path)
	if err != nil {
		slog.Warn("Quest templates unavailable, starting empty", "error", err, "path", path)
		return
	}
	for _, tmpl := range templates {
		if _, err := eng.AddQuestFromTemplate(ctx, tmpl); err != nil {
			slog.Warn("Failed to seed quest", "error", err, "title", tmpl.Title)
		}
	}
	slog.Info("Seeded quests from templates", "count", len(templates))
}
