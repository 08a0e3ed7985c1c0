// Command tinymud runs the TinyMUD server: persistent world document, tick
// scheduler, and a WebSocket transport exposing the command surface.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/mini-world/internal/config"
	"github.com/talgya/mini-world/internal/llmadapter"
	"github.com/talgya/mini-world/internal/persist"
	"github.com/talgya/mini-world/internal/service"
	"github.com/talgya/mini-world/internal/session"
	"github.com/talgya/mini-world/internal/transport"
	"github.com/talgya/mini-world/internal/worldtick"
)

// writeDrainTimeout bounds how long shutdown waits for in-flight HTTP
// handlers (the websocket upgrade path) to finish.
const writeDrainTimeout = 5 * time.Second

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := persist.Open(cfg.DocumentPath, cfg.ArchivePath, cfg.DebounceWindow())
	if err != nil {
		slog.Error("failed to open world document", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("world document opened", "path", cfg.DocumentPath, "archive", cfg.ArchivePath)

	generator := llmadapter.New(cfg.LLMAdapterConfig())
	if generator.Configured() {
		slog.Info("AI adapter configured")
	} else {
		slog.Info("AI adapter not configured — deterministic fallback only")
	}

	tr := transport.New()

	scheduler := &worldtick.Scheduler{
		Interval:     cfg.TickInterval(),
		Enabled:      cfg.TickEnable,
		AdvancedGOAP: store.Document().World.AdvancedGOAPEnabled,
		Config:       cfg.GOAPConfig(),
		Generator:    generator,
		Doc:          store.Document,
		Store:        store,
		Broadcast: func(roomID, text string) {
			tr.Broadcast(roomOccupants(store, roomID), service.Payload{Type: service.PayloadSystem, Content: text})
		},
	}

	manager := session.NewManager(store, tr, cfg, generator, scheduler, tr.Close)
	tr.OnConnect = manager.HandleConnect
	tr.OnDisconnect = manager.HandleDisconnect

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go scheduler.Start(ctx)
	go func() {
		for ev := range tr.Incoming {
			manager.HandleLine(ev.SessionID, ev.Content)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", tr.Handler)
	httpServer := &http.Server{Addr: ":8080", Handler: mux}

	go func() {
		slog.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), writeDrainTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	store.FlushAllSaves()
	stats := store.Stats()
	slog.Info("final save complete", "immediate", stats.Immediate, "debounced", stats.Debounced, "errors", stats.Errors)
}

func roomOccupants(store *persist.Store, roomID string) []string {
	room, ok := store.Document().World.Rooms[roomID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(room.Players))
	for id := range room.Players {
		ids = append(ids, id)
	}
	return ids
}
