// Command societyd hosts a persistent Society game session over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jzheng/societygame/internal/api"
	"github.com/jzheng/societygame/internal/config"
	"github.com/jzheng/societygame/internal/engine"
	"github.com/jzheng/societygame/internal/game"
	"github.com/jzheng/societygame/internal/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("Society — campaign, govern, survive")

	// ── Database ──────────────────────────────────────────────────────
	if !strings.Contains(cfg.Database, "://") {
		os.MkdirAll(filepath.Dir(cfg.Database), 0755)
	}
	db, err := persistence.Open(cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "dsn", cfg.Database)

	// ── Load or Create Session ────────────────────────────────────────
	sessionCfg := engine.Config{
		Players: cfg.Players,
		Seed:    cfg.Seed,
	}

	var session *engine.Session
	if db.HasSession() {
		slog.Info("found saved session, loading...")
		session, err = db.LoadSession(sessionCfg)
		if err != nil {
			slog.Error("failed to load session", "error", err)
			os.Exit(1)
		}
		slog.Info("session restored",
			"stage", session.Stage,
			"round", session.TurnNumber,
			"players", len(session.Players),
		)
	} else {
		slog.Info("no saved session, starting fresh game")
		session = engine.NewSession(sessionCfg)
		if err := db.SaveSession(session); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("SOCIETY_ADMIN_KEY not set — action endpoints will be disabled")
	}

	apiServer := &api.Server{
		Session:   session,
		DB:        db,
		Port:      cfg.Port,
		ActionKey: cfg.AdminKey,
	}
	apiServer.Start()

	fmt.Printf("\nSociety is in session: %d citizens, stage %s.\n",
		len(session.Players), session.Stage)
	fmt.Printf("API: http://localhost:%d/api/v1/state\n", cfg.Port)
	if session.Stage == game.StageRunning {
		fmt.Printf("Resuming round %d\n", session.TurnNumber)
	}
	fmt.Println("Serving... (Ctrl+C to stop)")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	// Final save on shutdown.
	if err := db.SaveSession(session); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("Server stopped. Session saved.")
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
