// Command biaslab runs the cognitive-bias scenario simulation server.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mindfold/biaslab/internal/api"
	"github.com/mindfold/biaslab/internal/catalog"
	"github.com/mindfold/biaslab/internal/persistence"
	"github.com/mindfold/biaslab/internal/session"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("biaslab — cognitive-bias scenario engine")

	port := envInt("BIASLAB_PORT", 8080)
	sessionCap := envInt("BIASLAB_SESSION_CAP", session.DefaultCap)
	scenarioPath := os.Getenv("BIASLAB_SCENARIOS")
	archivePath := os.Getenv("BIASLAB_ARCHIVE")
	adminKey := os.Getenv("BIASLAB_ADMIN_KEY")

	// ── Scenario Catalog ──────────────────────────────────────────────
	// Loading is strict: a malformed definition refuses to serve.
	var cat *catalog.Catalog
	if scenarioPath != "" {
		var err error
		cat, err = catalog.LoadFile(scenarioPath)
		if err != nil {
			slog.Error("failed to load scenario catalog", "path", scenarioPath, "error", err)
			os.Exit(1)
		}
		slog.Info("scenario catalog loaded", "path", scenarioPath, "scenarios", len(cat.List()))
	} else {
		cat = catalog.Default()
		slog.Info("using bundled scenario catalog", "scenarios", len(cat.List()))
	}

	// ── Optional Archive ──────────────────────────────────────────────
	var archive *persistence.Archive
	if archivePath != "" {
		var err error
		archive, err = persistence.Open(archivePath)
		if err != nil {
			slog.Error("failed to open archive", "path", archivePath, "error", err)
			os.Exit(1)
		}
		defer archive.Close()
		slog.Info("archive opened", "path", archivePath)
	}

	// ── Engine wiring ─────────────────────────────────────────────────
	store := session.NewStore(sessionCap)
	ctrl := session.NewController(cat, store)

	server := &api.Server{
		Controller: ctrl,
		Catalog:    cat,
		Store:      store,
		Archive:    archive,
		Port:       port,
		AdminKey:   adminKey,
	}
	server.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown signal received", "sessions", store.Len())
}

// envInt reads an integer environment variable with a default.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}
