package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cabinz/gym-track-visualizer/internal/config"
	"github.com/cabinz/gym-track-visualizer/internal/mcp"
	"github.com/cabinz/gym-track-visualizer/internal/server"
	"github.com/cabinz/gym-track-visualizer/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	migrationsPath := flag.String("migrations", "migrations", "path to migration files")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("gymviz starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *migrationsPath, *migrateOnly, log); err != nil {
		log.Error("gymviz failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, migrationsPath string, migrateOnly bool, log *slog.Logger) error {
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, migrationsPath); err != nil {
		return err
	}
	log.Info("migrations applied", "path", migrationsPath)
	if migrateOnly {
		return nil
	}

	db, err := storage.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := server.New(db, serverSettings(cfg), log)
	srv.SetMCP(mcp.New(db, cfg.Metrics.Config, Version, log))
	log.Info("metric engine configured",
		"pass_reps", cfg.Metrics.PassReps,
		"full_reps", cfg.Metrics.FullReps,
		"set_range", cfg.Metrics.SetRange.String(),
		"workers", cfg.Metrics.Workers,
	)

	ln, err := listen(cfg, srv, log)
	if err != nil {
		return err
	}
	defer ln.close()

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- httpSrv.Serve(ln) }()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
	return nil
}

func serverSettings(cfg *config.Config) server.Settings {
	return server.Settings{
		APIKey:  cfg.Auth.APIKey,
		Metrics: cfg.Metrics.Config,
		Workers: cfg.Metrics.Workers,
		Chart:   cfg.Chart,
	}
}
