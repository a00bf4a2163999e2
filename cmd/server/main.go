package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grupocs/rrhh/internal/config"
	"github.com/grupocs/rrhh/internal/db"
	"github.com/grupocs/rrhh/internal/logging"
	"github.com/grupocs/rrhh/view"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// A missing .env is fine; the environment wins anyway.
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logging.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	conn, err := db.Open(cfg.Database, log)
	if err != nil {
		return err
	}

	if *migrateOnlyFlag {
		if err := db.MigrateFor(conn, cfg.Database, cfg.App.Migrations); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info("migrations completed")
		return nil
	}
	if *seedOnlyFlag {
		if err := db.Seed(conn); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		log.Info("seeding completed")
		return nil
	}

	// The schema is always brought up to date on boot; MIGRATIONS only
	// selects the versioned SQL path on PostgreSQL.
	if err := db.MigrateFor(conn, cfg.Database, cfg.App.Migrations); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if cfg.App.Seed {
		if err := db.Seed(conn); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
	}

	if cfg.App.Dev {
		view.SetTemplatesDir("view/templates")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(conn, cfg, log),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}
