// Package main is the entry point for the Wareki API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zapponejosh/wareki-api/internal/api"
	"github.com/zapponejosh/wareki-api/internal/calendar"
	"github.com/zapponejosh/wareki-api/internal/config"
	"github.com/zapponejosh/wareki-api/internal/database"
	"github.com/zapponejosh/wareki-api/internal/locale"
	"github.com/zapponejosh/wareki-api/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting wareki API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
		slog.String("default_lang", cfg.DefaultLang),
	)

	var db *database.DB
	holidays := calendar.NewDefaultHolidayCalendar()

	if cfg.UsesStore() {
		var err error
		db, err = database.Open(database.DefaultConfig(cfg.DatabasePath), log)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if _, err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		cal, err := calendar.LoadHolidayCalendar(ctx, db, cfg.HolidayTemplate)
		switch {
		case err == nil:
			holidays = cal
			log.Info("holiday template loaded",
				slog.String("template", cfg.HolidayTemplate),
				slog.Int("entries", len(cal.Entries())),
			)
		case database.IsNotFound(err):
			log.Warn("holiday template not found, using built-in template",
				slog.String("template", cfg.HolidayTemplate),
			)
		default:
			log.Warn("failed to load holiday template, using built-in template",
				slog.String("template", cfg.HolidayTemplate),
				slog.Any("error", err),
			)
		}
	} else {
		log.Info("no database configured, using built-in holiday template")
	}

	translator, err := locale.New(cfg.DefaultLang, log)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	handlers := api.NewHandlers(db, holidays, translator, api.NewMetrics(), cfg, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("wareki API ready", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
