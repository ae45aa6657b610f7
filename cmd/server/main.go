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

	"github.com/NorousS/anime-reviews/internal/catalog"
	"github.com/NorousS/anime-reviews/internal/config"
	httpserver "github.com/NorousS/anime-reviews/internal/http"
	"github.com/NorousS/anime-reviews/internal/logging"
	"github.com/NorousS/anime-reviews/internal/migration"
	"github.com/NorousS/anime-reviews/internal/repository"
	"github.com/NorousS/anime-reviews/internal/store"
	"github.com/NorousS/anime-reviews/internal/synopsis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server_exit", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if cfg.DBMigrateOnStart {
		if err := migration.RunUp(cfg.DBURL, logger); err != nil {
			return err
		}
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		return err
	}
	defer st.Close()

	synopsisTimeout := time.Duration(cfg.SynopsisTimeoutSecs) * time.Second
	var synClient synopsis.Client = synopsis.Disabled{}
	if cfg.SynopsisEnabled() {
		httpClient, err := synopsis.NewHTTPClient(cfg.SynopsisURL, cfg.SynopsisAPIKey, synopsisTimeout, logger)
		if err != nil {
			return err
		}
		synClient = httpClient
	} else {
		logger.Info("synopsis_provider_disabled")
	}

	svc := catalog.New(repository.New(st), catalog.Options{
		Synopsis:        synClient,
		SynopsisTimeout: synopsisTimeout,
		Logger:          logger,
	})
	server := httpserver.New(cfg, st, svc, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	var serveErr error
	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("graceful_shutdown_failed", slog.Any("error", err))
	}
	logger.Info("server_stopped")
	return serveErr
}
