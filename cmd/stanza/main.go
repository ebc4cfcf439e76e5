// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Command stanza runs the content service: schema registry, content
// store, import/export pipeline and the JSON admin API.
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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/stanzacms/stanza/internal/cache"
	"github.com/stanzacms/stanza/internal/config"
	"github.com/stanzacms/stanza/internal/handler"
	"github.com/stanzacms/stanza/internal/logging"
	"github.com/stanzacms/stanza/internal/media"
	"github.com/stanzacms/stanza/internal/middleware"
	"github.com/stanzacms/stanza/internal/scheduler"
	"github.com/stanzacms/stanza/internal/schema"
	"github.com/stanzacms/stanza/internal/store"
)

// Version information - injected at build time via ldflags
var appVersion = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "stanza: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments configure the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if !cfg.UseMySQL() {
		if err := store.Migrate(db); err != nil {
			return err
		}
	}

	logger := logging.Setup(cfg.LogLevel, db)
	slog.SetDefault(logger)
	logger.Info("starting stanza", "version", appVersion, "env", cfg.Env)

	backend, err := buildCacheBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	queries := store.New(db)
	content := cache.NewContentCache(backend, queries, logger,
		time.Duration(cfg.CacheTTL)*time.Second)

	mediaStore, err := media.NewStore(cfg.UploadsDir, cfg.PublicURL, logger)
	if err != nil {
		return err
	}

	registry := schema.NewRegistry()
	api := handler.NewHandler(db, registry, content, mediaStore, logger)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		r.Use(middleware.AdminToken(cfg.AdminToken))
		r.Mount("/", api.Routes())
	})

	// Uploaded files are served directly from the object store.
	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(mediaStore.Dir())))
	r.Get("/uploads/*", uploads.ServeHTTP)

	var sched *scheduler.Scheduler
	if cfg.DoBackups {
		sched = scheduler.New(db, cfg.BackupsDir, cfg.BackupsKeep, logger)
		if err := sched.Start(cfg.BackupCron); err != nil {
			return err
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ServerAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}

// buildCacheBackend picks Redis when configured, falling back to the
// in-process memory cache.
func buildCacheBackend(cfg *config.Config, logger *slog.Logger) (cache.Cache, error) {
	ttl := time.Duration(cfg.CacheTTL) * time.Second

	if cfg.UseRedisCache() {
		opts := cache.RedisCacheOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.CachePrefix,
			DefaultTTL: ttl,
		}
		redisCache, err := cache.NewRedisCache(context.Background(), opts)
		if err != nil {
			return nil, fmt.Errorf("connecting redis cache: %w", err)
		}
		logger.Info("using redis cache", "prefix", cfg.CachePrefix)
		return redisCache, nil
	}

	logger.Info("using memory cache", "max_size", cfg.CacheMaxSize)
	return cache.NewMemoryCache(cache.MemoryCacheOptions{
		DefaultTTL:      ttl,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}), nil
}
