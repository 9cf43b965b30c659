// Package main is the entry point for the blog API server.
// It loads configuration, opens the configured store, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/models"
	"inkwell/internal/router"
	"inkwell/internal/storage"
	"inkwell/internal/store/backend"
	"inkwell/internal/viewcount"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	configureLogger(logger, cfg)

	logger.WithFields(logrus.Fields{
		"env":    cfg.Server.Env,
		"addr":   cfg.Server.Addr,
		"driver": cfg.Store.Driver,
	}).Info("configuration loaded")
	if cfg.Auth.JWTSecret == config.DevJWTSecret {
		logger.Warn("using the development JWT secret, set JWT_SECRET outside development")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}

	if cfg.Store.Seed {
		if _, err := database.SeedCategories(ctx, st, logger, models.DefaultCategories); err != nil {
			logger.Fatalf("seed categories: %v", err)
		}
	}

	// Object storage is optional; uploads answer 503 without it.
	var uploader handlers.Uploader
	if cfg.StorageEnabled() {
		client, err := storage.New(storage.Options{
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			PublicURL: cfg.Storage.PublicURL,
			KeyPrefix: cfg.Storage.KeyPrefix,
		})
		if err != nil {
			logger.Fatalf("setup storage: %v", err)
		}
		if client != nil {
			uploader = client
			logger.WithFields(logrus.Fields{
				"endpoint": cfg.Storage.Endpoint,
				"bucket":   cfg.Storage.Bucket,
			}).Info("s3 storage connected")
		}
	}
	if uploader == nil {
		logger.Warn("s3 storage not configured, image uploads disabled")
	}

	counter := viewcount.New(st, viewcount.Config{
		Workers:   cfg.ViewCount.Workers,
		QueueSize: cfg.ViewCount.QueueSize,
		Timeout:   cfg.ViewCount.Timeout,
		Logger:    logger,
	})
	counter.Start()

	ln, err := listen(cfg.Server.Addr, cfg.IsDev() && cfg.Server.PortFallback, logger)
	if err != nil {
		logger.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	authService := auth.NewService(st, auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), 0)
	maxBody := cfg.Server.MaxBodyBytes

	r := router.New(router.Deps{
		Log:             logger,
		Production:      cfg.IsProduction(),
		AllowAllOrigins: !cfg.IsProduction(),
		Origins:         cfg.Origins(),
		ProtectDelete:   cfg.Auth.ProtectDelete,
		APILimit:        router.Limit{Requests: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window},
		AuthLimit:       router.Limit{Requests: cfg.RateLimit.AuthRequests, Window: cfg.RateLimit.AuthWindow},
		TrustProxy:      cfg.RateLimit.TrustProxy,
		Verifier:        authService.Tokens(),
		Posts:           handlers.NewPosts(st, st, counter, logger, maxBody),
		Categories:      handlers.NewCategories(st, logger, maxBody),
		Auth:            handlers.NewAuth(authService, logger, maxBody),
		Uploads:         handlers.NewUploads(uploader, logger),
		Meta:            handlers.NewMeta(port),
	})

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.WithField("addr", ln.Addr().String()).Info("server starting")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop accepting requests first so no new views are queued, then drain
	// the counter before the store goes away.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("http shutdown")
	}
	if err := counter.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("view counter shutdown")
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.WithError(err).Warn("store close")
	}

	logger.Info("server stopped gracefully")
}

// configureLogger applies the configured level and switches to JSON output
// outside development.
func configureLogger(logger *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.WithField("level", cfg.Log.Level).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if !cfg.IsDev() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}
