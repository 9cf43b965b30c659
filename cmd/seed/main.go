// Package main seeds the default blog categories into the configured store
// and exits. Categories that already exist are left untouched.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/store/backend"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(logger); err != nil {
		logger.Fatal(err)
	}
}

func run(logger *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Store.Driver == "memory" {
		return errors.New("nothing to seed: the in-memory store does not outlive this process")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close(context.Background())

	n, err := database.SeedCategories(ctx, st, logger, models.DefaultCategories)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"created": n,
		"skipped": len(models.DefaultCategories) - n,
	}).Info("category seed complete")
	return nil
}
