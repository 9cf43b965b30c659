// Package backend opens the store.Store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/store"
	"inkwell/internal/store/memory"
	"inkwell/internal/store/mongodb"
	"inkwell/internal/store/postgres"
)

// Open connects the configured driver. Postgres is migrated before use and
// MongoDB gets its indexes. The caller owns the returned store and must
// Close it.
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "mongo":
		return mongodb.Open(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase, log)

	case "postgres":
		db, err := database.Connect(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("postgres connected and migrated")
		return postgres.New(db), nil

	case "memory":
		log.Warn("using the in-memory store, data is lost on exit")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
