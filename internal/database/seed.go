package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

// SeedCategories creates each of the given categories that does not exist
// yet, matching by name. It works against any store backend and is safe to
// run repeatedly. It returns how many categories were created.
func SeedCategories(ctx context.Context, cats store.CategoryStore, log logrus.FieldLogger, seed []models.Category) (int, error) {
	created := 0
	for _, c := range seed {
		_, err := cats.GetCategoryByName(ctx, c.Name)
		if err == nil {
			log.WithField("category", c.Name).Debug("category already exists")
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return created, fmt.Errorf("seed check %q: %w", c.Name, err)
		}

		err = cats.CreateCategory(ctx, &c)
		if errors.Is(err, store.ErrDuplicate) {
			// Another seeder won the race.
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed create %q: %w", c.Name, err)
		}
		log.WithField("category", c.Name).Info("created category")
		created++
	}
	return created, nil
}
