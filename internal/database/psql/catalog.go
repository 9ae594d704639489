package psql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	databaseerrors "foodgram/internal/database"
	"foodgram/internal/models"
	"foodgram/pkg/lib/logger/sl"

	"github.com/jmoiron/sqlx"
)

func (s *Storage) ListTags(ctx context.Context) ([]models.Tag, error) {
	const op = "database.psql.ListTags"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return nil, err
	}

	tags := make([]models.Tag, 0, 8)
	if err := s.db.SelectContext(ctx, &tags, `
		SELECT id, name, slug, color FROM tag ORDER BY name;
	`); err != nil {
		log.Error("Error listing tags", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tags, nil
}

func (s *Storage) TagByID(ctx context.Context, id int64) (models.Tag, error) {
	const op = "database.psql.TagByID"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return models.Tag{}, err
	}

	var tag models.Tag
	if err := s.db.GetContext(ctx, &tag, `
		SELECT id, name, slug, color FROM tag WHERE id=$1;
	`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("Tag doesn't exist", sl.Err(databaseerrors.ErrNotFound))
			return models.Tag{}, fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		}
		log.Error("Error getting tag", sl.Err(err))
		return models.Tag{}, fmt.Errorf("%s: %w", op, err)
	}

	return tag, nil
}

// ListIngredients filters by a case-insensitive name prefix when one is given.
func (s *Storage) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	const op = "database.psql.ListIngredients"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return nil, err
	}

	pattern := escapeLike(strings.ToLower(namePrefix)) + "%"

	ingredients := make([]models.Ingredient, 0, 32)
	if err := s.db.SelectContext(ctx, &ingredients, `
		SELECT id, name, measurement_unit FROM ingredient
		WHERE lower(name) LIKE $1
		ORDER BY name, measurement_unit;
	`, pattern); err != nil {
		log.Error("Error listing ingredients", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ingredients, nil
}

func (s *Storage) IngredientByID(ctx context.Context, id int64) (models.Ingredient, error) {
	const op = "database.psql.IngredientByID"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return models.Ingredient{}, err
	}

	var ingredient models.Ingredient
	if err := s.db.GetContext(ctx, &ingredient, `
		SELECT id, name, measurement_unit FROM ingredient WHERE id=$1;
	`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("Ingredient doesn't exist", sl.Err(databaseerrors.ErrNotFound))
			return models.Ingredient{}, fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		}
		log.Error("Error getting ingredient", sl.Err(err))
		return models.Ingredient{}, fmt.Errorf("%s: %w", op, err)
	}

	return ingredient, nil
}

// ExistingTagIDs returns the subset of ids present in the tag table.
func (s *Storage) ExistingTagIDs(ctx context.Context, ids []int64) ([]int64, error) {
	const op = "database.psql.ExistingTagIDs"
	return s.existingIDs(ctx, op, "tag", ids)
}

// ExistingIngredientIDs returns the subset of ids present in the ingredient table.
func (s *Storage) ExistingIngredientIDs(ctx context.Context, ids []int64) ([]int64, error) {
	const op = "database.psql.ExistingIngredientIDs"
	return s.existingIDs(ctx, op, "ingredient", ids)
}

// table is always a package constant, never user input.
func (s *Storage) existingIDs(ctx context.Context, op, table string, ids []int64) ([]int64, error) {
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []int64{}, nil
	}

	query, args, err := sqlx.In(`SELECT id FROM `+table+` WHERE id IN (?) ORDER BY id;`, ids)
	if err != nil {
		log.Error("Failed to build query", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	found := make([]int64, 0, len(ids))
	if err := s.db.SelectContext(ctx, &found, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		log.Error("Error checking ids", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return found, nil
}

// ImportIngredients inserts ingredients, skipping (name, unit) pairs that
// already exist, and reports how many rows were added.
func (s *Storage) ImportIngredients(ctx context.Context, ingredients []models.Ingredient) (int64, error) {
	const op = "database.psql.ImportIngredients"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("Failed to begin transaction", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	var inserted int64
	for _, ing := range ingredients {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO ingredient (name, measurement_unit)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING;
		`, ing.Name, ing.MeasurementUnit)
		if err != nil {
			log.Error("Failed to insert ingredient", sl.Err(err))
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return inserted, nil
}

// ImportTags inserts tags, skipping names or slugs that already exist.
func (s *Storage) ImportTags(ctx context.Context, tags []models.Tag) (int64, error) {
	const op = "database.psql.ImportTags"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("Failed to begin transaction", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	var inserted int64
	for _, tag := range tags {
		color := tag.Color
		if color == "" {
			color = "#ffffff"
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO tag (name, slug, color)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING;
		`, tag.Name, tag.Slug, color)
		if err != nil {
			log.Error("Failed to insert tag", sl.Err(err))
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return inserted, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
