package psql

import (
	"context"
	"fmt"

	databaseerrors "foodgram/internal/database"
	"foodgram/pkg/lib/logger/sl"
)

const (
	tableFavorite     = "favorite"
	tableShoppingCart = "shopping_cart"
)

func (s *Storage) AddFavorite(ctx context.Context, userId, recipeId int64) error {
	const op = "database.psql.AddFavorite"
	return s.addRelation(ctx, op, tableFavorite, userId, recipeId)
}

func (s *Storage) RemoveFavorite(ctx context.Context, userId, recipeId int64) error {
	const op = "database.psql.RemoveFavorite"
	return s.removeRelation(ctx, op, tableFavorite, userId, recipeId)
}

func (s *Storage) AddToCart(ctx context.Context, userId, recipeId int64) error {
	const op = "database.psql.AddToCart"
	return s.addRelation(ctx, op, tableShoppingCart, userId, recipeId)
}

func (s *Storage) RemoveFromCart(ctx context.Context, userId, recipeId int64) error {
	const op = "database.psql.RemoveFromCart"
	return s.removeRelation(ctx, op, tableShoppingCart, userId, recipeId)
}

func (s *Storage) addRelation(ctx context.Context, op, table string, userId, recipeId int64) error {
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO `+table+` (user_id, recipe_id)
		VALUES ($1, $2);
	`, userId, recipeId); err != nil {
		switch {
		case isUniqueViolation(err, ""):
			log.Warn("Recipe already added", sl.Err(err))
			return fmt.Errorf("%s: %w", op, databaseerrors.ErrAlreadyExists)
		case isForeignKeyViolation(err):
			log.Warn("Recipe doesn't exist", sl.Err(err))
			return fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		default:
			log.Error("Failed to add recipe", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

func (s *Storage) removeRelation(ctx context.Context, op, table string, userId, recipeId int64) error {
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM `+table+`
		WHERE user_id=$1 AND recipe_id=$2;
	`, userId, recipeId)
	if err != nil {
		log.Error("Failed to remove recipe", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		log.Error("Error reading affected rows", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		log.Warn("Recipe wasn't added", sl.Err(databaseerrors.ErrNotFound))
		return fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
	}

	return nil
}
