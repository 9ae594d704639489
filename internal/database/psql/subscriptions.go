package psql

import (
	"context"
	"fmt"

	databaseerrors "foodgram/internal/database"
	"foodgram/internal/models"
	"foodgram/pkg/lib/logger/sl"

	"github.com/jmoiron/sqlx"
)

func (s *Storage) Subscribe(ctx context.Context, subscriberId, authorId int64) error {
	const op = "database.psql.Subscribe"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO subscription (subscriber_id, author_id)
		VALUES ($1, $2);
	`, subscriberId, authorId); err != nil {
		switch {
		case isUniqueViolation(err, ""):
			log.Warn("Subscription already exists", sl.Err(err))
			return fmt.Errorf("%s: %w", op, databaseerrors.ErrAlreadyExists)
		case isForeignKeyViolation(err):
			log.Warn("Author doesn't exist", sl.Err(err))
			return fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		default:
			log.Error("Failed to insert subscription", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

func (s *Storage) Unsubscribe(ctx context.Context, subscriberId, authorId int64) error {
	const op = "database.psql.Unsubscribe"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM subscription
		WHERE subscriber_id=$1 AND author_id=$2;
	`, subscriberId, authorId)
	if err != nil {
		log.Error("Failed to delete subscription", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		log.Error("Error reading affected rows", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		log.Warn("Subscription doesn't exist", sl.Err(databaseerrors.ErrNotFound))
		return fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
	}

	return nil
}

// Subscriptions lists the authors subscriberId follows, newest subscription first.
func (s *Storage) Subscriptions(ctx context.Context, subscriberId int64, limit, offset int) ([]models.Author, int, error) {
	const op = "database.psql.Subscriptions"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.GetContext(ctx, &total, `
		SELECT count(*) FROM subscription WHERE subscriber_id=$1;
	`, subscriberId); err != nil {
		log.Error("Error counting subscriptions", sl.Err(err))
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	authors := make([]models.Author, 0, limit)
	err := s.db.SelectContext(ctx, &authors, `
		SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.avatar, u.created_at,
			TRUE AS is_subscribed,
			(SELECT count(*) FROM recipe r WHERE r.author_id = u.id) AS recipes_count
		FROM subscription s
		JOIN app_user u ON u.id = s.author_id
		WHERE s.subscriber_id = $1
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $2 OFFSET $3;
	`, subscriberId, limit, offset)
	if err != nil {
		log.Error("Error listing subscriptions", sl.Err(err))
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return authors, total, nil
}

func (s *Storage) RecipesCount(ctx context.Context, authorId int64) (int, error) {
	const op = "database.psql.RecipesCount"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.GetContext(ctx, &count, `
		SELECT count(*) FROM recipe WHERE author_id=$1;
	`, authorId); err != nil {
		log.Error("Error counting recipes", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

// RecipesByAuthors returns up to perAuthor newest recipes of each author.
// perAuthor <= 0 means no limit.
func (s *Storage) RecipesByAuthors(ctx context.Context, authorIds []int64, perAuthor int) (map[int64][]models.ShortRecipe, error) {
	const op = "database.psql.RecipesByAuthors"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return nil, err
	}

	result := make(map[int64][]models.ShortRecipe, len(authorIds))
	if len(authorIds) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT author_id, id, name, image, cooking_time FROM (
			SELECT r.author_id, r.id, r.name, r.image, r.cooking_time,
				ROW_NUMBER() OVER (PARTITION BY r.author_id ORDER BY r.pub_date DESC, r.id DESC) AS rn
			FROM recipe r
			WHERE r.author_id IN (?)
		) ranked
		WHERE ? <= 0 OR rn <= ?
		ORDER BY author_id, rn;
	`, authorIds, perAuthor, perAuthor)
	if err != nil {
		log.Error("Failed to build query", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var rows []struct {
		AuthorId int64 `db:"author_id"`
		models.ShortRecipe
	}
	if err := s.db.SelectContext(ctx, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		log.Error("Error listing author recipes", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, row := range rows {
		result[row.AuthorId] = append(result[row.AuthorId], row.ShortRecipe)
	}

	return result, nil
}
