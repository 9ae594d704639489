package psql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	databaseerrors "foodgram/internal/database"
	"foodgram/internal/models"
	"foodgram/pkg/lib/logger/sl"
)

// is_subscribed is computed against $1, the viewing user (0 for anonymous).
const userColumns = `
	u.id, u.email, u.username, u.first_name, u.last_name, u.avatar, u.created_at,
	EXISTS (
		SELECT 1 FROM subscription s
		WHERE s.author_id = u.id AND s.subscriber_id = $1
	) AS is_subscribed`

func (s *Storage) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const op = "database.psql.CreateUser"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return models.User{}, err
	}

	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO app_user (email, username, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at;
	`, user.Email, user.Username, user.FirstName, user.LastName, user.PasswordHash).
		Scan(&user.Id, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			log.Warn("User already exists", sl.Err(err))
			return models.User{}, fmt.Errorf("%s: %w", op, databaseerrors.ErrAlreadyExists)
		}
		log.Error("Error creating user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UserByEmail returns the user including its password hash.
func (s *Storage) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "database.psql.UserByEmail"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return models.User{}, err
	}

	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, email, username, first_name, last_name, password_hash, avatar, created_at
		FROM app_user
		WHERE lower(email) = lower($1);
	`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		}
		log.Error("Error getting user by email", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) PasswordHash(ctx context.Context, userId int64) (string, error) {
	const op = "database.psql.PasswordHash"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return "", err
	}

	var hash string
	err := s.db.GetContext(ctx, &hash, `SELECT password_hash FROM app_user WHERE id=$1;`, userId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		}
		log.Error("Error getting password hash", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return hash, nil
}

func (s *Storage) UserProfile(ctx context.Context, viewerId, userId int64) (models.User, error) {
	const op = "database.psql.UserProfile"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return models.User{}, err
	}

	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+`
		FROM app_user u
		WHERE u.id = $2;
	`, viewerId, userId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("User doesn't exist", sl.Err(databaseerrors.ErrNotFound))
			return models.User{}, fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		}
		log.Error("Error getting user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) ListUsers(ctx context.Context, viewerId int64, limit, offset int) ([]models.User, int, error) {
	const op = "database.psql.ListUsers"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT count(*) FROM app_user;`); err != nil {
		log.Error("Error counting users", sl.Err(err))
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	users := make([]models.User, 0, limit)
	err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+`
		FROM app_user u
		ORDER BY u.username
		LIMIT $2 OFFSET $3;
	`, viewerId, limit, offset)
	if err != nil {
		log.Error("Error listing users", sl.Err(err))
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return users, total, nil
}

func (s *Storage) UpdatePassword(ctx context.Context, userId int64, hash string) error {
	const op = "database.psql.UpdatePassword"
	return s.updateUserColumn(ctx, op, `UPDATE app_user SET password_hash=$2 WHERE id=$1;`, userId, hash)
}

// UpdateAvatar stores the data URI; nil clears it.
func (s *Storage) UpdateAvatar(ctx context.Context, userId int64, avatar *string) error {
	const op = "database.psql.UpdateAvatar"
	return s.updateUserColumn(ctx, op, `UPDATE app_user SET avatar=$2 WHERE id=$1;`, userId, avatar)
}

func (s *Storage) updateUserColumn(ctx context.Context, op, query string, userId int64, value any) error {
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, userId, value)
	if err != nil {
		log.Error("Error updating user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		log.Error("Error reading affected rows", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		log.Warn("User doesn't exist", sl.Err(databaseerrors.ErrNotFound))
		return fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
	}

	return nil
}
