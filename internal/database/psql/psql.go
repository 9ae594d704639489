package psql

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"foodgram/pkg/lib/logger/sl"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

const constraintShortCode = "recipe_short_code_key"

type Storage struct {
	log *slog.Logger
	db  *sqlx.DB
}

// New connects to Postgres and applies pending migrations.
func New(log *slog.Logger, connStr string) (*Storage, error) {
	const op = "database.psql.New"

	db, err := Connect(log, connStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := Migrate(context.Background(), db, "up"); err != nil {
		log.With("op", op).Error("Error applying migrations", sl.Err(err))
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		log: log,
		db:  db,
	}, nil
}

// Connect opens a pool without touching the schema.
func Connect(log *slog.Logger, connStr string) (*sqlx.DB, error) {
	const op = "database.psql.Connect"

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		log.With("op", op).Error("Error connect to database", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return db, nil
}

func NewWithParams(log *slog.Logger, db *sqlx.DB) *Storage {
	return &Storage{
		log: log,
		db:  db,
	}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate runs a goose command (up, down, status, ...) against the embedded migrations.
func Migrate(ctx context.Context, db *sqlx.DB, command string, args ...string) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db.DB, migrationsDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func (s *Storage) checkCtx(ctx context.Context, log *slog.Logger, op string) error {
	select {
	case <-ctx.Done():
		log.Error("Context is over", sl.Err(ctx.Err()))
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

func asPqError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

// isUniqueViolation reports a 23505; an empty constraint matches any.
func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := asPqError(err)
	if !ok || pqErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func isForeignKeyViolation(err error) bool {
	pqErr, ok := asPqError(err)
	return ok && pqErr.Code == codeForeignKeyViolation
}
