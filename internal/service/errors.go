package serviceerrors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	databaseerrors "foodgram/internal/database"
	"foodgram/pkg/lib/logger/sl"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrContextCanceled    = errors.New("context canceled")
	ErrDeadlineExceeded   = errors.New("deadline exceeded")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("authentication credentials were not provided or are invalid")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrSelfSubscription   = errors.New("cannot subscribe to yourself")
	ErrEmptyCart          = errors.New("shopping cart is empty")
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique short code")
)

// ValidationError is an ErrInvalidInput tied to one request field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// FromStorage translates context and storage sentinels into their service
// counterparts. Anything else is returned unchanged.
func FromStorage(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return ErrContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrDeadlineExceeded
	case errors.Is(err, databaseerrors.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, databaseerrors.ErrAlreadyExists):
		return ErrAlreadyExists
	default:
		return err
	}
}

// CheckCtx reports a finished context as ErrContextCanceled or
// ErrDeadlineExceeded, wrapped with op.
func CheckCtx(ctx context.Context, log *slog.Logger, op string) error {
	select {
	case <-ctx.Done():
		err := FromStorage(ctx.Err())
		log.Warn("Context is over", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	default:
		return nil
	}
}

// Wrap maps err with FromStorage and wraps it with op. Expected conditions
// are logged as warnings, anything else as an error.
func Wrap(log *slog.Logger, op string, err error, msg string) error {
	mapped := FromStorage(err)
	switch {
	case errors.Is(mapped, ErrContextCanceled),
		errors.Is(mapped, ErrDeadlineExceeded),
		errors.Is(mapped, ErrNotFound),
		errors.Is(mapped, ErrAlreadyExists),
		errors.Is(mapped, ErrForbidden),
		errors.Is(mapped, ErrUnauthorized),
		errors.Is(mapped, ErrInvalidCredentials),
		errors.Is(mapped, ErrSelfSubscription),
		errors.Is(mapped, ErrEmptyCart),
		errors.Is(mapped, ErrInvalidInput):
		log.Warn(msg, sl.Err(mapped))
	default:
		log.Error(msg, sl.Err(err))
	}
	return fmt.Errorf("%s: %w", op, mapped)
}
