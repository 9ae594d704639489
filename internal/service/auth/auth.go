package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	databaseerrors "foodgram/internal/database"
	"foodgram/internal/models"
	serviceerrors "foodgram/internal/service"
	"foodgram/pkg/config"
	"foodgram/pkg/lib/jwt"
	"foodgram/pkg/lib/logger/sl"

	"golang.org/x/crypto/bcrypt"
)

type UserStorage interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
}

// TokenStore remembers revoked token ids.
type TokenStore interface {
	Revoke(ctx context.Context, tokenId string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenId string) (bool, error)
}

type AuthService struct {
	log     *slog.Logger
	storage UserStorage
	tokens  TokenStore
	cfg     config.JWTConfig
	now     func() time.Time
}

func New(log *slog.Logger, storage UserStorage, tokens TokenStore, cfg config.JWTConfig) *AuthService {
	return &AuthService{
		log:     log,
		storage: storage,
		tokens:  tokens,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Login checks the credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "service.auth.Login"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return "", err
	}

	user, err := s.storage.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, databaseerrors.ErrNotFound) {
			// same answer as a wrong password
			err = serviceerrors.ErrInvalidCredentials
		}
		return "", serviceerrors.Wrap(log, op, err, "Failed to find user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", serviceerrors.Wrap(log, op, serviceerrors.ErrInvalidCredentials, "Wrong password")
	}

	token, _, err := jwt.Mint(s.cfg, s.now(), user.Id)
	if err != nil {
		log.Error("Failed to mint token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// Logout revokes the caller's token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, principal models.Principal) error {
	const op = "service.auth.Logout"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return err
	}

	if err := s.tokens.Revoke(ctx, principal.TokenId, principal.ExpiresAt.Sub(s.now())); err != nil {
		return serviceerrors.Wrap(log, op, err, "Failed to revoke token")
	}

	return nil
}

// Authenticate turns a raw bearer token into the caller's principal.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Principal, error) {
	const op = "service.auth.Authenticate"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return models.Principal{}, err
	}

	claims, err := jwt.Parse(s.cfg, token)
	if err != nil {
		log.Debug("Rejected token", sl.Err(err))
		return models.Principal{}, fmt.Errorf("%s: %w", op, serviceerrors.ErrUnauthorized)
	}
	userId, err := claims.UserID()
	if err != nil {
		log.Debug("Rejected token", sl.Err(err))
		return models.Principal{}, fmt.Errorf("%s: %w", op, serviceerrors.ErrUnauthorized)
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return models.Principal{}, serviceerrors.Wrap(log, op, err, "Failed to check token")
	}
	if revoked {
		log.Debug("Token was revoked", slog.String("jti", claims.ID))
		return models.Principal{}, fmt.Errorf("%s: %w", op, serviceerrors.ErrUnauthorized)
	}

	return models.Principal{
		UserId:    userId,
		TokenId:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
