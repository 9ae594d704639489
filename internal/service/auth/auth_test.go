package authservice_test

import (
	databaseerrors "foodgram/internal/database"
	"foodgram/internal/models"
	serviceerrors "foodgram/internal/service"
	authservice "foodgram/internal/service/auth"
	"foodgram/internal/service/auth/mocks"
	"foodgram/pkg/config"
	"foodgram/pkg/lib/logger/slogdiscard"

	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testJWT = config.JWTConfig{
	Secret: "0123456789abcdef0123",
	Issuer: "foodgram-test",
	TTL:    time.Hour,
}

func newTestService(storage *mocks.Storage, tokens *mocks.TokenStore) *authservice.AuthService {
	return authservice.New(slogdiscard.NewDiscardLogger(), storage, tokens, testJWT)
}

func hashOf(t *testing.T, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginAndAuthenticate(t *testing.T) {
	storage := new(mocks.Storage)
	tokens := new(mocks.TokenStore)
	svc := newTestService(storage, tokens)
	ctx := context.Background()

	storage.On("UserByEmail", mock.Anything, "ann@example.com").
		Return(models.User{Id: 3, Email: "ann@example.com", PasswordHash: hashOf(t, "s3cret-pass")}, nil)
	tokens.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	token, err := svc.Login(ctx, " ann@example.com ", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), principal.UserId)
	assert.NotEmpty(t, principal.TokenId)
	assert.WithinDuration(t, time.Now().Add(time.Hour), principal.ExpiresAt, time.Minute)

	storage.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestLogin_BadCredentials(t *testing.T) {
	tests := []struct {
		name     string
		user     models.User
		findErr  error
		password string
	}{
		{name: "unknown email", findErr: databaseerrors.ErrNotFound, password: "whatever1"},
		{name: "wrong password", user: models.User{Id: 1, PasswordHash: "$2a$04$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva"}, password: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := new(mocks.Storage)
			svc := newTestService(storage, new(mocks.TokenStore))

			storage.On("UserByEmail", mock.Anything, "ann@example.com").Return(tt.user, tt.findErr)

			_, err := svc.Login(context.Background(), "ann@example.com", tt.password)
			assert.ErrorIs(t, err, serviceerrors.ErrInvalidCredentials)
		})
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	storage := new(mocks.Storage)
	tokens := new(mocks.TokenStore)
	svc := newTestService(storage, tokens)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, serviceerrors.ErrUnauthorized)

	other := authservice.New(slogdiscard.NewDiscardLogger(), storage, tokens, config.JWTConfig{
		Secret: "another-secret-of-16+",
		Issuer: testJWT.Issuer,
		TTL:    time.Hour,
	})
	storage.On("UserByEmail", mock.Anything, "ann@example.com").
		Return(models.User{Id: 3, PasswordHash: hashOf(t, "s3cret-pass")}, nil)
	foreign, err := other.Login(ctx, "ann@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, foreign)
	assert.ErrorIs(t, err, serviceerrors.ErrUnauthorized)
	tokens.AssertNotCalled(t, "IsRevoked", mock.Anything, mock.Anything)
}

func TestAuthenticate_Revoked(t *testing.T) {
	storage := new(mocks.Storage)
	tokens := new(mocks.TokenStore)
	svc := newTestService(storage, tokens)
	ctx := context.Background()

	storage.On("UserByEmail", mock.Anything, "ann@example.com").
		Return(models.User{Id: 3, PasswordHash: hashOf(t, "s3cret-pass")}, nil)
	tokens.On("IsRevoked", mock.Anything, mock.Anything).Return(true, nil)

	token, err := svc.Login(ctx, "ann@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, serviceerrors.ErrUnauthorized)
}

func TestAuthenticate_StoreDown(t *testing.T) {
	storage := new(mocks.Storage)
	tokens := new(mocks.TokenStore)
	svc := newTestService(storage, tokens)
	ctx := context.Background()

	storage.On("UserByEmail", mock.Anything, "ann@example.com").
		Return(models.User{Id: 3, PasswordHash: hashOf(t, "s3cret-pass")}, nil)
	tokens.On("IsRevoked", mock.Anything, mock.Anything).Return(false, errors.New("redis down"))

	token, err := svc.Login(ctx, "ann@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, serviceerrors.ErrUnauthorized)
}

func TestLogout_RevokesUntilExpiry(t *testing.T) {
	tokens := new(mocks.TokenStore)
	svc := newTestService(new(mocks.Storage), tokens)

	expires := time.Now().Add(30 * time.Minute)
	tokens.On("Revoke", mock.Anything, "jti-1", mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 29*time.Minute && ttl <= 30*time.Minute
	})).Return(nil)

	err := svc.Logout(context.Background(), models.Principal{UserId: 3, TokenId: "jti-1", ExpiresAt: expires})
	assert.NoError(t, err)
	tokens.AssertExpectations(t)
}
