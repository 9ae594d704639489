package mocks

import (
	"foodgram/internal/models"

	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type Storage struct {
	mock.Mock
}

func (m *Storage) UserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

type TokenStore struct {
	mock.Mock
}

func (m *TokenStore) Revoke(ctx context.Context, tokenId string, ttl time.Duration) error {
	args := m.Called(ctx, tokenId, ttl)
	return args.Error(0)
}
func (m *TokenStore) IsRevoked(ctx context.Context, tokenId string) (bool, error) {
	args := m.Called(ctx, tokenId)
	return args.Bool(0), args.Error(1)
}
