package mocks

import (
	"foodgram/internal/models"

	"context"

	"github.com/stretchr/testify/mock"
)

type Service struct {
	mock.Mock
}

func (m *Service) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}
func (m *Service) Logout(ctx context.Context, principal models.Principal) error {
	args := m.Called(ctx, principal)
	return args.Error(0)
}
