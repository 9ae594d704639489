package mocks

import (
	"foodgram/internal/models"

	"context"

	"github.com/stretchr/testify/mock"
)

type Authenticator struct {
	mock.Mock
}

func (m *Authenticator) Authenticate(ctx context.Context, token string) (models.Principal, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(models.Principal), args.Error(1)
}
