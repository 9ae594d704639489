package mocks

import (
	"foodgram/internal/models"

	"context"

	"github.com/stretchr/testify/mock"
)

type Service struct {
	mock.Mock
}

func (m *Service) Register(ctx context.Context, user models.User, password string) (models.User, error) {
	args := m.Called(ctx, user, password)
	return args.Get(0).(models.User), args.Error(1)
}
func (m *Service) Get(ctx context.Context, viewerId, userId int64) (models.User, error) {
	args := m.Called(ctx, viewerId, userId)
	return args.Get(0).(models.User), args.Error(1)
}
func (m *Service) Me(ctx context.Context, userId int64) (models.User, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).(models.User), args.Error(1)
}
func (m *Service) List(ctx context.Context, viewerId int64, limit, offset int) ([]models.User, int, error) {
	args := m.Called(ctx, viewerId, limit, offset)
	return args.Get(0).([]models.User), args.Int(1), args.Error(2)
}
func (m *Service) SetPassword(ctx context.Context, userId int64, current, next string) error {
	args := m.Called(ctx, userId, current, next)
	return args.Error(0)
}
func (m *Service) SetAvatar(ctx context.Context, userId int64, dataURI string) (string, error) {
	args := m.Called(ctx, userId, dataURI)
	return args.String(0), args.Error(1)
}
func (m *Service) DeleteAvatar(ctx context.Context, userId int64) error {
	args := m.Called(ctx, userId)
	return args.Error(0)
}
func (m *Service) Subscribe(ctx context.Context, subscriberId, authorId int64, recipesLimit int) (models.Author, error) {
	args := m.Called(ctx, subscriberId, authorId, recipesLimit)
	return args.Get(0).(models.Author), args.Error(1)
}
func (m *Service) Unsubscribe(ctx context.Context, subscriberId, authorId int64) error {
	args := m.Called(ctx, subscriberId, authorId)
	return args.Error(0)
}
func (m *Service) Subscriptions(ctx context.Context, subscriberId int64, limit, offset, recipesLimit int) ([]models.Author, int, error) {
	args := m.Called(ctx, subscriberId, limit, offset, recipesLimit)
	return args.Get(0).([]models.Author), args.Int(1), args.Error(2)
}
