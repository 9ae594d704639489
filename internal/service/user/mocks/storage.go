package mocks

import (
	"foodgram/internal/models"

	"context"

	"github.com/stretchr/testify/mock"
)

type Storage struct {
	mock.Mock
}

func (m *Storage) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.User), args.Error(1)
}
func (m *Storage) PasswordHash(ctx context.Context, userId int64) (string, error) {
	args := m.Called(ctx, userId)
	return args.String(0), args.Error(1)
}
func (m *Storage) UserProfile(ctx context.Context, viewerId, userId int64) (models.User, error) {
	args := m.Called(ctx, viewerId, userId)
	return args.Get(0).(models.User), args.Error(1)
}
func (m *Storage) ListUsers(ctx context.Context, viewerId int64, limit, offset int) ([]models.User, int, error) {
	args := m.Called(ctx, viewerId, limit, offset)
	return args.Get(0).([]models.User), args.Int(1), args.Error(2)
}
func (m *Storage) UpdatePassword(ctx context.Context, userId int64, hash string) error {
	args := m.Called(ctx, userId, hash)
	return args.Error(0)
}
func (m *Storage) UpdateAvatar(ctx context.Context, userId int64, avatar *string) error {
	args := m.Called(ctx, userId, avatar)
	return args.Error(0)
}
func (m *Storage) Subscribe(ctx context.Context, subscriberId, authorId int64) error {
	args := m.Called(ctx, subscriberId, authorId)
	return args.Error(0)
}
func (m *Storage) Unsubscribe(ctx context.Context, subscriberId, authorId int64) error {
	args := m.Called(ctx, subscriberId, authorId)
	return args.Error(0)
}
func (m *Storage) Subscriptions(ctx context.Context, subscriberId int64, limit, offset int) ([]models.Author, int, error) {
	args := m.Called(ctx, subscriberId, limit, offset)
	return args.Get(0).([]models.Author), args.Int(1), args.Error(2)
}
func (m *Storage) RecipesCount(ctx context.Context, authorId int64) (int, error) {
	args := m.Called(ctx, authorId)
	return args.Int(0), args.Error(1)
}
func (m *Storage) RecipesByAuthors(ctx context.Context, authorIds []int64, perAuthor int) (map[int64][]models.ShortRecipe, error) {
	args := m.Called(ctx, authorIds, perAuthor)
	return args.Get(0).(map[int64][]models.ShortRecipe), args.Error(1)
}
