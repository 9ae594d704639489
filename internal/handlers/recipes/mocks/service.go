package mocks

import (
	"foodgram/internal/models"

	"context"

	"github.com/stretchr/testify/mock"
)

type Service struct {
	mock.Mock
}

func (m *Service) Create(ctx context.Context, recipe models.NewRecipe) (models.Recipe, error) {
	args := m.Called(ctx, recipe)
	return args.Get(0).(models.Recipe), args.Error(1)
}
func (m *Service) Update(ctx context.Context, userId, recipeId int64, upd models.RecipeUpdate) (models.Recipe, error) {
	args := m.Called(ctx, userId, recipeId, upd)
	return args.Get(0).(models.Recipe), args.Error(1)
}
func (m *Service) Delete(ctx context.Context, userId, recipeId int64) error {
	args := m.Called(ctx, userId, recipeId)
	return args.Error(0)
}
func (m *Service) Get(ctx context.Context, viewerId, recipeId int64) (models.Recipe, error) {
	args := m.Called(ctx, viewerId, recipeId)
	return args.Get(0).(models.Recipe), args.Error(1)
}
func (m *Service) List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Recipe), args.Int(1), args.Error(2)
}
func (m *Service) GetLink(ctx context.Context, recipeId int64) (string, error) {
	args := m.Called(ctx, recipeId)
	return args.String(0), args.Error(1)
}
func (m *Service) AddFavorite(ctx context.Context, userId, recipeId int64) (models.ShortRecipe, error) {
	args := m.Called(ctx, userId, recipeId)
	return args.Get(0).(models.ShortRecipe), args.Error(1)
}
func (m *Service) RemoveFavorite(ctx context.Context, userId, recipeId int64) error {
	args := m.Called(ctx, userId, recipeId)
	return args.Error(0)
}
func (m *Service) AddToCart(ctx context.Context, userId, recipeId int64) (models.ShortRecipe, error) {
	args := m.Called(ctx, userId, recipeId)
	return args.Get(0).(models.ShortRecipe), args.Error(1)
}
func (m *Service) RemoveFromCart(ctx context.Context, userId, recipeId int64) error {
	args := m.Called(ctx, userId, recipeId)
	return args.Error(0)
}
func (m *Service) DownloadShoppingList(ctx context.Context, userId int64) ([]byte, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]byte), args.Error(1)
}

type Resolver struct {
	mock.Mock
}

func (m *Resolver) ResolveShortCode(ctx context.Context, code string) (int64, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(int64), args.Error(1)
}
