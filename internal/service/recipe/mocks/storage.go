package mocks

import (
	"foodgram/internal/models"

	"context"

	"github.com/stretchr/testify/mock"
)

type Storage struct {
	mock.Mock
}

func (m *Storage) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}
func (m *Storage) CreateRecipe(ctx context.Context, recipe models.NewRecipe) (int64, error) {
	args := m.Called(ctx, recipe)
	return args.Get(0).(int64), args.Error(1)
}
func (m *Storage) UpdateRecipe(ctx context.Context, recipeId int64, upd models.RecipeUpdate) error {
	args := m.Called(ctx, recipeId, upd)
	return args.Error(0)
}
func (m *Storage) DeleteRecipe(ctx context.Context, recipeId int64) error {
	args := m.Called(ctx, recipeId)
	return args.Error(0)
}
func (m *Storage) RecipeMeta(ctx context.Context, recipeId int64) (models.RecipeMeta, error) {
	args := m.Called(ctx, recipeId)
	return args.Get(0).(models.RecipeMeta), args.Error(1)
}
func (m *Storage) RecipeIDByShortCode(ctx context.Context, code string) (int64, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(int64), args.Error(1)
}
func (m *Storage) ShortRecipe(ctx context.Context, recipeId int64) (models.ShortRecipe, error) {
	args := m.Called(ctx, recipeId)
	return args.Get(0).(models.ShortRecipe), args.Error(1)
}
func (m *Storage) GetRecipe(ctx context.Context, viewerId, recipeId int64) (models.Recipe, error) {
	args := m.Called(ctx, viewerId, recipeId)
	return args.Get(0).(models.Recipe), args.Error(1)
}
func (m *Storage) ListRecipes(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Recipe), args.Int(1), args.Error(2)
}
func (m *Storage) ExistingTagIDs(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]int64), args.Error(1)
}
func (m *Storage) ExistingIngredientIDs(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]int64), args.Error(1)
}
func (m *Storage) AddFavorite(ctx context.Context, userId, recipeId int64) error {
	args := m.Called(ctx, userId, recipeId)
	return args.Error(0)
}
func (m *Storage) RemoveFavorite(ctx context.Context, userId, recipeId int64) error {
	args := m.Called(ctx, userId, recipeId)
	return args.Error(0)
}
func (m *Storage) AddToCart(ctx context.Context, userId, recipeId int64) error {
	args := m.Called(ctx, userId, recipeId)
	return args.Error(0)
}
func (m *Storage) RemoveFromCart(ctx context.Context, userId, recipeId int64) error {
	args := m.Called(ctx, userId, recipeId)
	return args.Error(0)
}
func (m *Storage) CartEntries(ctx context.Context, userId int64) ([]models.CartEntry, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]models.CartEntry), args.Error(1)
}

type Metrics struct {
	mock.Mock
}

func (m *Metrics) ShortCodeRetry() {
	m.Called()
}
func (m *Metrics) ShoppingListDownload(outcome string) {
	m.Called(outcome)
}
