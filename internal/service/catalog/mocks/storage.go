package mocks

import (
	"foodgram/internal/models"

	"context"

	"github.com/stretchr/testify/mock"
)

type Storage struct {
	mock.Mock
}

func (m *Storage) ListTags(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Tag), args.Error(1)
}
func (m *Storage) TagByID(ctx context.Context, id int64) (models.Tag, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Tag), args.Error(1)
}
func (m *Storage) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	args := m.Called(ctx, namePrefix)
	return args.Get(0).([]models.Ingredient), args.Error(1)
}
func (m *Storage) IngredientByID(ctx context.Context, id int64) (models.Ingredient, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Ingredient), args.Error(1)
}
func (m *Storage) ImportIngredients(ctx context.Context, ingredients []models.Ingredient) (int64, error) {
	args := m.Called(ctx, ingredients)
	return args.Get(0).(int64), args.Error(1)
}
func (m *Storage) ImportTags(ctx context.Context, tags []models.Tag) (int64, error) {
	args := m.Called(ctx, tags)
	return args.Get(0).(int64), args.Error(1)
}
