package mocks

import (
	"foodgram/internal/models"

	"context"

	"github.com/stretchr/testify/mock"
)

type Service struct {
	mock.Mock
}

func (m *Service) Tags(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Tag), args.Error(1)
}
func (m *Service) Tag(ctx context.Context, id int64) (models.Tag, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Tag), args.Error(1)
}
func (m *Service) Ingredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]models.Ingredient), args.Error(1)
}
func (m *Service) Ingredient(ctx context.Context, id int64) (models.Ingredient, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Ingredient), args.Error(1)
}
