package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	cataloghandler "foodgram/internal/handlers/catalog"
	"foodgram/internal/handlers/catalog/mocks"
	"foodgram/internal/handlers/respond"
	"foodgram/internal/models"
	serviceerrors "foodgram/internal/service"
	"foodgram/pkg/lib/logger/slogdiscard"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestHandler(service *mocks.Service) *cataloghandler.Handler {
	return cataloghandler.New(slogdiscard.NewDiscardLogger(), service)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandler_ListTags(t *testing.T) {
	tests := []struct {
		name         string
		setupMock    func(s *mocks.Service)
		expectedCode int
		expectedBody string
	}{
		{
			name: "Success",
			setupMock: func(s *mocks.Service) {
				s.On("Tags", mock.Anything).Return([]models.Tag{{Id: 1, Name: "Breakfast", Slug: "breakfast", Color: "#E26C2D"}}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `[{"id":1,"name":"Breakfast","slug":"breakfast","color":"#E26C2D"}]`,
		},
		{
			name: "Empty",
			setupMock: func(s *mocks.Service) {
				s.On("Tags", mock.Anything).Return([]models.Tag(nil), nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name: "Context canceled",
			setupMock: func(s *mocks.Service) {
				s.On("Tags", mock.Anything).Return([]models.Tag(nil), serviceerrors.ErrContextCanceled)
			},
			expectedCode: respond.StatusClientClosedRequest,
		},
		{
			name: "Failed",
			setupMock: func(s *mocks.Service) {
				s.On("Tags", mock.Anything).Return([]models.Tag(nil), errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.Service)
			tt.setupMock(mockService)

			handler := newTestHandler(mockService)
			req := httptest.NewRequest(http.MethodGet, "/api/tags", nil)
			ww := httptest.NewRecorder()

			handler.ListTags(ww, req)

			assert.Equal(t, tt.expectedCode, ww.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, ww.Body.String())
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_GetTag(t *testing.T) {
	tests := []struct {
		name         string
		id           string
		setupMock    func(s *mocks.Service)
		expectedCode int
	}{
		{
			name: "Success",
			id:   "2",
			setupMock: func(s *mocks.Service) {
				s.On("Tag", mock.Anything, int64(2)).Return(models.Tag{Id: 2, Slug: "lunch"}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Bad id",
			id:           "two",
			setupMock:    func(s *mocks.Service) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Not found",
			id:   "9",
			setupMock: func(s *mocks.Service) {
				s.On("Tag", mock.Anything, int64(9)).Return(models.Tag{}, serviceerrors.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.Service)
			tt.setupMock(mockService)

			handler := newTestHandler(mockService)
			req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/tags/"+tt.id, nil), "id", tt.id)
			ww := httptest.NewRecorder()

			handler.GetTag(ww, req)

			assert.Equal(t, tt.expectedCode, ww.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_ListIngredients_PassesPrefix(t *testing.T) {
	mockService := new(mocks.Service)
	mockService.On("Ingredients", mock.Anything, "сах").
		Return([]models.Ingredient{{Id: 4, Name: "сахар", MeasurementUnit: "г"}}, nil)

	handler := newTestHandler(mockService)
	req := httptest.NewRequest(http.MethodGet, "/api/ingredients?name=%D1%81%D0%B0%D1%85", nil)
	ww := httptest.NewRecorder()

	handler.ListIngredients(ww, req)

	require.Equal(t, http.StatusOK, ww.Code)
	var got []models.Ingredient
	require.NoError(t, json.Unmarshal(ww.Body.Bytes(), &got))
	assert.Equal(t, "сахар", got[0].Name)
	mockService.AssertExpectations(t)
}

func TestHandler_GetIngredient_NotFound(t *testing.T) {
	mockService := new(mocks.Service)
	mockService.On("Ingredient", mock.Anything, int64(5)).Return(models.Ingredient{}, serviceerrors.ErrNotFound)

	handler := newTestHandler(mockService)
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/ingredients/5", nil), "id", "5")
	ww := httptest.NewRecorder()

	handler.GetIngredient(ww, req)

	assert.Equal(t, http.StatusNotFound, ww.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, ww.Body.String())
}
