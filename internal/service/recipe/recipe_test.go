package recipeservice_test

import (
	databaseerrors "foodgram/internal/database"
	"foodgram/internal/models"
	serviceerrors "foodgram/internal/service"
	recipeservice "foodgram/internal/service/recipe"
	"foodgram/internal/service/recipe/mocks"
	"foodgram/pkg/lib/logger/slogdiscard"
	"foodgram/pkg/lib/randcode"

	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// codeReader yields bytes that make the generator draw exactly codes, in order.
func codeReader(codes ...string) *bytes.Reader {
	var b []byte
	for _, code := range codes {
		for i := 0; i < len(code); i++ {
			b = append(b, byte(strings.IndexByte(randcode.Alphanumeric, code[i])))
		}
	}
	return bytes.NewReader(b)
}

func newTestService(storage *mocks.Storage, opts recipeservice.Options) *recipeservice.RecipeService {
	svc, err := recipeservice.New(slogdiscard.NewDiscardLogger(), storage, opts)
	if err != nil {
		panic(err)
	}
	return svc
}

func withCode(code string) interface{} {
	return mock.MatchedBy(func(r models.NewRecipe) bool { return r.ShortCode == code })
}

func validRecipe() models.NewRecipe {
	return models.NewRecipe{
		AuthorId:    7,
		Name:        "Pancakes",
		Image:       "data:image/png;base64,AAAA",
		Text:        "Mix and fry",
		CookingTime: 20,
		TagIds:      []int64{1},
		Ingredients: []models.IngredientAmount{{Id: 3, Amount: 200}},
	}
}

func expectValidLinks(storage *mocks.Storage) {
	storage.On("ExistingTagIDs", mock.Anything, []int64{1}).Return([]int64{1}, nil)
	storage.On("ExistingIngredientIDs", mock.Anything, []int64{3}).Return([]int64{3}, nil)
}

func TestCreate_RetriesAfterShortCodeRace(t *testing.T) {
	storage := new(mocks.Storage)
	metrics := new(mocks.Metrics)
	svc := newTestService(storage, recipeservice.Options{
		Codes: &randcode.Generator{
			Alphabet:    randcode.Alphanumeric,
			Length:      6,
			MaxAttempts: 30,
			Rand:        codeReader("Ab3dE9", "Zz9yY8"),
		},
		Metrics: metrics,
	})

	expectValidLinks(storage)
	storage.On("ShortCodeExists", mock.Anything, "Ab3dE9").Return(false, nil).Once()
	storage.On("CreateRecipe", mock.Anything, withCode("Ab3dE9")).
		Return(int64(0), fmt.Errorf("database.psql.CreateRecipe: %w", databaseerrors.ErrShortCodeTaken)).Once()
	storage.On("ShortCodeExists", mock.Anything, "Zz9yY8").Return(false, nil).Once()
	storage.On("CreateRecipe", mock.Anything, withCode("Zz9yY8")).Return(int64(42), nil).Once()
	storage.On("GetRecipe", mock.Anything, int64(7), int64(42)).
		Return(models.Recipe{Id: 42, Name: "Pancakes", ShortCode: "Zz9yY8"}, nil)
	metrics.On("ShortCodeRetry").Once()

	recipe, err := svc.Create(context.Background(), validRecipe())
	require.NoError(t, err)
	assert.Equal(t, int64(42), recipe.Id)
	assert.Equal(t, "Zz9yY8", recipe.ShortCode)

	storage.AssertExpectations(t)
	metrics.AssertExpectations(t)
}

func TestCreate_InsertCollisionsExhaustAttempts(t *testing.T) {
	storage := new(mocks.Storage)
	metrics := new(mocks.Metrics)
	svc := newTestService(storage, recipeservice.Options{
		Codes: &randcode.Generator{
			Alphabet:    randcode.Alphanumeric,
			Length:      6,
			MaxAttempts: 2,
			Rand:        codeReader("aaaaaa", "bbbbbb"),
		},
		Metrics: metrics,
	})

	expectValidLinks(storage)
	storage.On("ShortCodeExists", mock.Anything, mock.Anything).Return(false, nil)
	storage.On("CreateRecipe", mock.Anything, mock.Anything).Return(int64(0), databaseerrors.ErrShortCodeTaken).Twice()
	metrics.On("ShortCodeRetry").Once()

	_, err := svc.Create(context.Background(), validRecipe())
	assert.ErrorIs(t, err, serviceerrors.ErrCodeSpaceExhausted)

	storage.AssertExpectations(t)
	metrics.AssertExpectations(t)
}

func TestCreate_GeneratorExhausted(t *testing.T) {
	storage := new(mocks.Storage)
	svc := newTestService(storage, recipeservice.Options{
		Codes: &randcode.Generator{
			Alphabet:    randcode.Alphanumeric,
			Length:      6,
			MaxAttempts: 3,
			Rand:        codeReader("aaaaaa", "bbbbbb", "cccccc"),
		},
	})

	expectValidLinks(storage)
	storage.On("ShortCodeExists", mock.Anything, mock.Anything).Return(true, nil).Times(3)

	_, err := svc.Create(context.Background(), validRecipe())
	assert.ErrorIs(t, err, serviceerrors.ErrCodeSpaceExhausted)

	storage.AssertExpectations(t)
	storage.AssertNotCalled(t, "CreateRecipe", mock.Anything, mock.Anything)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.NewRecipe)
		setup  func(s *mocks.Storage)
	}{
		{
			name:   "missing image",
			mutate: func(r *models.NewRecipe) { r.Image = "" },
		},
		{
			name:   "no tags",
			mutate: func(r *models.NewRecipe) { r.TagIds = nil },
		},
		{
			name:   "repeated tag",
			mutate: func(r *models.NewRecipe) { r.TagIds = []int64{1, 1} },
		},
		{
			name:   "unknown tag",
			mutate: func(r *models.NewRecipe) { r.TagIds = []int64{1, 5} },
			setup: func(s *mocks.Storage) {
				s.On("ExistingTagIDs", mock.Anything, []int64{1, 5}).Return([]int64{1}, nil)
			},
		},
		{
			name:   "no ingredients",
			mutate: func(r *models.NewRecipe) { r.Ingredients = nil },
			setup: func(s *mocks.Storage) {
				s.On("ExistingTagIDs", mock.Anything, []int64{1}).Return([]int64{1}, nil)
			},
		},
		{
			name: "repeated ingredient",
			mutate: func(r *models.NewRecipe) {
				r.Ingredients = []models.IngredientAmount{{Id: 3, Amount: 1}, {Id: 3, Amount: 2}}
			},
			setup: func(s *mocks.Storage) {
				s.On("ExistingTagIDs", mock.Anything, []int64{1}).Return([]int64{1}, nil)
			},
		},
		{
			name:   "zero amount",
			mutate: func(r *models.NewRecipe) { r.Ingredients = []models.IngredientAmount{{Id: 3, Amount: 0}} },
			setup: func(s *mocks.Storage) {
				s.On("ExistingTagIDs", mock.Anything, []int64{1}).Return([]int64{1}, nil)
			},
		},
		{
			name:   "unknown ingredient",
			mutate: func(r *models.NewRecipe) {},
			setup: func(s *mocks.Storage) {
				s.On("ExistingTagIDs", mock.Anything, []int64{1}).Return([]int64{1}, nil)
				s.On("ExistingIngredientIDs", mock.Anything, []int64{3}).Return([]int64{}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := new(mocks.Storage)
			if tt.setup != nil {
				tt.setup(storage)
			}
			svc := newTestService(storage, recipeservice.Options{})

			recipe := validRecipe()
			tt.mutate(&recipe)

			_, err := svc.Create(context.Background(), recipe)
			assert.ErrorIs(t, err, serviceerrors.ErrInvalidInput)

			storage.AssertExpectations(t)
			storage.AssertNotCalled(t, "CreateRecipe", mock.Anything, mock.Anything)
		})
	}
}

func TestContextCanceled(t *testing.T) {
	storage := new(mocks.Storage)
	svc := newTestService(storage, recipeservice.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Create(ctx, validRecipe())
	assert.ErrorIs(t, err, serviceerrors.ErrContextCanceled)

	_, err = svc.Get(ctx, 0, 1)
	assert.ErrorIs(t, err, serviceerrors.ErrContextCanceled)

	_, err = svc.DownloadShoppingList(ctx, 1)
	assert.ErrorIs(t, err, serviceerrors.ErrContextCanceled)

	storage.AssertExpectations(t)
}

func TestDeadlineExceeded(t *testing.T) {
	storage := new(mocks.Storage)
	svc := newTestService(storage, recipeservice.Options{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*50)
	defer cancel()
	time.Sleep(time.Millisecond * 55)

	err := svc.Delete(ctx, 1, 1)
	assert.ErrorIs(t, err, serviceerrors.ErrDeadlineExceeded)

	storage.AssertExpectations(t)
}

func TestNew_DefaultCacheSize(t *testing.T) {
	for _, size := range []int{-1, 0, 1} {
		svc, err := recipeservice.New(slogdiscard.NewDiscardLogger(), new(mocks.Storage), recipeservice.Options{CacheSize: size})
		require.NoError(t, err, size)
		assert.NotNil(t, svc)
	}
}

func TestUpdate_OnlyAuthor(t *testing.T) {
	storage := new(mocks.Storage)
	svc := newTestService(storage, recipeservice.Options{})

	storage.On("RecipeMeta", mock.Anything, int64(9)).Return(models.RecipeMeta{Id: 9, AuthorId: 7, ShortCode: "Ab3dE9"}, nil)

	name := "Mine now"
	_, err := svc.Update(context.Background(), 8, 9, models.RecipeUpdate{Name: &name})
	assert.ErrorIs(t, err, serviceerrors.ErrForbidden)

	storage.AssertExpectations(t)
	storage.AssertNotCalled(t, "UpdateRecipe", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_ValidatesReplacedIngredients(t *testing.T) {
	storage := new(mocks.Storage)
	svc := newTestService(storage, recipeservice.Options{})

	storage.On("RecipeMeta", mock.Anything, int64(9)).Return(models.RecipeMeta{Id: 9, AuthorId: 7}, nil)
	storage.On("ExistingTagIDs", mock.Anything, []int64{1}).Return([]int64{1}, nil)

	_, err := svc.Update(context.Background(), 7, 9, models.RecipeUpdate{
		TagIds:      []int64{1},
		Ingredients: []models.IngredientAmount{},
	})
	assert.ErrorIs(t, err, serviceerrors.ErrInvalidInput)
	assert.ErrorContains(t, err, "ingredients: at least one ingredient is required")

	storage.AssertExpectations(t)
	storage.AssertNotCalled(t, "UpdateRecipe", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_RequiresTagsAndIngredients(t *testing.T) {
	cookingTime := 15

	tests := []struct {
		name    string
		upd     models.RecipeUpdate
		setup   func(s *mocks.Storage)
		wantErr string
	}{
		{
			name:    "No tags",
			upd:     models.RecipeUpdate{CookingTime: &cookingTime, Ingredients: []models.IngredientAmount{{Id: 3, Amount: 1}}},
			setup:   func(s *mocks.Storage) {},
			wantErr: "tags: at least one tag is required",
		},
		{
			name: "No ingredients",
			upd:  models.RecipeUpdate{CookingTime: &cookingTime, TagIds: []int64{1}},
			setup: func(s *mocks.Storage) {
				s.On("ExistingTagIDs", mock.Anything, []int64{1}).Return([]int64{1}, nil)
			},
			wantErr: "ingredients: at least one ingredient is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := new(mocks.Storage)
			svc := newTestService(storage, recipeservice.Options{})

			storage.On("RecipeMeta", mock.Anything, int64(9)).Return(models.RecipeMeta{Id: 9, AuthorId: 7}, nil)
			tt.setup(storage)

			_, err := svc.Update(context.Background(), 7, 9, tt.upd)
			assert.ErrorIs(t, err, serviceerrors.ErrInvalidInput)
			assert.ErrorContains(t, err, tt.wantErr)

			storage.AssertExpectations(t)
			storage.AssertNotCalled(t, "UpdateRecipe", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdate_Success(t *testing.T) {
	storage := new(mocks.Storage)
	svc := newTestService(storage, recipeservice.Options{})

	cookingTime := 15
	upd := models.RecipeUpdate{
		CookingTime: &cookingTime,
		TagIds:      []int64{1},
		Ingredients: []models.IngredientAmount{{Id: 3, Amount: 200}},
	}

	storage.On("RecipeMeta", mock.Anything, int64(9)).Return(models.RecipeMeta{Id: 9, AuthorId: 7}, nil)
	expectValidLinks(storage)
	storage.On("UpdateRecipe", mock.Anything, int64(9), upd).Return(nil)
	storage.On("GetRecipe", mock.Anything, int64(7), int64(9)).Return(models.Recipe{Id: 9, CookingTime: 15}, nil)

	recipe, err := svc.Update(context.Background(), 7, 9, upd)
	require.NoError(t, err)
	assert.Equal(t, 15, recipe.CookingTime)

	storage.AssertExpectations(t)
}

func TestShortLinks_CacheAndInvalidation(t *testing.T) {
	storage := new(mocks.Storage)
	svc := newTestService(storage, recipeservice.Options{BaseURL: "https://foodgram.example/"})
	ctx := context.Background()

	storage.On("RecipeMeta", mock.Anything, int64(9)).Return(models.RecipeMeta{Id: 9, AuthorId: 7, ShortCode: "Ab3dE9"}, nil)

	link, err := svc.GetLink(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "https://foodgram.example/s/Ab3dE9", link)

	// served from the cache filled by GetLink
	id, err := svc.ResolveShortCode(ctx, "Ab3dE9")
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	storage.AssertNotCalled(t, "RecipeIDByShortCode", mock.Anything, "Ab3dE9")

	storage.On("DeleteRecipe", mock.Anything, int64(9)).Return(nil)
	require.NoError(t, svc.Delete(ctx, 7, 9))

	storage.On("RecipeIDByShortCode", mock.Anything, "Ab3dE9").
		Return(int64(0), fmt.Errorf("database.psql.RecipeIDByShortCode: %w", databaseerrors.ErrNotFound))
	_, err = svc.ResolveShortCode(ctx, "Ab3dE9")
	assert.ErrorIs(t, err, serviceerrors.ErrNotFound)

	storage.AssertExpectations(t)
}

func TestResolveShortCode_CachesStorageHit(t *testing.T) {
	storage := new(mocks.Storage)
	svc := newTestService(storage, recipeservice.Options{})
	ctx := context.Background()

	storage.On("RecipeIDByShortCode", mock.Anything, "Zz9yY8").Return(int64(3), nil).Once()

	for i := 0; i < 3; i++ {
		id, err := svc.ResolveShortCode(ctx, "Zz9yY8")
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)
	}

	storage.AssertExpectations(t)
}

func TestList_AnonymousDropsPersonalFilters(t *testing.T) {
	storage := new(mocks.Storage)
	svc := newTestService(storage, recipeservice.Options{})

	storage.On("ListRecipes", mock.Anything, models.RecipeFilter{TagSlugs: []string{"lunch"}, Limit: 6}).
		Return([]models.Recipe{{Id: 1}}, 1, nil)

	recipes, total, err := svc.List(context.Background(), models.RecipeFilter{
		TagSlugs:         []string{"lunch"},
		IsFavorited:      true,
		IsInShoppingCart: true,
		Limit:            6,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, recipes, 1)

	storage.AssertExpectations(t)
}

func TestAddFavorite(t *testing.T) {
	short := models.ShortRecipe{Id: 2, Name: "Soup", Image: "img", CookingTime: 30}

	tests := []struct {
		name     string
		shortErr error
		addErr   error
		wantErr  error
	}{
		{name: "added"},
		{name: "missing recipe", shortErr: databaseerrors.ErrNotFound, wantErr: serviceerrors.ErrNotFound},
		{name: "already favorited", addErr: databaseerrors.ErrAlreadyExists, wantErr: serviceerrors.ErrAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := new(mocks.Storage)
			svc := newTestService(storage, recipeservice.Options{})

			storage.On("ShortRecipe", mock.Anything, int64(2)).Return(short, tt.shortErr)
			if tt.shortErr == nil {
				storage.On("AddFavorite", mock.Anything, int64(1), int64(2)).Return(tt.addErr)
			}

			got, err := svc.AddFavorite(context.Background(), 1, 2)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, short, got)
			}
			storage.AssertExpectations(t)
		})
	}
}

func TestRemoveFromCart_NotInCart(t *testing.T) {
	storage := new(mocks.Storage)
	svc := newTestService(storage, recipeservice.Options{})

	storage.On("RemoveFromCart", mock.Anything, int64(1), int64(2)).Return(databaseerrors.ErrNotFound)

	err := svc.RemoveFromCart(context.Background(), 1, 2)
	assert.ErrorIs(t, err, serviceerrors.ErrNotFound)
	storage.AssertExpectations(t)
}

func TestDownloadShoppingList(t *testing.T) {
	storage := new(mocks.Storage)
	metrics := new(mocks.Metrics)
	svc := newTestService(storage, recipeservice.Options{
		Location: time.FixedZone("MSK", 3*60*60),
		Metrics:  metrics,
		Now:      func() time.Time { return time.Date(2025, time.March, 7, 9, 5, 0, 0, time.UTC) },
	})

	storage.On("CartEntries", mock.Anything, int64(1)).Return([]models.CartEntry{
		{RecipeName: "A", Lines: []models.CartLine{{Name: "flour", Unit: "g", Amount: 200}, {Name: "sugar", Unit: "g", Amount: 50}}},
		{RecipeName: "B", Lines: []models.CartLine{{Name: "flour", Unit: "g", Amount: 300}, {Name: "egg", Unit: "pcs", Amount: 2}}},
	}, nil)
	metrics.On("ShoppingListDownload", "ok").Once()

	file, err := svc.DownloadShoppingList(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Date and time: 07-03-2025 12:05\n"+
		"\n"+
		"Shopping list:\n"+
		"1. Egg (pcs) - 2\n"+
		"2. Flour (g) - 500\n"+
		"3. Sugar (g) - 50\n"+
		"\n"+
		"Recipes:\n"+
		"1. A\n"+
		"2. B\n", string(file))

	storage.AssertExpectations(t)
	metrics.AssertExpectations(t)
}

func TestDownloadShoppingList_EmptyCart(t *testing.T) {
	storage := new(mocks.Storage)
	metrics := new(mocks.Metrics)
	svc := newTestService(storage, recipeservice.Options{Metrics: metrics})

	storage.On("CartEntries", mock.Anything, int64(1)).Return([]models.CartEntry{}, nil)
	metrics.On("ShoppingListDownload", "empty").Once()

	file, err := svc.DownloadShoppingList(context.Background(), 1)
	assert.ErrorIs(t, err, serviceerrors.ErrEmptyCart)
	assert.Nil(t, file)

	storage.AssertExpectations(t)
	metrics.AssertExpectations(t)
}
