package recipeservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	databaseerrors "foodgram/internal/database"
	"foodgram/internal/models"
	serviceerrors "foodgram/internal/service"
	"foodgram/internal/service/shoppinglist"
	"foodgram/pkg/lib/datauri"
	"foodgram/pkg/lib/logger/sl"
	"foodgram/pkg/lib/randcode"

	lru "github.com/hashicorp/golang-lru"
)

const defaultCacheSize = 1024

type RecipeStorage interface {
	ShortCodeExists(ctx context.Context, code string) (bool, error)
	CreateRecipe(ctx context.Context, recipe models.NewRecipe) (int64, error)
	UpdateRecipe(ctx context.Context, recipeId int64, upd models.RecipeUpdate) error
	DeleteRecipe(ctx context.Context, recipeId int64) error
	RecipeMeta(ctx context.Context, recipeId int64) (models.RecipeMeta, error)
	RecipeIDByShortCode(ctx context.Context, code string) (int64, error)
	ShortRecipe(ctx context.Context, recipeId int64) (models.ShortRecipe, error)
	GetRecipe(ctx context.Context, viewerId, recipeId int64) (models.Recipe, error)
	ListRecipes(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, int, error)
	ExistingTagIDs(ctx context.Context, ids []int64) ([]int64, error)
	ExistingIngredientIDs(ctx context.Context, ids []int64) ([]int64, error)
	AddFavorite(ctx context.Context, userId, recipeId int64) error
	RemoveFavorite(ctx context.Context, userId, recipeId int64) error
	AddToCart(ctx context.Context, userId, recipeId int64) error
	RemoveFromCart(ctx context.Context, userId, recipeId int64) error
	CartEntries(ctx context.Context, userId int64) ([]models.CartEntry, error)
}

type Metrics interface {
	ShortCodeRetry()
	ShoppingListDownload(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) ShortCodeRetry()             {}
func (noopMetrics) ShoppingListDownload(string) {}

type Options struct {
	// BaseURL prefixes short links, without a trailing slash.
	BaseURL   string
	Location  *time.Location
	CacheSize int
	Codes     *randcode.Generator
	Metrics   Metrics
	Now       func() time.Time
}

type RecipeService struct {
	log      *slog.Logger
	storage  RecipeStorage
	codes    *randcode.Generator
	links    *lru.Cache
	metrics  Metrics
	baseURL  string
	location *time.Location
	now      func() time.Time
}

func New(log *slog.Logger, storage RecipeStorage, opts Options) (*RecipeService, error) {
	const op = "service.recipe.New"

	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	links, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("%s: short link cache: %w", op, err)
	}

	codes := opts.Codes
	if codes == nil {
		codes = randcode.New()
	}
	location := opts.Location
	if location == nil {
		location = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	var metrics Metrics = noopMetrics{}
	if opts.Metrics != nil {
		metrics = opts.Metrics
	}

	return &RecipeService{
		log:      log,
		storage:  storage,
		codes:    codes,
		links:    links,
		metrics:  metrics,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		location: location,
		now:      now,
	}, nil
}

// Create validates the recipe, assigns it a fresh short code and stores it.
// A short code lost to a concurrent insert is redrawn, at most as many times
// as the generator allows.
func (s *RecipeService) Create(ctx context.Context, recipe models.NewRecipe) (models.Recipe, error) {
	const op = "service.recipe.Create"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return models.Recipe{}, err
	}

	if err := datauri.ValidateImage(recipe.Image); err != nil {
		return models.Recipe{}, serviceerrors.Wrap(log, op, serviceerrors.NewValidationError("image", err.Error()), "Invalid image")
	}
	if err := s.validateLinks(ctx, recipe.TagIds, recipe.Ingredients); err != nil {
		return models.Recipe{}, serviceerrors.Wrap(log, op, err, "Failed to validate recipe")
	}

	attempts := s.codes.Attempts()
	var recipeId int64
	for attempt := 1; ; attempt++ {
		code, err := s.codes.Generate(ctx, s.storage.ShortCodeExists)
		if err != nil {
			if errors.Is(err, randcode.ErrCodeSpaceExhausted) {
				log.Error("Short code space exhausted", sl.Err(err))
				return models.Recipe{}, fmt.Errorf("%s: %w", op, serviceerrors.ErrCodeSpaceExhausted)
			}
			return models.Recipe{}, serviceerrors.Wrap(log, op, err, "Failed to generate short code")
		}
		recipe.ShortCode = code

		recipeId, err = s.storage.CreateRecipe(ctx, recipe)
		if err == nil {
			break
		}
		if !errors.Is(err, databaseerrors.ErrShortCodeTaken) {
			return models.Recipe{}, serviceerrors.Wrap(log, op, err, "Failed to create recipe")
		}
		if attempt >= attempts {
			log.Error("Short code kept colliding on insert", slog.Int("attempts", attempt))
			return models.Recipe{}, fmt.Errorf("%s: %w", op, serviceerrors.ErrCodeSpaceExhausted)
		}
		s.metrics.ShortCodeRetry()
		log.Warn("Short code taken on insert, retrying", slog.String("short_code", code), slog.Int("attempt", attempt))
	}

	created, err := s.storage.GetRecipe(ctx, recipe.AuthorId, recipeId)
	if err != nil {
		return models.Recipe{}, serviceerrors.Wrap(log, op, err, "Failed to read created recipe")
	}

	return created, nil
}

func (s *RecipeService) Update(ctx context.Context, userId, recipeId int64, upd models.RecipeUpdate) (models.Recipe, error) {
	const op = "service.recipe.Update"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return models.Recipe{}, err
	}

	if _, err := s.authorize(ctx, userId, recipeId); err != nil {
		return models.Recipe{}, serviceerrors.Wrap(log, op, err, "Failed to authorize update")
	}

	if upd.Image != nil {
		if err := datauri.ValidateImage(*upd.Image); err != nil {
			return models.Recipe{}, serviceerrors.Wrap(log, op, serviceerrors.NewValidationError("image", err.Error()), "Invalid image")
		}
	}
	if err := s.validateTags(ctx, upd.TagIds); err != nil {
		return models.Recipe{}, serviceerrors.Wrap(log, op, err, "Failed to validate tags")
	}
	if err := s.validateIngredients(ctx, upd.Ingredients); err != nil {
		return models.Recipe{}, serviceerrors.Wrap(log, op, err, "Failed to validate ingredients")
	}

	if err := s.storage.UpdateRecipe(ctx, recipeId, upd); err != nil {
		return models.Recipe{}, serviceerrors.Wrap(log, op, err, "Failed to update recipe")
	}

	updated, err := s.storage.GetRecipe(ctx, userId, recipeId)
	if err != nil {
		return models.Recipe{}, serviceerrors.Wrap(log, op, err, "Failed to read updated recipe")
	}

	return updated, nil
}

func (s *RecipeService) Delete(ctx context.Context, userId, recipeId int64) error {
	const op = "service.recipe.Delete"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return err
	}

	meta, err := s.authorize(ctx, userId, recipeId)
	if err != nil {
		return serviceerrors.Wrap(log, op, err, "Failed to authorize delete")
	}

	if err := s.storage.DeleteRecipe(ctx, recipeId); err != nil {
		return serviceerrors.Wrap(log, op, err, "Failed to delete recipe")
	}
	s.links.Remove(meta.ShortCode)

	return nil
}

func (s *RecipeService) Get(ctx context.Context, viewerId, recipeId int64) (models.Recipe, error) {
	const op = "service.recipe.Get"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return models.Recipe{}, err
	}

	recipe, err := s.storage.GetRecipe(ctx, viewerId, recipeId)
	if err != nil {
		return models.Recipe{}, serviceerrors.Wrap(log, op, err, "Failed to get recipe")
	}

	return recipe, nil
}

// List drops the favorited and in-cart filters for anonymous viewers.
func (s *RecipeService) List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, int, error) {
	const op = "service.recipe.List"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return nil, 0, err
	}

	if filter.ViewerId <= 0 {
		filter.ViewerId = 0
		filter.IsFavorited = false
		filter.IsInShoppingCart = false
	}

	recipes, total, err := s.storage.ListRecipes(ctx, filter)
	if err != nil {
		return nil, 0, serviceerrors.Wrap(log, op, err, "Failed to list recipes")
	}

	return recipes, total, nil
}

// GetLink returns the public short link of a recipe.
func (s *RecipeService) GetLink(ctx context.Context, recipeId int64) (string, error) {
	const op = "service.recipe.GetLink"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return "", err
	}

	meta, err := s.storage.RecipeMeta(ctx, recipeId)
	if err != nil {
		return "", serviceerrors.Wrap(log, op, err, "Failed to get recipe")
	}
	s.links.Add(meta.ShortCode, meta.Id)

	return s.baseURL + "/s/" + meta.ShortCode, nil
}

// ResolveShortCode maps a short code back to its recipe id.
func (s *RecipeService) ResolveShortCode(ctx context.Context, code string) (int64, error) {
	const op = "service.recipe.ResolveShortCode"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return 0, err
	}

	if cached, ok := s.links.Get(code); ok {
		return cached.(int64), nil
	}

	recipeId, err := s.storage.RecipeIDByShortCode(ctx, code)
	if err != nil {
		return 0, serviceerrors.Wrap(log, op, err, "Failed to resolve short code")
	}
	s.links.Add(code, recipeId)

	return recipeId, nil
}

func (s *RecipeService) AddFavorite(ctx context.Context, userId, recipeId int64) (models.ShortRecipe, error) {
	const op = "service.recipe.AddFavorite"
	return s.addRelation(ctx, op, userId, recipeId, s.storage.AddFavorite)
}

func (s *RecipeService) RemoveFavorite(ctx context.Context, userId, recipeId int64) error {
	const op = "service.recipe.RemoveFavorite"
	return s.removeRelation(ctx, op, userId, recipeId, s.storage.RemoveFavorite)
}

func (s *RecipeService) AddToCart(ctx context.Context, userId, recipeId int64) (models.ShortRecipe, error) {
	const op = "service.recipe.AddToCart"
	return s.addRelation(ctx, op, userId, recipeId, s.storage.AddToCart)
}

func (s *RecipeService) RemoveFromCart(ctx context.Context, userId, recipeId int64) error {
	const op = "service.recipe.RemoveFromCart"
	return s.removeRelation(ctx, op, userId, recipeId, s.storage.RemoveFromCart)
}

type relationFunc func(ctx context.Context, userId, recipeId int64) error

func (s *RecipeService) addRelation(ctx context.Context, op string, userId, recipeId int64, add relationFunc) (models.ShortRecipe, error) {
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return models.ShortRecipe{}, err
	}

	recipe, err := s.storage.ShortRecipe(ctx, recipeId)
	if err != nil {
		return models.ShortRecipe{}, serviceerrors.Wrap(log, op, err, "Failed to get recipe")
	}

	if err := add(ctx, userId, recipeId); err != nil {
		return models.ShortRecipe{}, serviceerrors.Wrap(log, op, err, "Failed to add recipe")
	}

	return recipe, nil
}

func (s *RecipeService) removeRelation(ctx context.Context, op string, userId, recipeId int64, remove relationFunc) error {
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return err
	}

	if err := remove(ctx, userId, recipeId); err != nil {
		return serviceerrors.Wrap(log, op, err, "Failed to remove recipe")
	}

	return nil
}

// DownloadShoppingList renders the user's cart as a text file.
func (s *RecipeService) DownloadShoppingList(ctx context.Context, userId int64) ([]byte, error) {
	const op = "service.recipe.DownloadShoppingList"
	log := s.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return nil, err
	}

	entries, err := s.storage.CartEntries(ctx, userId)
	if err != nil {
		s.metrics.ShoppingListDownload("error")
		return nil, serviceerrors.Wrap(log, op, err, "Failed to read shopping cart")
	}

	list, err := shoppinglist.Aggregate(entries)
	if err != nil {
		if errors.Is(err, serviceerrors.ErrEmptyCart) {
			s.metrics.ShoppingListDownload("empty")
			log.Info("Shopping cart is empty", slog.Int64("user_id", userId))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.metrics.ShoppingListDownload("error")
		log.Error("Failed to aggregate shopping cart", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.ShoppingListDownload("ok")
	return shoppinglist.Render(list, s.now().In(s.location)), nil
}

func (s *RecipeService) authorize(ctx context.Context, userId, recipeId int64) (models.RecipeMeta, error) {
	meta, err := s.storage.RecipeMeta(ctx, recipeId)
	if err != nil {
		return models.RecipeMeta{}, err
	}
	if meta.AuthorId != userId {
		return models.RecipeMeta{}, serviceerrors.ErrForbidden
	}
	return meta, nil
}

func (s *RecipeService) validateLinks(ctx context.Context, tagIds []int64, lines []models.IngredientAmount) error {
	if err := s.validateTags(ctx, tagIds); err != nil {
		return err
	}
	return s.validateIngredients(ctx, lines)
}

func (s *RecipeService) validateTags(ctx context.Context, tagIds []int64) error {
	if len(tagIds) == 0 {
		return serviceerrors.NewValidationError("tags", "at least one tag is required")
	}

	seen := make(map[int64]struct{}, len(tagIds))
	for _, id := range tagIds {
		if _, dup := seen[id]; dup {
			return serviceerrors.NewValidationError("tags", fmt.Sprintf("tag %d is repeated", id))
		}
		seen[id] = struct{}{}
	}

	found, err := s.storage.ExistingTagIDs(ctx, tagIds)
	if err != nil {
		return err
	}
	if missing := firstMissing(tagIds, found); missing != 0 {
		return serviceerrors.NewValidationError("tags", fmt.Sprintf("tag %d does not exist", missing))
	}

	return nil
}

func (s *RecipeService) validateIngredients(ctx context.Context, lines []models.IngredientAmount) error {
	if len(lines) == 0 {
		return serviceerrors.NewValidationError("ingredients", "at least one ingredient is required")
	}

	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, line := range lines {
		if line.Amount < 1 {
			return serviceerrors.NewValidationError("ingredients", "amount must be at least 1")
		}
		if _, dup := seen[line.Id]; dup {
			return serviceerrors.NewValidationError("ingredients", fmt.Sprintf("ingredient %d is repeated", line.Id))
		}
		seen[line.Id] = struct{}{}
		ids = append(ids, line.Id)
	}

	found, err := s.storage.ExistingIngredientIDs(ctx, ids)
	if err != nil {
		return err
	}
	if missing := firstMissing(ids, found); missing != 0 {
		return serviceerrors.NewValidationError("ingredients", fmt.Sprintf("ingredient %d does not exist", missing))
	}

	return nil
}

func firstMissing(want, found []int64) int64 {
	have := make(map[int64]struct{}, len(found))
	for _, id := range found {
		have[id] = struct{}{}
	}
	for _, id := range want {
		if _, ok := have[id]; !ok {
			return id
		}
	}
	return 0
}
