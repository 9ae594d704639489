package recipes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"foodgram/internal/handlers/respond"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	serviceerrors "foodgram/internal/service"
	"foodgram/internal/service/shoppinglist"
	"foodgram/pkg/lib/logger/sl"
	"foodgram/pkg/lib/pagination"
	"foodgram/pkg/lib/urlparser"
)

type RecipeService interface {
	Create(ctx context.Context, recipe models.NewRecipe) (models.Recipe, error)
	Update(ctx context.Context, userId, recipeId int64, upd models.RecipeUpdate) (models.Recipe, error)
	Delete(ctx context.Context, userId, recipeId int64) error
	Get(ctx context.Context, viewerId, recipeId int64) (models.Recipe, error)
	List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, int, error)
	GetLink(ctx context.Context, recipeId int64) (string, error)
	AddFavorite(ctx context.Context, userId, recipeId int64) (models.ShortRecipe, error)
	RemoveFavorite(ctx context.Context, userId, recipeId int64) error
	AddToCart(ctx context.Context, userId, recipeId int64) (models.ShortRecipe, error)
	RemoveFromCart(ctx context.Context, userId, recipeId int64) error
	DownloadShoppingList(ctx context.Context, userId int64) ([]byte, error)
}

type Handler struct {
	log     *slog.Logger
	service RecipeService
}

func New(log *slog.Logger, service RecipeService) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

type recipeRequest struct {
	Ingredients []models.IngredientAmount `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []int64                   `json:"tags" validate:"required,min=1,dive,gt=0"`
	Image       string                    `json:"image" validate:"required"`
	Name        string                    `json:"name" validate:"required,max=256"`
	Text        string                    `json:"text" validate:"required"`
	CookingTime int                       `json:"cooking_time" validate:"required,gte=1"`
}

// recipePatch leaves absent scalar fields untouched; ingredients and tags are
// always replaced.
type recipePatch struct {
	Ingredients []models.IngredientAmount `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []int64                   `json:"tags" validate:"required,min=1,dive,gt=0"`
	Image       *string                   `json:"image" validate:"omitnil,min=1"`
	Name        *string                   `json:"name" validate:"omitnil,min=1,max=256"`
	Text        *string                   `json:"text" validate:"omitnil,min=1"`
	CookingTime *int                      `json:"cooking_time" validate:"omitnil,gte=1"`
}

type linkResponse struct {
	ShortLink string `json:"short-link"`
}

// GET /api/recipes
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipes.List"
	log := h.log.With("op", op)

	query := r.URL.Query()
	params, err := pagination.FromQuery(query)
	if err != nil {
		respond.Error(w, log, err)
		return
	}
	filter, err := filterFromQuery(r)
	if err != nil {
		respond.Error(w, log, err)
		return
	}
	filter.Limit = params.Limit
	filter.Offset = params.Offset()

	recipes, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusOK, pagination.NewPage(recipes, total, params, r.URL))
}

func filterFromQuery(r *http.Request) (models.RecipeFilter, error) {
	query := r.URL.Query()

	authorId, err := urlparser.QueryID(query, "author")
	if err != nil {
		return models.RecipeFilter{}, err
	}
	favorited, err := urlparser.QueryFlag(query, "is_favorited")
	if err != nil {
		return models.RecipeFilter{}, err
	}
	inCart, err := urlparser.QueryFlag(query, "is_in_shopping_cart")
	if err != nil {
		return models.RecipeFilter{}, err
	}

	return models.RecipeFilter{
		ViewerId:         middleware.ViewerID(r.Context()),
		AuthorId:         authorId,
		TagSlugs:         urlparser.QueryList(query, "tags"),
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
	}, nil
}

// POST /api/recipes
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipes.Create"
	log := h.log.With("op", op)

	userId, ok := caller(w, r, log, op)
	if !ok {
		return
	}

	var req recipeRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, log, err)
		return
	}

	recipe, err := h.service.Create(r.Context(), models.NewRecipe{
		AuthorId:    userId,
		Name:        req.Name,
		Image:       req.Image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIds:      req.Tags,
		Ingredients: req.Ingredients,
	})
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	log.Info("Recipe created", slog.Int64("recipe_id", recipe.Id), slog.Int64("author_id", userId))
	respond.JSON(w, log, http.StatusCreated, recipe)
}

// GET /api/recipes/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipes.Get"
	log := h.log.With("op", op)

	recipeId, err := urlparser.PathID(r, "id")
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	recipe, err := h.service.Get(r.Context(), middleware.ViewerID(r.Context()), recipeId)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusOK, recipe)
}

// PATCH /api/recipes/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipes.Update"
	log := h.log.With("op", op)

	userId, ok := caller(w, r, log, op)
	if !ok {
		return
	}
	recipeId, err := urlparser.PathID(r, "id")
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	var req recipePatch
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, log, err)
		return
	}

	recipe, err := h.service.Update(r.Context(), userId, recipeId, models.RecipeUpdate{
		Name:        req.Name,
		Image:       req.Image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIds:      req.Tags,
		Ingredients: req.Ingredients,
	})
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusOK, recipe)
}

// DELETE /api/recipes/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipes.Delete"
	log := h.log.With("op", op)

	userId, ok := caller(w, r, log, op)
	if !ok {
		return
	}
	recipeId, err := urlparser.PathID(r, "id")
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	if err := h.service.Delete(r.Context(), userId, recipeId); err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.NoContent(w)
}

// GET /api/recipes/{id}/get-link
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipes.GetLink"
	log := h.log.With("op", op)

	recipeId, err := urlparser.PathID(r, "id")
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	link, err := h.service.GetLink(r.Context(), recipeId)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusOK, linkResponse{ShortLink: link})
}

// POST /api/recipes/{id}/favorite
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, "handlers.recipes.AddFavorite", h.service.AddFavorite)
}

// DELETE /api/recipes/{id}/favorite
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.removeRelation(w, r, "handlers.recipes.RemoveFavorite", h.service.RemoveFavorite)
}

// POST /api/recipes/{id}/shopping_cart
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, "handlers.recipes.AddToCart", h.service.AddToCart)
}

// DELETE /api/recipes/{id}/shopping_cart
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.removeRelation(w, r, "handlers.recipes.RemoveFromCart", h.service.RemoveFromCart)
}

func (h *Handler) addRelation(w http.ResponseWriter, r *http.Request, op string,
	add func(ctx context.Context, userId, recipeId int64) (models.ShortRecipe, error)) {
	log := h.log.With("op", op)

	userId, ok := caller(w, r, log, op)
	if !ok {
		return
	}
	recipeId, err := urlparser.PathID(r, "id")
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	recipe, err := add(r.Context(), userId, recipeId)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusCreated, recipe)
}

func (h *Handler) removeRelation(w http.ResponseWriter, r *http.Request, op string,
	remove func(ctx context.Context, userId, recipeId int64) error) {
	log := h.log.With("op", op)

	userId, ok := caller(w, r, log, op)
	if !ok {
		return
	}
	recipeId, err := urlparser.PathID(r, "id")
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	if err := remove(r.Context(), userId, recipeId); err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.NoContent(w)
}

// GET /api/recipes/download_shopping_cart
func (h *Handler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipes.DownloadShoppingCart"
	log := h.log.With("op", op)

	userId, ok := caller(w, r, log, op)
	if !ok {
		return
	}

	body, err := h.service.DownloadShoppingList(r.Context(), userId)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	w.Header().Set("Content-Type", shoppinglist.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", shoppinglist.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error("Failed to send shopping list", sl.Err(err))
	}
}

func caller(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string) (int64, bool) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respond.Error(w, log, fmt.Errorf("%s: %w", op, serviceerrors.ErrUnauthorized))
		return 0, false
	}
	return principal.UserId, true
}
