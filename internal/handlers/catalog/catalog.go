package catalog

import (
	"context"
	"log/slog"
	"net/http"

	"foodgram/internal/handlers/respond"
	"foodgram/internal/models"
	"foodgram/pkg/lib/urlparser"
)

type CatalogService interface {
	Tags(ctx context.Context) ([]models.Tag, error)
	Tag(ctx context.Context, id int64) (models.Tag, error)
	Ingredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	Ingredient(ctx context.Context, id int64) (models.Ingredient, error)
}

type Handler struct {
	log     *slog.Logger
	service CatalogService
}

func New(log *slog.Logger, service CatalogService) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// GET /api/tags
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.ListTags"
	log := h.log.With("op", op)

	tags, err := h.service.Tags(r.Context())
	if err != nil {
		respond.Error(w, log, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}

	respond.JSON(w, log, http.StatusOK, tags)
}

// GET /api/tags/{id}
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.GetTag"
	log := h.log.With("op", op)

	id, err := urlparser.PathID(r, "id")
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	tag, err := h.service.Tag(r.Context(), id)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusOK, tag)
}

// GET /api/ingredients?name=
func (h *Handler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.ListIngredients"
	log := h.log.With("op", op)

	ingredients, err := h.service.Ingredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		respond.Error(w, log, err)
		return
	}
	if ingredients == nil {
		ingredients = []models.Ingredient{}
	}

	respond.JSON(w, log, http.StatusOK, ingredients)
}

// GET /api/ingredients/{id}
func (h *Handler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.GetIngredient"
	log := h.log.With("op", op)

	id, err := urlparser.PathID(r, "id")
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	ingredient, err := h.service.Ingredient(r.Context(), id)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusOK, ingredient)
}
