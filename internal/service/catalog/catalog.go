package catalogservice

import (
	"context"
	"log/slog"
	"strings"

	"foodgram/internal/models"
	serviceerrors "foodgram/internal/service"
)

type CatalogStorage interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	TagByID(ctx context.Context, id int64) (models.Tag, error)
	ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	IngredientByID(ctx context.Context, id int64) (models.Ingredient, error)
	ImportIngredients(ctx context.Context, ingredients []models.Ingredient) (int64, error)
	ImportTags(ctx context.Context, tags []models.Tag) (int64, error)
}

type CatalogService struct {
	log     *slog.Logger
	storage CatalogStorage
}

func New(log *slog.Logger, storage CatalogStorage) *CatalogService {
	return &CatalogService{
		log:     log,
		storage: storage,
	}
}

func (c *CatalogService) Tags(ctx context.Context) ([]models.Tag, error) {
	const op = "service.catalog.Tags"
	log := c.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return nil, err
	}

	tags, err := c.storage.ListTags(ctx)
	if err != nil {
		return nil, serviceerrors.Wrap(log, op, err, "Failed to list tags")
	}

	return tags, nil
}

func (c *CatalogService) Tag(ctx context.Context, id int64) (models.Tag, error) {
	const op = "service.catalog.Tag"
	log := c.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return models.Tag{}, err
	}

	tag, err := c.storage.TagByID(ctx, id)
	if err != nil {
		return models.Tag{}, serviceerrors.Wrap(log, op, err, "Failed to get tag")
	}

	return tag, nil
}

// Ingredients lists ingredients whose name starts with prefix, ignoring case.
func (c *CatalogService) Ingredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	const op = "service.catalog.Ingredients"
	log := c.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return nil, err
	}

	ingredients, err := c.storage.ListIngredients(ctx, strings.TrimSpace(prefix))
	if err != nil {
		return nil, serviceerrors.Wrap(log, op, err, "Failed to list ingredients")
	}

	return ingredients, nil
}

func (c *CatalogService) Ingredient(ctx context.Context, id int64) (models.Ingredient, error) {
	const op = "service.catalog.Ingredient"
	log := c.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return models.Ingredient{}, err
	}

	ingredient, err := c.storage.IngredientByID(ctx, id)
	if err != nil {
		return models.Ingredient{}, serviceerrors.Wrap(log, op, err, "Failed to get ingredient")
	}

	return ingredient, nil
}

// ImportIngredients loads reference data, skipping blank entries and pairs
// that already exist. It returns the number of rows added.
func (c *CatalogService) ImportIngredients(ctx context.Context, ingredients []models.Ingredient) (int64, error) {
	const op = "service.catalog.ImportIngredients"
	log := c.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return 0, err
	}

	clean := make([]models.Ingredient, 0, len(ingredients))
	for _, ing := range ingredients {
		ing.Name = strings.TrimSpace(ing.Name)
		ing.MeasurementUnit = strings.TrimSpace(ing.MeasurementUnit)
		if ing.Name == "" || ing.MeasurementUnit == "" {
			continue
		}
		clean = append(clean, ing)
	}

	n, err := c.storage.ImportIngredients(ctx, clean)
	if err != nil {
		return 0, serviceerrors.Wrap(log, op, err, "Failed to import ingredients")
	}
	log.Info("Ingredients imported", slog.Int64("added", n), slog.Int("read", len(ingredients)))

	return n, nil
}

func (c *CatalogService) ImportTags(ctx context.Context, tags []models.Tag) (int64, error) {
	const op = "service.catalog.ImportTags"
	log := c.log.With("op", op)

	if err := serviceerrors.CheckCtx(ctx, log, op); err != nil {
		return 0, err
	}

	clean := make([]models.Tag, 0, len(tags))
	for _, tag := range tags {
		tag.Name = strings.TrimSpace(tag.Name)
		tag.Slug = strings.TrimSpace(tag.Slug)
		if tag.Name == "" || tag.Slug == "" {
			continue
		}
		clean = append(clean, tag)
	}

	n, err := c.storage.ImportTags(ctx, clean)
	if err != nil {
		return 0, serviceerrors.Wrap(log, op, err, "Failed to import tags")
	}
	log.Info("Tags imported", slog.Int64("added", n), slog.Int("read", len(tags)))

	return n, nil
}
