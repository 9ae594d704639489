// Package fixtures reads reference data dumps (ingredients, tags) shipped as
// JSON arrays.
package fixtures

import (
	"fmt"
	"io"
	"os"

	"foodgram/internal/models"

	"github.com/goccy/go-json"
)

func LoadIngredients(path string) ([]models.Ingredient, error) {
	const op = "fixtures.LoadIngredients"

	items, err := load[models.Ingredient](path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func LoadTags(path string) ([]models.Tag, error) {
	const op = "fixtures.LoadTags"

	items, err := load[models.Tag](path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func load[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode[T](f)
}

// Decode reads a JSON array of T.
func Decode[T any](r io.Reader) ([]T, error) {
	var items []T
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode %T list: %w", *new(T), err)
	}
	return items, nil
}
