package fixtures_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foodgram/internal/fixtures"
	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIngredients(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingredients.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "абрикосовое варенье", "measurement_unit": "г"},
		{"name": "flour", "measurement_unit": "g"}
	]`), 0o600))

	got, err := fixtures.LoadIngredients(path)
	require.NoError(t, err)
	assert.Equal(t, []models.Ingredient{
		{Name: "абрикосовое варенье", MeasurementUnit: "г"},
		{Name: "flour", MeasurementUnit: "g"},
	}, got)
}

func TestLoadTags_MissingFile(t *testing.T) {
	_, err := fixtures.LoadTags(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode_NotAnArray(t *testing.T) {
	_, err := fixtures.Decode[models.Tag](strings.NewReader(`{"name":"Breakfast"}`))
	assert.Error(t, err)
}
