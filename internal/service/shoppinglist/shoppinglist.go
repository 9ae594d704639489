// Package shoppinglist sums ingredient amounts across the recipes in a
// shopping cart and renders the result as a plain-text file.
package shoppinglist

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"foodgram/internal/models"
	serviceerrors "foodgram/internal/service"
)

const (
	FileName    = "shopping_list.txt"
	ContentType = "text/plain; charset=utf-8"

	timeLayout = "02-01-2006 15:04"
)

type groupKey struct {
	name string
	unit string
}

// Aggregate groups lines by (name, unit) and sums them. Totals are ordered by
// case-folded name, then raw name, then unit; recipe names keep the order of
// entries.
func Aggregate(entries []models.CartEntry) (models.ShoppingList, error) {
	if len(entries) == 0 {
		return models.ShoppingList{}, serviceerrors.ErrEmptyCart
	}

	totals := make(map[groupKey]int)
	recipes := make([]string, 0, len(entries))
	for _, entry := range entries {
		recipes = append(recipes, entry.RecipeName)
		for _, line := range entry.Lines {
			totals[groupKey{name: line.Name, unit: line.Unit}] += line.Amount
		}
	}

	ingredients := make([]models.IngredientTotal, 0, len(totals))
	for k, total := range totals {
		ingredients = append(ingredients, models.IngredientTotal{
			Name:  k.name,
			Unit:  k.unit,
			Total: total,
		})
	}
	sort.Slice(ingredients, func(i, j int) bool {
		return lessTotal(ingredients[i], ingredients[j])
	})

	return models.ShoppingList{
		Ingredients: ingredients,
		Recipes:     recipes,
	}, nil
}

func lessTotal(a, b models.IngredientTotal) bool {
	if fa, fb := strings.ToLower(a.Name), strings.ToLower(b.Name); fa != fb {
		return fa < fb
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Unit < b.Unit
}

// Render formats list with now as the header timestamp.
func Render(list models.ShoppingList, now time.Time) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Date and time: %s\n", now.Format(timeLayout))
	buf.WriteString("\nShopping list:\n")
	for i, ing := range list.Ingredients {
		fmt.Fprintf(&buf, "%d. %s (%s) - %d\n", i+1, capitalize(ing.Name), ing.Unit, ing.Total)
	}
	buf.WriteString("\nRecipes:\n")
	for i, name := range list.Recipes {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, name)
	}

	return buf.Bytes()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
