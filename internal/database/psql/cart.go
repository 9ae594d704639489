package psql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"foodgram/internal/models"
	"foodgram/pkg/lib/logger/sl"
)

// CartEntries returns the recipes in the user's shopping cart in the order
// they were added, each with its ingredient lines.
func (s *Storage) CartEntries(ctx context.Context, userId int64) ([]models.CartEntry, error) {
	const op = "database.psql.CartEntries"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return nil, err
	}

	var rows []struct {
		EntryId    int64          `db:"entry_id"`
		RecipeId   int64          `db:"recipe_id"`
		RecipeName string         `db:"recipe_name"`
		AddedAt    time.Time      `db:"added_at"`
		Name       sql.NullString `db:"ingredient_name"`
		Unit       sql.NullString `db:"measurement_unit"`
		Amount     sql.NullInt64  `db:"amount"`
	}
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT sc.id AS entry_id, r.id AS recipe_id, r.name AS recipe_name, sc.created_at AS added_at,
			i.name AS ingredient_name, i.measurement_unit, ri.amount
		FROM shopping_cart sc
		JOIN recipe r ON r.id = sc.recipe_id
		LEFT JOIN recipe_ingredient ri ON ri.recipe_id = r.id
		LEFT JOIN ingredient i ON i.id = ri.ingredient_id
		WHERE sc.user_id = $1
		ORDER BY sc.created_at, sc.id, ri.id;
	`, userId); err != nil {
		log.Error("Error reading shopping cart", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries := make([]models.CartEntry, 0, len(rows))
	lastEntry := int64(-1)
	for _, row := range rows {
		if row.EntryId != lastEntry {
			entries = append(entries, models.CartEntry{
				RecipeId:   row.RecipeId,
				RecipeName: row.RecipeName,
				AddedAt:    row.AddedAt,
				Lines:      []models.CartLine{},
			})
			lastEntry = row.EntryId
		}
		if !row.Name.Valid {
			continue
		}
		cur := &entries[len(entries)-1]
		cur.Lines = append(cur.Lines, models.CartLine{
			Name:   row.Name.String,
			Unit:   row.Unit.String,
			Amount: int(row.Amount.Int64),
		})
	}

	return entries, nil
}
