package psql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	databaseerrors "foodgram/internal/database"
	"foodgram/internal/models"
	"foodgram/pkg/lib/logger/sl"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// recipeSelect expects the viewing user id as $1.
const recipeSelect = `
	SELECT r.id, r.name, r.image, r.text, r.cooking_time, r.short_code, r.pub_date,
		EXISTS (SELECT 1 FROM favorite f WHERE f.recipe_id = r.id AND f.user_id = $1) AS is_favorited,
		EXISTS (SELECT 1 FROM shopping_cart c WHERE c.recipe_id = r.id AND c.user_id = $1) AS is_in_shopping_cart,
		u.id AS author_id, u.email AS author_email, u.username AS author_username,
		u.first_name AS author_first_name, u.last_name AS author_last_name, u.avatar AS author_avatar,
		EXISTS (SELECT 1 FROM subscription s WHERE s.author_id = u.id AND s.subscriber_id = $1) AS author_is_subscribed
	FROM recipe r
	JOIN app_user u ON u.id = r.author_id`

type recipeRow struct {
	Id                 int64     `db:"id"`
	Name               string    `db:"name"`
	Image              string    `db:"image"`
	Text               string    `db:"text"`
	CookingTime        int       `db:"cooking_time"`
	ShortCode          string    `db:"short_code"`
	PubDate            time.Time `db:"pub_date"`
	IsFavorited        bool      `db:"is_favorited"`
	IsInShoppingCart   bool      `db:"is_in_shopping_cart"`
	AuthorId           int64     `db:"author_id"`
	AuthorEmail        string    `db:"author_email"`
	AuthorUsername     string    `db:"author_username"`
	AuthorFirstName    string    `db:"author_first_name"`
	AuthorLastName     string    `db:"author_last_name"`
	AuthorAvatar       *string   `db:"author_avatar"`
	AuthorIsSubscribed bool      `db:"author_is_subscribed"`
}

func (r recipeRow) toModel() models.Recipe {
	return models.Recipe{
		Id: r.Id,
		Author: models.User{
			Id:           r.AuthorId,
			Email:        r.AuthorEmail,
			Username:     r.AuthorUsername,
			FirstName:    r.AuthorFirstName,
			LastName:     r.AuthorLastName,
			Avatar:       r.AuthorAvatar,
			IsSubscribed: r.AuthorIsSubscribed,
		},
		Tags:             []models.Tag{},
		Ingredients:      []models.RecipeIngredient{},
		IsFavorited:      r.IsFavorited,
		IsInShoppingCart: r.IsInShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		ShortCode:        r.ShortCode,
		PubDate:          r.PubDate,
	}
}

func (s *Storage) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	const op = "database.psql.ShortCodeExists"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return false, err
	}

	var exists bool
	if err := s.db.QueryRowxContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM recipe WHERE short_code=$1);
	`, code).Scan(&exists); err != nil {
		log.Error("Error checking short code", sl.Err(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// CreateRecipe inserts the recipe with its tags and ingredient lines in one
// transaction. A collision on the short code yields ErrShortCodeTaken.
func (s *Storage) CreateRecipe(ctx context.Context, recipe models.NewRecipe) (int64, error) {
	const op = "database.psql.CreateRecipe"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("Failed to begin transaction", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	var recipeId int64
	if err := tx.QueryRowxContext(ctx, `
		INSERT INTO recipe (author_id, name, image, text, cooking_time, short_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`, recipe.AuthorId, recipe.Name, recipe.Image, recipe.Text, recipe.CookingTime, recipe.ShortCode).
		Scan(&recipeId); err != nil {
		switch {
		case isUniqueViolation(err, constraintShortCode):
			log.Warn("Short code collision", slog.String("short_code", recipe.ShortCode))
			return 0, fmt.Errorf("%s: %w", op, databaseerrors.ErrShortCodeTaken)
		case isForeignKeyViolation(err):
			log.Warn("Author doesn't exist", sl.Err(err))
			return 0, fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		default:
			log.Error("Failed to insert recipe", sl.Err(err))
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := insertRecipeTags(ctx, tx, recipeId, recipe.TagIds); err != nil {
		log.Error("Failed to link tags", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := insertRecipeIngredients(ctx, tx, recipeId, recipe.Ingredients); err != nil {
		log.Error("Failed to insert ingredient lines", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return recipeId, nil
}

func (s *Storage) UpdateRecipe(ctx context.Context, recipeId int64, upd models.RecipeUpdate) error {
	const op = "database.psql.UpdateRecipe"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("Failed to begin transaction", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE recipe SET
			name = COALESCE($2, name),
			image = COALESCE($3, image),
			text = COALESCE($4, text),
			cooking_time = COALESCE($5, cooking_time)
		WHERE id = $1;
	`, recipeId, upd.Name, upd.Image, upd.Text, upd.CookingTime)
	if err != nil {
		log.Error("Failed to update recipe", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		log.Error("Error reading affected rows", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		log.Warn("Recipe doesn't exist", sl.Err(databaseerrors.ErrNotFound))
		return fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
	}

	if upd.TagIds != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tag WHERE recipe_id=$1;`, recipeId); err != nil {
			log.Error("Failed to clear tags", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := insertRecipeTags(ctx, tx, recipeId, upd.TagIds); err != nil {
			log.Error("Failed to link tags", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if upd.Ingredients != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredient WHERE recipe_id=$1;`, recipeId); err != nil {
			log.Error("Failed to clear ingredient lines", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := insertRecipeIngredients(ctx, tx, recipeId, upd.Ingredients); err != nil {
			log.Error("Failed to insert ingredient lines", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func insertRecipeTags(ctx context.Context, tx *sqlx.Tx, recipeId int64, tagIds []int64) error {
	if len(tagIds) == 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO recipe_tag (recipe_id, tag_id)
		SELECT $1, unnest($2::bigint[]);
	`, recipeId, pq.Array(tagIds)); err != nil {
		if isForeignKeyViolation(err) {
			return databaseerrors.ErrNotFound
		}
		return err
	}
	return nil
}

func insertRecipeIngredients(ctx context.Context, tx *sqlx.Tx, recipeId int64, lines []models.IngredientAmount) error {
	if len(lines) == 0 {
		return nil
	}

	ids := make([]int64, len(lines))
	amounts := make([]int64, len(lines))
	for i, line := range lines {
		ids[i] = line.Id
		amounts[i] = int64(line.Amount)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO recipe_ingredient (recipe_id, ingredient_id, amount)
		SELECT $1, t.ingredient_id, t.amount
		FROM unnest($2::bigint[], $3::integer[]) AS t(ingredient_id, amount);
	`, recipeId, pq.Array(ids), pq.Array(amounts)); err != nil {
		if isForeignKeyViolation(err) {
			return databaseerrors.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Storage) DeleteRecipe(ctx context.Context, recipeId int64) error {
	const op = "database.psql.DeleteRecipe"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM recipe WHERE id=$1;`, recipeId)
	if err != nil {
		log.Error("Failed to delete recipe", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		log.Error("Error reading affected rows", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		log.Warn("Recipe doesn't exist", sl.Err(databaseerrors.ErrNotFound))
		return fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
	}

	return nil
}

func (s *Storage) RecipeMeta(ctx context.Context, recipeId int64) (models.RecipeMeta, error) {
	const op = "database.psql.RecipeMeta"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return models.RecipeMeta{}, err
	}

	var meta models.RecipeMeta
	if err := s.db.GetContext(ctx, &meta, `
		SELECT id, author_id, short_code FROM recipe WHERE id=$1;
	`, recipeId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("Recipe doesn't exist", sl.Err(databaseerrors.ErrNotFound))
			return models.RecipeMeta{}, fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		}
		log.Error("Error getting recipe", sl.Err(err))
		return models.RecipeMeta{}, fmt.Errorf("%s: %w", op, err)
	}

	return meta, nil
}

func (s *Storage) RecipeIDByShortCode(ctx context.Context, code string) (int64, error) {
	const op = "database.psql.RecipeIDByShortCode"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return 0, err
	}

	var id int64
	if err := s.db.GetContext(ctx, &id, `SELECT id FROM recipe WHERE short_code=$1;`, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		}
		log.Error("Error resolving short code", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) ShortRecipe(ctx context.Context, recipeId int64) (models.ShortRecipe, error) {
	const op = "database.psql.ShortRecipe"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return models.ShortRecipe{}, err
	}

	var recipe models.ShortRecipe
	if err := s.db.GetContext(ctx, &recipe, `
		SELECT id, name, image, cooking_time FROM recipe WHERE id=$1;
	`, recipeId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ShortRecipe{}, fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		}
		log.Error("Error getting recipe", sl.Err(err))
		return models.ShortRecipe{}, fmt.Errorf("%s: %w", op, err)
	}

	return recipe, nil
}

func (s *Storage) GetRecipe(ctx context.Context, viewerId, recipeId int64) (models.Recipe, error) {
	const op = "database.psql.GetRecipe"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return models.Recipe{}, err
	}

	var row recipeRow
	if err := s.db.GetContext(ctx, &row, recipeSelect+`
		WHERE r.id = $2;
	`, viewerId, recipeId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("Recipe doesn't exist", sl.Err(databaseerrors.ErrNotFound))
			return models.Recipe{}, fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		}
		log.Error("Error getting recipe", sl.Err(err))
		return models.Recipe{}, fmt.Errorf("%s: %w", op, err)
	}

	recipes := []models.Recipe{row.toModel()}
	if err := s.loadRecipeRelations(ctx, recipes); err != nil {
		log.Error("Error loading recipe relations", sl.Err(err))
		return models.Recipe{}, fmt.Errorf("%s: %w", op, err)
	}

	return recipes[0], nil
}

// ListRecipes returns one page of recipes matching the filter, newest first,
// together with the total number of matches.
func (s *Storage) ListRecipes(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, int, error) {
	const op = "database.psql.ListRecipes"
	log := s.log.With("op", op)

	if err := s.checkCtx(ctx, log, op); err != nil {
		return nil, 0, err
	}

	where, countArgs := recipeFilterClause(filter, nil)
	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT count(*) FROM recipe r WHERE `+where+`;`, countArgs...); err != nil {
		log.Error("Error counting recipes", sl.Err(err))
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	where, args := recipeFilterClause(filter, []any{filter.ViewerId})
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY r.pub_date DESC, r.id DESC
		LIMIT $%d OFFSET $%d;`, recipeSelect, where, len(args)-1, len(args))

	var rows []recipeRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		log.Error("Error listing recipes", sl.Err(err))
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	recipes := make([]models.Recipe, 0, len(rows))
	for _, row := range rows {
		recipes = append(recipes, row.toModel())
	}
	if err := s.loadRecipeRelations(ctx, recipes); err != nil {
		log.Error("Error loading recipe relations", sl.Err(err))
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return recipes, total, nil
}

// recipeFilterClause appends its parameters to args and numbers them after
// whatever args already holds.
func recipeFilterClause(f models.RecipeFilter, args []any) (string, []any) {
	conds := []string{"TRUE"}
	param := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.AuthorId > 0 {
		conds = append(conds, "r.author_id = "+param(f.AuthorId))
	}
	if len(f.TagSlugs) > 0 {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM recipe_tag rt JOIN tag t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug = ANY(`+param(pq.Array(f.TagSlugs))+`))`)
	}
	if f.ViewerId > 0 && f.IsFavorited {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM favorite fv WHERE fv.recipe_id = r.id AND fv.user_id = `+param(f.ViewerId)+`)`)
	}
	if f.ViewerId > 0 && f.IsInShoppingCart {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM shopping_cart sc WHERE sc.recipe_id = r.id AND sc.user_id = `+param(f.ViewerId)+`)`)
	}

	return strings.Join(conds, " AND "), args
}

func (s *Storage) loadRecipeRelations(ctx context.Context, recipes []models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]int64, len(recipes))
	index := make(map[int64]int, len(recipes))
	for i, r := range recipes {
		ids[i] = r.Id
		index[r.Id] = i
	}

	var tags []struct {
		RecipeId int64 `db:"recipe_id"`
		models.Tag
	}
	if err := s.db.SelectContext(ctx, &tags, `
		SELECT rt.recipe_id, t.id, t.name, t.slug, t.color
		FROM recipe_tag rt
		JOIN tag t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ANY($1)
		ORDER BY t.name;
	`, pq.Array(ids)); err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	for _, t := range tags {
		i := index[t.RecipeId]
		recipes[i].Tags = append(recipes[i].Tags, t.Tag)
	}

	var lines []struct {
		RecipeId int64 `db:"recipe_id"`
		models.RecipeIngredient
	}
	if err := s.db.SelectContext(ctx, &lines, `
		SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
		FROM recipe_ingredient ri
		JOIN ingredient i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ANY($1)
		ORDER BY ri.id;
	`, pq.Array(ids)); err != nil {
		return fmt.Errorf("load ingredients: %w", err)
	}
	for _, l := range lines {
		i := index[l.RecipeId]
		recipes[i].Ingredients = append(recipes[i].Ingredients, l.RecipeIngredient)
	}

	return nil
}
