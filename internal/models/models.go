package models

import "time"

type User struct {
	Id           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Avatar       *string   `json:"avatar" db:"avatar"`
	IsSubscribed bool      `json:"is_subscribed" db:"is_subscribed"`
	CreatedAt    time.Time `json:"-" db:"created_at"`
}

// Author is a subscription target together with a preview of their recipes.
type Author struct {
	User
	Recipes      []ShortRecipe `json:"recipes"`
	RecipesCount int           `json:"recipes_count" db:"recipes_count"`
}

type Tag struct {
	Id    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Slug  string `json:"slug" db:"slug"`
	Color string `json:"color" db:"color"`
}

type Ingredient struct {
	Id              int64  `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	MeasurementUnit string `json:"measurement_unit" db:"measurement_unit"`
}

// RecipeIngredient is one line of a recipe as it is read back.
type RecipeIngredient struct {
	Id              int64  `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	MeasurementUnit string `json:"measurement_unit" db:"measurement_unit"`
	Amount          int    `json:"amount" db:"amount"`
}

// IngredientAmount is one line of a recipe as it is written.
type IngredientAmount struct {
	Id     int64 `json:"id" validate:"required,gt=0"`
	Amount int   `json:"amount" validate:"required,gte=1"`
}

type Recipe struct {
	Id               int64              `json:"id" db:"id"`
	Tags             []Tag              `json:"tags"`
	Author           User               `json:"author"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited" db:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart" db:"is_in_shopping_cart"`
	Name             string             `json:"name" db:"name"`
	Image            string             `json:"image" db:"image"`
	Text             string             `json:"text" db:"text"`
	CookingTime      int                `json:"cooking_time" db:"cooking_time"`
	ShortCode        string             `json:"-" db:"short_code"`
	PubDate          time.Time          `json:"-" db:"pub_date"`
}

// ShortRecipe is the compact view used in favorites, cart and subscriptions.
type ShortRecipe struct {
	Id          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Image       string `json:"image" db:"image"`
	CookingTime int    `json:"cooking_time" db:"cooking_time"`
}

// RecipeMeta is what permission checks and short links need.
type RecipeMeta struct {
	Id        int64  `db:"id"`
	AuthorId  int64  `db:"author_id"`
	ShortCode string `db:"short_code"`
}

type NewRecipe struct {
	AuthorId    int64
	Name        string
	Image       string
	Text        string
	CookingTime int
	ShortCode   string
	TagIds      []int64
	Ingredients []IngredientAmount
}

// RecipeUpdate carries a partial update; nil fields are left untouched.
type RecipeUpdate struct {
	Name        *string
	Image       *string
	Text        *string
	CookingTime *int
	TagIds      []int64
	Ingredients []IngredientAmount
}

type RecipeFilter struct {
	ViewerId         int64
	AuthorId         int64
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	Limit            int
	Offset           int
}

// CartLine is one ingredient line of a recipe in the cart.
type CartLine struct {
	Name   string
	Unit   string
	Amount int
}

// CartEntry is a recipe in a user's shopping cart with its ingredient lines.
type CartEntry struct {
	RecipeId   int64
	RecipeName string
	AddedAt    time.Time
	Lines      []CartLine
}

// IngredientTotal is the summed amount of one (name, unit) pair.
type IngredientTotal struct {
	Name  string
	Unit  string
	Total int
}

type ShoppingList struct {
	Ingredients []IngredientTotal
	Recipes     []string
}

// Principal identifies the caller of an authenticated request.
type Principal struct {
	UserId    int64
	TokenId   string
	ExpiresAt time.Time
}
