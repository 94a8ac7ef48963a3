package models

import "time"

type User struct {
	ID           int    `gorm:"primary_key;autoIncrement" json:"id"`
	Email        string `gorm:"size:254;unique;not null" json:"email"`
	Username     string `gorm:"size:150;unique;not null;index" json:"username"`
	FirstName    string `gorm:"size:150;not null" json:"first_name"`
	LastName     string `gorm:"size:150;not null" json:"last_name"`
	PasswordHash string `gorm:"not null" json:"-"` // json:"-" prevents password from being exposed in API
}

type Tag struct {
	ID    int    `gorm:"primary_key;autoIncrement" json:"id"`
	Name  string `gorm:"size:200;unique;not null" json:"name"`
	Slug  string `gorm:"size:200;unique;not null" json:"slug"`
	Color string `gorm:"size:9" json:"color"` // hex color, e.g. #E26C2D
}

type Ingredient struct {
	ID              int    `gorm:"primary_key;autoIncrement" json:"id"`
	Name            string `gorm:"size:200;not null;index" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null" json:"measurement_unit"`
}

type Recipe struct {
	ID          int       `gorm:"primary_key;autoIncrement" json:"id"`
	AuthorID    int       `gorm:"not null;index" json:"author_id"` // auto-filled, immutable
	Name        string    `gorm:"size:200;not null" json:"name"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Image       string    `gorm:"not null" json:"image"` // URL of the stored image
	CookingTime int       `gorm:"not null" json:"cooking_time"`
	PubDate     time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
}

// RecipeTag links recipes to tags. Rows are replaced wholesale on every
// recipe update.
type RecipeTag struct {
	ID       int `gorm:"primary_key;autoIncrement"`
	RecipeID int `gorm:"not null;uniqueIndex:idx_recipe_tag" json:"recipe_id"`
	TagID    int `gorm:"not null;uniqueIndex:idx_recipe_tag;index" json:"tag_id"`
}

// IngredientAmount is the quantity of one ingredient required by one recipe.
// Rows are replaced wholesale on every recipe update.
type IngredientAmount struct {
	ID           int `gorm:"primary_key;autoIncrement"`
	RecipeID     int `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID int `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index" json:"ingredient_id"`
	Amount       int `gorm:"not null" json:"amount"`
}

type Favorite struct {
	ID       int `gorm:"primary_key;autoIncrement"`
	UserID   int `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID int `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index" json:"recipe_id"`
}

type ShoppingCart struct {
	ID       int `gorm:"primary_key;autoIncrement"`
	UserID   int `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	RecipeID int `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index" json:"recipe_id"`
}

// Follow is a directed (follower, followee) subscription. Self-follow is
// rejected at the handler level.
type Follow struct {
	ID       int `gorm:"primary_key;autoIncrement"`
	UserID   int `gorm:"not null;uniqueIndex:idx_follow_user_author" json:"user_id"`
	AuthorID int `gorm:"not null;uniqueIndex:idx_follow_user_author;index" json:"author_id"`
}
