package models

import "time"

type Recipe struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	AuthorID    int64     `json:"author_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"size:200;uniqueIndex;not null"`
	Text        string    `json:"text" gorm:"not null"`
	Image       string    `json:"image" gorm:"not null"`
	CookingTime int       `json:"cooking_time" gorm:"not null;check:cooking_time >= 1"`
	PubDate     time.Time `json:"pub_date" gorm:"autoCreateTime;index"`

	// Associations
	Author      User               `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Tags        []Tag              `json:"tags" gorm:"many2many:tag_recipes;constraint:OnDelete:CASCADE;"`
	Ingredients []IngredientRecipe `json:"ingredients" gorm:"foreignKey:RecipeID"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// IngredientRecipe stores the amount of one ingredient within one recipe.
type IngredientRecipe struct {
	ID           int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	RecipeID     int64 `json:"recipe_id" gorm:"not null;uniqueIndex:idx_ingredient_recipe"`
	IngredientID int64 `json:"ingredient_id" gorm:"not null;uniqueIndex:idx_ingredient_recipe"`
	Amount       int   `json:"amount" gorm:"not null;check:amount >= 1"`

	Ingredient Ingredient `json:"ingredient" gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE;"`
}

func (IngredientRecipe) TableName() string {
	return "ingredient_recipes"
}

// explicit join model for Recipe.Tags
type TagRecipe struct {
	RecipeID int64 `json:"recipe_id" gorm:"primaryKey"`
	TagID    int64 `json:"tag_id" gorm:"primaryKey"`
}

func (TagRecipe) TableName() string {
	return "tag_recipes"
}
