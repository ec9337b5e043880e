package models

import "time"

type Favorite struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID   int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID int64     `json:"recipe_id" gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index"`
	AddedAt  time.Time `json:"added_at" gorm:"autoCreateTime"`

	User   *User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Recipe *Recipe `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
}

func (Favorite) TableName() string {
	return "favorites"
}

type ShoppingCartEntry struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID   int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	RecipeID int64     `json:"recipe_id" gorm:"not null;uniqueIndex:idx_cart_user_recipe;index"`
	AddedAt  time.Time `json:"added_at" gorm:"autoCreateTime"`

	User   *User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Recipe *Recipe `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
}

func (ShoppingCartEntry) TableName() string {
	return "shopping_cart"
}
