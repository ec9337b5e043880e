package repository

import (
	"context"
	"fmt"

	"foodgram/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// RecipeRelationRepository manages a (user, recipe) join table such as favorites
// or the shopping cart. The pair is unique at the database level.
type RecipeRelationRepository interface {
	Add(ctx context.Context, userID, recipeID int64) error
	Remove(ctx context.Context, userID, recipeID int64) error
	Exists(ctx context.Context, userID, recipeID int64) (bool, error)
	RecipeIDsAmong(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error)
}

type recipeRelationRepository struct {
	db    *gorm.DB
	table string
}

func NewFavoriteRepository(db *gorm.DB) RecipeRelationRepository {
	return &recipeRelationRepository{db: db, table: models.Favorite{}.TableName()}
}

func NewShoppingCartRepository(db *gorm.DB) RecipeRelationRepository {
	return &recipeRelationRepository{db: db, table: models.ShoppingCartEntry{}.TableName()}
}

// Add inserts the pair. A concurrent or repeated insert surfaces as ErrDuplicate.
func (r *recipeRelationRepository) Add(ctx context.Context, userID, recipeID int64) error {
	err := r.db.WithContext(ctx).
		Exec(fmt.Sprintf("INSERT INTO %s (user_id, recipe_id) VALUES (?, ?)", r.table), userID, recipeID).
		Error
	return wrap("add to "+r.table, err)
}

func (r *recipeRelationRepository) Remove(ctx context.Context, userID, recipeID int64) error {
	result := r.db.WithContext(ctx).
		Exec(fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND recipe_id = ?", r.table), userID, recipeID)
	if result.Error != nil {
		return wrap("remove from "+r.table, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("remove from "+r.table, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *recipeRelationRepository) Exists(ctx context.Context, userID, recipeID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table(r.table).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, wrap("check "+r.table, err)
	}
	return count > 0, nil
}

// RecipeIDsAmong reports which of recipeIDs are related to userID.
func (r *recipeRelationRepository) RecipeIDsAmong(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	set := make(map[int64]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return set, nil
	}

	var ids []int64
	if err := r.db.WithContext(ctx).
		Table(r.table).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, wrap("lookup "+r.table, err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
