package repository

import (
	"context"
	"strings"

	"foodgram/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type IngredientRepository interface {
	List(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetByID(ctx context.Context, id int64) (*models.Ingredient, error)
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns all ingredients, or only those whose name starts with namePrefix
// (case-insensitive) when it is not empty.
func (r *ingredientRepository) List(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	var list []models.Ingredient
	db := r.db.WithContext(ctx)
	if namePrefix != "" {
		db = db.Where("LOWER(name) LIKE LOWER(?)", likeEscaper.Replace(namePrefix)+"%")
	}
	if err := db.Order("name").Order("id").Find(&list).Error; err != nil {
		return nil, wrap("list ingredients", err)
	}
	return list, nil
}

func (r *ingredientRepository) GetByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := r.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, wrap("get ingredient", err)
	}
	return &ing, nil
}

func (r *ingredientRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	found := make([]int64, 0, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error; err != nil {
		return nil, wrap("lookup ingredients", err)
	}
	return found, nil
}
