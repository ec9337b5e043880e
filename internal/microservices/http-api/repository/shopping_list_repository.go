package repository

import (
	"context"

	"foodgram/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type ShoppingListRepository interface {
	Aggregate(ctx context.Context, userID int64) ([]models.ShoppingListItem, error)
}

type shoppingListRepository struct {
	db *gorm.DB
}

func NewShoppingListRepository(db *gorm.DB) ShoppingListRepository {
	return &shoppingListRepository{db: db}
}

// units live on the ingredient, so summing per ingredient id never mixes units
const aggregateShoppingListSQL = `
SELECT i.id AS ingredient_id,
       i.name AS name,
       i.measurement_unit AS measurement_unit,
       SUM(ir.amount) AS total
FROM ingredient_recipes ir
JOIN shopping_cart sc ON sc.recipe_id = ir.recipe_id
JOIN ingredients i ON i.id = ir.ingredient_id
WHERE sc.user_id = ?
GROUP BY i.id, i.name, i.measurement_unit
ORDER BY i.name, i.id`

// Aggregate sums ingredient amounts across every recipe in the user's shopping cart.
func (r *shoppingListRepository) Aggregate(ctx context.Context, userID int64) ([]models.ShoppingListItem, error) {
	items := make([]models.ShoppingListItem, 0)
	if err := r.db.WithContext(ctx).Raw(aggregateShoppingListSQL, userID).Scan(&items).Error; err != nil {
		return nil, wrap("aggregate shopping list", err)
	}
	return items, nil
}
