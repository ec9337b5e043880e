package service

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
)

const (
	ShoppingListHeader   = "Shopping list:"
	ShoppingListFilename = "shopping_list.txt"
)

type ShoppingListService interface {
	Build(ctx context.Context, userID int64) (string, error)
}

type shoppingListService struct {
	repo repository.ShoppingListRepository
}

func NewShoppingListService(repo repository.ShoppingListRepository) ShoppingListService {
	return &shoppingListService{repo: repo}
}

// Build renders the aggregated ingredients of the user's shopping cart.
func (s *shoppingListService) Build(ctx context.Context, userID int64) (string, error) {
	items, err := s.repo.Aggregate(ctx, userID)
	if err != nil {
		return "", err
	}
	return FormatShoppingList(items), nil
}

// FormatShoppingList writes the header followed by one "<name> - <total> <unit>." line
// per item, in the given order.
func FormatShoppingList(items []models.ShoppingListItem) string {
	var b strings.Builder
	b.WriteString(ShoppingListHeader)
	b.WriteByte('\n')
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s - %d %s.", item.Name, item.Total, item.MeasurementUnit)
	}
	return b.String()
}
