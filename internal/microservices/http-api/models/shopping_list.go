package models

// ShoppingListItem is one aggregated line of a user's shopping list.
// Not a table.
type ShoppingListItem struct {
	IngredientID    int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Total           int64  `json:"total"`
}
