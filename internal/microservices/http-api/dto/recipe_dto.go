package dto

import "foodgram/internal/microservices/http-api/models"

// IngredientAmountRequest: one ingredient line of a recipe write
type IngredientAmountRequest struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// RecipeWriteRequest: payload for POST /recipes/ and PATCH /recipes/:id/.
// Image is a data URI; it may be empty on update to keep the current image.
type RecipeWriteRequest struct {
	Ingredients []IngredientAmountRequest `json:"ingredients"`
	Tags        []int64                   `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
}

type RecipeIngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               int64                      `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeShortResponse: simplified recipe used by favorites, cart and subscriptions
type RecipeShortResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// FromModelToRecipeResponse expects Author, Tags and Ingredients.Ingredient to be loaded.
func FromModelToRecipeResponse(r models.Recipe, authorSubscribed, isFavorited, isInShoppingCart bool) RecipeResponse {
	tags := make([]TagResponse, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, FromModelToTagResponse(t))
	}

	ingredients := make([]RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, ir := range r.Ingredients {
		ingredients = append(ingredients, RecipeIngredientResponse{
			ID:              ir.IngredientID,
			Name:            ir.Ingredient.Name,
			MeasurementUnit: ir.Ingredient.MeasurementUnit,
			Amount:          ir.Amount,
		})
	}

	return RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           FromModelToUserResponse(r.Author, authorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func FromModelToRecipeShortResponse(r models.Recipe) RecipeShortResponse {
	return RecipeShortResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}
