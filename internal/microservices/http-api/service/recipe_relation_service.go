package service

import (
	"context"
	"errors"

	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
)

// RecipeRelationService toggles a recipe in one of the user's collections.
// Favorites and the shopping cart share this behaviour.
type RecipeRelationService interface {
	Add(ctx context.Context, userID, recipeID int64) (*models.Recipe, error)
	Remove(ctx context.Context, userID, recipeID int64) error
}

type recipeRelationService struct {
	relations  repository.RecipeRelationRepository
	recipes    repository.RecipeRepository
	errExists  error
	errMissing error
}

func NewFavoriteService(favorites repository.RecipeRelationRepository, recipes repository.RecipeRepository) RecipeRelationService {
	return &recipeRelationService{
		relations:  favorites,
		recipes:    recipes,
		errExists:  ErrAlreadyFavorited,
		errMissing: ErrNotFavorited,
	}
}

func NewShoppingCartService(cart repository.RecipeRelationRepository, recipes repository.RecipeRepository) RecipeRelationService {
	return &recipeRelationService{
		relations:  cart,
		recipes:    recipes,
		errExists:  ErrAlreadyInCart,
		errMissing: ErrNotInCart,
	}
}

// Add links the recipe to the user and returns it. Adding twice is a conflict.
func (s *recipeRelationService) Add(ctx context.Context, userID, recipeID int64) (*models.Recipe, error) {
	recipe, err := s.recipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	exists, err := s.relations.Exists(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, s.errExists
	}

	if err := s.relations.Add(ctx, userID, recipeID); err != nil {
		switch {
		// a concurrent add won the race on the unique pair
		case errors.Is(err, repository.ErrDuplicate):
			return nil, s.errExists
		case errors.Is(err, repository.ErrForeignKey):
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

// Remove unlinks the recipe. Removing a pair that does not exist is an error.
func (s *recipeRelationService) Remove(ctx context.Context, userID, recipeID int64) error {
	if _, err := s.recipe(ctx, recipeID); err != nil {
		return err
	}

	if err := s.relations.Remove(ctx, userID, recipeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.errMissing
		}
		return err
	}
	return nil
}

func (s *recipeRelationService) recipe(ctx context.Context, recipeID int64) (*models.Recipe, error) {
	recipe, err := s.recipes.GetSummary(ctx, recipeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}
