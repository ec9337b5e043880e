package service

import (
	"context"
	"errors"

	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
)

// Subscription is a followed author with a preview of their recipes.
type Subscription struct {
	UserProfile
	Recipes      []models.Recipe
	RecipesCount int64
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*Subscription, error)
	Unsubscribe(ctx context.Context, userID, authorID int64) error
	List(ctx context.Context, userID int64, page, pageSize, recipesLimit int) ([]Subscription, int64, error)
}

type subscriptionService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	recipes repository.RecipeRepository
}

func NewSubscriptionService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	recipes repository.RecipeRepository,
) SubscriptionService {
	return &subscriptionService{users: users, follows: follows, recipes: recipes}
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*Subscription, error) {
	if userID == authorID {
		return nil, ErrSelfSubscribe
	}

	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	exists, err := s.follows.Exists(ctx, userID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadySubscribed
	}

	if err := s.follows.Add(ctx, userID, authorID); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrAlreadySubscribed
		case errors.Is(err, repository.ErrForeignKey):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrCheck):
			return nil, ErrSelfSubscribe
		}
		return nil, err
	}

	subs, err := s.withRecipes(ctx, []UserProfile{{User: *author, IsSubscribed: true}}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if _, err := s.users.FindByID(ctx, authorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.follows.Remove(ctx, userID, authorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotSubscribed
		}
		return err
	}
	return nil
}

// List pages through followed authors. recipesLimit <= 0 includes every recipe.
func (s *subscriptionService) List(ctx context.Context, userID int64, page, pageSize, recipesLimit int) ([]Subscription, int64, error) {
	authors, total, err := s.follows.ListFollowed(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	profiles := make([]UserProfile, 0, len(authors))
	for _, a := range authors {
		profiles = append(profiles, UserProfile{User: a, IsSubscribed: true})
	}

	subs, err := s.withRecipes(ctx, profiles, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

func (s *subscriptionService) withRecipes(ctx context.Context, profiles []UserProfile, recipesLimit int) ([]Subscription, error) {
	ids := make([]int64, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.User.ID)
	}
	counts, err := s.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Subscription, 0, len(profiles))
	for _, p := range profiles {
		recipes, err := s.recipes.ListByAuthor(ctx, p.User.ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		out = append(out, Subscription{
			UserProfile:  p,
			Recipes:      recipes,
			RecipesCount: counts[p.User.ID],
		})
	}
	return out, nil
}
