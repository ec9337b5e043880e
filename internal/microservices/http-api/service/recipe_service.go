package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
	"foodgram/internal/storage"
)

const maxRecipeNameLength = 200

// maxSmallValue bounds cooking time and ingredient amounts to the smallint range.
const maxSmallValue = 32767

type IngredientAmount struct {
	IngredientID int64
	Amount       int
}

// RecipeInput is the full write payload of a recipe. Image may be nil on update,
// which keeps the current image.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	Ingredients []IngredientAmount
	TagIDs      []int64
	Image       *storage.Image
}

// RecipeQuery filters a listing. The boolean flags only apply to an authenticated viewer.
type RecipeQuery struct {
	AuthorID         int64
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeView is a recipe decorated for one viewer.
type RecipeView struct {
	Recipe           models.Recipe
	AuthorSubscribed bool
	IsFavorited      bool
	IsInShoppingCart bool
}

type RecipeService interface {
	Create(ctx context.Context, authorID int64, in RecipeInput) (*RecipeView, error)
	Update(ctx context.Context, userID, recipeID int64, in RecipeInput) (*RecipeView, error)
	Delete(ctx context.Context, userID, recipeID int64) error
	Get(ctx context.Context, viewerID, recipeID int64) (*RecipeView, error)
	List(ctx context.Context, viewerID int64, q RecipeQuery, page, pageSize int) ([]RecipeView, int64, error)
}

type recipeService struct {
	recipes     repository.RecipeRepository
	ingredients repository.IngredientRepository
	tags        repository.TagRepository
	favorites   repository.RecipeRelationRepository
	cart        repository.RecipeRelationRepository
	follows     repository.FollowRepository
	images      storage.ImageStorage
	logger      *slog.Logger
}

func NewRecipeService(
	recipes repository.RecipeRepository,
	ingredients repository.IngredientRepository,
	tags repository.TagRepository,
	favorites repository.RecipeRelationRepository,
	cart repository.RecipeRelationRepository,
	follows repository.FollowRepository,
	images storage.ImageStorage,
	logger *slog.Logger,
) RecipeService {
	return &recipeService{
		recipes:     recipes,
		ingredients: ingredients,
		tags:        tags,
		favorites:   favorites,
		cart:        cart,
		follows:     follows,
		images:      images,
		logger:      logger,
	}
}

func (s *recipeService) Create(ctx context.Context, authorID int64, in RecipeInput) (*RecipeView, error) {
	if err := validateRecipeInput(in, true); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	imageRef, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(in.Name),
		Text:        in.Text,
		Image:       imageRef,
		CookingTime: in.CookingTime,
	}
	if err := s.recipes.Create(ctx, recipe, toIngredientRows(in.Ingredients), in.TagIDs); err != nil {
		s.discardImage(ctx, imageRef)
		return nil, translateRecipeWriteError(err)
	}

	return s.Get(ctx, authorID, recipe.ID)
}

func (s *recipeService) Update(ctx context.Context, userID, recipeID int64, in RecipeInput) (*RecipeView, error) {
	existing, err := s.load(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != userID {
		return nil, ErrNotRecipeAuthor
	}

	if err := validateRecipeInput(in, false); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	imageRef := existing.Image
	if in.Image != nil {
		if imageRef, err = s.storeImage(ctx, in.Image); err != nil {
			return nil, err
		}
	}

	recipe := &models.Recipe{
		ID:          recipeID,
		AuthorID:    existing.AuthorID,
		Name:        strings.TrimSpace(in.Name),
		Text:        in.Text,
		Image:       imageRef,
		CookingTime: in.CookingTime,
	}
	if err := s.recipes.Update(ctx, recipe, toIngredientRows(in.Ingredients), in.TagIDs); err != nil {
		if imageRef != existing.Image {
			s.discardImage(ctx, imageRef)
		}
		return nil, translateRecipeWriteError(err)
	}
	if imageRef != existing.Image {
		s.discardImage(ctx, existing.Image)
	}

	return s.Get(ctx, userID, recipeID)
}

func (s *recipeService) Delete(ctx context.Context, userID, recipeID int64) error {
	existing, err := s.load(ctx, recipeID)
	if err != nil {
		return err
	}
	if existing.AuthorID != userID {
		return ErrNotRecipeAuthor
	}

	if err := s.recipes.Delete(ctx, recipeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	s.discardImage(ctx, existing.Image)
	return nil
}

func (s *recipeService) Get(ctx context.Context, viewerID, recipeID int64) (*RecipeView, error) {
	recipe, err := s.load(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	views, err := s.decorate(ctx, viewerID, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *recipeService) List(ctx context.Context, viewerID int64, q RecipeQuery, page, pageSize int) ([]RecipeView, int64, error) {
	filter := repository.RecipeFilter{
		AuthorID: q.AuthorID,
		TagSlugs: q.TagSlugs,
	}
	// user-relative flags are ignored for anonymous viewers
	if viewerID != 0 && q.IsFavorited {
		filter.FavoritedBy = viewerID
	}
	if viewerID != 0 && q.IsInShoppingCart {
		filter.InCartOf = viewerID
	}

	list, total, err := s.recipes.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.decorate(ctx, viewerID, list)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *recipeService) load(ctx context.Context, recipeID int64) (*models.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

// decorate computes the viewer-relative flags for a page of recipes.
func (s *recipeService) decorate(ctx context.Context, viewerID int64, recipes []models.Recipe) ([]RecipeView, error) {
	views := make([]RecipeView, 0, len(recipes))
	if viewerID == 0 || len(recipes) == 0 {
		for _, r := range recipes {
			views = append(views, RecipeView{Recipe: r})
		}
		return views, nil
	}

	recipeIDs := make([]int64, 0, len(recipes))
	authorIDs := make([]int64, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := s.favorites.RecipeIDsAmong(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.cart.RecipeIDsAmong(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	followed, err := s.follows.FollowedAmong(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	for _, r := range recipes {
		views = append(views, RecipeView{
			Recipe:           r,
			AuthorSubscribed: followed[r.AuthorID],
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
		})
	}
	return views, nil
}

func validateRecipeInput(in RecipeInput, requireImage bool) error {
	verr := &ValidationError{}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		verr.Add("name", "this field is required")
	case utf8.RuneCountInString(name) > maxRecipeNameLength:
		verr.Add("name", fmt.Sprintf("ensure this field has no more than %d characters", maxRecipeNameLength))
	}
	if strings.TrimSpace(in.Text) == "" {
		verr.Add("text", "this field is required")
	}
	switch {
	case in.CookingTime < 1:
		verr.Add("cooking_time", "cooking time must be at least 1 minute")
	case in.CookingTime > maxSmallValue:
		verr.Add("cooking_time", fmt.Sprintf("cooking time must be at most %d minutes", maxSmallValue))
	}
	if requireImage && in.Image == nil {
		verr.Add("image", "this field is required")
	}

	if len(in.Ingredients) == 0 {
		verr.Add("ingredients", "at least one ingredient is required")
	}
	seenIngredients := make(map[int64]bool, len(in.Ingredients))
	for _, item := range in.Ingredients {
		if seenIngredients[item.IngredientID] {
			verr.Add("ingredients", "ingredients must not repeat")
		}
		seenIngredients[item.IngredientID] = true
		switch {
		case item.Amount < 1:
			verr.Add("ingredients", "ingredient amount must be at least 1")
		case item.Amount > maxSmallValue:
			verr.Add("ingredients", fmt.Sprintf("ingredient amount must be at most %d", maxSmallValue))
		}
	}

	if len(in.TagIDs) == 0 {
		verr.Add("tags", "at least one tag is required")
	}
	seenTags := make(map[int64]bool, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if seenTags[id] {
			verr.Add("tags", "tags must not repeat")
		}
		seenTags[id] = true
	}

	return verr.OrNil()
}

// checkReferences fails with a NotFound error naming the first unknown ingredient or tag.
func (s *recipeService) checkReferences(ctx context.Context, in RecipeInput) error {
	ingredientIDs := make([]int64, 0, len(in.Ingredients))
	for _, item := range in.Ingredients {
		ingredientIDs = append(ingredientIDs, item.IngredientID)
	}
	found, err := s.ingredients.ExistingIDs(ctx, ingredientIDs)
	if err != nil {
		return err
	}
	if id, missing := firstMissing(ingredientIDs, found); missing {
		return newError(ErrNotFound, fmt.Sprintf("ingredient %d not found", id))
	}

	found, err = s.tags.ExistingIDs(ctx, in.TagIDs)
	if err != nil {
		return err
	}
	if id, missing := firstMissing(in.TagIDs, found); missing {
		return newError(ErrNotFound, fmt.Sprintf("tag %d not found", id))
	}
	return nil
}

func firstMissing(want, found []int64) (int64, bool) {
	have := make(map[int64]bool, len(found))
	for _, id := range found {
		have[id] = true
	}
	for _, id := range want {
		if !have[id] {
			return id, true
		}
	}
	return 0, false
}

func (s *recipeService) storeImage(ctx context.Context, img *storage.Image) (string, error) {
	key := storage.RecipeImageKey(time.Now(), img.Ext)
	ref, err := s.images.Save(ctx, key, img.Reader(), img.ContentType)
	if err != nil {
		return "", fmt.Errorf("store recipe image: %w", err)
	}
	return ref, nil
}

// discardImage removes an image that no recipe references anymore. Failures only leave
// an orphaned file behind, so they are logged and swallowed.
func (s *recipeService) discardImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		s.logger.Warn("failed to delete recipe image", "image", ref, "error", err)
	}
}

func toIngredientRows(items []IngredientAmount) []models.IngredientRecipe {
	rows := make([]models.IngredientRecipe, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.IngredientRecipe{IngredientID: item.IngredientID, Amount: item.Amount})
	}
	return rows
}

func translateRecipeWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return ErrRecipeNameTaken
	case errors.Is(err, repository.ErrNotFound):
		return ErrRecipeNotFound
	case errors.Is(err, repository.ErrForeignKey):
		return newError(ErrNotFound, "referenced ingredient or tag not found")
	case errors.Is(err, repository.ErrCheck):
		return newError(ErrValidation, "recipe violates a data constraint")
	}
	return err
}
