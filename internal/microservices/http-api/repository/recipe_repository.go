package repository

import (
	"context"

	"foodgram/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows recipe listings. Zero values disable a condition.
type RecipeFilter struct {
	AuthorID    int64
	TagSlugs    []string // OR semantics: any of the slugs matches
	FavoritedBy int64
	InCartOf    int64
}

type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe, ingredients []models.IngredientRecipe, tagIDs []int64) error
	Update(ctx context.Context, recipe *models.Recipe, ingredients []models.IngredientRecipe, tagIDs []int64) error
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)
	GetSummary(ctx context.Context, id int64) (*models.Recipe, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter RecipeFilter, page, pageSize int) ([]models.Recipe, int64, error)
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int64, error)
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create inserts the recipe row, its ingredient amounts and tag links in one transaction.
// recipe.ID is populated on success.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe, ingredients []models.IngredientRecipe, tagIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return wrap("create recipe", err)
		}
		return writeAssociations(tx, recipe.ID, ingredients, tagIDs)
	})
}

// Update rewrites the scalar fields and replaces every ingredient and tag association
// of the recipe in one transaction.
func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe, ingredients []models.IngredientRecipe, tagIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Recipe{}).
			Where("id = ?", recipe.ID).
			Updates(map[string]any{
				"name":         recipe.Name,
				"text":         recipe.Text,
				"image":        recipe.Image,
				"cooking_time": recipe.CookingTime,
			})
		if result.Error != nil {
			return wrap("update recipe", result.Error)
		}
		if result.RowsAffected == 0 {
			return wrap("update recipe", gorm.ErrRecordNotFound)
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientRecipe{}).Error; err != nil {
			return wrap("clear recipe ingredients", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.TagRecipe{}).Error; err != nil {
			return wrap("clear recipe tags", err)
		}
		return writeAssociations(tx, recipe.ID, ingredients, tagIDs)
	})
}

func writeAssociations(tx *gorm.DB, recipeID int64, ingredients []models.IngredientRecipe, tagIDs []int64) error {
	rows := make([]models.IngredientRecipe, 0, len(ingredients))
	for _, in := range ingredients {
		rows = append(rows, models.IngredientRecipe{
			RecipeID:     recipeID,
			IngredientID: in.IngredientID,
			Amount:       in.Amount,
		})
	}
	if len(rows) > 0 {
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return wrap("add recipe ingredients", err)
		}
	}

	links := make([]models.TagRecipe, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, models.TagRecipe{RecipeID: recipeID, TagID: id})
	}
	if len(links) > 0 {
		if err := tx.Create(&links).Error; err != nil {
			return wrap("add recipe tags", err)
		}
	}
	return nil
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_recipes.id") }).
		Preload("Ingredients.Ingredient")
}

func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadRecipe(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, wrap("get recipe", err)
	}
	return &recipe, nil
}

// GetSummary loads the recipe row alone, without author, tags or ingredients.
func (r *recipeRepository) GetSummary(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, wrap("get recipe summary", err)
	}
	return &recipe, nil
}

// Delete removes the recipe; join rows go with it through ON DELETE CASCADE.
func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Recipe{}, id)
	if result.Error != nil {
		return wrap("delete recipe", result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("delete recipe", gorm.ErrRecordNotFound)
	}
	return nil
}

func applyRecipeFilter(db *gorm.DB, f RecipeFilter) *gorm.DB {
	if f.AuthorID != 0 {
		db = db.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		db = db.Where(`EXISTS (SELECT 1 FROM tag_recipes tr JOIN tags t ON t.id = tr.tag_id
			WHERE tr.recipe_id = recipes.id AND t.slug IN ?)`, f.TagSlugs)
	}
	if f.FavoritedBy != 0 {
		db = db.Where("EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = recipes.id AND f.user_id = ?)", f.FavoritedBy)
	}
	if f.InCartOf != 0 {
		db = db.Where("EXISTS (SELECT 1 FROM shopping_cart sc WHERE sc.recipe_id = recipes.id AND sc.user_id = ?)", f.InCartOf)
	}
	return db
}

func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter, page, pageSize int) ([]models.Recipe, int64, error) {
	var list []models.Recipe
	var total int64

	if err := applyRecipeFilter(r.db.WithContext(ctx).Model(&models.Recipe{}), filter).
		Count(&total).Error; err != nil {
		return nil, 0, wrap("count recipes", err)
	}

	if err := preloadRecipe(applyRecipeFilter(r.db.WithContext(ctx), filter)).
		Order("recipes.pub_date DESC").
		Order("recipes.id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&list).Error; err != nil {
		return nil, 0, wrap("list recipes", err)
	}
	return list, total, nil
}

// ListByAuthor returns the author's newest recipes without associations.
// A limit of zero or less returns all of them.
func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Recipe, error) {
	var list []models.Recipe
	db := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC").
		Order("id DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&list).Error; err != nil {
		return nil, wrap("list author recipes", err)
	}
	return list, nil
}

func (r *recipeRepository) CountByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID int64
		Total    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, wrap("count author recipes", err)
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}
