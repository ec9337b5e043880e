package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"foodgram/internal/microservices/http-api/dto"
	"foodgram/internal/microservices/http-api/service"
	"foodgram/internal/storage"

	"github.com/gin-gonic/gin"
)

type RecipeHandler struct {
	recipes      service.RecipeService
	favorites    service.RecipeRelationService
	cart         service.RecipeRelationService
	shoppingList service.ShoppingListService
	pageSize     int
	logger       *slog.Logger
}

func NewRecipeHandler(
	recipes service.RecipeService,
	favorites service.RecipeRelationService,
	cart service.RecipeRelationService,
	shoppingList service.ShoppingListService,
	pageSize int,
	logger *slog.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		favorites:    favorites,
		cart:         cart,
		shoppingList: shoppingList,
		pageSize:     pageSize,
		logger:       logger,
	}
}

func (h *RecipeHandler) RegisterRoutes(rg *gin.RouterGroup, guards Guards) {
	rg.GET("/", guards.Optional, h.List)
	rg.POST("/", guards.Required, h.Create)
	rg.GET("/download_shopping_cart/", guards.Required, h.DownloadShoppingCart)
	rg.GET("/:id/", guards.Optional, h.Get)
	rg.PATCH("/:id/", guards.Required, h.Update)
	rg.DELETE("/:id/", guards.Required, h.Delete)
	rg.POST("/:id/favorite/", guards.Required, h.relationAdd(h.favorites))
	rg.DELETE("/:id/favorite/", guards.Required, h.relationRemove(h.favorites))
	rg.POST("/:id/shopping_cart/", guards.Required, h.relationAdd(h.cart))
	rg.DELETE("/:id/shopping_cart/", guards.Required, h.relationRemove(h.cart))
}

// List supports ?author=<id>, repeated ?tags=<slug> (any of them matches), and the
// viewer-relative ?is_favorited=1 and ?is_in_shopping_cart=1 flags.
func (h *RecipeHandler) List(c *gin.Context) {
	var q service.RecipeQuery
	if v := c.Query("author"); v != "" {
		authorID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || authorID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author", "fields": gin.H{"author": "must be a user id"}})
			return
		}
		q.AuthorID = authorID
	}
	for _, slug := range c.QueryArray("tags") {
		if slug = strings.TrimSpace(slug); slug != "" {
			q.TagSlugs = append(q.TagSlugs, slug)
		}
	}
	q.IsFavorited = queryFlag(c, "is_favorited")
	q.IsInShoppingCart = queryFlag(c, "is_in_shopping_cart")
	p := parsePage(c, h.pageSize)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	views, total, err := h.recipes.List(ctx, viewerID(c), q, p.Page, p.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	results := make([]dto.RecipeResponse, 0, len(views))
	for _, v := range views {
		results = append(results, toRecipeResponse(v))
	}
	c.JSON(http.StatusOK, newPage(c, p, total, results))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	view, err := h.recipes.Get(ctx, viewerID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(*view))
}

func (h *RecipeHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	in, ok := h.bindRecipe(c)
	if !ok {
		return
	}

	// uploads may take longer than a plain write
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	view, err := h.recipes.Create(ctx, userID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipeResponse(*view))
}

// Update replaces the recipe with the full payload. The image may be omitted.
func (h *RecipeHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := h.bindRecipe(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	view, err := h.recipes.Update(ctx, userID, id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(*view))
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.recipes.Delete(ctx, userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) relationAdd(svc service.RecipeRelationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		recipe, err := svc.Add(ctx, userID, id)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, dto.FromModelToRecipeShortResponse(*recipe))
	}
}

func (h *RecipeHandler) relationRemove(svc service.RecipeRelationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := svc.Remove(ctx, userID, id); err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart sends the aggregated ingredient list as a text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	body, err := h.shoppingList.Build(ctx, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+service.ShoppingListFilename)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// bindRecipe reads a recipe write either as JSON with a data URI image or as a
// multipart form with an "image" file part.
func (h *RecipeHandler) bindRecipe(c *gin.Context) (service.RecipeInput, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return bindRecipeForm(c)
	}

	var req dto.RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return service.RecipeInput{}, false
	}

	in := toRecipeInput(req)
	if req.Image != "" {
		img, err := storage.ParseDataURI(req.Image)
		if err != nil {
			imageError(c, err)
			return service.RecipeInput{}, false
		}
		in.Image = img
	}
	return in, true
}

func bindRecipeForm(c *gin.Context) (service.RecipeInput, bool) {
	req := dto.RecipeWriteRequest{
		Name: c.PostForm("name"),
		Text: c.PostForm("text"),
	}

	if v := c.PostForm("cooking_time"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cooking_time", "fields": gin.H{"cooking_time": "must be an integer"}})
			return service.RecipeInput{}, false
		}
		req.CookingTime = n
	}

	for _, v := range c.PostFormArray("tags") {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tags", "fields": gin.H{"tags": "must be tag ids"}})
				return service.RecipeInput{}, false
			}
			req.Tags = append(req.Tags, id)
		}
	}

	if v := c.PostForm("ingredients"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Ingredients); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredients", "fields": gin.H{"ingredients": "must be a JSON list of {id, amount}"}})
			return service.RecipeInput{}, false
		}
	}

	in := toRecipeInput(req)

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, true
	}
	if err != nil {
		imageError(c, err)
		return service.RecipeInput{}, false
	}
	if fh.Size > storage.MaxImageSize {
		imageError(c, storage.ErrImageTooLarge)
		return service.RecipeInput{}, false
	}

	f, err := fh.Open()
	if err != nil {
		imageError(c, err)
		return service.RecipeInput{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageSize+1))
	if err != nil {
		imageError(c, err)
		return service.RecipeInput{}, false
	}
	img, err := storage.NewImage(data, filepath.Ext(fh.Filename))
	if err != nil {
		imageError(c, err)
		return service.RecipeInput{}, false
	}
	in.Image = img
	return in, true
}

func toRecipeInput(req dto.RecipeWriteRequest) service.RecipeInput {
	ingredients := make([]service.IngredientAmount, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		ingredients = append(ingredients, service.IngredientAmount{IngredientID: item.ID, Amount: item.Amount})
	}
	return service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Ingredients: ingredients,
		TagIDs:      req.Tags,
	}
}

func toRecipeResponse(v service.RecipeView) dto.RecipeResponse {
	return dto.FromModelToRecipeResponse(v.Recipe, v.AuthorSubscribed, v.IsFavorited, v.IsInShoppingCart)
}

func queryFlag(c *gin.Context, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
