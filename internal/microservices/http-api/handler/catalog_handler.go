package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"foodgram/internal/microservices/http-api/dto"
	"foodgram/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// IngredientHandler serves the read-only ingredient catalogue. It is not paginated.
type IngredientHandler struct {
	svc    service.IngredientService
	logger *slog.Logger
}

func NewIngredientHandler(svc service.IngredientService, logger *slog.Logger) *IngredientHandler {
	return &IngredientHandler{svc: svc, logger: logger}
}

func (h *IngredientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.List)
	rg.GET("/:id/", h.Get)
}

// List filters by case-insensitive name prefix when ?name= is given.
func (h *IngredientHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.svc.List(ctx, c.Query("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]dto.IngredientResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, dto.FromModelToIngredientResponse(item))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *IngredientHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToIngredientResponse(*item))
}

type TagHandler struct {
	svc    service.TagService
	logger *slog.Logger
}

func NewTagHandler(svc service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{svc: svc, logger: logger}
}

func (h *TagHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.List)
	rg.GET("/:id/", h.Get)
}

func (h *TagHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	tags, err := h.svc.List(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		resp = append(resp, dto.FromModelToTagResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TagHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	tag, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToTagResponse(*tag))
}
