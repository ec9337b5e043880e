package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"foodgram/internal/microservices/http-api/dto"
	"foodgram/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users         service.UserService
	subscriptions service.SubscriptionService
	pageSize      int
	logger        *slog.Logger
}

func NewUserHandler(users service.UserService, subscriptions service.SubscriptionService, pageSize int, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, subscriptions: subscriptions, pageSize: pageSize, logger: logger}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, guards Guards) {
	rg.POST("/", h.Register)
	rg.GET("/", guards.Optional, h.List)
	rg.GET("/me/", guards.Required, h.Me)
	rg.POST("/set_password/", guards.Required, h.SetPassword)
	rg.GET("/subscriptions/", guards.Required, h.Subscriptions)
	rg.GET("/:id/", guards.Optional, h.Get)
	rg.POST("/:id/subscribe/", guards.Required, h.Subscribe)
	rg.DELETE("/:id/subscribe/", guards.Required, h.Unsubscribe)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.users.Register(ctx, service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromModelToRegisterResponse(*user))
}

func (h *UserHandler) List(c *gin.Context) {
	p := parsePage(c, h.pageSize)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	profiles, total, err := h.users.List(ctx, viewerID(c), p.Page, p.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	results := make([]dto.UserResponse, 0, len(profiles))
	for _, pr := range profiles {
		results = append(results, dto.FromModelToUserResponse(pr.User, pr.IsSubscribed))
	}
	c.JSON(http.StatusOK, newPage(c, p, total, results))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	profile, err := h.users.Get(ctx, viewerID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(profile.User, profile.IsSubscribed))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	profile, err := h.users.Get(ctx, userID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(profile.User, profile.IsSubscribed))
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.users.SetPassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	p := parsePage(c, h.pageSize)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	subs, total, err := h.subscriptions.List(ctx, userID, p.Page, p.Limit, recipesLimit(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	results := make([]dto.SubscriptionResponse, 0, len(subs))
	for _, s := range subs {
		results = append(results, toSubscriptionResponse(s))
	}
	c.JSON(http.StatusOK, newPage(c, p, total, results))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	authorID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	sub, err := h.subscriptions.Subscribe(ctx, userID, authorID, recipesLimit(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toSubscriptionResponse(*sub))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	authorID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.subscriptions.Unsubscribe(ctx, userID, authorID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads ?recipes_limit=; anything but a positive integer means no limit.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func toSubscriptionResponse(s service.Subscription) dto.SubscriptionResponse {
	recipes := make([]dto.RecipeShortResponse, 0, len(s.Recipes))
	for _, r := range s.Recipes {
		recipes = append(recipes, dto.FromModelToRecipeShortResponse(r))
	}
	return dto.SubscriptionResponse{
		UserResponse: dto.FromModelToUserResponse(s.User, s.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: s.RecipesCount,
	}
}
