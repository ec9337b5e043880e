// Package server assembles the gin engine of the API.
package server

import (
	"log/slog"
	"slices"
	"time"

	"foodgram/internal/config"
	"foodgram/internal/microservices/http-api/dto"
	"foodgram/internal/microservices/http-api/handler"
	"foodgram/internal/microservices/http-api/middleware"
	"foodgram/internal/microservices/http-api/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services are the domain services the router exposes.
type Services struct {
	Auth          service.AuthService
	Users         service.UserService
	Subscriptions service.SubscriptionService
	Ingredients   service.IngredientService
	Tags          service.TagService
	Recipes       service.RecipeService
	Favorites     service.RecipeRelationService
	ShoppingCart  service.RecipeRelationService
	ShoppingList  service.ShoppingListService
}

// NewRouter wires middlewares and every route under /api.
func NewRouter(cfg *config.Config, logger *slog.Logger, db handler.Pinger, svc Services) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = 16 << 20
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))
	}

	r.GET("/health", handler.NewHealthHandler(db, logger).Health)

	guards := handler.Guards{
		Required: middleware.AuthMiddleware(svc.Auth),
		Optional: middleware.OptionalAuth(svc.Auth),
	}

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(svc.Auth, logger)
	authHandler.RegisterRoutes(api.Group("/auth/token"), guards)
	authHandler.RegisterRoutes(api.Group("/token"), guards)

	handler.NewUserHandler(svc.Users, svc.Subscriptions, cfg.PageSize, logger).
		RegisterRoutes(api.Group("/users"), guards)
	handler.NewIngredientHandler(svc.Ingredients, logger).
		RegisterRoutes(api.Group("/ingredients"))
	handler.NewTagHandler(svc.Tags, logger).
		RegisterRoutes(api.Group("/tags"))
	handler.NewRecipeHandler(svc.Recipes, svc.Favorites, svc.ShoppingCart, svc.ShoppingList, cfg.PageSize, logger).
		RegisterRoutes(api.Group("/recipes"), guards)

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = origins
	}
	return c
}
