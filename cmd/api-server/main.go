package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodgram/database"
	"foodgram/internal/config"
	"foodgram/internal/logger"
	"foodgram/internal/microservices/http-api/repository"
	"foodgram/internal/microservices/http-api/server"
	"foodgram/internal/microservices/http-api/service"
	"foodgram/internal/storage"

	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	tokens, err := newTokenStore(ctx, cfg, db, log)
	if err != nil {
		return err
	}

	images, err := newImageStorage(ctx, cfg, log)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	tagRepo := repository.NewTagRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	cartRepo := repository.NewShoppingCartRepository(db)

	router, err := server.NewRouter(cfg, log, sqlDB, server.Services{
		Auth:          service.NewAuthService(userRepo, tokens, cfg),
		Users:         service.NewUserService(userRepo, followRepo),
		Subscriptions: service.NewSubscriptionService(userRepo, followRepo, recipeRepo),
		Ingredients:   service.NewIngredientService(ingredientRepo),
		Tags:          service.NewTagService(tagRepo),
		Recipes: service.NewRecipeService(
			recipeRepo, ingredientRepo, tagRepo, favoriteRepo, cartRepo, followRepo, images, log,
		),
		Favorites:    service.NewFavoriteService(favoriteRepo, recipeRepo),
		ShoppingCart: service.NewShoppingCartService(cartRepo, recipeRepo),
		ShoppingList: service.NewShoppingListService(repository.NewShoppingListRepository(db)),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.RequestTimeout,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newTokenStore picks the token store from TOKEN_STORE. The postgres store also gets
// a background job that prunes expired tokens.
func newTokenStore(ctx context.Context, cfg *config.Config, db *gorm.DB, log *slog.Logger) (repository.TokenStore, error) {
	if cfg.TokenStore == "redis" {
		client, err := repository.NewRedisClient(cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		go func() {
			<-ctx.Done()
			client.Close()
		}()
		log.Info("using redis token store", "addr", cfg.RedisURL)
		return repository.NewRedisTokenStore(client), nil
	}

	store := repository.NewAuthTokenRepository(db)
	go pruneTokens(ctx, store, log)
	return store, nil
}

func pruneTokens(ctx context.Context, store *repository.AuthTokenRepository, log *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpired(ctx)
			if err != nil {
				log.Warn("failed to prune expired tokens", "error", err)
				continue
			}
			if n > 0 {
				log.Info("pruned expired tokens", "count", n)
			}
		}
	}
}

func newImageStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.ImageStorage, error) {
	if cfg.ImageStorage == "s3" {
		return storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			UseSSL:          cfg.S3UseSSL,
			PublicURL:       cfg.S3PublicURL,
		}, log)
	}
	return storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
}
