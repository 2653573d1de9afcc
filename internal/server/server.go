// Package server assembles the HTTP API: repositories, services, middleware
// and routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"foodgram/internal/config"
	"foodgram/internal/domain"
	"foodgram/internal/middleware"
	"foodgram/internal/modules/auth"
	"foodgram/internal/modules/catalog"
	"foodgram/internal/modules/recipe"
	"foodgram/internal/modules/users"
	jwtsvc "foodgram/internal/pkg/jwt"
	"foodgram/internal/repository"
	"foodgram/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

// New wires the API on top of db and images.
func New(cfg *config.Config, db *gorm.DB, images storage.ImageStore) *gin.Engine {
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	followRepo := repository.NewFollowRepository(db)

	jwt := jwtsvc.New(cfg.JWTSecret, cfg.TokenTTL)
	authn := middleware.NewAuthenticator(jwt, tokenRepo)
	requireAuth := authn.RequireAuth()
	optionalAuth := authn.OptionalAuth()

	authHandler := auth.NewHandler(auth.NewService(userRepo, tokenRepo, jwt, cfg.TokenTTL))
	usersHandler := users.NewHandler(users.NewService(userRepo, followRepo, recipeRepo), cfg.PageSize, cfg.MaxPageSize)
	catalogHandler := catalog.NewHandler(catalog.NewService(tagRepo, ingredientRepo))
	recipeHandler := recipe.NewHandler(recipe.NewService(recipe.Deps{
		Recipes:       recipeRepo,
		Follows:       followRepo,
		Validator:     recipe.NewValidator(ingredientRepo, tagRepo),
		Images:        images,
		FavoriteStore: repository.NewUserRecipeStore(db, domain.KindFavorite),
		CartStore:     repository.NewUserRecipeStore(db, domain.KindShoppingCart),
	}), cfg.PageSize, cfg.MaxPageSize)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Metrics(),
		middleware.ErrorLogger(),
		middleware.RequestLogger(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Storage.Driver == config.StorageLocal {
		r.Static(cfg.Storage.MediaURL, cfg.Storage.MediaDir)
	}

	api := r.Group("/api")
	api.Use(middleware.RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)))
	{
		authHandler.RegisterRoutes(api, requireAuth)
		usersHandler.RegisterRoutes(api, requireAuth, optionalAuth)
		catalogHandler.RegisterRoutes(api)
		recipeHandler.RegisterRoutes(api, requireAuth, optionalAuth,
			middleware.NewOwnershipChecker(recipeRepo, "Recipe").RequireAuthor())
	}
	return r
}

// Run serves handler on addr until ctx is cancelled, then drains in-flight
// requests.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
