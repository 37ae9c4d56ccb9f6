package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/forkful/backend/config"
	"github.com/forkful/backend/internal/api"
	"github.com/forkful/backend/internal/database"
	"github.com/forkful/backend/internal/middleware"
	"github.com/forkful/backend/internal/router"
	"github.com/forkful/backend/internal/server"
	"github.com/forkful/backend/internal/service"
)

func main() {
	setupLogging()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Rate limiting is skipped when Redis is unreachable rather than
	// refusing to start.
	var rateLimiter *middleware.RateLimiter
	if redisClient, err := database.NewRedisClient(cfg); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
	} else {
		rateLimiter = middleware.NewRecipeCreationRateLimiter(redisClient)
	}

	imageService, err := newImageService(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure image storage")
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	userService := service.NewUserService(db)
	catalogService := service.NewCatalogService(db)
	recipeService := service.NewRecipeService(db)
	edgeService := service.NewEdgeService(db)
	shoppingListService := service.NewShoppingListService(db)

	engine := router.SetupRouter(cfg, db, router.Handlers{
		Auth:    api.NewAuthHandler(authService),
		User:    api.NewUserHandler(userService, edgeService, authService),
		Catalog: api.NewCatalogHandler(catalogService),
		Recipe: api.NewRecipeHandler(
			recipeService, edgeService, shoppingListService,
			imageService, authService, rateLimiter,
		),
	})

	srv := server.New(engine, cfg.ServerHost+":"+cfg.ServerPort)
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}

func newImageService(cfg *config.Config) (*service.ImageService, error) {
	if cfg.S3Bucket != "" {
		s3cfg, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		return service.NewImageService(service.NewS3Store(s3cfg)), nil
	}
	return service.NewImageService(&service.LocalStore{
		Dir:     cfg.MediaDir,
		BaseURL: cfg.MediaBaseURL,
	}), nil
}

func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if config.GetEnvironment() == config.Development {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
