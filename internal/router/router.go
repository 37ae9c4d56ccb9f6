package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/forkful/backend/config"
	"github.com/forkful/backend/internal/api"
	"github.com/forkful/backend/internal/database"
)

// Handlers bundles the API handlers the router mounts.
type Handlers struct {
	Auth    *api.AuthHandler
	User    *api.UserHandler
	Catalog *api.CatalogHandler
	Recipe  *api.RecipeHandler
}

// SetupRouter configures the application routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, h Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Uploaded images are served from disk when no S3 bucket is
	// configured.
	if cfg.S3Bucket == "" {
		router.Static(cfg.MediaBaseURL, cfg.MediaDir)
	}

	v1 := router.Group("/api/v1")
	h.Auth.RegisterRoutes(v1)
	h.User.RegisterRoutes(v1)
	h.Catalog.RegisterRoutes(v1)
	h.Recipe.RegisterRoutes(v1)

	return router
}
