// Package core assembles the HTTP surface: routing, middleware chain, static
// media serving and the server lifecycle.
package core

import (
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/picstash/picstash/api/middleware"
	"github.com/picstash/picstash/internal/app"
)

// NewRouter builds the gin engine with all routes registered.
func NewRouter(c *app.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(c.Metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))
	r.MaxMultipartMemory = c.Config.MaxUploadBytes()

	cached := c.ResponseCache.Middleware()

	api := r.Group("/api", c.RateLimiter.Middleware())
	{
		images := api.Group("/images")
		images.POST("", c.ImagesHandler.Upload)
		images.GET("", cached, c.ImagesHandler.List)
		images.GET("/:id", cached, c.ImagesHandler.Get)
		images.PATCH("/:id", c.ImagesHandler.Update)
		images.DELETE("/:id", c.ImagesHandler.Delete)

		galleries := api.Group("/galleries")
		galleries.POST("", c.GalleriesHandler.Create)
		galleries.GET("", cached, c.GalleriesHandler.List)
		galleries.GET("/:id", cached, c.GalleriesHandler.Get)
		galleries.PATCH("/:id", c.GalleriesHandler.Update)
		galleries.DELETE("/:id", c.GalleriesHandler.Delete)
	}

	// Originals and thumbnails are served straight off disk when the default
	// provider is local; object storage deployments front media themselves.
	if base := c.StorageFactory.LocalBasePath(); base != "" {
		files := r.Group("/uploads", mediaFileHeaders())
		files.Static("/", filepath.Join(base, "uploads"))
	}

	r.GET("/health", healthHandler(c))
	r.GET("/version", versionHandler())
	r.GET("/metrics", metricsHandler(c.Metrics))

	return r
}

// mediaFileHeaders serves stored media permissively cross-origin so pages on
// other hosts can embed it.
func mediaFileHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Cross-Origin-Resource-Policy", "cross-origin")
		c.Header("Cache-Control", "public, max-age=86400")
		c.Next()
	}
}
