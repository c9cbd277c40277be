// Package app wires the application together: configuration, database,
// storage, cache, services and handlers, with a single Close for shutdown.
package app

import (
	"fmt"
	"log"

	galleryhandler "github.com/picstash/picstash/api/handler/galleries"
	imagehandler "github.com/picstash/picstash/api/handler/images"
	"github.com/picstash/picstash/api/middleware"
	"github.com/picstash/picstash/cache"
	"github.com/picstash/picstash/config"
	"github.com/picstash/picstash/database/dbcore"
	galleriesrepo "github.com/picstash/picstash/database/repo/galleries"
	imagesrepo "github.com/picstash/picstash/database/repo/images"
	gallerysvc "github.com/picstash/picstash/internal/services/gallery"
	imagesvc "github.com/picstash/picstash/internal/services/image"
	"github.com/picstash/picstash/storage"
	"gorm.io/gorm"
)

// Container holds every long-lived application component.
type Container struct {
	Config *config.Config
	DB     *gorm.DB

	ImagesRepo    *imagesrepo.Repository
	GalleriesRepo *galleriesrepo.Repository

	StorageFactory *storage.Factory
	Cache          cache.Provider
	ResponseCache  *middleware.ResponseCache
	RateLimiter    *middleware.IPRateLimiter
	Metrics        *middleware.Metrics

	UploadService  *imagesvc.UploadService
	UpdateService  *imagesvc.UpdateService
	DeleteService  *imagesvc.DeleteService
	GalleryService *gallerysvc.Service

	ImagesHandler    *imagehandler.Handler
	GalleriesHandler *galleryhandler.Handler
}

// New builds the container. The cache degrades to disabled when unreachable;
// database and storage failures abort startup.
func New(cfg *config.Config) (*Container, error) {
	db, err := dbcore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}

	storageFactory, err := storage.NewFactory(cfg)
	if err != nil {
		dbcore.Close(db)
		return nil, fmt.Errorf("storage init: %w", err)
	}
	store := storageFactory.GetDefault()

	cacheProvider := cache.NewProvider(cfg)

	imagesRepo := imagesrepo.NewRepository(db)
	galleriesRepo := galleriesrepo.NewRepository(db)

	responseCache := middleware.NewResponseCache(cacheProvider, cfg.ResponseCacheTTL())
	rateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	metrics := middleware.NewMetrics()

	uploadService := imagesvc.NewUploadService(imagesRepo, store, cfg.MaxUploadBytes())
	updateService := imagesvc.NewUpdateService(imagesRepo)
	deleteService := imagesvc.NewDeleteService(imagesRepo, store)
	galleryService := gallerysvc.NewService(galleriesRepo)

	baseURL := cfg.BaseURL()
	imagesHandler := imagehandler.NewHandler(uploadService, updateService, deleteService, imagesRepo, responseCache, baseURL)
	galleriesHandler := galleryhandler.NewHandler(galleryService, responseCache, baseURL)

	return &Container{
		Config:           cfg,
		DB:               db,
		ImagesRepo:       imagesRepo,
		GalleriesRepo:    galleriesRepo,
		StorageFactory:   storageFactory,
		Cache:            cacheProvider,
		ResponseCache:    responseCache,
		RateLimiter:      rateLimiter,
		Metrics:          metrics,
		UploadService:    uploadService,
		UpdateService:    updateService,
		DeleteService:    deleteService,
		GalleryService:   galleryService,
		ImagesHandler:    imagesHandler,
		GalleriesHandler: galleriesHandler,
	}, nil
}

// Close shuts down the container's resources.
func (c *Container) Close() {
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Printf("Error closing cache: %v", err)
		}
	}
	if err := dbcore.Close(c.DB); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}
