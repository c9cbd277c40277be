package core

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/picstash/picstash/api/common"
	"github.com/picstash/picstash/api/middleware"
	"github.com/picstash/picstash/config"
	"github.com/picstash/picstash/internal/app"
)

// healthHandler reports component health. The cache is an optimization layer,
// so its state never degrades the overall status.
func healthHandler(c *app.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checks := gin.H{}
		healthy := true

		dbStatus := "ok"
		sqlDB, err := c.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx.Request.Context())
		}
		if err != nil {
			dbStatus = "down: " + err.Error()
			healthy = false
		}
		checks["database"] = dbStatus

		store := c.StorageFactory.GetDefault()
		storageStatus := "ok"
		if err := store.Health(ctx.Request.Context()); err != nil {
			storageStatus = "down: " + err.Error()
			healthy = false
		}
		checks["storage"] = gin.H{"provider": store.Name(), "status": storageStatus}

		if c.Cache != nil {
			checks["cache"] = gin.H{"provider": c.Cache.Name(), "status": "ok"}
		} else {
			checks["cache"] = gin.H{"status": "disabled"}
		}

		status := http.StatusOK
		overall := "healthy"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
		ctx.JSON(status, common.Response{
			Success: healthy,
			Data: gin.H{
				"status":    overall,
				"timestamp": time.Now().UTC(),
				"checks":    checks,
			},
		})
	}
}

func versionHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		common.RespondSuccess(ctx, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	}
}

func metricsHandler(m *middleware.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		common.RespondSuccess(ctx, m.Snapshot())
	}
}
