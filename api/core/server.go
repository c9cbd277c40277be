package core

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/picstash/picstash/internal/app"
)

// NewServer builds the HTTP server around the router with the configured
// timeouts.
func NewServer(c *app.Container) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	return &http.Server{
		Addr:         c.Config.Addr(),
		Handler:      NewRouter(c),
		ReadTimeout:  c.Config.ServerReadTimeout,
		WriteTimeout: c.Config.ServerWriteTimeout,
		IdleTimeout:  c.Config.ServerIdleTimeout,
	}
}

// Shutdown drains the server within the given context's deadline.
func Shutdown(ctx context.Context, srv *http.Server) {
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
