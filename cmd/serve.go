package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/picstash/picstash/api/core"
	"github.com/picstash/picstash/config"
	"github.com/picstash/picstash/database/dbcore"
	"github.com/picstash/picstash/internal/app"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	if err := os.MkdirAll(cfg.StorageLocalPath, os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	container, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := dbcore.AutoMigrate(container.DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	server := core.NewServer(container)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	core.Shutdown(ctx, server)
	container.Close()

	log.Println("Server exited successfully")
}
