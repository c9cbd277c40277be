package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/picstash/picstash/config"
	"github.com/picstash/picstash/database/models"
	"github.com/picstash/picstash/internal/app"
	"github.com/spf13/cobra"
)

// cleanCmd removes orphan database records and orphan storage files.
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean orphan database records and storage files",
	Long: `Clean orphan database records and storage files.
This includes:
  - Delete image records whose stored file is missing
  - Delete stored files without a corresponding image record`,
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		dbOnly, _ := cmd.Flags().GetBool("db-only")
		storageOnly, _ := cmd.Flags().GetBool("storage-only")

		if err := runClean(dryRun, dbOnly, storageOnly); err != nil {
			log.Fatalf("Clean failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Bool("dry-run", false, "Only show what would be cleaned, don't actually delete")
	cleanCmd.Flags().Bool("db-only", false, "Only clean orphan database records")
	cleanCmd.Flags().Bool("storage-only", false, "Only clean orphan storage files")
}

type cleanStats struct {
	orphanRecords int
	orphanFiles   int
	errors        []string
}

func runClean(dryRun, dbOnly, storageOnly bool) error {
	config.InitConfig()

	container, err := app.New(config.Get())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer container.Close()

	stats := &cleanStats{}

	if !storageOnly {
		if err := cleanOrphanRecords(container, stats, dryRun); err != nil {
			stats.errors = append(stats.errors, fmt.Sprintf("clean orphan records failed: %v", err))
		}
	}
	if !dbOnly {
		if err := cleanOrphanFiles(container, stats, dryRun); err != nil {
			stats.errors = append(stats.errors, fmt.Sprintf("clean orphan files failed: %v", err))
		}
	}

	printCleanStats(stats, dryRun)

	if len(stats.errors) > 0 {
		return fmt.Errorf("encountered %d errors during cleanup", len(stats.errors))
	}
	return nil
}

// cleanOrphanRecords deletes image records whose stored file no longer exists.
// Gallery counts stay consistent because deletion goes through the same
// detach path as the API.
func cleanOrphanRecords(container *app.Container, stats *cleanStats, dryRun bool) error {
	log.Println("Checking for orphan database records...")

	store := container.StorageFactory.GetDefault()
	ctx := context.Background()

	var images []models.Image
	if err := container.DB.Find(&images).Error; err != nil {
		return fmt.Errorf("failed to fetch images: %w", err)
	}

	for i := range images {
		img := &images[i]
		exists, err := store.Exists(ctx, img.Path)
		if err != nil {
			log.Printf("Warning: failed to check existence of %s: %v", img.Path, err)
			continue
		}
		if exists {
			continue
		}

		stats.orphanRecords++
		if dryRun {
			log.Printf("[DRY-RUN] Would delete orphan record: ID=%d, Path=%s", img.ID, img.Path)
			continue
		}
		if err := container.ImagesRepo.DeleteWithDetach(img); err != nil {
			log.Printf("Warning: failed to delete orphan record %d: %v", img.ID, err)
			continue
		}
		log.Printf("Deleted orphan record: ID=%d, Path=%s", img.ID, img.Path)
	}
	return nil
}

// cleanOrphanFiles deletes stored files under uploads/ that no image record
// references. Only supported for local storage.
func cleanOrphanFiles(container *app.Container, stats *cleanStats, dryRun bool) error {
	log.Println("Checking for orphan storage files...")

	basePath := container.StorageFactory.LocalBasePath()
	if basePath == "" {
		log.Println("Default storage is not local, orphan file detection skipped")
		return nil
	}

	var images []models.Image
	if err := container.DB.Find(&images).Error; err != nil {
		return fmt.Errorf("failed to fetch images: %w", err)
	}
	referenced := make(map[string]bool, len(images)*2)
	for _, img := range images {
		referenced[img.Path] = true
		if img.ThumbnailPath != "" {
			referenced[img.ThumbnailPath] = true
		}
	}

	uploadsDir := filepath.Join(basePath, "uploads")
	err := filepath.Walk(uploadsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(basePath, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if referenced[relPath] {
			return nil
		}

		stats.orphanFiles++
		if dryRun {
			log.Printf("[DRY-RUN] Would delete orphan file: %s", path)
			return nil
		}
		if err := os.Remove(path); err != nil {
			log.Printf("Warning: failed to delete orphan file %s: %v", path, err)
		} else {
			log.Printf("Deleted orphan file: %s", path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk storage directory: %w", err)
	}
	return nil
}

func printCleanStats(stats *cleanStats, dryRun bool) {
	fmt.Println()
	fmt.Println("========================================")
	if dryRun {
		fmt.Println("           [DRY RUN MODE]")
	}
	fmt.Println("         Clean Statistics")
	fmt.Println("========================================")
	fmt.Printf("Orphan DB records found:    %d\n", stats.orphanRecords)
	fmt.Printf("Orphan storage files found: %d\n", stats.orphanFiles)
	fmt.Println("========================================")

	if len(stats.errors) > 0 {
		fmt.Println("\nErrors encountered:")
		for _, err := range stats.errors {
			fmt.Printf("  - %s\n", err)
		}
	}
}
