// Package galleries encapsulates all gallery-side database operations,
// including the cascade that keeps image membership consistent on delete.
package galleries

import (
	"context"
	"time"

	"github.com/picstash/picstash/database/models"
	"github.com/picstash/picstash/internal/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new gallery. A slug collision surfaces as a Conflict.
func (r *Repository) Create(gallery *models.Gallery) error {
	if err := r.db.Create(gallery).Error; err != nil {
		return apperr.FromDB(err, "Gallery not found", "A gallery with this name already exists")
	}
	return nil
}

// GetByID loads a gallery with its member images, newest first.
func (r *Repository) GetByID(id uint) (*models.Gallery, error) {
	var gallery models.Gallery
	err := r.db.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("images.created_at DESC")
		}).
		Preload("CoverImage").
		First(&gallery, id).Error
	if err != nil {
		return nil, apperr.FromDB(err, "Gallery not found", "")
	}
	return &gallery, nil
}

// List returns all galleries, newest first, with member images resolved.
func (r *Repository) List() ([]*models.Gallery, error) {
	var result []*models.Gallery
	err := r.db.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("images.created_at DESC")
		}).
		Preload("CoverImage").
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, apperr.Internal("failed to list galleries", err)
	}
	return result, nil
}

// Save persists gallery mutations (rename, description). A slug collision
// surfaces as a Conflict.
func (r *Repository) Save(gallery *models.Gallery) error {
	if err := r.db.Omit(clause.Associations).Save(gallery).Error; err != nil {
		return apperr.FromDB(err, "Gallery not found", "A gallery with this name already exists")
	}
	return nil
}

// DeleteWithDetach clears the gallery reference on every member image and
// then removes the gallery record, in one transaction. The detach must
// succeed for the delete to proceed; member images and their files survive.
func (r *Repository) DeleteWithDetach(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var gallery models.Gallery
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&gallery, id).Error; err != nil {
			return err
		}

		detach := tx.Model(&models.Image{}).
			Where("gallery_id = ?", gallery.ID).
			UpdateColumns(map[string]interface{}{
				"gallery_id": nil,
				"updated_at": time.Now(),
			})
		if detach.Error != nil {
			return detach.Error
		}

		return tx.Delete(&gallery).Error
	})
	if err != nil {
		return apperr.FromDB(err, "Gallery not found", "")
	}
	return nil
}

// Exists reports whether a gallery with the given id exists.
func (r *Repository) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Gallery{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// WithContext returns a repository bound to ctx.
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}
