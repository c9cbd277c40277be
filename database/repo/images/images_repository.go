// Package images encapsulates all image-side database operations. The
// mutating methods also maintain the denormalized Gallery.ImageCount so that
// it always equals the number of member images; every cross-record mutation
// runs in a single transaction.
package images

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

// Create inserts a new image record; when the image carries a gallery
// reference the gallery's count is incremented in the same transaction. The
// gallery update is attempted only after the insert succeeds.
func (r *Repository) Create(image *models.Image) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(image).Error; err != nil {
			return err
		}
		if image.GalleryID != nil {
			return adjustImageCount(tx, *image.GalleryID, +1)
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return err
		}
		return apperr.FromDB(err, "Image not found", "Duplicate file name")
	}
	return nil
}

// GetByID loads an image with its gallery reference resolved.
func (r *Repository) GetByID(id uint) (*models.Image, error) {
	var image models.Image
	if err := r.db.Preload("Gallery").First(&image, id).Error; err != nil {
		return nil, apperr.FromDB(err, "Image not found", "")
	}
	return &image, nil
}

// List returns images newest first, optionally filtered by gallery.
func (r *Repository) List(galleryID *uint) ([]*models.Image, error) {
	db := r.db.Preload("Gallery").Order("created_at DESC")
	if galleryID != nil {
		db = db.Where("gallery_id = ?", *galleryID)
	}
	var result []*models.Image
	if err := db.Find(&result).Error; err != nil {
		return nil, apperr.Internal("failed to list images", err)
	}
	return result, nil
}

// Reassign moves an image to the target gallery (nil means unassign) and
// persists any field mutations already applied to image, as one transaction:
// pull from the old gallery, push onto the new one, save the image. When the
// target equals the current gallery the membership writes are skipped
// entirely and only the field mutations are saved.
func (r *Repository) Reassign(image *models.Image, target *uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if !sameGalleryRef(image.GalleryID, target) {
			if image.GalleryID != nil {
				if err := adjustImageCount(tx, *image.GalleryID, -1); err != nil {
					return err
				}
			}
			if target != nil {
				if err := adjustImageCount(tx, *target, +1); err != nil {
					return err
				}
			}
			image.GalleryID = target
		}
		// Save the association change and merged fields in one write.
		image.Gallery = nil
		return tx.Omit(clause.Associations).Save(image).Error
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return err
		}
		return apperr.Internal("failed to reassign image", err)
	}
	return nil
}

// DeleteWithDetach removes the image record, decrementing the owning
// gallery's count first when the image belongs to one.
func (r *Repository) DeleteWithDetach(image *models.Image) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if image.GalleryID != nil {
			if err := adjustImageCount(tx, *image.GalleryID, -1); err != nil {
				// The owning gallery is gone; the record delete proceeds.
				if apperr.KindOf(err) != apperr.KindNotFound {
					return err
				}
			}
		}
		return tx.Delete(image).Error
	})
	if err != nil {
		return apperr.Internal("failed to delete image", err)
	}
	return nil
}

// CountInGallery returns the number of images referencing a gallery.
func (r *Repository) CountInGallery(galleryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Image{}).Where("gallery_id = ?", galleryID).Count(&count).Error
	return count, err
}

// ListPaths returns the stored file paths of all images, for orphan scans.
func (r *Repository) ListPaths() ([]string, error) {
	var paths []string
	if err := r.db.Model(&models.Image{}).Pluck("path", &paths).Error; err != nil {
		return nil, err
	}
	return paths, nil
}

// WithContext returns a repository bound to ctx.
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

// adjustImageCount applies an atomic delta to a gallery's denormalized count
// and stamps its updated_at. Zero rows affected means the gallery is gone.
func adjustImageCount(tx *gorm.DB, galleryID uint, delta int) error {
	res := tx.Model(&models.Gallery{}).
		Where("id = ?", galleryID).
		UpdateColumns(map[string]interface{}{
			"image_count": gorm.Expr("image_count + ?", delta),
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Gallery not found")
	}
	return nil
}

func sameGalleryRef(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
