package image

import (
	"context"
	"log"

	"github.com/picstash/picstash/database/repo/images"
	"github.com/picstash/picstash/storage"
)

// DeleteService removes an image record and its stored files. The record is
// authoritative: file removal is best effort and never blocks the delete.
type DeleteService struct {
	repo  *images.Repository
	store storage.Provider
}

func NewDeleteService(repo *images.Repository, store storage.Provider) *DeleteService {
	return &DeleteService{repo: repo, store: store}
}

// Delete detaches the image from its gallery, removes the record, then
// removes the original and thumbnail files. File removal failures are logged
// and the delete still succeeds.
func (s *DeleteService) Delete(ctx context.Context, id uint) error {
	repo := s.repo.WithContext(ctx)

	img, err := repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := repo.DeleteWithDetach(img); err != nil {
		return err
	}

	for _, p := range []string{img.Path, img.ThumbnailPath} {
		if p == "" {
			continue
		}
		if err := s.store.Delete(ctx, p); err != nil {
			log.Printf("[Delete] Failed to remove file %s for image %d: %v", p, img.ID, err)
		}
	}
	return nil
}
