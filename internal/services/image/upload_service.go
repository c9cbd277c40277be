// Package image implements the image lifecycle: upload with thumbnail
// generation, metadata extraction, field updates with gallery reassignment,
// and deletion. Gallery membership counts are maintained by the repository
// layer inside the same transaction as the record mutation.
package image

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path"

	"github.com/picstash/picstash/database/models"
	"github.com/picstash/picstash/database/repo/images"
	"github.com/picstash/picstash/internal/apperr"
	"github.com/picstash/picstash/storage"
	"github.com/picstash/picstash/utils"
	"github.com/picstash/picstash/utils/validator"
)

const originalDir = "uploads"

// UploadMeta carries the caller-supplied fields accompanying an upload.
type UploadMeta struct {
	Name        string
	Description string
	Tags        string
	GalleryID   *uint
}

// UploadService stores uploaded images: original file, thumbnail, and the
// database record, cleaning up written files when a later step fails.
type UploadService struct {
	repo     *images.Repository
	store    storage.Provider
	maxBytes int64
}

func NewUploadService(repo *images.Repository, store storage.Provider, maxBytes int64) *UploadService {
	return &UploadService{repo: repo, store: store, maxBytes: maxBytes}
}

// Upload validates and persists an uploaded image. Validation happens before
// any storage write; once the original file is on disk, every failure path
// removes the files written so far before surfacing the error.
func (s *UploadService) Upload(ctx context.Context, fileHeader *multipart.FileHeader, meta UploadMeta) (*models.Image, error) {
	if fileHeader == nil {
		return nil, apperr.InvalidInput("No image file provided")
	}
	if fileHeader.Size > s.maxBytes {
		return nil, apperr.InvalidInput(fmt.Sprintf("File exceeds the %dMB upload limit", s.maxBytes>>20))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperr.Internal("failed to open uploaded file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return nil, apperr.Internal("failed to read uploaded file", err)
	}
	if len(data) == 0 {
		return nil, apperr.InvalidInput("No image file provided")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperr.InvalidInput(fmt.Sprintf("File exceeds the %dMB upload limit", s.maxBytes>>20))
	}

	mimeType, ok := validator.DetectImageMime(data)
	if !ok {
		return nil, apperr.InvalidInput("Invalid file type. Only JPEG, PNG, GIF and WebP images are allowed")
	}

	meta.applyDefaults(fileHeader.Filename)

	storedName, err := utils.GenerateFileName(fileHeader.Filename)
	if err != nil {
		return nil, apperr.Internal("failed to generate file name", err)
	}
	originalPath := path.Join(originalDir, storedName)

	if err := s.store.Save(ctx, originalPath, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, apperr.Internal("failed to store uploaded file", err)
	}

	// From here on the original is on disk: failures must take it back out.
	md, err := readMetadata(data)
	if err != nil {
		s.cleanup(ctx, originalPath, "")
		return nil, apperr.InvalidInput("Unable to decode image")
	}

	thumbData, thumbExt, err := renderThumbnail(data, md.Format)
	if err != nil {
		s.cleanup(ctx, originalPath, "")
		return nil, err
	}
	thumbPath := thumbnailStoragePath(storedName, thumbExt)
	if err := s.store.Save(ctx, thumbPath, bytes.NewReader(thumbData), int64(len(thumbData))); err != nil {
		s.cleanup(ctx, originalPath, "")
		return nil, apperr.Internal("failed to store thumbnail", err)
	}

	img := &models.Image{
		FileName:      storedName,
		OriginalName:  meta.Name,
		Path:          originalPath,
		ThumbnailPath: thumbPath,
		Size:          int64(len(data)),
		MimeType:      mimeType,
		Description:   meta.Description,
		Tags:          utils.ParseTags(meta.Tags),
		Width:         md.Width,
		Height:        md.Height,
		Format:        md.Format,
		GalleryID:     meta.GalleryID,
	}
	if err := s.repo.WithContext(ctx).Create(img); err != nil {
		s.cleanup(ctx, originalPath, thumbPath)
		return nil, err
	}

	// Reload to resolve the gallery reference for the response.
	return s.repo.WithContext(ctx).GetByID(img.ID)
}

func (m *UploadMeta) applyDefaults(originalFileName string) {
	if m.Name == "" {
		m.Name = originalFileName
	}
}

// cleanup removes files written by a failed upload. Removal failures are
// logged only; the original error is what the caller reports.
func (s *UploadService) cleanup(ctx context.Context, originalPath, thumbPath string) {
	if err := s.store.Delete(ctx, originalPath); err != nil {
		log.Printf("[Upload] Failed to remove %s after aborted upload: %v", originalPath, err)
	}
	if thumbPath == "" {
		return
	}
	if err := s.store.Delete(ctx, thumbPath); err != nil {
		log.Printf("[Upload] Failed to remove %s after aborted upload: %v", thumbPath, err)
	}
}
