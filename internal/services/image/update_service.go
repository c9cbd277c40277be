package image

import (
	"context"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/picstash/picstash/database/models"
	"github.com/picstash/picstash/database/repo/images"
	"github.com/picstash/picstash/internal/apperr"
	"github.com/picstash/picstash/utils"
)

// updateFields is the allow-list of caller-editable image fields. Anything
// else in the request body is dropped before the merge.
type updateFields struct {
	Name        *string   `mapstructure:"name"`
	Description *string   `mapstructure:"description"`
	Tags        *[]string `mapstructure:"tags"`
}

// UpdateService applies partial updates to an image, including moving it
// between galleries.
type UpdateService struct {
	repo *images.Repository
}

func NewUpdateService(repo *images.Repository) *UpdateService {
	return &UpdateService{repo: repo}
}

// Update merges allow-listed fields from the request body into the image and
// reassigns its gallery when the body carries a galleryId key. An absent key
// leaves the membership untouched; a null, empty or zero value unassigns.
func (s *UpdateService) Update(ctx context.Context, id uint, body map[string]interface{}) (*models.Image, error) {
	repo := s.repo.WithContext(ctx)

	img, err := repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	target := img.GalleryID
	if raw, present := body["galleryId"]; present {
		target, err = parseGalleryRef(raw)
		if err != nil {
			return nil, err
		}
	}

	// Tags may arrive as a comma-separated string or a JSON array.
	if raw, ok := body["tags"].(string); ok {
		body["tags"] = utils.ParseTags(raw)
	}

	var fields updateFields
	if err := mapstructure.Decode(body, &fields); err != nil {
		return nil, apperr.InvalidInput("Invalid update payload")
	}
	if fields.Name != nil && *fields.Name != "" {
		img.OriginalName = *fields.Name
	}
	if fields.Description != nil {
		img.Description = *fields.Description
	}
	if fields.Tags != nil {
		img.Tags = *fields.Tags
	}

	if err := repo.Reassign(img, target); err != nil {
		return nil, err
	}
	return repo.GetByID(id)
}

// parseGalleryRef interprets the galleryId value from a JSON body. Null, an
// empty string and zero all mean "no gallery".
func parseGalleryRef(raw interface{}) (*uint, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		if v <= 0 {
			return nil, nil
		}
		id := uint(v)
		return &id, nil
	case string:
		if v == "" {
			return nil, nil
		}
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, apperr.InvalidInput("Invalid gallery ID format")
		}
		if id == 0 {
			return nil, nil
		}
		ref := uint(id)
		return &ref, nil
	default:
		return nil, apperr.InvalidInput("Invalid gallery ID format")
	}
}
