// Package gallery implements gallery CRUD. The delete cascade that detaches
// member images lives in the repository so it shares a transaction with the
// record removal.
package gallery

import (
	"context"
	"strings"

	"github.com/picstash/picstash/database/models"
	"github.com/picstash/picstash/database/repo/galleries"
	"github.com/picstash/picstash/internal/apperr"
	"github.com/picstash/picstash/utils"
)

type Service struct {
	repo *galleries.Repository
}

func NewService(repo *galleries.Repository) *Service {
	return &Service{repo: repo}
}

// Create makes a new gallery. The slug is derived from the name; a slug
// collision with an existing gallery surfaces as a Conflict.
func (s *Service) Create(ctx context.Context, name, description string) (*models.Gallery, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.InvalidInput("Gallery name is required")
	}
	g := &models.Gallery{
		Name:        name,
		Slug:        utils.Slugify(name),
		Description: description,
	}
	if err := s.repo.WithContext(ctx).Create(g); err != nil {
		return nil, err
	}
	return g, nil
}

// List returns all galleries with their member images resolved.
func (s *Service) List(ctx context.Context) ([]*models.Gallery, error) {
	return s.repo.WithContext(ctx).List()
}

// Get loads one gallery with its member images.
func (s *Service) Get(ctx context.Context, id uint) (*models.Gallery, error) {
	return s.repo.WithContext(ctx).GetByID(id)
}

// Update renames a gallery and/or replaces its description. Renaming
// recomputes the slug, so the new name can collide and return a Conflict.
// An empty name leaves the current name in place.
func (s *Service) Update(ctx context.Context, id uint, name, description *string) (*models.Gallery, error) {
	repo := s.repo.WithContext(ctx)

	g, err := repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		g.Name = *name
		g.Slug = utils.Slugify(*name)
	}
	if description != nil {
		g.Description = *description
	}
	if err := repo.Save(g); err != nil {
		return nil, err
	}
	return repo.GetByID(id)
}

// Delete removes a gallery. Member images survive as unassigned; their files
// are untouched.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.WithContext(ctx).DeleteWithDetach(id)
}
