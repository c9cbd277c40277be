// Package images exposes the image endpoints: upload, list, detail, partial
// update with gallery reassignment, and delete.
package images

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/picstash/picstash/api/common"
	"github.com/picstash/picstash/api/handler/dto"
	"github.com/picstash/picstash/api/middleware"
	"github.com/picstash/picstash/database/repo/images"
	"github.com/picstash/picstash/internal/apperr"
	imagesvc "github.com/picstash/picstash/internal/services/image"
)

type Handler struct {
	uploads *imagesvc.UploadService
	updates *imagesvc.UpdateService
	deletes *imagesvc.DeleteService
	repo    *images.Repository
	cache   *middleware.ResponseCache
	baseURL string
}

func NewHandler(
	uploads *imagesvc.UploadService,
	updates *imagesvc.UpdateService,
	deletes *imagesvc.DeleteService,
	repo *images.Repository,
	cache *middleware.ResponseCache,
	baseURL string,
) *Handler {
	return &Handler{
		uploads: uploads,
		updates: updates,
		deletes: deletes,
		repo:    repo,
		cache:   cache,
		baseURL: baseURL,
	}
}

// Upload handles POST /api/images (multipart form).
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		common.RespondAppError(c, apperr.InvalidInput("No image file provided"))
		return
	}

	galleryID, err := parseOptionalID(c.PostForm("galleryId"), "Invalid gallery ID format")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	img, err := h.uploads.Upload(c.Request.Context(), fileHeader, imagesvc.UploadMeta{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Tags:        c.PostForm("tags"),
		GalleryID:   galleryID,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.cache.Invalidate()
	common.RespondCreated(c, dto.NewImage(img, h.baseURL))
}

// List handles GET /api/images with an optional ?gallery=<id> filter.
func (h *Handler) List(c *gin.Context) {
	galleryID, err := parseOptionalID(c.Query("gallery"), "Invalid gallery ID format")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	imgs, err := h.repo.WithContext(c.Request.Context()).List(galleryID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, dto.NewImageList(imgs, h.baseURL))
}

// Get handles GET /api/images/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"), "Invalid image ID format")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	img, err := h.repo.WithContext(c.Request.Context()).GetByID(id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, dto.NewImage(img, h.baseURL))
}

// Update handles PATCH /api/images/:id. The body is taken as a loose JSON
// object; the service merges only allow-listed fields and interprets
// galleryId presence for reassignment.
func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c.Param("id"), "Invalid image ID format")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondAppError(c, apperr.InvalidInput("Invalid request body"))
		return
	}

	img, err := h.updates.Update(c.Request.Context(), id, body)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.cache.Invalidate()
	common.RespondSuccess(c, dto.NewImage(img, h.baseURL))
}

// Delete handles DELETE /api/images/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"), "Invalid image ID format")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	if err := h.deletes.Delete(c.Request.Context(), id); err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.cache.Invalidate()
	common.RespondMessage(c, "Image deleted successfully")
}

func parseID(raw, invalidMsg string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.InvalidInput(invalidMsg)
	}
	return uint(id), nil
}

func parseOptionalID(raw, invalidMsg string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw, invalidMsg)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
