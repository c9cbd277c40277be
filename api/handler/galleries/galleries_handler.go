// Package galleries exposes the gallery endpoints: create, list, detail,
// rename/describe, and delete with member detachment.
package galleries

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/picstash/picstash/api/common"
	"github.com/picstash/picstash/api/handler/dto"
	"github.com/picstash/picstash/api/middleware"
	"github.com/picstash/picstash/internal/apperr"
	gallerysvc "github.com/picstash/picstash/internal/services/gallery"
)

type Handler struct {
	service *gallerysvc.Service
	cache   *middleware.ResponseCache
	baseURL string
}

func NewHandler(service *gallerysvc.Service, cache *middleware.ResponseCache, baseURL string) *Handler {
	return &Handler{service: service, cache: cache, baseURL: baseURL}
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Create handles POST /api/galleries.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondAppError(c, apperr.InvalidInput("Invalid request body"))
		return
	}

	g, err := h.service.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.cache.Invalidate()
	common.RespondCreated(c, dto.NewGallery(g, h.baseURL))
}

// List handles GET /api/galleries.
func (h *Handler) List(c *gin.Context) {
	gs, err := h.service.List(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, dto.NewGalleryList(gs, h.baseURL))
}

// Get handles GET /api/galleries/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	g, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, dto.NewGallery(g, h.baseURL))
}

// Update handles PATCH /api/galleries/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondAppError(c, apperr.InvalidInput("Invalid request body"))
		return
	}

	g, err := h.service.Update(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.cache.Invalidate()
	common.RespondSuccess(c, dto.NewGallery(g, h.baseURL))
}

// Delete handles DELETE /api/galleries/:id. Member images survive as
// unassigned.
func (h *Handler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.cache.Invalidate()
	common.RespondMessage(c, "Gallery deleted successfully")
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.InvalidInput("Invalid gallery ID format")
	}
	return uint(id), nil
}
