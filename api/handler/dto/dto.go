// Package dto shapes database records into API response payloads, resolving
// storage paths into absolute URLs.
package dto

import (
	"time"

	"github.com/picstash/picstash/database/models"
)

type ImageMetadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

type GalleryRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Image struct {
	ID            uint          `json:"id"`
	FileName      string        `json:"fileName"`
	OriginalName  string        `json:"originalName"`
	Path          string        `json:"path"`
	ThumbnailPath string        `json:"thumbnailPath"`
	URL           string        `json:"url"`
	ThumbnailURL  string        `json:"thumbnailUrl"`
	Size          int64         `json:"size"`
	MimeType      string        `json:"mimeType"`
	Description   string        `json:"description"`
	Tags          []string      `json:"tags"`
	Metadata      ImageMetadata `json:"metadata"`
	Gallery       *GalleryRef   `json:"gallery"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// ImageSummary is the trimmed image shape embedded in gallery payloads.
type ImageSummary struct {
	ID            uint   `json:"id"`
	OriginalName  string `json:"originalName"`
	Path          string `json:"path"`
	ThumbnailPath string `json:"thumbnailPath"`
	URL           string `json:"url"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	Size          int64  `json:"size"`
	Description   string `json:"description"`
}

type Gallery struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	ImageCount  int64          `json:"imageCount"`
	CoverImage  *ImageSummary  `json:"coverImage"`
	Images      []ImageSummary `json:"images"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func NewImage(img *models.Image, baseURL string) Image {
	out := Image{
		ID:            img.ID,
		FileName:      img.FileName,
		OriginalName:  img.OriginalName,
		Path:          img.Path,
		ThumbnailPath: img.ThumbnailPath,
		URL:           fileURL(baseURL, img.Path),
		ThumbnailURL:  fileURL(baseURL, img.ThumbnailPath),
		Size:          img.Size,
		MimeType:      img.MimeType,
		Description:   img.Description,
		Tags:          img.Tags,
		Metadata: ImageMetadata{
			Width:  img.Width,
			Height: img.Height,
			Format: img.Format,
		},
		CreatedAt: img.CreatedAt,
		UpdatedAt: img.UpdatedAt,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if img.Gallery != nil {
		out.Gallery = &GalleryRef{ID: img.Gallery.ID, Name: img.Gallery.Name, Slug: img.Gallery.Slug}
	}
	return out
}

func NewImageList(imgs []*models.Image, baseURL string) []Image {
	out := make([]Image, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, NewImage(img, baseURL))
	}
	return out
}

func NewImageSummary(img *models.Image, baseURL string) ImageSummary {
	return ImageSummary{
		ID:            img.ID,
		OriginalName:  img.OriginalName,
		Path:          img.Path,
		ThumbnailPath: img.ThumbnailPath,
		URL:           fileURL(baseURL, img.Path),
		ThumbnailURL:  fileURL(baseURL, img.ThumbnailPath),
		Size:          img.Size,
		Description:   img.Description,
	}
}

func NewGallery(g *models.Gallery, baseURL string) Gallery {
	out := Gallery{
		ID:          g.ID,
		Name:        g.Name,
		Slug:        g.Slug,
		Description: g.Description,
		ImageCount:  g.ImageCount,
		Images:      make([]ImageSummary, 0, len(g.Images)),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
	for _, img := range g.Images {
		out.Images = append(out.Images, NewImageSummary(img, baseURL))
	}
	if g.CoverImage != nil {
		cover := NewImageSummary(g.CoverImage, baseURL)
		out.CoverImage = &cover
	}
	return out
}

func NewGalleryList(gs []*models.Gallery, baseURL string) []Gallery {
	out := make([]Gallery, 0, len(gs))
	for _, g := range gs {
		out = append(out, NewGallery(g, baseURL))
	}
	return out
}

func fileURL(baseURL, path string) string {
	if path == "" {
		return ""
	}
	return baseURL + "/" + path
}
