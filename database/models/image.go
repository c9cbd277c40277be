package models

import "gorm.io/gorm"

// Image is a single uploaded file with its derived thumbnail and optional
// gallery membership. GalleryID is the authoritative side of the
// image/gallery relationship; Gallery.ImageCount mirrors it.
type Image struct {
	gorm.Model
	FileName      string `gorm:"uniqueIndex:idx_file_name;not null"`
	OriginalName  string `gorm:"not null"`
	Path          string `gorm:"not null"`
	ThumbnailPath string `gorm:"not null"`
	Size          int64  `gorm:"not null"`
	MimeType      string `gorm:"not null"`
	Description   string `gorm:"type:varchar(1024)"`

	Tags []string `gorm:"serializer:json"`

	// Intrinsic metadata read from the stored original.
	Width  int
	Height int
	Format string

	GalleryID *uint    `gorm:"index"`
	Gallery   *Gallery `gorm:"foreignKey:GalleryID"`
}
