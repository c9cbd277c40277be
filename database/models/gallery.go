package models

import "gorm.io/gorm"

// Gallery is a named collection of images. ImageCount is denormalized for
// list queries and must equal the number of member images after every
// mutating operation; the repositories maintain it inside transactions.
type Gallery struct {
	gorm.Model
	Name        string `gorm:"type:varchar(100);not null"`
	Slug        string `gorm:"uniqueIndex:idx_gallery_slug;not null"`
	Description string `gorm:"type:varchar(255)"`
	ImageCount  int64  `gorm:"not null;default:0"`

	CoverImageID *uint
	CoverImage   *Image `gorm:"foreignKey:CoverImageID"`

	Images []*Image `gorm:"foreignKey:GalleryID"`
}
