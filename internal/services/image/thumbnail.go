package image

import (
	"bytes"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/picstash/picstash/internal/apperr"
)

const (
	thumbnailWidth  = 200
	thumbnailHeight = 200
	thumbnailPrefix = "thumb-"
	thumbnailDir    = "uploads/thumbnails"
)

// renderThumbnail decodes src and produces a thumbnailWidth x thumbnailHeight
// center-cropped cover thumbnail, encoded in the same format as the source.
// WebP has no encoder here, so its thumbnails come back as JPEG; the returned
// extension is the one actually used.
func renderThumbnail(src []byte, format string) (data []byte, ext string, err error) {
	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, "", apperr.InvalidInput("Unable to decode image")
	}

	thumb := imaging.Fill(img, thumbnailWidth, thumbnailHeight, imaging.Center, imaging.Lanczos)

	var (
		enc  imaging.Format
		opts []imaging.EncodeOption
	)
	switch format {
	case "png":
		enc, ext = imaging.PNG, ".png"
	case "gif":
		enc, ext = imaging.GIF, ".gif"
	default:
		enc, ext = imaging.JPEG, ".jpg"
		opts = append(opts, imaging.JPEGQuality(85))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, enc, opts...); err != nil {
		return nil, "", apperr.Internal("failed to encode thumbnail", err)
	}
	return buf.Bytes(), ext, nil
}

// thumbnailStoragePath derives the thumbnail path from the stored file name,
// swapping in the extension the thumbnail was actually encoded with.
func thumbnailStoragePath(storedName, ext string) string {
	base := strings.TrimSuffix(storedName, path.Ext(storedName))
	return path.Join(thumbnailDir, thumbnailPrefix+base+ext)
}
