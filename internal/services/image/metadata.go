package image

import (
	"bytes"
	stdimage "image"

	// Decoders for the supported upload formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Metadata holds the intrinsic properties read from an image's bytes.
type Metadata struct {
	Width  int
	Height int
	Format string
}

// readMetadata extracts dimensions and format without decoding pixel data.
func readMetadata(src []byte) (Metadata, error) {
	cfg, format, err := stdimage.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}
