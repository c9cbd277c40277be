package validator

import "net/http"

// allowedImageMimeTypes are the upload types the service accepts.
var allowedImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// DetectImageMime sniffs the MIME type from the leading bytes of a file and
// reports whether it is an accepted image type.
func DetectImageMime(head []byte) (string, bool) {
	mimeType := http.DetectContentType(head)
	return mimeType, allowedImageMimeTypes[mimeType]
}
