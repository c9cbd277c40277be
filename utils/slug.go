package utils

import (
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a gallery name: lowercase, every
// maximal run of characters outside [a-z0-9] collapsed to a single dash.
func Slugify(name string) string {
	return slugPattern.ReplaceAllString(strings.ToLower(name), "-")
}
