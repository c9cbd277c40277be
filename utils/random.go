package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// GenerateFileName produces an effectively unique stored file name: 16 bytes
// of randomness hex-encoded, keeping the original extension.
func GenerateFileName(originalName string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	return hex.EncodeToString(buf) + ext, nil
}
