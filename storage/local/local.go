// Package local implements disk-backed media storage.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage stores media files under a base directory on the local filesystem.
type Storage struct {
	absBasePath string
}

// NewStorage creates a local storage provider rooted at basePath.
func NewStorage(basePath string) (*Storage, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory '%s': %w", absPath, err)
	}

	return &Storage{absBasePath: absPath}, nil
}

func (s *Storage) resolve(path string) (string, error) {
	if !IsValidPath(path) {
		return "", fmt.Errorf("invalid media path: %s", path)
	}
	full := filepath.Join(s.absBasePath, filepath.FromSlash(path))

	// The final path must stay inside the base directory.
	if !strings.HasPrefix(full, s.absBasePath+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid media path, potential directory traversal: %s", path)
	}
	return full, nil
}

// Save writes a file under path, creating parent directories as needed.
func (s *Storage) Save(ctx context.Context, path string, file io.Reader, size int64) error {
	dstPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", dstPath, err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file '%s': %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(dstPath)
		return fmt.Errorf("failed to copy file content to '%s': %w", dstPath, err)
	}

	return nil
}

// Get opens a stored file.
func (s *Storage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	return file, nil
}

// Delete removes a stored file.
func (s *Storage) Delete(ctx context.Context, path string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file to delete not found: %s", path)
		}
		return fmt.Errorf("failed to delete local file '%s': %w", fullPath, err)
	}
	return nil
}

// Exists reports whether a file is present.
func (s *Storage) Exists(ctx context.Context, path string) (bool, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Health checks the base directory is readable.
func (s *Storage) Health(ctx context.Context) error {
	_, err := os.ReadDir(s.absBasePath)
	return err
}

func (s *Storage) Name() string {
	return "local"
}

// BasePath returns the absolute base directory, for static file serving.
func (s *Storage) BasePath() string {
	return s.absBasePath
}

// IsValidPath validates a relative media path: slash-separated segments of
// [a-zA-Z0-9._-], no traversal, no absolute paths.
func IsValidPath(path string) bool {
	if path == "" || strings.HasPrefix(path, "/") {
		return false
	}

	for _, segment := range strings.Split(path, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return false
		}
		for _, r := range segment {
			if !((r >= 'a' && r <= 'z') ||
				(r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') ||
				r == '-' || r == '_' || r == '.') {
				return false
			}
		}
	}
	return true
}
