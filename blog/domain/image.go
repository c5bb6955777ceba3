package domain

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// ErrImageNotFound is returned when no upload matches a name.
var ErrImageNotFound = errors.New("image not found")

// ImageExtensions are the file types served from the uploads directory.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Image is a previously uploaded file referenced from post bodies as
// /blog/uploads/<name>.
type Image struct {
	Name      string
	Path      string
	Size      int64
	UpdatedAt time.Time
}

type ImageRepository interface {
	// GetImage resolves an upload by file name.
	GetImage(ctx context.Context, name string) (*Image, error)
}

// IsImageName reports whether name is a plain file name with a known image
// extension.
func IsImageName(name string) bool {
	if !ValidKey(name) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
