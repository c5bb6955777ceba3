package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/picabord/website/blog/domain"
)

var _ domain.ImageRepository = (*FileImageRepository)(nil)

// FileImageRepository implements domain.ImageRepository over the uploads
// directory. It is read-only; files are placed there by the upload tooling.
type FileImageRepository struct {
	dir string
}

func NewImageRepository(dir string) *FileImageRepository {
	return &FileImageRepository{
		dir: dir,
	}
}

// GetImage retrieves a single image by file name
func (r *FileImageRepository) GetImage(ctx context.Context, name string) (*domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !domain.IsImageName(name) {
		return nil, fmt.Errorf("%w: bad image name %q", domain.ErrInvalidInput, name)
	}

	path := filepath.Join(r.dir, name)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return nil, fmt.Errorf("%w: %s", domain.ErrImageNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}

	return &domain.Image{
		Name:      name,
		Path:      path,
		Size:      info.Size(),
		UpdatedAt: info.ModTime(),
	}, nil
}
