package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/picabord/website/blog/domain"
)

func TestImageRepository_GetImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "board.png"), []byte("fake image content"), 0644); err != nil {
		t.Fatalf("Failed to write image: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.png"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	repo := NewImageRepository(dir)

	img, err := repo.GetImage(context.Background(), "board.png")
	if err != nil {
		t.Fatalf("GetImage failed: %v", err)
	}
	if img.Name != "board.png" || img.Size != int64(len("fake image content")) {
		t.Errorf("GetImage() = %+v", img)
	}
	if img.Path != filepath.Join(dir, "board.png") {
		t.Errorf("Path = %q, want %q", img.Path, filepath.Join(dir, "board.png"))
	}

	tests := []struct {
		name    string
		wantErr error
	}{
		{name: "missing.png", wantErr: domain.ErrImageNotFound},
		{name: "dir.png", wantErr: domain.ErrImageNotFound},
		{name: "notes.txt", wantErr: domain.ErrInvalidInput},
		{name: "../board.png", wantErr: domain.ErrInvalidInput},
		{name: "", wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.GetImage(context.Background(), tt.name)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetImage(%q) error = %v, want %v", tt.name, err, tt.wantErr)
			}
		})
	}
}
