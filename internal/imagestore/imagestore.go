// Package imagestore persists listing photos and hands back opaque
// references. Listings and sessions only ever carry references, never
// image bytes.
package imagestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store persists one image and returns its reference.
type Store interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
}

// FileStore writes images to a local directory, one file per image, named
// by a generated id.
type FileStore struct {
	dir string
	log *slog.Logger
}

func NewFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create image dir %q: %w", dir, err)
	}

	return &FileStore{dir: dir, log: log}, nil
}

// Put writes the image and returns its reference.
func (s *FileStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image payload")
	}

	ref := uuid.NewString() + extensionFor(contentType)
	path := filepath.Join(s.dir, ref)

	if err := os.WriteFile(path, data, 0o640); err != nil {
		s.log.Error("failed to write image", slog.String("ref", ref), slog.Any("error", err))
		return "", fmt.Errorf("write image %q: %w", ref, err)
	}

	s.log.Debug("image stored", slog.String("ref", ref), slog.Int("bytes", len(data)))
	return ref, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
