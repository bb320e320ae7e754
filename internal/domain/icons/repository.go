// Package icons manages the marker icon catalog: a flat directory of
// uploaded png/svg files listed, created and deleted through the HTTP API.
package icons

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/cartodesk/cartodesk-api/internal/types"
)

// Repository is the icon storage contract.
type Repository interface {
	// List returns the catalog filenames in directory order; a missing
	// directory yields an empty catalog.
	List(ctx context.Context) ([]string, error)
	// Save stores the file under a generated collision-free name and
	// returns it. Only image/png and image/svg+xml are accepted.
	Save(ctx context.Context, data []byte, mimeType string) (string, error)
	// Delete removes an icon; deleting a missing file is not an error.
	Delete(ctx context.Context, name string) error
}

var allowedMimeExt = map[string]string{
	"image/png":     ".png",
	"image/svg+xml": ".svg",
}

// FSRepository stores icons on the local filesystem.
type FSRepository struct {
	dir    string
	logger *slog.Logger
}

var _ Repository = (*FSRepository)(nil)

func NewFSRepository(dir string, logger *slog.Logger) *FSRepository {
	return &FSRepository{dir: dir, logger: logger}
}

func (r *FSRepository) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list icons: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (r *FSRepository) Save(ctx context.Context, data []byte, mimeType string) (string, error) {
	ext, ok := allowedMimeExt[mimeType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported icon type %q", types.ErrBadRequest, mimeType)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create icon directory: %w", err)
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(r.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write icon %q: %w", name, err)
	}
	r.logger.InfoContext(ctx, "icon saved", "name", name)
	return name, nil
}

func (r *FSRepository) Delete(ctx context.Context, name string) error {
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("%w: invalid icon name %q", types.ErrBadRequest, name)
	}
	if err := os.Remove(filepath.Join(r.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete icon %q: %w", name, err)
	}
	r.logger.InfoContext(ctx, "icon deleted", "name", name)
	return nil
}
