package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/wardrobe/internal/adapters/filestore"
)

// EnsureUploadsDir creates the uploads directory when it is missing and returns the store
// rooted there.
func EnsureUploadsDir(ctx context.Context, dir string, logger *slog.Logger) (*filestore.Store, error) {
	store := filestore.New(dir)
	created, err := store.EnsureDir()
	if err != nil {
		return nil, fmt.Errorf("prepare uploads dir: %w", err)
	}
	if created && logger != nil {
		logger.InfoContext(ctx, "created uploads directory", "dir", store.Dir())
	}
	return store, nil
}
