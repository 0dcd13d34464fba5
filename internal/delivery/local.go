// ABOUTME: Local fetcher symlinks a locally-built module directory into place
// ABOUTME: The module stays editable in its source tree; version is always "local"

package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mauromedda/featuremod-go/internal/config"
)

// LocalFetcher implements Fetcher by symlinking local directories.
type LocalFetcher struct{}

// Fetch creates a symlink at dest pointing to the source directory.
func (LocalFetcher) Fetch(_ context.Context, _ string, src Source, dest string) (string, error) {
	absPath, err := filepath.Abs(config.ExpandHome(src.Location))
	if err != nil {
		return "", fmt.Errorf("resolving path %s: %w", src.Location, err)
	}

	fi, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("source path %s: %w", absPath, err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("source path %s is not a directory", absPath)
	}

	if err := os.Symlink(absPath, dest); err != nil {
		return "", fmt.Errorf("creating symlink %s -> %s: %w", dest, absPath, err)
	}
	return "local", nil
}
