package assets

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/snapdiff/internal/models"
)

// publicPrefix is the URL path segment the asset tree is served under.
const publicPrefix = "assets"

// Writer persists rendered screenshots under the asset root and hands back
// the public path they are served at.
type Writer struct {
	root   string
	logger arbor.ILogger
}

// NewWriter creates an asset writer rooted at the given directory.
func NewWriter(root string, logger arbor.ILogger) *Writer {
	return &Writer{
		root:   root,
		logger: logger,
	}
}

// Root returns the on-disk asset root directory.
func (w *Writer) Root() string {
	return w.root
}

// Save writes one image as `<root>/<folder>/<name>.png` and returns its
// public path. The public path always uses forward slashes.
func (w *Writer) Save(img *models.RawImage, folder string) (string, error) {
	dir := filepath.Join(w.root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create asset directory %s: %w", dir, err)
	}

	fileName := img.Name + ".png"
	if err := os.WriteFile(filepath.Join(dir, fileName), img.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write asset %s: %w", fileName, err)
	}

	w.logger.Debug().
		Str("name", img.Name).
		Str("folder", folder).
		Str("size", humanize.Bytes(uint64(len(img.Data)))).
		Msg("Saved asset")

	return path.Join(publicPrefix, folder, fileName), nil
}

// RemoveAll deletes the entire asset tree.
func (w *Writer) RemoveAll() error {
	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("failed to remove asset root %s: %w", w.root, err)
	}
	return nil
}
