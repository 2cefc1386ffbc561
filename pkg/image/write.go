package image

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/xipres/pkg/logging"
)

// WriteFile writes the image to path. The bytes go to a temporary file in
// the same directory first, which then replaces path, so a reader never
// sees a half-written image.
func (img *Image) WriteFile(path string, logger hclog.Logger) error {
	logger = logging.OrNull(logger)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".xipres-*.bin")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(img.Data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close image: %w", err)
	}

	if err := atomicReplace(tmpPath, path, logger); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
