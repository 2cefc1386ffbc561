//go:build !windows
// +build !windows

package image

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
)

// atomicReplace moves sourcePath over destPath. rename(2) is atomic.
func atomicReplace(sourcePath, destPath string, logger hclog.Logger) error {
	if err := os.Rename(sourcePath, destPath); err != nil {
		return fmt.Errorf("failed to rename image: %w", err)
	}

	logger.Info("💾 Image written", "path", destPath)
	return nil
}
