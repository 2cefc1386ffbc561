//go:build windows
// +build windows

package image

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sys/windows"
)

// atomicReplace moves sourcePath over destPath with MoveFileEx, retrying
// while a flasher or antivirus scanner still holds the old image open.
func atomicReplace(sourcePath, destPath string, logger hclog.Logger) error {
	fromPtr, err := windows.UTF16PtrFromString(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to convert source path to UTF-16: %w", err)
	}
	toPtr, err := windows.UTF16PtrFromString(destPath)
	if err != nil {
		return fmt.Errorf("failed to convert dest path to UTF-16: %w", err)
	}

	var flags uint32 = windows.MOVEFILE_REPLACE_EXISTING | windows.MOVEFILE_WRITE_THROUGH
	delay := 50 * time.Millisecond

	const maxAttempts = 3
	for attempt := 1; ; attempt++ {
		err = windows.MoveFileEx(fromPtr, toPtr, flags)
		if err == nil {
			logger.Info("💾 Image written", "path", destPath, "attempts", attempt)
			return nil
		}
		if attempt == maxAttempts {
			return fmt.Errorf("failed to replace image after %d attempts: %w", maxAttempts, err)
		}

		logger.Debug("Image locked, retrying", "attempt", attempt, "delay", delay, "error", err)
		time.Sleep(delay)
		delay *= 2
	}
}
