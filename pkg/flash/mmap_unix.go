//go:build !windows
// +build !windows

package flash

import (
	"os"

	"golang.org/x/sys/unix"
)

func mapRegion(f *os.File, offset int64, length int) ([]byte, func() error, error) {
	data, err := unix.Mmap(int(f.Fd()), offset, length, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return unix.Munmap(data) }, nil
}
