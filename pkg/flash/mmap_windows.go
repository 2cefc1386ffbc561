//go:build windows
// +build windows

package flash

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func mapRegion(f *os.File, offset int64, length int) ([]byte, func() error, error) {
	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("CreateFileMapping: %w", err)
	}

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, uint32(offset>>32), uint32(offset), uintptr(length))
	if err != nil {
		_ = windows.CloseHandle(h)
		return nil, nil, fmt.Errorf("MapViewOfFile: %w", err)
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)
	unmap := func() error {
		if err := windows.UnmapViewOfFile(addr); err != nil {
			_ = windows.CloseHandle(h)
			return err
		}
		return windows.CloseHandle(h)
	}
	return data, unmap, nil
}
