// Package resource wires the asset partition to the file-access contract
// the engine is built against.
//
// At startup Init locates the asset partition, maps it, validates its
// signature and hands out a FileProvider. Everything after Init is local:
// bad names, bad seeks and short reads never escalate.
package resource

import (
	"io"
)

// LogicalName is the file name the engine opens its IWAD under.
const LogicalName = "doom1.wad"

// File is an open asset handle.
type File interface {
	io.ReadSeekCloser

	// Tell returns the current position.
	Tell() int64

	// ReadElements reads up to count elements of size bytes into dst and
	// returns the number of whole elements read. Zero at the end of the
	// file is not an error.
	ReadElements(dst []byte, size, count int) (int, error)
}

// FileProvider opens asset files.
type FileProvider interface {
	Open(name, mode string) (File, error)
}
