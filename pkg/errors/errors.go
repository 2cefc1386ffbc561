// Package errors holds the sentinel errors shared by the resource layer.
//
// Fatal errors stop initialization (or the build-time placement pass). Local
// errors are returned by individual file operations and never escalate.
package errors

import "errors"

var (
	// Fatal: initialization 💥
	ErrPartitionNotFound     = errors.New("❌ asset partition not found")
	ErrInvalidPartitionTable = errors.New("❌ invalid partition table")
	ErrMapFailed             = errors.New("❌ flash mapping failed")
	ErrInvalidMagic          = errors.New("❌ invalid blob signature")
	ErrChecksumMismatch      = errors.New("❌ blob checksum mismatch")

	// Fatal: build-time placement 📐
	ErrCapacityExceeded   = errors.New("❌ region capacity exceeded")
	ErrPlacementViolation = errors.New("❌ placement violates region attributes")
	ErrInvalidRegistry    = errors.New("❌ invalid region registry")

	// Local: file operations 📄
	ErrNotFound        = errors.New("file not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrClosed          = errors.New("file already closed")
	ErrReadOnly        = errors.New("read-only file")
)

// IsFatal reports whether err belongs to the fatal class.
func IsFatal(err error) bool {
	for _, target := range []error{
		ErrPartitionNotFound,
		ErrInvalidPartitionTable,
		ErrMapFailed,
		ErrInvalidMagic,
		ErrChecksumMismatch,
		ErrCapacityExceeded,
		ErrPlacementViolation,
		ErrInvalidRegistry,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
