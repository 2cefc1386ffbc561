package xipfs

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"

	reserr "github.com/provide-io/xipres/pkg/errors"
	"github.com/provide-io/xipres/pkg/logging"
)

// Store serves exactly one logical file backed by a Blob.
type Store struct {
	blob   *Blob
	name   string
	closed atomic.Bool
	logger hclog.Logger
}

// NewStore returns a store that answers to logicalName.
func NewStore(blob *Blob, logicalName string, logger hclog.Logger) (*Store, error) {
	if blob == nil {
		return nil, fmt.Errorf("%w: nil blob", reserr.ErrInvalidArgument)
	}
	return &Store{
		blob:   blob,
		name:   strings.TrimPrefix(logicalName, "/"),
		logger: logging.OrNull(logger),
	}, nil
}

// Close retires the store before its blob is unmapped. Open then fails
// with ErrClosed, and so does every operation on handles it issued.
// Closing twice is harmless.
func (s *Store) Close() {
	if !s.closed.Swap(true) {
		s.logger.Debug("🔒 Store closed", "name", s.name)
	}
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	return s.closed.Load()
}

// Name returns the logical file name.
func (s *Store) Name() string {
	return s.name
}

// Blob returns the backing blob.
func (s *Store) Blob() *Blob {
	return s.blob
}

// Open returns a new handle positioned at 0. Only the logical name opens,
// with or without a leading slash. Every mode is accepted; a mode asking to
// write or append yields a handle whose writes fail.
func (s *Store) Open(name, mode string) (*File, error) {
	if s.Closed() {
		return nil, fmt.Errorf("%w: store for %s", reserr.ErrClosed, s.name)
	}
	if !s.matches(name) {
		s.logger.Debug("📄 Open of unknown file", "name", name)
		return nil, fmt.Errorf("%w: %s", reserr.ErrNotFound, name)
	}

	writable := strings.ContainsAny(mode, "wa+")
	if writable {
		s.logger.Warn("⚠️ Write intent on read-only asset", "name", name, "mode", mode)
	}

	s.logger.Trace("📄 Opened asset", "name", name, "mode", mode, "size", s.blob.Len())

	return &File{
		name:     s.name,
		store:    s,
		data:     s.blob.data,
		writable: writable,
	}, nil
}

func (s *Store) matches(name string) bool {
	return strings.TrimPrefix(name, "/") == s.name
}
