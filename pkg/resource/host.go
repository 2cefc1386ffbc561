package resource

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	reserr "github.com/provide-io/xipres/pkg/errors"
	"github.com/provide-io/xipres/pkg/logging"
)

// HostProvider serves files from a directory on the host, the way the
// engine loads its WAD on a desktop build.
type HostProvider struct {
	root   string
	logger hclog.Logger
}

var _ FileProvider = (*HostProvider)(nil)

// NewHostProvider serves files under root.
func NewHostProvider(root string, logger hclog.Logger) *HostProvider {
	return &HostProvider{root: root, logger: logging.OrNull(logger)}
}

// Open opens name under the root for reading. Write modes are refused with
// ErrReadOnly; assets are never modified.
func (h *HostProvider) Open(name, mode string) (File, error) {
	if strings.ContainsAny(mode, "wa+") {
		return nil, fmt.Errorf("%w: %s opened with mode %q", reserr.ErrReadOnly, name, mode)
	}

	clean := filepath.Clean("/" + name)
	path := filepath.Join(h.root, filepath.FromSlash(clean))

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", reserr.ErrNotFound, name)
		}
		return nil, err
	}

	h.logger.Trace("📂 Opened host file", "path", path)
	return &hostFile{File: f}, nil
}

type hostFile struct {
	*os.File
	closed bool
}

// Close closes the file once; later calls return nil.
func (f *hostFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.File.Close()
}

func (f *hostFile) Tell() int64 {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0
	}
	return pos
}

func (f *hostFile) ReadElements(dst []byte, size, count int) (int, error) {
	if f.closed {
		return 0, reserr.ErrClosed
	}
	if size <= 0 || count <= 0 {
		return 0, nil
	}

	want := int64(size) * int64(count)
	if int64(count) != want/int64(size) {
		return 0, fmt.Errorf("%w: %d elements of %d bytes", reserr.ErrInvalidArgument, count, size)
	}
	if want > int64(len(dst)) {
		want = int64(len(dst))
	}

	n, err := io.ReadFull(f.File, dst[:want])
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	return n / size, err
}
