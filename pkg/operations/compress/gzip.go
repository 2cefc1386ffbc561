package compress

import (
	"compress/gzip"
	"io"

	"github.com/provide-io/xipres/pkg/operations"
)

func init() {
	operations.Register(NewGzipOperation())
}

// NewGzipOperation creates the GZIP operation
func NewGzipOperation() operations.Operation {
	return &codec{
		BaseOperation: operations.BaseOperation{
			OpID:   operations.OP_GZIP,
			OpName: "GZIP",
		},
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriterLevel(w, gzip.BestCompression)
		},
		// lump data in a WAD is mostly uncompressed pictures
		ratio:    6,
		overhead: 18,
	}
}
