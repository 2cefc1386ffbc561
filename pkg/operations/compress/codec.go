// Package compress registers the compression operations a source asset may
// be stored with.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/provide-io/xipres/pkg/operations"
)

// MaxDecodedSize caps a decoded asset. Nothing larger fits a flash chip.
const MaxDecodedSize = 16 << 20

type readerFunc func(io.Reader) (io.ReadCloser, error)
type writerFunc func(io.Writer) (io.WriteCloser, error)

// codec is an operation built from a reader and writer constructor pair.
type codec struct {
	operations.BaseOperation
	newReader readerFunc
	newWriter writerFunc
	ratio     int64 // expected compressed size, tenths of the input
	overhead  int64
}

func (c *codec) Apply(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.ApplyStream(bytes.NewReader(input), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *codec) ApplyStream(input io.Reader, output io.Writer) error {
	w, err := c.newWriter(output)
	if err != nil {
		return fmt.Errorf("creating %s writer: %w", c.Name(), err)
	}

	if _, err := io.Copy(w, input); err != nil {
		_ = w.Close()
		return fmt.Errorf("compressing %s stream: %w", c.Name(), err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("closing %s writer: %w", c.Name(), err)
	}
	return nil
}

func (c *codec) Reverse(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.ReverseStream(bytes.NewReader(input), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReverseStream decodes input into output, failing once more than
// MaxDecodedSize bytes come out.
func (c *codec) ReverseStream(input io.Reader, output io.Writer) error {
	r, err := c.newReader(input)
	if err != nil {
		return fmt.Errorf("creating %s reader: %w", c.Name(), err)
	}
	defer r.Close()

	n, err := io.Copy(output, io.LimitReader(r, MaxDecodedSize+1))
	if err != nil {
		return fmt.Errorf("decompressing %s stream: %w", c.Name(), err)
	}
	if n > MaxDecodedSize {
		return fmt.Errorf("decompressed %s data exceeds %d bytes", c.Name(), MaxDecodedSize)
	}
	return nil
}

func (c *codec) EstimateSize(inputSize int64) int64 {
	return (inputSize*c.ratio)/10 + c.overhead
}
