// Package flash gives read-only, memory-mapped access to partitions of a
// flash image.
//
// A Device is the platform capability the resource layer starts from: it
// exposes the partition table and maps a window of a partition into the
// address space. Mapping happens once at startup and is expected to fail
// fast.
package flash

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	reserr "github.com/provide-io/xipres/pkg/errors"
	"github.com/provide-io/xipres/pkg/logging"
	"github.com/provide-io/xipres/pkg/partition"
)

// Device is a flash chip (or an image of one).
type Device interface {
	// Partitions returns the parsed partition table.
	Partitions() *partition.Table

	// Find returns the first partition of the given type and subtype.
	Find(typ partition.Type, sub partition.SubType) (partition.Entry, error)

	// Map maps length bytes starting offset bytes into p. A zero length
	// maps the rest of the partition.
	Map(p partition.Entry, offset, length uint32) (*Mapping, error)

	Close() error
}

// Mapping is a read-only view of flash. Data must not be written.
type Mapping struct {
	Data      []byte
	Partition partition.Entry

	// Address is the flash address of Data[0].
	Address uint32

	unmap func() error
	once  sync.Once
	err   error
}

// Len returns the mapped length.
func (m *Mapping) Len() int {
	return len(m.Data)
}

// Close releases the mapping. It is safe to call more than once.
func (m *Mapping) Close() error {
	m.once.Do(func() {
		if m.unmap != nil {
			m.err = m.unmap()
		}
		m.Data = nil
	})
	return m.err
}

// Option configures a Device.
type Option func(*options)

type options struct {
	tableOffset uint32
	logger      hclog.Logger
}

// WithTableOffset sets the flash offset of the partition table.
func WithTableOffset(offset uint32) Option {
	return func(o *options) { o.tableOffset = offset }
}

// WithLogger sets the device logger.
func WithLogger(logger hclog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{tableOffset: partition.DefaultTableOffset}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.OrNull(o.logger)
	return o
}

// window resolves a request against a partition and an image of size bytes.
// It returns the absolute flash offset and length to map.
func window(p partition.Entry, offset, length uint32, size int64) (uint32, uint32, error) {
	if offset > p.Size {
		return 0, 0, fmt.Errorf("%w: offset %d past end of %s (%d bytes)", reserr.ErrMapFailed, offset, p.Label, p.Size)
	}
	if length == 0 {
		length = p.Size - offset
	}
	if length == 0 {
		return 0, 0, fmt.Errorf("%w: empty window in %s", reserr.ErrMapFailed, p.Label)
	}
	if uint64(offset)+uint64(length) > uint64(p.Size) {
		return 0, 0, fmt.Errorf("%w: %d bytes at %d exceed %s (%d bytes)", reserr.ErrMapFailed, length, offset, p.Label, p.Size)
	}

	start := p.Offset + offset
	if uint64(start)+uint64(length) > uint64(size) {
		return 0, 0, fmt.Errorf("%w: %s ends at 0x%x beyond image size 0x%x", reserr.ErrMapFailed, p.Label, uint64(start)+uint64(length), size)
	}
	return start, length, nil
}

func find(table *partition.Table, typ partition.Type, sub partition.SubType) (partition.Entry, error) {
	p, ok := table.Find(typ, sub)
	if !ok {
		return partition.Entry{}, fmt.Errorf("%w: type 0x%02x subtype 0x%02x", reserr.ErrPartitionNotFound, uint8(typ), uint8(sub))
	}
	return p, nil
}
