package flash

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	reserr "github.com/provide-io/xipres/pkg/errors"
	"github.com/provide-io/xipres/pkg/partition"
)

// Memory is a Device backed by an in-memory flash image. Mappings share the
// image's storage.
type Memory struct {
	image  []byte
	table  *partition.Table
	logger hclog.Logger
}

// NewMemory parses the partition table of image and returns a Device over it.
func NewMemory(image []byte, opts ...Option) (*Memory, error) {
	o := buildOptions(opts)

	end := uint64(o.tableOffset) + partition.TableMaxSize
	if end > uint64(len(image)) {
		return nil, fmt.Errorf("%w: image of %d bytes has no table at 0x%x", reserr.ErrInvalidPartitionTable, len(image), o.tableOffset)
	}

	table, err := partition.Parse(image[o.tableOffset:end])
	if err != nil {
		return nil, err
	}

	o.logger.Debug("🗂️ Partition table loaded",
		"offset", fmt.Sprintf("0x%x", o.tableOffset),
		"entries", len(table.Entries))

	return &Memory{image: image, table: table, logger: o.logger}, nil
}

func (m *Memory) Partitions() *partition.Table {
	return m.table
}

func (m *Memory) Find(typ partition.Type, sub partition.SubType) (partition.Entry, error) {
	return find(m.table, typ, sub)
}

func (m *Memory) Map(p partition.Entry, offset, length uint32) (*Mapping, error) {
	start, n, err := window(p, offset, length, int64(len(m.image)))
	if err != nil {
		return nil, err
	}

	m.logger.Debug("🗺️ Mapped partition window",
		"partition", p.Label,
		"address", fmt.Sprintf("0x%x", start),
		"length", n)

	end := start + n
	return &Mapping{
		Data:      m.image[start:end:end],
		Partition: p,
		Address:   start,
	}, nil
}

func (m *Memory) Close() error {
	return nil
}
