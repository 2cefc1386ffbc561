package flash

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	reserr "github.com/provide-io/xipres/pkg/errors"
	"github.com/provide-io/xipres/pkg/partition"
)

// ImageFile is a Device backed by a flash image on disk. Map uses the
// platform's read-only file mapping, so nothing is copied into the heap.
type ImageFile struct {
	path   string
	file   *os.File
	size   int64
	table  *partition.Table
	logger hclog.Logger
}

// OpenImage opens a flash image and reads its partition table.
func OpenImage(path string, opts ...Option) (*ImageFile, error) {
	o := buildOptions(opts)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", reserr.ErrMapFailed, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %v", reserr.ErrMapFailed, err)
	}

	raw := make([]byte, partition.TableMaxSize)
	if _, err := f.ReadAt(raw, int64(o.tableOffset)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: reading table at 0x%x: %v", reserr.ErrInvalidPartitionTable, o.tableOffset, err)
	}

	table, err := partition.Parse(raw)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	o.logger.Debug("🗂️ Flash image opened",
		"path", path,
		"size", info.Size(),
		"entries", len(table.Entries))

	return &ImageFile{
		path:   path,
		file:   f,
		size:   info.Size(),
		table:  table,
		logger: o.logger,
	}, nil
}

// Path returns the image path.
func (d *ImageFile) Path() string {
	return d.path
}

func (d *ImageFile) Partitions() *partition.Table {
	return d.table
}

func (d *ImageFile) Find(typ partition.Type, sub partition.SubType) (partition.Entry, error) {
	return find(d.table, typ, sub)
}

func (d *ImageFile) Map(p partition.Entry, offset, length uint32) (*Mapping, error) {
	if d.file == nil {
		return nil, fmt.Errorf("%w: %s", reserr.ErrMapFailed, reserr.ErrClosed)
	}

	start, n, err := window(p, offset, length, d.size)
	if err != nil {
		return nil, err
	}

	// Views start on an MMU page, as on the chip.
	aligned := start &^ (partition.MMUPageSize - 1)
	skip := start - aligned

	view, unmap, err := mapRegion(d.file, int64(aligned), int(skip+n))
	if err != nil {
		return nil, fmt.Errorf("%w: %s at 0x%x: %v", reserr.ErrMapFailed, p.Label, start, err)
	}

	d.logger.Debug("🗺️ Mapped partition window",
		"partition", p.Label,
		"address", fmt.Sprintf("0x%x", start),
		"page", fmt.Sprintf("0x%x", aligned),
		"length", n)

	return &Mapping{
		Data:      view[skip : skip+n : skip+n],
		Partition: p,
		Address:   start,
		unmap:     unmap,
	}, nil
}

// Close closes the image file. Existing mappings stay valid until they are
// closed themselves.
func (d *ImageFile) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
