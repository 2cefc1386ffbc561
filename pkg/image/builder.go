package image

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/xipres/pkg/checksum"
	"github.com/provide-io/xipres/pkg/logging"
	"github.com/provide-io/xipres/pkg/operations"
	_ "github.com/provide-io/xipres/pkg/operations/compress"
	"github.com/provide-io/xipres/pkg/partition"
)

// Image is a built flash image.
type Image struct {
	Data     []byte
	Table    *partition.Table
	Contents []Content
}

// Content records what was written into one partition.
type Content struct {
	Label      string
	Source     string
	Operations string
	Offset     uint32
	Size       int
	Checksum   string
}

// Build lays out the image m describes.
func Build(m *Manifest, logger hclog.Logger) (*Image, error) {
	logger = logging.OrNull(logger)
	m.defaults()

	logger.Debug("📦 Building flash image",
		"flash_size", m.FlashSize,
		"table_offset", fmt.Sprintf("0x%x", m.TableOffset),
		"partitions", len(m.Partitions))

	table, err := m.table()
	if err != nil {
		return nil, err
	}
	if err := validateLayout(m, table); err != nil {
		return nil, err
	}

	raw, err := table.Marshal()
	if err != nil {
		return nil, err
	}

	data := bytes.Repeat([]byte{0xFF}, int(m.FlashSize))
	copy(data[m.TableOffset:], raw)
	logger.Debug("🗂️ Partition table written", "entries", len(table.Entries), "md5", table.Checksummed)

	img := &Image{Data: data, Table: table}

	for i, spec := range m.Partitions {
		if spec.Source == "" {
			continue
		}

		entry := table.Entries[i]
		content, err := m.fill(data, entry, spec, logger)
		if err != nil {
			return nil, fmt.Errorf("partition %q: %w", spec.Label, err)
		}
		img.Contents = append(img.Contents, content)
	}

	logger.Info("✅ Flash image built", "size", len(data), "contents", len(img.Contents))
	return img, nil
}

func (m *Manifest) fill(data []byte, entry partition.Entry, spec PartitionSpec, logger hclog.Logger) (Content, error) {
	path := spec.Source
	if !filepath.IsAbs(path) && m.Dir != "" {
		path = filepath.Join(m.Dir, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Content{}, fmt.Errorf("reading source: %w", err)
	}

	packed, err := sourceOperations(spec)
	if err != nil {
		return Content{}, err
	}

	decoded := raw
	if ops := operations.UnpackOperations(packed); len(ops) > 0 {
		logger.Debug("🔄 Decoding source",
			"source", spec.Source,
			"operations", operations.OperationsToString(packed),
			"stored_size", len(raw))
		decoded, err = operations.ReverseChain(raw, ops)
		if err != nil {
			return Content{}, fmt.Errorf("decoding source: %w", err)
		}
	}

	if spec.Magic != "" && !bytes.HasPrefix(decoded, []byte(spec.Magic)) {
		return Content{}, fmt.Errorf("source %s does not start with %q", spec.Source, spec.Magic)
	}
	if uint64(len(decoded)) > uint64(entry.Size) {
		return Content{}, fmt.Errorf("source is %d bytes, partition holds %d", len(decoded), entry.Size)
	}

	copy(data[entry.Offset:], decoded)

	content := Content{
		Label:      entry.Label,
		Source:     spec.Source,
		Operations: operations.OperationsToString(packed),
		Offset:     entry.Offset,
		Size:       len(decoded),
		Checksum:   checksum.Calculate(decoded, checksum.SHA256),
	}
	logger.Debug("✍️ Partition filled",
		"label", content.Label,
		"size", content.Size,
		"checksum", content.Checksum)
	return content, nil
}

func sourceOperations(spec PartitionSpec) (uint64, error) {
	if spec.Operations == "" {
		packed, _ := operations.FromExtension(spec.Source)
		return packed, nil
	}
	return operations.StringToOperations(spec.Operations)
}

// validateLayout checks the table against the flash chip: everything fits,
// and asset partitions start on an MMU page so they can be mapped whole.
func validateLayout(m *Manifest, table *partition.Table) error {
	if m.TableOffset%partition.DataAlignment != 0 {
		return fmt.Errorf("table offset 0x%x not aligned to 0x%x", m.TableOffset, partition.DataAlignment)
	}
	if uint64(m.TableOffset)+partition.TableMaxSize > uint64(m.FlashSize) {
		return fmt.Errorf("table at 0x%x does not fit %d bytes of flash", m.TableOffset, m.FlashSize)
	}
	if err := table.Validate(m.TableOffset); err != nil {
		return err
	}

	for _, e := range table.Entries {
		if e.End() > uint64(m.FlashSize) {
			return fmt.Errorf("partition %q ends at 0x%x past flash size 0x%x", e.Label, e.End(), m.FlashSize)
		}
		if e.Type == partition.TypeAsset && e.Offset%partition.MMUPageSize != 0 {
			return fmt.Errorf("asset partition %q at 0x%x is not aligned to the 0x%x mmap page", e.Label, e.Offset, partition.MMUPageSize)
		}
	}
	return nil
}
