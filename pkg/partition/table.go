// Package partition reads and writes the binary partition table that
// records where each region of flash lives.
package partition

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	reserr "github.com/provide-io/xipres/pkg/errors"
)

// Type is the partition type byte.
type Type uint8

// SubType is the partition subtype byte.
type SubType uint8

func (t Type) String() string {
	switch t {
	case TypeApp:
		return "app"
	case TypeData:
		return "data"
	case TypeAsset:
		return "asset"
	}
	return fmt.Sprintf("0x%02x", uint8(t))
}

// Entry is one 32-byte partition record.
type Entry struct {
	Type    Type
	SubType SubType
	Offset  uint32
	Size    uint32
	Label   string
	Flags   uint32
}

// End returns the first offset past the partition.
func (e Entry) End() uint64 {
	return uint64(e.Offset) + uint64(e.Size)
}

func (e Entry) String() string {
	return fmt.Sprintf("%s type=%s subtype=0x%02x offset=0x%x size=%d", e.Label, e.Type, uint8(e.SubType), e.Offset, e.Size)
}

// Pack serializes the entry to EntrySize bytes.
func (e Entry) Pack() ([]byte, error) {
	if len(e.Label) > LabelSize {
		return nil, fmt.Errorf("%w: label %q longer than %d bytes", reserr.ErrInvalidPartitionTable, e.Label, LabelSize)
	}

	buf := make([]byte, EntrySize)
	copy(buf[0:2], EntryMagic)
	buf[2] = uint8(e.Type)
	buf[3] = uint8(e.SubType)
	binary.LittleEndian.PutUint32(buf[4:8], e.Offset)
	binary.LittleEndian.PutUint32(buf[8:12], e.Size)
	copy(buf[12:28], e.Label)
	binary.LittleEndian.PutUint32(buf[28:32], e.Flags)

	return buf, nil
}

// UnpackEntry deserializes one regular entry.
func UnpackEntry(data []byte) (Entry, error) {
	if len(data) != EntrySize {
		return Entry{}, fmt.Errorf("%w: entry size %d", reserr.ErrInvalidPartitionTable, len(data))
	}
	if !bytes.Equal(data[0:2], EntryMagic) {
		return Entry{}, fmt.Errorf("%w: bad entry magic %02x%02x", reserr.ErrInvalidPartitionTable, data[0], data[1])
	}

	label := data[12:28]
	if i := bytes.IndexByte(label, 0); i >= 0 {
		label = label[:i]
	}

	return Entry{
		Type:    Type(data[2]),
		SubType: SubType(data[3]),
		Offset:  binary.LittleEndian.Uint32(data[4:8]),
		Size:    binary.LittleEndian.Uint32(data[8:12]),
		Label:   string(label),
		Flags:   binary.LittleEndian.Uint32(data[28:32]),
	}, nil
}

// Table is an ordered list of partitions.
type Table struct {
	Entries []Entry

	// Checksummed is set when the parsed table carried an MD5 entry, and
	// makes Marshal emit one.
	Checksummed bool
}

// Parse decodes a table image. Parsing stops at the first erased entry; an
// MD5 entry, if present, must match the entries before it.
func Parse(data []byte) (*Table, error) {
	t := &Table{}

entries:
	for off := 0; off+EntrySize <= len(data) && off < TableMaxSize; off += EntrySize {
		raw := data[off : off+EntrySize]

		switch {
		case isErased(raw):
			break entries

		case bytes.Equal(raw[0:2], MD5Magic):
			sum := md5.Sum(data[:off])
			if !bytes.Equal(raw[md5DigestStart:], sum[:]) {
				return nil, fmt.Errorf("%w: md5 mismatch at 0x%x", reserr.ErrInvalidPartitionTable, off)
			}
			t.Checksummed = true

		default:
			e, err := UnpackEntry(raw)
			if err != nil {
				return nil, fmt.Errorf("entry at 0x%x: %w", off, err)
			}
			t.Entries = append(t.Entries, e)
		}
	}

	if len(t.Entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", reserr.ErrInvalidPartitionTable)
	}
	return t, nil
}

// Marshal encodes the table padded with erased bytes to TableMaxSize.
func (t *Table) Marshal() ([]byte, error) {
	if len(t.Entries) > MaxEntries {
		return nil, fmt.Errorf("%w: %d entries, max %d", reserr.ErrInvalidPartitionTable, len(t.Entries), MaxEntries)
	}

	buf := bytes.Repeat([]byte{emptyByte}, TableMaxSize)
	off := 0
	for _, e := range t.Entries {
		packed, err := e.Pack()
		if err != nil {
			return nil, err
		}
		copy(buf[off:], packed)
		off += EntrySize
	}

	if t.Checksummed {
		sum := md5.Sum(buf[:off])
		copy(buf[off:off+2], MD5Magic)
		copy(buf[off+md5DigestStart:off+EntrySize], sum[:])
	}

	return buf, nil
}

// Find returns the first partition of the given type and subtype.
func (t *Table) Find(typ Type, sub SubType) (Entry, bool) {
	for _, e := range t.Entries {
		if e.Type == typ && e.SubType == sub {
			return e, true
		}
	}
	return Entry{}, false
}

// FindLabel returns the partition with the given label.
func (t *Table) FindLabel(label string) (Entry, bool) {
	for _, e := range t.Entries {
		if e.Label == label {
			return e, true
		}
	}
	return Entry{}, false
}

// Validate checks labels, alignment, overlap with each other and with the
// table itself at tableOffset.
func (t *Table) Validate(tableOffset uint32) error {
	var problems []string
	labels := make(map[string]bool)

	for _, e := range t.Entries {
		if e.Label == "" {
			problems = append(problems, fmt.Sprintf("partition at 0x%x has no label", e.Offset))
		} else if labels[e.Label] {
			problems = append(problems, fmt.Sprintf("duplicate label %q", e.Label))
		}
		labels[e.Label] = true

		if len(e.Label) > LabelSize {
			problems = append(problems, fmt.Sprintf("label %q too long", e.Label))
		}
		if e.Size == 0 {
			problems = append(problems, fmt.Sprintf("%s has zero size", e.Label))
		}

		align := uint32(DataAlignment)
		if e.Type == TypeApp {
			align = AppAlignment
		}
		if e.Offset%align != 0 {
			problems = append(problems, fmt.Sprintf("%s offset 0x%x not aligned to 0x%x", e.Label, e.Offset, align))
		}

		if uint64(e.Offset) < uint64(tableOffset)+TableMaxSize && e.End() > uint64(tableOffset) {
			problems = append(problems, fmt.Sprintf("%s overlaps the partition table", e.Label))
		}
	}

	sorted := make([]Entry, len(t.Entries))
	copy(sorted, t.Entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	for i := 1; i < len(sorted); i++ {
		if uint64(sorted[i].Offset) < sorted[i-1].End() {
			problems = append(problems, fmt.Sprintf("%s overlaps %s", sorted[i].Label, sorted[i-1].Label))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", reserr.ErrInvalidPartitionTable, strings.Join(problems, "; "))
	}
	return nil
}

func isErased(b []byte) bool {
	for _, v := range b {
		if v != emptyByte {
			return false
		}
	}
	return true
}
