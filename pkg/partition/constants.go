package partition

// Core format constants of the ESP-IDF binary partition table.
var (
	EntryMagic = []byte{0xAA, 0x50} // regular entry
	MD5Magic   = []byte{0xEB, 0xEB} // checksum entry
)

const (
	EntrySize      = 32
	LabelSize      = 16
	TableMaxSize   = 0xC00 // one flash sector minus the bootloader's reserve
	MaxEntries     = TableMaxSize/EntrySize - 1
	emptyByte      = 0xFF
	md5DigestStart = 16
)

// Flash layout defaults.
const (
	DefaultTableOffset = 0x8000
	DataAlignment      = 0x1000  // data partitions: one erase sector
	AppAlignment       = 0x10000 // app partitions: one MMU page
	MMUPageSize        = 0x10000 // mmap granularity
	DefaultAssetOffset = 0x210000
)

// Partition types.
const (
	TypeApp  Type = 0x00
	TypeData Type = 0x01

	// TypeAsset is the custom type the asset blob is flashed under.
	TypeAsset Type = 0x42
)

// Data subtypes.
const (
	SubTypeOTA       SubType = 0x00
	SubTypePHY       SubType = 0x01
	SubTypeNVS       SubType = 0x02
	SubTypeCoreDump  SubType = 0x03
	SubTypeNVSKeys   SubType = 0x04
	SubTypeEFuse     SubType = 0x05
	SubTypeUndefined SubType = 0x06
	SubTypeFAT       SubType = 0x81
	SubTypeSPIFFS    SubType = 0x82
	SubTypeLittleFS  SubType = 0x83

	// SubTypeAsset is the subtype paired with TypeAsset.
	SubTypeAsset SubType = 0x06
)

// App subtypes.
const (
	SubTypeFactory SubType = 0x00
	SubTypeOTA0    SubType = 0x10
	SubTypeOTA1    SubType = 0x11
)

// Entry flags.
const (
	FlagEncrypted uint32 = 1 << 0
	FlagReadOnly  uint32 = 1 << 1
)
