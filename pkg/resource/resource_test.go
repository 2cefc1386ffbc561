package resource

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/xipres/pkg/checksum"
	"github.com/provide-io/xipres/pkg/config"
	reserr "github.com/provide-io/xipres/pkg/errors"
	"github.com/provide-io/xipres/pkg/flash"
	"github.com/provide-io/xipres/pkg/partition"
	"github.com/provide-io/xipres/pkg/region"
)

const (
	wadSize       = 1296860
	wadPartition  = 0x140000
	testImageSize = partition.DefaultAssetOffset + wadPartition
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "resource_test",
		Level: hclog.Trace,
	})
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Length = wadSize
	cfg.LogLevel = "trace"
	return cfg
}

// flashImage lays out a 4 MiB-class image with the WAD in the asset
// partition, as the firmware build does.
func flashImage(t *testing.T, magic string) []byte {
	t.Helper()

	table := &partition.Table{
		Checksummed: true,
		Entries: []partition.Entry{
			{Type: partition.TypeData, SubType: partition.SubTypeNVS, Offset: 0x9000, Size: 0x6000, Label: "nvs"},
			{Type: partition.TypeApp, SubType: partition.SubTypeFactory, Offset: 0x10000, Size: 0x200000, Label: "factory"},
			{Type: partition.TypeAsset, SubType: partition.SubTypeAsset, Offset: partition.DefaultAssetOffset, Size: wadPartition, Label: "wad"},
		},
	}
	raw, err := table.Marshal()
	require.NoError(t, err)

	image := make([]byte, testImageSize)
	copy(image[partition.DefaultTableOffset:], raw)

	wad := image[partition.DefaultAssetOffset : partition.DefaultAssetOffset+wadSize]
	for i := range wad {
		wad[i] = byte(i >> 3)
	}
	copy(wad, magic)
	return image
}

func memoryDevice(t *testing.T, image []byte) flash.Device {
	t.Helper()
	dev, err := flash.NewMemory(image, flash.WithLogger(testLogger()))
	require.NoError(t, err)
	return dev
}

// TestMountIWAD is the startup path: map the partition, open the logical
// file, read the signature
func TestMountIWAD(t *testing.T) {
	r, err := Init(testConfig(), memoryDevice(t, flashImage(t, "IWAD")), testLogger())
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, int64(wadSize), r.Store().Blob().Len())
	assert.Equal(t, uint32(partition.DefaultAssetOffset), r.Mapping().Address)

	var provider FileProvider = r
	f, err := provider.Open("/"+LogicalName, "rb")
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 4)
	n, err := f.ReadElements(buf, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("IWAD"), buf)

	end, err := f.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(wadSize), end)
	assert.Equal(t, int64(wadSize), f.Tell())
}

func TestBadSignatureHaltsInit(t *testing.T) {
	for _, magic := range []string{"PWAD", "\xff\xff\xff\xff", "IWA\x00"} {
		t.Run(magic, func(t *testing.T) {
			_, err := Init(testConfig(), memoryDevice(t, flashImage(t, magic)), testLogger())
			require.Error(t, err)
			assert.True(t, errors.Is(err, reserr.ErrInvalidMagic))
			assert.True(t, reserr.IsFatal(err))
		})
	}
}

func TestMustInitPanics(t *testing.T) {
	dev := memoryDevice(t, flashImage(t, "PWAD"))
	assert.Panics(t, func() { MustInit(testConfig(), dev, nil) })

	dev = memoryDevice(t, flashImage(t, "IWAD"))
	assert.NotPanics(t, func() { MustInit(testConfig(), dev, nil) })
}

func TestMissingPartition(t *testing.T) {
	dev := memoryDevice(t, flashImage(t, "IWAD"))

	cfg := testConfig()
	cfg.Partition.SubType = 0x07
	_, err := Init(cfg, dev, testLogger())
	assert.True(t, errors.Is(err, reserr.ErrPartitionNotFound))

	cfg = testConfig()
	cfg.Partition.Label = "storage"
	_, err = Init(cfg, dev, testLogger())
	assert.True(t, errors.Is(err, reserr.ErrPartitionNotFound))
}

func TestLocateByLabel(t *testing.T) {
	cfg := testConfig()
	cfg.Partition.Label = "wad"
	cfg.Partition.Type = 0

	r, err := Init(cfg, memoryDevice(t, flashImage(t, "IWAD")), testLogger())
	require.NoError(t, err)
	assert.Equal(t, "wad", r.Mapping().Partition.Label)
}

func TestWholePartitionWhenLengthUnset(t *testing.T) {
	cfg := testConfig()
	cfg.Length = 0

	r, err := Init(cfg, memoryDevice(t, flashImage(t, "IWAD")), testLogger())
	require.NoError(t, err)
	assert.Equal(t, int64(wadPartition), r.Store().Blob().Len())
}

func TestLengthBeyondPartitionFails(t *testing.T) {
	cfg := testConfig()
	cfg.Length = wadPartition + 1

	_, err := Init(cfg, memoryDevice(t, flashImage(t, "IWAD")), testLogger())
	assert.True(t, errors.Is(err, reserr.ErrMapFailed))
}

func TestInvalidConfigIsFatal(t *testing.T) {
	cfg := testConfig()
	cfg.Magic = "IWADS"

	_, err := Init(cfg, memoryDevice(t, flashImage(t, "IWAD")), testLogger())
	require.Error(t, err)
	assert.True(t, reserr.IsFatal(err))
}

func TestExpectedChecksum(t *testing.T) {
	image := flashImage(t, "IWAD")
	wad := image[partition.DefaultAssetOffset : partition.DefaultAssetOffset+wadSize]

	cfg := testConfig()
	cfg.ExpectedChecksum = checksum.Calculate(wad, checksum.Adler32)
	r, err := Init(cfg, memoryDevice(t, image), testLogger())
	require.NoError(t, err)
	assert.Equal(t, cfg.ExpectedChecksum, r.Checksum(checksum.Adler32))

	cfg.ExpectedChecksum = "adler32:00000001"
	_, err = Init(cfg, memoryDevice(t, image), testLogger())
	assert.True(t, errors.Is(err, reserr.ErrChecksumMismatch))
}

func TestUnknownNameIsLocal(t *testing.T) {
	r, err := Init(testConfig(), memoryDevice(t, flashImage(t, "IWAD")), testLogger())
	require.NoError(t, err)

	_, err = r.Open("doom2.wad", "rb")
	assert.True(t, errors.Is(err, reserr.ErrNotFound))
	assert.False(t, reserr.IsFatal(err))

	// still usable afterwards
	_, err = r.Open(LogicalName, "rb")
	assert.NoError(t, err)
}

func TestInitImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")
	require.NoError(t, os.WriteFile(path, flashImage(t, "IWAD"), 0o644))

	cfg := testConfig()
	cfg.Image = path

	r, err := InitImage(cfg, testLogger())
	require.NoError(t, err)

	f, err := r.Open(LogicalName, "r")
	require.NoError(t, err)
	head := make([]byte, 8)
	_, err = io.ReadFull(f, head)
	require.NoError(t, err)
	assert.Equal(t, []byte("IWAD"), head[:4])

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	// The mapping is gone: open handles and new opens fail instead of
	// touching unmapped memory.
	n, err := f.ReadElements(head, 1, 8)
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, reserr.ErrClosed))

	_, err = r.Open(LogicalName, "r")
	assert.True(t, errors.Is(err, reserr.ErrClosed))
	assert.Empty(t, r.Checksum(checksum.SHA256))

	cfg.Image = filepath.Join(t.TempDir(), "missing.bin")
	_, err = InitImage(cfg, testLogger())
	assert.True(t, errors.Is(err, reserr.ErrMapFailed))
}

func TestHostProvider(t *testing.T) {
	dir := t.TempDir()
	content := append([]byte("IWAD"), bytes.Repeat([]byte{7}, 10)...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, LogicalName), content, 0o644))

	var provider FileProvider = NewHostProvider(dir, testLogger())

	f, err := provider.Open(LogicalName, "rb")
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 8)
	n, err := f.ReadElements(buf, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(8), f.Tell())

	// 6 bytes remain: one whole element
	n, err = f.ReadElements(buf, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.ReadElements(buf, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// an element count whose byte size overflows is refused
	n, err = f.ReadElements(buf, int(^uint(0)>>1), 3)
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, reserr.ErrInvalidArgument))

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	_, err = f.ReadElements(buf, 1, 1)
	assert.True(t, errors.Is(err, reserr.ErrClosed))

	_, err = provider.Open("doom2.wad", "rb")
	assert.True(t, errors.Is(err, reserr.ErrNotFound))

	_, err = provider.Open("../../etc/passwd", "rb")
	assert.True(t, errors.Is(err, reserr.ErrNotFound))

	_, err = provider.Open(LogicalName, "wb")
	assert.True(t, errors.Is(err, reserr.ErrReadOnly))
}

func TestEngineDeclarationsFitESP32(t *testing.T) {
	policy, err := region.NewPolicy(region.ESP32())
	require.NoError(t, err)

	layout, err := policy.Plan(EngineDeclarations())
	require.NoError(t, err)

	expected := map[string]string{
		"states":     region.IRAM,
		"mobjinfo":   region.IRAM,
		"sprnames":   region.Flash,
		"S_sfx":      region.RTCSlow,
		"ticcmds":    region.RTCFast,
		"validcount": region.DRAM,
		"colormaps":  region.Flash,
	}
	for name, want := range expected {
		got, ok := layout.RegionOf(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got.Name, name)
	}
	assert.Empty(t, layout.Demotions())
}

func TestAnnotationsMatchCategories(t *testing.T) {
	assert.Equal(t, region.MutableTable, IRAMTable)
	assert.Equal(t, region.HotBuffer, RTCBuffer)
	assert.Equal(t, region.ColdBuffer, RTCLookup)
	assert.Equal(t, region.HotScalar, DRAM)
	assert.Equal(t, region.StaticTable, Progmem)

	d := Declare("finesine", Progmem, 40960)
	assert.Equal(t, region.Declaration{Name: "finesine", Category: region.StaticTable, Size: 40960}, d)
}
