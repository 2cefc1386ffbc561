package resource

import (
	"fmt"
	"runtime"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/xipres/pkg/checksum"
	"github.com/provide-io/xipres/pkg/config"
	reserr "github.com/provide-io/xipres/pkg/errors"
	"github.com/provide-io/xipres/pkg/flash"
	"github.com/provide-io/xipres/pkg/logging"
	"github.com/provide-io/xipres/pkg/partition"
	"github.com/provide-io/xipres/pkg/xipfs"
)

// Resources is the initialized resource layer: the mapped asset partition
// and the store serving it.
type Resources struct {
	cfg     config.Config
	device  flash.Device
	owned   bool
	mapping *flash.Mapping
	store   *xipfs.Store
	logger  hclog.Logger
}

var _ FileProvider = (*Resources)(nil)

// Init maps the asset partition of device and validates it. Every error
// it returns is fatal: the engine cannot run without its IWAD.
func Init(cfg config.Config, device flash.Device, logger hclog.Logger) (*Resources, error) {
	logger = logging.OrNull(logger)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", reserr.ErrMapFailed, err)
	}

	heapCheckpoint(logger, "before mmap")

	p, err := locate(cfg, device)
	if err != nil {
		logger.Error("❌ Asset partition not found", "error", err)
		return nil, err
	}

	logger.Debug("🔍 Found asset partition",
		"label", p.Label,
		"address", fmt.Sprintf("0x%x", p.Offset),
		"size", p.Size)

	mapping, err := device.Map(p, 0, cfg.Length)
	if err != nil {
		logger.Error("❌ Mapping failed", "partition", p.Label, "error", err)
		return nil, err
	}

	heapCheckpoint(logger, "after mmap")

	blob, err := xipfs.NewBlob(mapping.Data, cfg.Magic)
	if err != nil {
		_ = mapping.Close()
		logger.Error("❌ Asset signature check failed", "error", err)
		return nil, err
	}

	if cfg.ExpectedChecksum != "" {
		if err := checksum.Verify(mapping.Data, cfg.ExpectedChecksum); err != nil {
			_ = mapping.Close()
			logger.Error("❌ Asset checksum check failed", "error", err)
			return nil, err
		}
		logger.Debug("✅ Asset checksum verified", "checksum", cfg.ExpectedChecksum)
	}

	logger.Info("✅ Asset mapped",
		"name", cfg.LogicalName,
		"magic", blob.Magic(),
		"address", fmt.Sprintf("0x%x", mapping.Address),
		"size", blob.Len())

	store, err := xipfs.NewStore(blob, cfg.LogicalName, logger.Named("xipfs"))
	if err != nil {
		_ = mapping.Close()
		return nil, fmt.Errorf("%w: %w", reserr.ErrMapFailed, err)
	}

	return &Resources{
		cfg:     cfg,
		device:  device,
		mapping: mapping,
		store:   store,
		logger:  logger,
	}, nil
}

// InitImage opens the flash image named by cfg.Image and initializes from
// it. Close releases the image as well.
func InitImage(cfg config.Config, logger hclog.Logger) (*Resources, error) {
	logger = logging.OrNull(logger)

	device, err := flash.OpenImage(cfg.Image,
		flash.WithTableOffset(cfg.TableOffset),
		flash.WithLogger(logger.Named("flash")))
	if err != nil {
		return nil, err
	}

	r, err := Init(cfg, device, logger)
	if err != nil {
		_ = device.Close()
		return nil, err
	}
	r.owned = true
	return r, nil
}

// MustInit is Init for startup code with no degraded mode: it panics on
// failure.
func MustInit(cfg config.Config, device flash.Device, logger hclog.Logger) *Resources {
	r, err := Init(cfg, device, logger)
	if err != nil {
		panic(fmt.Sprintf("resource initialization failed: %v", err))
	}
	return r
}

// Open opens the asset. Only the logical name exists.
func (r *Resources) Open(name, mode string) (File, error) {
	f, err := r.store.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Store returns the file store over the asset.
func (r *Resources) Store() *xipfs.Store {
	return r.store
}

// Mapping returns the asset mapping.
func (r *Resources) Mapping() *flash.Mapping {
	return r.mapping
}

// Config returns the settings Init ran with.
func (r *Resources) Config() config.Config {
	return r.cfg
}

// Checksum returns the prefixed digest of the mapped asset.
// It returns "" once the asset is unmapped.
func (r *Resources) Checksum(algo checksum.Algorithm) string {
	if r.store.Closed() {
		return ""
	}
	return checksum.Calculate(r.store.Blob().Bytes(), algo)
}

// Close unmaps the asset. On the target this never happens; host tools
// call it when they are done. Afterwards Open and every outstanding handle
// fail with ErrClosed. Closing twice is harmless.
func (r *Resources) Close() error {
	if r.store.Closed() {
		return nil
	}
	r.store.Close()

	err := r.mapping.Close()
	if r.owned {
		if cerr := r.device.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func locate(cfg config.Config, device flash.Device) (partition.Entry, error) {
	if cfg.Partition.Label != "" {
		p, ok := device.Partitions().FindLabel(cfg.Partition.Label)
		if !ok {
			return partition.Entry{}, fmt.Errorf("%w: label %q", reserr.ErrPartitionNotFound, cfg.Partition.Label)
		}
		return p, nil
	}
	return device.Find(partition.Type(cfg.Partition.Type), partition.SubType(cfg.Partition.SubType))
}

// heapCheckpoint logs host heap figures around the mapping step. Reading
// them stops the world, so it only happens at debug level.
func heapCheckpoint(logger hclog.Logger, stage string) {
	if !logger.IsDebug() {
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	logger.Debug("🧠 Heap",
		"stage", stage,
		"heap_alloc", m.HeapAlloc,
		"heap_sys", m.HeapSys,
		"heap_objects", m.HeapObjects)
}
