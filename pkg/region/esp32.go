package region

// Region names of the ESP32 catalog.
const (
	DRAM    = "dram"
	IRAM    = "iram"
	RTCFast = "rtc_fast"
	RTCSlow = "rtc_slow"
	Flash   = "flash"
)

// Capacities of the ESP32 catalog, in bytes.
const (
	DRAMCapacity    = 0x2c200         // dram0_0_seg with Bluetooth disabled
	IRAMCapacity    = 68 * 1024       // instruction RAM left over by the SDK
	RTCFastCapacity = 8 * 1024        // rtc.data
	RTCSlowCapacity = 8 * 1024        // rtc.force_slow
	FlashCapacity   = 4 * 1024 * 1024 // data cache mmap window
)

// ESP32 returns the memory catalog of an ESP32 without PSRAM.
func ESP32() *Registry {
	return MustRegistry(ESP32Regions()...)
}

// ESP32Regions returns the regions behind ESP32, for callers that want to
// adjust a capacity before freezing their own registry.
func ESP32Regions() []Region {
	return []Region{
		{
			Name:        DRAM,
			Capacity:    DRAMCapacity,
			Latency:     Fast,
			Primary:     true,
			Align:       4,
			Description: "primary data RAM",
		},
		{
			Name:        IRAM,
			Capacity:    IRAMCapacity,
			Latency:     Fast,
			Align:       4, // 32-bit access only
			Description: "instruction RAM used for data",
		},
		{
			Name:        RTCFast,
			Capacity:    RTCFastCapacity,
			Latency:     Fast,
			Persistent:  true,
			Align:       4,
			Description: "RTC fast SRAM, kept in deep sleep",
		},
		{
			Name:        RTCSlow,
			Capacity:    RTCSlowCapacity,
			Latency:     Slow,
			Persistent:  true,
			Align:       4,
			Description: "RTC slow SRAM, kept in deep sleep",
		},
		{
			Name:        Flash,
			Capacity:    FlashCapacity,
			Latency:     Slow,
			ReadOnly:    true,
			Persistent:  true,
			Align:       1,
			Description: "memory-mapped SPI flash (rodata)",
		},
	}
}
