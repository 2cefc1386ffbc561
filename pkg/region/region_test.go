package region

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	reserr "github.com/provide-io/xipres/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: hclog.Trace,
	})
}

func TestNewRegistryValidation(t *testing.T) {
	testCases := []struct {
		name    string
		regions []Region
	}{
		{"empty", nil},
		{"no primary", []Region{{Name: "a", Capacity: 1}}},
		{"two primaries", []Region{{Name: "a", Capacity: 1, Primary: true}, {Name: "b", Capacity: 1, Primary: true}}},
		{"duplicate", []Region{{Name: "a", Capacity: 1, Primary: true}, {Name: "a", Capacity: 1}}},
		{"zero capacity", []Region{{Name: "a", Capacity: 0, Primary: true}}},
		{"read-only primary", []Region{{Name: "a", Capacity: 1, Primary: true, ReadOnly: true}}},
		{"unnamed", []Region{{Capacity: 1, Primary: true}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistry(tc.regions...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, reserr.ErrInvalidRegistry))
			assert.True(t, reserr.IsFatal(err))
		})
	}
}

func TestESP32Catalog(t *testing.T) {
	reg := ESP32()

	assert.Len(t, reg.Regions(), 5)
	assert.Equal(t, DRAM, reg.Primary().Name)

	flash, ok := reg.Lookup(Flash)
	require.True(t, ok)
	assert.True(t, flash.ReadOnly)
	assert.True(t, flash.Persistent)

	_, ok = reg.Lookup("psram")
	assert.False(t, ok)
}

func TestRegistryIsImmutable(t *testing.T) {
	regions := ESP32Regions()
	reg := MustRegistry(regions...)

	regions[0].Capacity = 1
	got := reg.Regions()
	got[1].Capacity = 1

	dram, _ := reg.Lookup(DRAM)
	iram, _ := reg.Lookup(IRAM)
	assert.Equal(t, DRAMCapacity, dram.Capacity)
	assert.Equal(t, IRAMCapacity, iram.Capacity)
}

func TestPlaceBuiltins(t *testing.T) {
	policy, err := NewPolicy(ESP32())
	require.NoError(t, err)

	testCases := []struct {
		category string
		want     string
	}{
		{StaticTable, Flash},
		{MutableTable, IRAM},
		{ColdBuffer, RTCSlow},
		{HotBuffer, RTCFast},
		{HotScalar, DRAM},
		{Default, DRAM},
		{"never-heard-of-it", DRAM},
	}

	for _, tc := range testCases {
		t.Run(tc.category, func(t *testing.T) {
			r, err := policy.Place(tc.category)
			require.NoError(t, err)
			assert.Equal(t, tc.want, r.Name)
		})
	}
}

func TestPlaceCustomCategories(t *testing.T) {
	policy, err := NewPolicy(ESP32(),
		Category{Name: "sound-lookup", Persistence: PersistenceRequired, Rule: RuleSlowPersistent},
		Category{Name: "framebuffer", Mutable: true, Pin: DRAM},
	)
	require.NoError(t, err)

	r, err := policy.Place("sound-lookup")
	require.NoError(t, err)
	assert.Equal(t, RTCSlow, r.Name, "immutable cold data still prefers RTC over flash")

	r, err = policy.Place("framebuffer")
	require.NoError(t, err)
	assert.Equal(t, DRAM, r.Name)
}

func TestPinnedViolationIsRejected(t *testing.T) {
	policy, err := NewPolicy(ESP32(), Category{Name: "bad", Mutable: true, Pin: Flash})
	require.NoError(t, err)

	_, err = policy.Place("bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, reserr.ErrPlacementViolation))
}

func TestPinToUnknownRegion(t *testing.T) {
	_, err := NewPolicy(ESP32(), Category{Name: "x", Pin: "psram"})
	assert.True(t, errors.Is(err, reserr.ErrInvalidRegistry))
}

func TestRequiredPersistenceWithoutPersistentRegion(t *testing.T) {
	reg := MustRegistry(
		Region{Name: "ram", Capacity: 1024, Primary: true},
		Region{Name: "rom", Capacity: 4096, ReadOnly: true},
	)
	policy, err := NewPolicy(reg)
	require.NoError(t, err)

	_, err = policy.Place(ColdBuffer)
	assert.True(t, errors.Is(err, reserr.ErrPlacementViolation))

	r, err := policy.Place(HotBuffer)
	require.NoError(t, err)
	assert.Equal(t, "ram", r.Name, "preferred persistence falls back to primary")
}

// Mutable data never lands in a read-only region and data requiring
// persistence never lands in a volatile one, whatever the catalog.
func TestPlacementInvariants(t *testing.T) {
	catalogs := map[string]*Registry{
		"esp32": ESP32(),
		"rom heavy": MustRegistry(
			Region{Name: "ram", Capacity: 512, Primary: true},
			Region{Name: "rom", Capacity: 1 << 20, ReadOnly: true, Persistent: true, Latency: Slow},
			Region{Name: "nvram", Capacity: 256, Persistent: true, Latency: Slow},
		),
		"fast rom": MustRegistry(
			Region{Name: "ram", Capacity: 512, Primary: true},
			Region{Name: "rom", Capacity: 1 << 20, ReadOnly: true, Persistent: true},
			Region{Name: "sram", Capacity: 4096},
		),
	}

	var categories []Category
	for _, mutable := range []bool{false, true} {
		for _, p := range []Persistence{PersistenceNone, PersistencePreferred, PersistenceRequired} {
			for rule := range ruleNames {
				categories = append(categories, Category{
					Name:        rule.String() + "/" + p.String(),
					Mutable:     mutable,
					Persistence: p,
					Rule:        rule,
				})
			}
		}
	}

	for name, reg := range catalogs {
		t.Run(name, func(t *testing.T) {
			policy, err := NewPolicy(reg, categories...)
			require.NoError(t, err)

			for _, c := range categories {
				c := c
				c.Name += "-checked"
				r, err := policy.place(c)
				if err != nil {
					require.True(t, errors.Is(err, reserr.ErrPlacementViolation))
					continue
				}
				if c.Mutable {
					assert.False(t, r.ReadOnly, "%s placed in %s", c.Name, r.Name)
				}
				if c.Persistence == PersistenceRequired {
					assert.True(t, r.Persistent, "%s placed in %s", c.Name, r.Name)
				}
			}
		})
	}
}

func TestPlanFitsAndAligns(t *testing.T) {
	policy, err := NewPolicyWithLogger(ESP32(), testLogger("plan_test"))
	require.NoError(t, err)

	layout, err := policy.Plan([]Declaration{
		{Name: "mobjinfo", Category: MutableTable, Size: 23 * 1024},
		{Name: "states", Category: MutableTable, Size: 30*1024 + 1},
		{Name: "finesine", Category: StaticTable, Size: 40 * 1024},
		{Name: "ticdata", Category: HotBuffer, Size: 2 * 1024},
		{Name: "sfx", Category: ColdBuffer, Size: 1024},
		{Name: "validcount", Category: HotScalar, Size: 4},
	})
	require.NoError(t, err)

	states, ok := layout.Lookup("states")
	require.True(t, ok)
	assert.Equal(t, IRAM, states.Region)
	assert.Equal(t, 23*1024, states.Offset)
	assert.Equal(t, 30*1024+4, states.Placed, "IRAM rounds up to 32-bit words")

	r, ok := layout.RegionOf("finesine")
	require.True(t, ok)
	assert.Equal(t, Flash, r.Name)

	assert.Equal(t, 53*1024+4, layout.Usage(IRAM))
	assert.Equal(t, IRAMCapacity-(53*1024+4), layout.Free(IRAM))
	assert.Empty(t, layout.Demotions())
}

func TestPlanDemotesHotBufferWhenRTCFastIsFull(t *testing.T) {
	policy, err := NewPolicy(ESP32())
	require.NoError(t, err)

	layout, err := policy.Plan([]Declaration{
		{Name: "first", Category: HotBuffer, Size: 6 * 1024},
		{Name: "second", Category: HotBuffer, Size: 4 * 1024},
		{Name: "third", Category: HotBuffer, Size: 2 * 1024},
	})
	require.NoError(t, err)

	first, _ := layout.Lookup("first")
	second, _ := layout.Lookup("second")
	third, _ := layout.Lookup("third")

	assert.Equal(t, RTCFast, first.Region)
	assert.Equal(t, DRAM, second.Region)
	assert.True(t, second.Demoted)
	assert.Equal(t, RTCFast, second.Preferred)
	assert.Equal(t, RTCFast, third.Region, "a later declaration that fits still gets the fast region")

	assert.Len(t, layout.Demotions(), 1)
}

func TestPlanOverflowIsFatalAndListsEveryRegion(t *testing.T) {
	policy, err := NewPolicy(ESP32())
	require.NoError(t, err)

	layout, err := policy.Plan([]Declaration{
		{Name: "huge-mutable", Category: MutableTable, Size: IRAMCapacity + 1},
		{Name: "cold", Category: ColdBuffer, Size: RTCSlowCapacity * 2},
		{Name: "fine", Category: HotScalar, Size: 4},
	})
	require.Error(t, err)
	assert.Nil(t, layout, "no partial layout on failure")

	assert.True(t, errors.Is(err, reserr.ErrCapacityExceeded))
	assert.True(t, reserr.IsFatal(err))

	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	require.Len(t, capErr.Overflows, 2)
	assert.Equal(t, IRAM, capErr.Overflows[0].Region)
	assert.Equal(t, RTCSlow, capErr.Overflows[1].Region)
	assert.Contains(t, err.Error(), "iram needs")
}

func TestPlanRejectsBadDeclarations(t *testing.T) {
	policy, err := NewPolicy(ESP32())
	require.NoError(t, err)

	testCases := []struct {
		name  string
		decls []Declaration
	}{
		{"unnamed", []Declaration{{Category: Default, Size: 1}}},
		{"negative", []Declaration{{Name: "a", Size: -1}}},
		{"duplicate", []Declaration{{Name: "a", Size: 1}, {Name: "a", Size: 1}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := policy.Plan(tc.decls)
			assert.True(t, errors.Is(err, reserr.ErrPlacementViolation))
		})
	}
}

func TestWriteReport(t *testing.T) {
	policy, err := NewPolicy(ESP32())
	require.NoError(t, err)

	layout, err := policy.Plan([]Declaration{
		{Name: "big", Category: HotBuffer, Size: RTCFastCapacity + 4},
		{Name: "gamma", Category: StaticTable, Size: 1280},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, layout.WriteReport(&buf))

	report := buf.String()
	assert.Contains(t, report, "REGION")
	assert.Contains(t, report, "dram (from rtc_fast)")
	assert.Contains(t, report, "gamma")
	assert.Contains(t, report, "total")

	total := DRAMCapacity + IRAMCapacity + RTCFastCapacity + RTCSlowCapacity + FlashCapacity
	assert.Equal(t, total, ESP32().TotalCapacity())

	used := 0
	for _, r := range ESP32Regions() {
		used += layout.Usage(r.Name)
	}
	assert.Equal(t, used, layout.Used())
	assert.GreaterOrEqual(t, layout.Used(), RTCFastCapacity+4+1280)
}

func TestEnumParsing(t *testing.T) {
	l, err := ParseLatency("slow")
	require.NoError(t, err)
	assert.Equal(t, Slow, l)

	p, err := ParsePersistence("required")
	require.NoError(t, err)
	assert.Equal(t, PersistenceRequired, p)

	for rule, name := range ruleNames {
		got, err := ParseRule(name)
		require.NoError(t, err)
		assert.Equal(t, rule, got)
	}

	_, err = ParseRule("fastest")
	assert.Error(t, err)
	_, err = ParseLatency("warp")
	assert.Error(t, err)
	_, err = ParsePersistence("forever")
	assert.Error(t, err)
}

func TestManifestPolicy(t *testing.T) {
	m := &Manifest{
		Regions: []RegionSpec{
			{Name: "ram", Capacity: 1024, Primary: true},
			{Name: "nv", Capacity: 128, Persistent: true, Latency: "slow"},
		},
		Categories: []CategorySpec{
			{Name: "settings", Mutable: true, Persistence: "required", Rule: "slow-persistent"},
		},
		Declarations: []DeclarationSpec{
			{Name: "cfg", Category: "settings", Size: 100},
			{Name: "loop", Category: HotScalar, Size: 8},
		},
	}

	policy, err := m.Policy(nil)
	require.NoError(t, err)

	layout, err := policy.Plan(m.DeclarationList())
	require.NoError(t, err)

	r, _ := layout.RegionOf("cfg")
	assert.Equal(t, "nv", r.Name)
	r, _ = layout.RegionOf("loop")
	assert.Equal(t, "ram", r.Name)

	m.Target = "amiga"
	m.Regions = nil
	_, err = m.Policy(nil)
	assert.Error(t, err)
}
