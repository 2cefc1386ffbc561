package resource

import (
	"github.com/provide-io/xipres/pkg/region"
)

// Placement annotations for long-lived engine data. Each names the
// category a declaration is placed under.
const (
	// IRAMTable is a large table the engine writes rarely.
	IRAMTable = region.MutableTable

	// RTCBuffer is a small, frequently touched buffer.
	RTCBuffer = region.HotBuffer

	// RTCLookup is a rarely read table kept across sleep.
	RTCLookup = region.ColdBuffer

	// DRAM is hot loop state.
	DRAM = region.HotScalar

	// Progmem is constant data left in mapped flash.
	Progmem = region.StaticTable
)

// Declare tags a declaration with an annotation.
func Declare(name, annotation string, size int) region.Declaration {
	return region.Declaration{Name: name, Category: annotation, Size: size}
}

// EngineDeclarations is the placement table of the port: the tables the
// engine keeps outside the zone heap, with their sizes on the target.
func EngineDeclarations() []region.Declaration {
	return []region.Declaration{
		Declare("states", IRAMTable, 30720),
		Declare("mobjinfo", IRAMTable, 23552),
		Declare("sprnames", Progmem, 552),
		Declare("S_sfx", RTCLookup, 3480),
		Declare("S_music", Progmem, 1088),
		Declare("ticcmds", RTCBuffer, 2048),
		Declare("validcount", DRAM, 4),
		Declare("gametic", DRAM, 4),
		Declare("colormaps", Progmem, 8704),
	}
}
