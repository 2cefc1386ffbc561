package partition

import (
	"fmt"
	"strconv"
	"strings"

	reserr "github.com/provide-io/xipres/pkg/errors"
)

var typeNames = map[string]Type{
	"app":   TypeApp,
	"data":  TypeData,
	"asset": TypeAsset,
}

var subTypeNames = map[Type]map[string]SubType{
	TypeApp: {
		"factory": SubTypeFactory,
		"ota_0":   SubTypeOTA0,
		"ota_1":   SubTypeOTA1,
	},
	TypeData: {
		"ota":       SubTypeOTA,
		"phy":       SubTypePHY,
		"nvs":       SubTypeNVS,
		"coredump":  SubTypeCoreDump,
		"nvs_keys":  SubTypeNVSKeys,
		"efuse":     SubTypeEFuse,
		"undefined": SubTypeUndefined,
		"fat":       SubTypeFAT,
		"spiffs":    SubTypeSPIFFS,
		"littlefs":  SubTypeLittleFS,
	},
	TypeAsset: {
		"wad": SubTypeAsset,
	},
}

// ParseType accepts a type name (app, data, asset) or a number.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if t, ok := typeNames[s]; ok {
		return t, nil
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown partition type %q", reserr.ErrInvalidPartitionTable, s)
	}
	return Type(n), nil
}

// ParseSubType accepts a subtype name valid for typ, or a number.
func ParseSubType(typ Type, s string) (SubType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if sub, ok := subTypeNames[typ][s]; ok {
		return sub, nil
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown %s subtype %q", reserr.ErrInvalidPartitionTable, typ, s)
	}
	return SubType(n), nil
}

// SubTypeName returns the subtype's name under typ, or its hex value.
func SubTypeName(typ Type, sub SubType) string {
	for name, v := range subTypeNames[typ] {
		if v == sub {
			return name
		}
	}
	return fmt.Sprintf("0x%02x", uint8(sub))
}
