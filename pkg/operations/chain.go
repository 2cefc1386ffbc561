package operations

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxChain is the number of operations a packed chain holds.
const MaxChain = 8

// PackOperations packs a list of operations into a 64-bit integer.
// Operations are packed in execution order (first operation in LSB).
func PackOperations(operations []uint8) (uint64, error) {
	if len(operations) > MaxChain {
		return 0, fmt.Errorf("maximum %d operations allowed, got %d", MaxChain, len(operations))
	}

	var packed uint64
	for i, op := range operations {
		if op == OP_NONE {
			return 0, fmt.Errorf("operation %d is NONE, which terminates a chain", i)
		}
		packed |= uint64(op) << (i * 8)
	}

	return packed, nil
}

// UnpackOperations unpacks a 64-bit integer into a list of operations.
func UnpackOperations(packed uint64) []uint8 {
	var operations []uint8

	for i := 0; i < MaxChain; i++ {
		op := uint8((packed >> (i * 8)) & 0xFF)
		if op == OP_NONE {
			break
		}
		operations = append(operations, op)
	}

	return operations
}

// OperationsToString converts packed operations to human-readable string.
func OperationsToString(packed uint64) string {
	if packed == 0 {
		return "raw"
	}

	operations := UnpackOperations(packed)
	if name, ok := commonChains[operationsToChain(operations)]; ok {
		return name
	}

	var names []string
	for _, op := range operations {
		names = append(names, strings.ToLower(GetName(op)))
	}
	return strings.Join(names, "|")
}

// StringToOperations parses operation string to packed operations.
// It accepts chain names ("gzip", "gz", "bz2") and pipe-separated lists.
func StringToOperations(opString string) (uint64, error) {
	opString = strings.ToLower(strings.TrimSpace(opString))
	if opString == "" {
		return 0, nil
	}

	if ops, ok := namedChains[opString]; ok {
		return PackOperations(ops)
	}

	if strings.Contains(opString, "|") {
		var operations []uint8
		for _, part := range strings.Split(opString, "|") {
			part = strings.TrimSpace(strings.ToUpper(part))
			if part == "" {
				continue
			}

			op, ok := namedOperations[part]
			if !ok {
				return 0, fmt.Errorf("unsupported operation: %s", part)
			}
			operations = append(operations, op)
		}
		return PackOperations(operations)
	}

	return 0, fmt.Errorf("unknown operation string: %s", opString)
}

// FromExtension infers the chain that produced path from its suffixes, so
// "doom1.wad.gz" yields gzip and the name "doom1.wad". Suffixes are peeled
// from the outside in.
func FromExtension(path string) (uint64, string) {
	var reversed []uint8
	name := path

	for len(reversed) < MaxChain {
		ext := strings.ToLower(filepath.Ext(name))
		op, ok := extensions[ext]
		if !ok {
			break
		}
		reversed = append(reversed, op)
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	ops := make([]uint8, len(reversed))
	for i, op := range reversed {
		ops[len(reversed)-1-i] = op
	}

	packed, _ := PackOperations(ops)
	return packed, filepath.Base(name)
}

// ApplyChain applies a chain of operations to data
func ApplyChain(data []byte, operations []uint8) ([]byte, error) {
	current := data

	for _, opID := range operations {
		op, err := Get(opID)
		if err != nil {
			return nil, fmt.Errorf("operation 0x%02x: %w", opID, err)
		}

		result, err := op.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", op.Name(), err)
		}

		current = result
	}

	return current, nil
}

// ReverseChain reverses a chain of operations on data
func ReverseChain(data []byte, operations []uint8) ([]byte, error) {
	current := data

	for i := len(operations) - 1; i >= 0; i-- {
		opID := operations[i]
		op, err := Get(opID)
		if err != nil {
			return nil, fmt.Errorf("operation 0x%02x: %w", opID, err)
		}

		if !op.CanReverse() {
			return nil, fmt.Errorf("operation %s is not reversible", op.Name())
		}

		result, err := op.Reverse(current)
		if err != nil {
			return nil, fmt.Errorf("reversing %s: %w", op.Name(), err)
		}

		current = result
	}

	return current, nil
}

func operationsToChain(ops []uint8) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = fmt.Sprintf("%02x", op)
	}
	return strings.Join(parts, "-")
}

var commonChains = map[string]string{
	"10": "gzip",
	"13": "bzip2",
}

var namedChains = map[string][]uint8{
	"raw":   {},
	"none":  {},
	"gzip":  {OP_GZIP},
	"gz":    {OP_GZIP},
	"bzip2": {OP_BZIP2},
	"bz2":   {OP_BZIP2},
}

var namedOperations = map[string]uint8{
	"GZIP":  OP_GZIP,
	"BZIP2": OP_BZIP2,
}

var extensions = map[string]uint8{
	".gz":  OP_GZIP,
	".bz2": OP_BZIP2,
}
