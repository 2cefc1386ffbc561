// Package operations describes the reversible transforms a source asset may
// carry on disk before it is laid into flash.
//
// Operations are identified by one byte and chained (up to 8) into a packed
// 64-bit value, first operation in the low byte. Implementations register
// themselves from their own packages.
package operations

import (
	"fmt"
	"io"
	"sync"
)

// Operation identifiers
const (
	// No operation - raw data
	OP_NONE = 0x00

	// Compression operations (0x10-0x2F)
	OP_GZIP  = 0x10 // GZIP compression
	OP_BZIP2 = 0x13 // BZIP2 compression
)

// Operation represents a single transformation operation
type Operation interface {
	// ID returns the operation identifier (e.g., OP_GZIP)
	ID() uint8

	// Name returns the human-readable name
	Name() string

	// Apply applies the operation to input data
	Apply(input []byte) ([]byte, error)

	// ApplyStream applies the operation to a stream
	ApplyStream(input io.Reader, output io.Writer) error

	// Reverse reverses the operation (e.g., decompress for compression)
	Reverse(input []byte) ([]byte, error)

	// ReverseStream reverses the operation on a stream
	ReverseStream(input io.Reader, output io.Writer) error

	// CanReverse returns true if the operation is reversible
	CanReverse() bool

	// EstimateSize estimates the output size given input size
	EstimateSize(inputSize int64) int64
}

// BaseOperation provides common functionality for operations
type BaseOperation struct {
	OpID   uint8
	OpName string
}

func (o *BaseOperation) ID() uint8 {
	return o.OpID
}

func (o *BaseOperation) Name() string {
	return o.OpName
}

func (o *BaseOperation) CanReverse() bool {
	return true
}

func (o *BaseOperation) EstimateSize(inputSize int64) int64 {
	return inputSize
}

var (
	registryMu sync.RWMutex
	registry   = make(map[uint8]Operation)
)

// Register registers an operation implementation
func Register(op Operation) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[op.ID()] = op
}

// Get retrieves an operation by ID
func Get(id uint8) (Operation, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	op, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("unknown operation: 0x%02x", id)
	}
	return op, nil
}

// GetName returns the name of an operation by ID
func GetName(id uint8) string {
	switch id {
	case OP_NONE:
		return "NONE"
	case OP_GZIP:
		return "GZIP"
	case OP_BZIP2:
		return "BZIP2"
	default:
		return fmt.Sprintf("UNKNOWN_%02x", id)
	}
}
