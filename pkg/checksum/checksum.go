// Package checksum computes and verifies prefixed digests of asset blobs.
//
// Format: "algorithm:hexvalue" (e.g., "sha256:c0ffee123...", "adler32:babe1337")
package checksum

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/adler32"
	"strings"

	"golang.org/x/crypto/blake2b"

	reserr "github.com/provide-io/xipres/pkg/errors"
)

// Algorithm is a supported digest algorithm
type Algorithm int

const (
	SHA256 Algorithm = iota
	SHA512
	Adler32
	Blake2b
)

func (a Algorithm) String() string {
	switch a {
	case SHA256:
		return "sha256"
	case SHA512:
		return "sha512"
	case Adler32:
		return "adler32"
	case Blake2b:
		return "blake2b"
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a name to an Algorithm
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "sha256":
		return SHA256, nil
	case "sha512":
		return SHA512, nil
	case "adler32":
		return Adler32, nil
	case "blake2b":
		return Blake2b, nil
	}
	return SHA256, fmt.Errorf("unknown checksum algorithm: %s", name)
}

// Parse splits a checksum string into algorithm and hex value. Unprefixed
// values are classified by length.
func Parse(checksum string) (Algorithm, string, error) {
	if name, value, ok := strings.Cut(checksum, ":"); ok {
		algo, err := ParseAlgorithm(name)
		if err != nil {
			return SHA256, "", err
		}
		if _, err := hex.DecodeString(value); err != nil || value == "" {
			return SHA256, "", fmt.Errorf("invalid checksum value: %q", value)
		}
		return algo, strings.ToLower(value), nil
	}

	switch len(checksum) {
	case 8:
		return Adler32, strings.ToLower(checksum), nil
	case 128:
		return SHA512, strings.ToLower(checksum), nil
	case 64:
		return SHA256, strings.ToLower(checksum), nil
	}
	return SHA256, "", fmt.Errorf("invalid checksum format: %s", checksum)
}

func newHash(algo Algorithm) hash.Hash {
	switch algo {
	case SHA512:
		return sha512.New()
	case Adler32:
		return adler32.New()
	case Blake2b:
		h, _ := blake2b.New256(nil) // only fails for oversized keys
		return h
	default:
		return sha256.New()
	}
}

// Calculate returns the prefixed digest of data
func Calculate(data []byte, algo Algorithm) string {
	h := newHash(algo)
	h.Write(data)
	return algo.String() + ":" + hex.EncodeToString(h.Sum(nil))
}

// Verify checks data against a checksum string. A mismatch wraps
// ErrChecksumMismatch.
func Verify(data []byte, checksum string) error {
	algo, expected, err := Parse(checksum)
	if err != nil {
		return err
	}

	actual := Calculate(data, algo)
	if strings.TrimPrefix(actual, algo.String()+":") != expected {
		return fmt.Errorf("%w: want %s:%s, got %s", reserr.ErrChecksumMismatch, algo, expected, actual)
	}
	return nil
}
