// Package trig evaluates sine, cosine, tangent and arctangent in the engine's
// fixed-point and binary-angle units without any precomputed tables.
//
// Every function is pure: no package state is read or written, so calls are
// deterministic and safe from any number of goroutines.
package trig

import "math"

// Fixed is a signed 16.16 fixed-point number.
type Fixed int32

const (
	FracBits          = 16
	FracUnit    Fixed = 1 << FracBits
	MaxFixed    Fixed = math.MaxInt32
	MinFixed    Fixed = math.MinInt32
	fracUnitF64       = float64(FracUnit)
)

// FromFloat converts f to fixed point, rounding to nearest and saturating.
func FromFloat(f float64) Fixed {
	v := math.Round(f * fracUnitF64)
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return MaxFixed
	case v <= math.MinInt32:
		return MinFixed
	}
	return Fixed(v)
}

// Float returns f as a float64.
func (f Fixed) Float() float64 {
	return float64(f) / fracUnitF64
}

// Mul multiplies two fixed-point values.
func Mul(a, b Fixed) Fixed {
	return Fixed((int64(a) * int64(b)) >> FracBits)
}

// Div divides a by b, saturating on overflow and on division by zero.
func Div(a, b Fixed) Fixed {
	if b == 0 || (abs64(int64(a))>>14) >= abs64(int64(b)) {
		if (a < 0) != (b < 0) {
			return MinFixed
		}
		return MaxFixed
	}
	return Fixed((int64(a) << FracBits) / int64(b))
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
