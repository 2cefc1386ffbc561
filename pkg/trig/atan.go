package trig

import "math"

// Angle is a binary angle measurement: a full turn is 1<<32 and arithmetic
// wraps naturally.
type Angle uint32

const (
	ANG45  Angle = 0x20000000
	ANG90  Angle = 0x40000000
	ANG180 Angle = 0x80000000
	ANG270 Angle = 0xc0000000

	// AngleToFineShift converts an Angle to a fine angle.
	AngleToFineShift = 32 - 13

	anglesPerRadian = (1 << 32) / (2 * math.Pi)
)

// ATanErrorBound is the worst-case error of ATan2Angle in radians.
const ATanErrorBound = 0.0049

// AngleToFine returns the fine angle containing a.
func AngleToFine(a Angle) int {
	return int(a >> AngleToFineShift)
}

// FineToAngle returns the binary angle at the start of fine step i.
func FineToAngle(i int) Angle {
	return Angle(uint32(i&FineMask) << AngleToFineShift)
}

// Radians returns a in radians, in [0, 2π).
func (a Angle) Radians() float64 {
	return float64(a) / anglesPerRadian
}

// ATan2Angle returns the direction of the vector (dx, dy) as a binary angle,
// measured counter-clockwise from the positive x axis. The zero vector maps
// to 0.
//
// The arctangent is the polynomial r/(1+0.28r²), which is only accurate for
// |r| <= 1, so the vector is folded into the first octant and the result is
// unfolded by quadrant.
func ATan2Angle(dy, dx int32) Angle {
	if dx == 0 && dy == 0 {
		return 0
	}

	ax := math.Abs(float64(dx))
	ay := math.Abs(float64(dy))

	var t float64
	if ax >= ay {
		t = atanUnit(ay / ax)
	} else {
		t = math.Pi/2 - atanUnit(ax/ay)
	}

	switch {
	case dx >= 0 && dy >= 0:
	case dx < 0 && dy >= 0:
		t = math.Pi - t
	case dx < 0:
		t = math.Pi + t
	default:
		t = 2*math.Pi - t
	}

	return Angle(uint32(uint64(math.Round(t*anglesPerRadian)) & 0xffffffff))
}

// atanUnit approximates atan(r) for 0 <= r <= 1.
func atanUnit(r float64) float64 {
	return r / (1 + 0.28*r*r)
}
