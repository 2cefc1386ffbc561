// Package gamma computes the display gamma curves instead of storing the
// 5×256 correction table.
//
// Level 0 is the identity. Each further level lowers the curve exponent by
// 1/8, which reproduces the classic table to within a few steps.
package gamma

import "math"

// Levels is the number of selectable gamma levels.
const Levels = 5

// Exponent returns the power applied at level, clamped to [0, Levels).
func Exponent(level int) float64 {
	return 1 - float64(clampLevel(level))/8
}

// Correct maps one 8-bit channel value through the curve for level.
func Correct(level int, v uint8) uint8 {
	level = clampLevel(level)
	if level == 0 || v == 0 || v == 255 {
		return v
	}
	out := 255 * math.Pow(float64(v)/255, Exponent(level))
	return uint8(math.Round(out))
}

// Apply corrects every byte of palette in place.
func Apply(level int, palette []byte) {
	if clampLevel(level) == 0 {
		return
	}
	for i, v := range palette {
		palette[i] = Correct(level, v)
	}
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level >= Levels {
		return Levels - 1
	}
	return level
}
