package trig

import "math"

// Fine angles split a full turn into FineAngles steps. Any int is a valid
// fine angle; values wrap through FineMask.
const (
	FineAngles  = 8192
	FineMask    = FineAngles - 1
	QuarterTurn = FineAngles / 4

	radiansPerFine = 2 * math.Pi / FineAngles
)

// SinCosErrorBound is the largest difference, in fixed-point units, between
// Sin/Cos/Tan and the exact value rounded to 16.16.
const SinCosErrorBound Fixed = 1

// Sin returns the sine of a fine angle.
func Sin(angle int) Fixed {
	angle &= FineMask
	return FromFloat(math.Sin(float64(angle) * radiansPerFine))
}

// Cos returns the cosine of a fine angle. Cos(a) == Sin(a+QuarterTurn).
func Cos(angle int) Fixed {
	return Sin(angle + QuarterTurn)
}

// Tan returns the tangent of a fine angle, saturating at MaxFixed/MinFixed
// near the asymptotes.
func Tan(angle int) Fixed {
	angle &= FineMask
	return FromFloat(math.Tan(float64(angle) * radiansPerFine))
}

// FineTangent replaces the engine's finetangent table: index i in
// [0, FineAngles/2) covers the half turn from -90° to +90°, sampled at the
// centre of each step.
func FineTangent(i int) Fixed {
	i &= FineAngles/2 - 1
	return FromFloat(math.Tan((float64(i-QuarterTurn) + 0.5) * radiansPerFine))
}

// FineSine replaces the engine's finesine table, which is sampled at the
// centre of each step. FineSine(i+QuarterTurn) is the table's finecosine.
func FineSine(i int) Fixed {
	i &= FineMask
	return FromFloat(math.Sin((float64(i) + 0.5) * radiansPerFine))
}
