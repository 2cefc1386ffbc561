package trig

import "math"

// Errors are worst-case errors found by Measure.
type Errors struct {
	// Sin, Cos and Tan are in fixed-point units.
	Sin, Cos, Tan float64

	// FineSine and FineTangent cover the centre-sampled table
	// replacements, also in fixed-point units.
	FineSine, FineTangent float64

	// ATan is in radians.
	ATan float64
}

// Measure sweeps every fine angle, and a ring of directions for ATan2Angle,
// comparing against the math package.
func Measure() Errors {
	var e Errors

	for a := 0; a < FineAngles; a++ {
		rad := float64(a) * radiansPerFine
		e.Sin = math.Max(e.Sin, math.Abs(Sin(a).Float()-math.Sin(rad))*fracUnitF64)
		e.Cos = math.Max(e.Cos, math.Abs(Cos(a).Float()-math.Cos(rad))*fracUnitF64)

		if exact := math.Tan(rad); math.Abs(exact) < float64(MaxFixed)/fracUnitF64 {
			e.Tan = math.Max(e.Tan, math.Abs(Tan(a).Float()-exact)*fracUnitF64)
		}

		centre := (float64(a) + 0.5) * radiansPerFine
		e.FineSine = math.Max(e.FineSine, math.Abs(FineSine(a).Float()-math.Sin(centre))*fracUnitF64)
		if a < FineAngles/2 {
			exact := math.Tan((float64(a-QuarterTurn) + 0.5) * radiansPerFine)
			e.FineTangent = math.Max(e.FineTangent, math.Abs(FineTangent(a).Float()-exact)*fracUnitF64)
		}
	}

	const radius = 1 << 20
	for i := 0; i < FineAngles; i++ {
		theta := float64(i) * radiansPerFine
		dx := int32(math.Round(radius * math.Cos(theta)))
		dy := int32(math.Round(radius * math.Sin(theta)))

		exact := math.Atan2(float64(dy), float64(dx))
		diff := math.Abs(ATan2Angle(dy, dx).Radians() - exact)
		diff = math.Mod(diff, 2*math.Pi)
		if diff > math.Pi {
			diff = 2*math.Pi - diff
		}
		e.ATan = math.Max(e.ATan, diff)
	}

	return e
}
