package primecount

import (
	"math"

	"primecount.lopezb.com/internal/numeric"
)

// Tuning factors. The combinatorial algorithms trade sieving work against
// table work through a free parameter y = alpha * x^(1/3): a larger y means
// more easy leaves (cheap) and a bigger pi table (memory). The defaults
// below grow slowly with x, following the empirical observation that the
// optimum scales roughly with ln(x)^3.

// defaultAlpha returns the automatic Deleglise-Rivat factor for x,
// clamped to [1, x^(1/6)] so that y never exceeds sqrt(x).
func defaultAlpha(x int64) float64 {
	if x < 100 {
		return 1
	}
	t := math.Log(float64(x))
	return clampAlpha(x, t*t*t/1500)
}

// defaultAlphaY returns the automatic Gourdon y factor for x.
func defaultAlphaY(x int64) float64 {
	if x < 100 {
		return 1
	}
	t := math.Log(float64(x))
	return clampAlpha(x, t*t*t/2000)
}

// defaultAlphaZ returns the automatic Gourdon z factor, z = alpha_z * y.
func defaultAlphaZ(x int64) float64 {
	if x < 100 {
		return 1
	}
	t := math.Log(float64(x))
	az := t / 10
	if az < 1 {
		az = 1
	}
	if az > 50 {
		az = 50
	}
	return az
}

// clampAlpha keeps alpha in [1, x^(1/6)], the range where y = alpha*x^(1/3)
// stays between x^(1/3) and sqrt(x).
func clampAlpha(x int64, alpha float64) float64 {
	if alpha < 1 {
		return 1
	}
	max := math.Pow(float64(x), 1.0/6)
	if alpha > max {
		return max
	}
	return alpha
}

// drY returns the Deleglise-Rivat sieving bound y for x, honoring a fixed
// alpha from the settings when present.
func (e *engine) drY(x int64) int64 {
	alpha := e.alpha
	if alpha <= 0 {
		alpha = defaultAlpha(x)
	}
	x13 := numeric.Root(3, x)
	y := int64(alpha * float64(x13))
	lo := x13
	if lo < 2 {
		lo = 2
	}
	return numeric.InBetween(lo, y, numeric.Sqrt(x))
}

// gourdonYZ returns the Gourdon bounds y and z for x. y is clamped to
// [x^(1/3), sqrt(x)] and z to [y, min(sqrt(x), y^2)]; the z <= y^2 bound
// keeps sqrt(z) <= y so the factor tables cover every sieving prime.
func (e *engine) gourdonYZ(x int64) (y, z int64) {
	alphaY := e.alphaY
	if alphaY <= 0 {
		alphaY = defaultAlphaY(x)
	}
	alphaZ := e.alphaZ
	if alphaZ <= 0 {
		alphaZ = defaultAlphaZ(x)
	}

	x13 := numeric.Root(3, x)
	lo := x13
	if lo < 2 {
		lo = 2
	}
	sqrtx := numeric.Sqrt(x)
	y = numeric.InBetween(lo, int64(alphaY*float64(x13)), sqrtx)

	z = numeric.InBetween(y, int64(alphaZ*float64(y)), sqrtx)
	if y <= numeric.MaxX/y && z > y*y {
		z = y * y
	}
	return y, z
}
