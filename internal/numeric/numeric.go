// Package numeric provides the exact integer arithmetic helpers used by the
// prime counting kernels: integer square and k-th roots, integer powers, and
// overflow-checked accumulation.
//
// The kernels never use floating point for accumulation, only for initial
// guesses. math.Sqrt and math.Cbrt are accurate to 1 ulp at best, which is
// not good enough near 2^63: a guess that is off by one silently corrupts
// array bounds that are sized from it. Sqrt and Root therefore take a float
// guess and then correct it with exact integer comparisons, so the returned
// root r always satisfies r^k <= x < (r+1)^k.
package numeric

import (
	"errors"
	"math"
	"math/bits"
)

// ErrOverflow is returned when a computation would exceed the int64 range.
// The engine fails loudly rather than wrapping.
var ErrOverflow = errors.New("numeric: int64 overflow")

// MaxX is the largest input the combinatorial algorithms accept. Above
// 10^18 the hard-leaf accumulators would need 128-bit arithmetic, which
// this implementation rejects up front instead of wrapping.
const MaxX = int64(1e18)

// Sqrt returns the integer square root of x, the largest r with r*r <= x.
func Sqrt(x int64) int64 {
	if x < 0 {
		return 0
	}

	r := int64(math.Sqrt(float64(x)))

	// Correct the float guess with exact integer arithmetic.
	for r > 0 && r > x/r {
		r--
	}
	for (r+1) <= x/(r+1) {
		r++
	}

	return r
}

// Root returns the integer k-th root of x, the largest r with r^k <= x.
func Root(k uint, x int64) int64 {
	if x <= 0 || k == 0 {
		return 0
	}
	if k == 1 {
		return x
	}

	r := int64(math.Pow(float64(x), 1.0/float64(k)))

	for r > 0 && !fitsRoot(r, k, x) {
		r--
	}
	for fitsRoot(r+1, k, x) {
		r++
	}

	return r
}

// fitsRoot reports whether r^k <= x without overflowing.
func fitsRoot(r int64, k uint, x int64) bool {
	p := int64(1)
	for i := uint(0); i < k; i++ {
		hi, lo := bits.Mul64(uint64(p), uint64(r))
		if hi != 0 || lo > uint64(x) {
			return false
		}
		p = int64(lo)
	}
	return p <= x
}

// Pow returns base^exp. The caller must ensure the result fits in an int64;
// CheckedPow is the guarded variant.
func Pow(base, exp int64) int64 {
	r := int64(1)
	for i := int64(0); i < exp; i++ {
		r *= base
	}
	return r
}

// CheckedPow returns base^exp or ErrOverflow.
func CheckedPow(base, exp int64) (int64, error) {
	r := int64(1)
	for i := int64(0); i < exp; i++ {
		var err error
		r, err = CheckedMul(r, base)
		if err != nil {
			return 0, err
		}
	}
	return r, nil
}

// CheckedMul returns a*b or ErrOverflow. Both operands must be >= 0.
func CheckedMul(a, b int64) (int64, error) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, ErrOverflow
	}
	return int64(lo), nil
}

// CheckedAdd returns a+b or ErrOverflow. Both operands must be >= 0.
func CheckedAdd(a, b int64) (int64, error) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 || sum > math.MaxInt64 {
		return 0, ErrOverflow
	}
	return int64(sum), nil
}

// CheckedMulSigned returns a*b or ErrOverflow, for operands of any sign.
func CheckedMulSigned(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a == math.MinInt64 || b == math.MinInt64 {
		if a == 1 {
			return b, nil
		}
		if b == 1 {
			return a, nil
		}
		return 0, ErrOverflow
	}
	r := a * b
	if r/b != a {
		return 0, ErrOverflow
	}
	return r, nil
}

// CheckedAddSigned returns a+b or ErrOverflow, for operands of any sign.
func CheckedAddSigned(a, b int64) (int64, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, ErrOverflow
	}
	return s, nil
}

// CeilDiv returns ceil(a / b) for b > 0.
func CeilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

// InBetween clamps x to [lo, hi].
func InBetween(lo, x, hi int64) int64 {
	if hi < lo {
		hi = lo
	}
	return min(hi, max(lo, x))
}

// RoundPow2 returns the largest power of two <= n, or 1 for n < 2.
func RoundPow2(n int64) int64 {
	if n < 2 {
		return 1
	}
	return int64(1) << (63 - bits.LeadingZeros64(uint64(n)))
}

// Percent returns 100 * low / limit, clamped to [0, 100].
func Percent(low, limit int64) float64 {
	if limit <= 0 {
		return 100.0
	}
	p := 100.0 * float64(low) / float64(limit)
	return math.Min(math.Max(p, 0.0), 100.0)
}

// IdealNumThreads reduces threads so that each one gets at least
// threshold work items out of sizeHint. Small inputs do not benefit from
// threading: the per-thread startup cost dominates.
func IdealNumThreads(threads int, sizeHint, threshold int64) int {
	if threshold < 1 {
		threshold = 1
	}
	t := sizeHint / threshold
	if t < 1 {
		t = 1
	}
	if int64(threads) > t {
		threads = int(t)
	}
	if threads < 1 {
		threads = 1
	}
	return threads
}
