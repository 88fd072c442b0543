package primecount

import (
	"primecount.lopezb.com/internal/numeric"
	"primecount.lopezb.com/internal/pitable"
)

// The AC term of Gourdon's algorithm covers the special leaves of the
// levels above s = pi(x_star): there the prime p exceeds x_star >= sqrt(z),
// so the second factor must be a prime q in (p, y] and every leaf value
// x/(p*q) stays below sqrt(x). None of these leaves need the sieve:
//
//   - q > x/p^2 makes the phi value exactly 1, and each level collapses to
//     a difference of pi values (the A term),
//   - otherwise phi(x/(p*q), b-1) = pi(x/(p*q)) - b + 2, one lookup in a
//     prime counting table (the C term).
//
// The lookups sweep [2, sqrt(x)], too wide to hold in memory as one table,
// so a sliding window table is used instead: per level a cursor walks the
// primes q downward, which walks the leaf values upward, and every level's
// pending leaves are consumed as the window passes over their values.
func acLeaves(x, y, xStar int64, p []int64, pi *pitable.PiTable, threads int) int64 {
	a := pi.Pi(y)
	s := pi.Pi(xStar)
	var sum int64

	// A: the phi = 1 runs.
	for b := s + 1; b <= a; b++ {
		pb := p[b]
		xn := max(x/(pb*pb), pb)
		if xn < y {
			sum += a - pi.Pi(xn)
		}
	}

	// C: per-level cursors over the remaining leaves. l[b] is the index of
	// the largest prime q whose leaf is still pending; leaves of level b
	// occupy the indexes (b, l[b]].
	l := make([]int64, a+1)
	var left int64
	for b := s + 1; b <= a; b++ {
		pb := p[b]
		l[b] = pi.Pi(min(x/(pb*pb), y))
		if l[b] > b {
			left += l[b] - b
		}
	}
	if left == 0 {
		return sum
	}

	seg := pitable.NewSegmented(numeric.Sqrt(x), 0, threads)
	for ; !seg.Finished() && left > 0; seg.Next() {
		high := seg.High()
		for b := s + 1; b <= a; b++ {
			pb := p[b]
			x2 := x / pb
			for l[b] > b {
				xn := x2 / p[l[b]]
				if xn >= high {
					break
				}
				sum += seg.Pi(xn) - b + 2
				l[b]--
				left--
			}
		}
	}

	return sum
}
