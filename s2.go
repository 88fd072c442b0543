package primecount

import (
	"sync"
	"sync/atomic"

	"primecount.lopezb.com/internal/numeric"
	"primecount.lopezb.com/internal/pitable"
)

// The non-sieved special leaves of Deleglise-Rivat. For levels b with
// p = primes[b] > sqrt(y) the second factor m must itself be a prime q, and
// whenever q > z/p the leaf value x/(p*q) drops to y or below, so
//
//	phi(x/(p*q), b-1) = pi(x/(p*q)) - b + 2
//
// comes straight from the pi table (every survivor of phi level b-1 up to
// p_b^2 is prime, plus the integer 1 and the prime p_b itself). These
// leaves skip the sieve entirely:
//
//   - trivial leaves: q > x/p^2, the phi value is exactly 1 and whole runs
//     of q collapse to a pi difference,
//   - easy leaves: z/p < q <= x/p^2, each phi value is one table lookup.
//
// Leaves with q <= z/p keep values above y and stay with the sieving
// kernel.

// s2Trivial counts the leaves with phi = 1. For p <= sqrt(z) the bound
// x/p^2 >= y makes the range empty, so only levels above pi(sqrt(z))
// contribute.
func s2Trivial(x, y, z int64, p []int64, pi *pitable.PiTable) int64 {
	piY := pi.Pi(y)
	var sum int64

	for b := pi.Pi(numeric.Sqrt(z)) + 1; b <= piY; b++ {
		pb := p[b]
		xn := max(x/(pb*pb), pb)
		if xn < y {
			sum += piY - pi.Pi(xn)
		}
	}
	return sum
}

// s2Easy sums the easy leaves of the levels in (max(c, pi(sqrt(y))),
// pi(x^(1/3))]. The levels are independent and are dealt out to the
// workers with an atomic counter.
//
// Within one level the primes q are walked downward. Consecutive q often
// share one phi value: if phi(x/(p*q), b-1) = t, the same t holds until q
// drops below x / (p * primes[b+t-1]), so the run collapses into a single
// multiplication. Near the lower bound the phi values change with every q
// and the run optimization stops paying; those leaves are added one by one.
func s2Easy(x, y, z, c int64, p []int64, pi *pitable.PiTable, threads int) int64 {
	maxB := pi.Pi(numeric.Root(3, x))
	minB := max(c, pi.Pi(numeric.Sqrt(y)))
	if maxB <= minB {
		return 0
	}

	level := func(b int64) int64 {
		pb := p[b]
		x2 := x / pb
		minSparse := numeric.InBetween(pb, z/pb, y)
		minClustered := numeric.InBetween(minSparse, numeric.Sqrt(x2), y)

		var sum int64
		l := pi.Pi(min(x2/pb, y))

		for p[l] > minClustered {
			xn := x2 / p[l]
			phiXn := pi.Pi(xn) - b + 2
			l2 := pi.Pi(max(x2/p[b+phiXn-1], minClustered))
			sum += phiXn * (l - l2)
			l = l2
		}
		for ; p[l] > minSparse; l-- {
			sum += pi.Pi(x2/p[l]) - b + 2
		}
		return sum
	}

	threads = numeric.IdealNumThreads(threads, maxB-minB, 8)
	if threads == 1 {
		var sum int64
		for b := minB + 1; b <= maxB; b++ {
			sum += level(b)
		}
		return sum
	}

	var next atomic.Int64
	next.Store(minB + 1)
	var total atomic.Int64
	var wg sync.WaitGroup

	for t := 0; t < threads; t++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := int64(0)
			for {
				b := next.Add(1) - 1
				if b > maxB {
					break
				}
				local += level(b)
			}
			total.Add(local)
		}()
	}
	wg.Wait()

	return total.Load()
}
