package primecount

import (
	"sync"
	"sync/atomic"

	"primecount.lopezb.com/internal/numeric"
	"primecount.lopezb.com/internal/phi"
	"primecount.lopezb.com/internal/primes"
)

// Ordinary leaves. Expanding phi(x, a) by the recurrence down to level c
// splits the terms into leaves mu(m) * phi(x/m, c) where m runs over the
// squarefree products of the primes p_{c+1} .. p_maxB. A leaf is ordinary
// when m stays below the sieving threshold, so phi(x/m, c) comes straight
// from the tiny tables; everything above the threshold is a special leaf
// and belongs to the sieving kernels.
//
// With threshold y this sum is the S1 term of Lagarias-Miller-Odlyzko and
// Deleglise-Rivat; with threshold z it is the Phi0 term of Gourdon. Both
// use the same enumeration: a depth-first walk over the squarefree
// products, flipping the Moebius sign at each level.

// ordinaryBranch sums the leaves below every product m * p_j with
// j > b and m * p_j <= limit. mu is the Moebius value of m.
func ordinaryBranch(x, limit, c int64, b int, mu, m int64, p []int64) int64 {
	var sum int64
	for b++; b < len(p) && p[b] <= limit/m; b++ {
		next := m * p[b]
		sum -= mu * phi.Tiny(x/next, c)
		sum += ordinaryBranch(x, limit, c, b, -mu, next, p)
	}
	return sum
}

// ordinaryLeaves returns the full ordinary sum for leaves built from the
// primes p_{c+1} .. p_maxB with products bounded by limit. The top-level
// branches are independent, so they are dealt out to the workers with an
// atomic counter, exactly like the phi recurrence.
func ordinaryLeaves(x, limit, maxB, c int64, threads int) int64 {
	sum := phi.Tiny(x, c)
	if maxB <= c {
		return sum
	}

	p := primes.GenerateN(maxB)

	threads = numeric.IdealNumThreads(threads, maxB-c, 64)
	if threads == 1 {
		for b := c + 1; b <= maxB; b++ {
			if p[b] > limit {
				break
			}
			sum -= phi.Tiny(x/p[b], c)
			sum += ordinaryBranch(x, limit, c, int(b), -1, p[b], p)
		}
		return sum
	}

	var next atomic.Int64
	next.Store(c + 1)
	var total atomic.Int64
	var wg sync.WaitGroup

	for t := 0; t < threads; t++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := int64(0)
			for {
				b := next.Add(1) - 1
				if b > maxB || p[b] > limit {
					break
				}
				local -= phi.Tiny(x/p[b], c)
				local += ordinaryBranch(x, limit, c, int(b), -1, p[b], p)
			}
			total.Add(local)
		}()
	}
	wg.Wait()

	return sum + total.Load()
}
