package phi

import (
	"sync"
	"sync/atomic"

	"primecount.lopezb.com/internal/numeric"
	"primecount.lopezb.com/internal/pitable"
	"primecount.lopezb.com/internal/primes"
)

const (
	// cacheLimitX bounds the x of memoized subterms; phi values below it
	// fit in uint16 with 0 left free as the empty sentinel.
	cacheLimitX = int64(1) << 16
	cacheLimitA = 100
)

// cache memoizes the recursion of one worker. Workers never share a cache,
// only the read-only prime list and pi table.
type cache struct {
	primes []int64
	pi     *pitable.PiTable
	memo   [][]uint16
}

func newCache(p []int64, pi *pitable.PiTable) *cache {
	return &cache{
		primes: p,
		pi:     pi,
		memo:   make([][]uint16, cacheLimitA),
	}
}

// phi returns phi(x, a) for a > 0, x > 0.
func (c *cache) phi(x, a int64) int64 {
	if a <= TinyMaxA {
		return Tiny(x, a)
	}
	if x <= c.primes[a] {
		return 1
	}
	// With primes[a] >= sqrt(x) every survivor above 1 is prime:
	// phi(x, a) = pi(x) - a + 1.
	if x <= c.pi.Limit() {
		sqrtx := numeric.Sqrt(x)
		if c.primes[a] >= sqrtx {
			return c.pi.Pi(x) - a + 1
		}
	}

	if v := c.lookup(x, a); v > 0 {
		return v
	}

	tc := TinyC(x)
	sum := Tiny(x, tc)
	for i := tc; i < a; i++ {
		p := c.primes[i+1]
		if p > x {
			break
		}
		sum -= c.phi(x/p, i)
	}

	c.store(x, a, sum)
	return sum
}

func (c *cache) lookup(x, a int64) int64 {
	if x >= cacheLimitX || a >= cacheLimitA {
		return 0
	}
	row := c.memo[a]
	if row == nil {
		return 0
	}
	return int64(row[x])
}

func (c *cache) store(x, a, sum int64) {
	if x >= cacheLimitX || a >= cacheLimitA {
		return
	}
	if c.memo[a] == nil {
		c.memo[a] = make([]uint16, cacheLimitX)
	}
	c.memo[a][x] = uint16(sum)
}

// Phi computes phi(x, a) exactly. The top-level recurrence terms
// phi(x / primes[i+1], i) are independent, so they are distributed over
// the worker goroutines; each worker keeps a private memo cache.
func Phi(x, a int64, threads int) int64 {
	if x < 1 {
		return 0
	}
	if a < 1 {
		return x
	}
	if a <= TinyMaxA {
		return Tiny(x, a)
	}

	p := primes.GenerateN(a)
	if p[a] >= x {
		return 1
	}

	pi := pitable.New(numeric.Sqrt(x), threads)
	c := TinyC(x)
	if c > a {
		c = a
	}
	sum := Tiny(x, c)

	threads = numeric.IdealNumThreads(threads, x, 1<<20)
	if threads == 1 {
		w := newCache(p, pi)
		for i := c; i < a; i++ {
			if p[i+1] > x {
				break
			}
			sum -= w.phi(x/p[i+1], i)
		}
		return sum
	}

	var next atomic.Int64
	next.Store(c)
	var total atomic.Int64
	var wg sync.WaitGroup

	for t := 0; t < threads; t++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := newCache(p, pi)
			local := int64(0)
			for {
				i := next.Add(1) - 1
				if i >= a {
					break
				}
				if p[i+1] > x {
					continue
				}
				local -= w.phi(x/p[i+1], i)
			}
			total.Add(local)
		}()
	}
	wg.Wait()

	return sum + total.Load()
}
