package primecount

import (
	"sync"
	"time"

	"primecount.lopezb.com/internal/backup"
	"primecount.lopezb.com/internal/balance"
	"primecount.lopezb.com/internal/numeric"
	"primecount.lopezb.com/internal/primes"
)

// The B formula
//
//	B(x, y) = sum_{y < p <= sqrt(x)} pi(x/p)
//
// is the expensive half of the two-primes term: P2(x, y) counts the
// integers <= x with exactly two prime factors both exceeding y, and
// differs from B only by a closed form in pi(y) and pi(sqrt(x)).
//
// Sieving strategy
// ================
//
// The values x/p sweep the interval [sqrt(x), x/y) as p runs down from
// sqrt(x) to y, so instead of computing each pi(x/p) independently the
// whole interval is sieved once, in pieces. For the piece [lo, hi) a
// descending iterator walks the primes p with x/p inside the piece while
// an ascending iterator counts the primes up to each x/p; the piece only
// learns pi(x/p) - pi(lo-1), and the driver adds the missing pi(lo-1)
// once per leaf when it folds the pieces back together in order.

type bResult struct {
	sum   int64 // sum of pi(x/p) - pi(lo-1) over the piece's leaves
	pix   int64 // number of primes in [lo, hi)
	iters int64 // number of leaves in the piece
}

// countPrimes consumes the primes <= stop from the ascending iterator.
// next holds the first prime not yet consumed and is updated in place.
func countPrimes(it *primes.Iterator, next *int64, stop int64) int64 {
	var count int64
	p := *next
	for ; p <= stop; count++ {
		p = it.Next()
	}
	*next = p
	return count
}

// bInterval sieves one piece [lo, hi) of [sqrt(x), x/y).
func bInterval(x, sqrtx, y, lo, hi int64) bResult {
	var r bResult

	start := max(min(x/hi, sqrtx), y)
	stop := min(x/lo, sqrtx)

	asc := primes.NewIterator(lo-1, hi)
	next := asc.Next()
	desc := primes.NewIterator(stop+1, start)

	// Primes p in (start, stop] have x/p in [lo, hi).
	for p := desc.Prev(); p > start; p = desc.Prev() {
		xp := x / p
		r.pix += countPrimes(asc, &next, xp)
		r.iters++
		r.sum += r.pix
	}

	// Finish counting the piece's primes so the driver can carry
	// pi(lo-1) forward to the next piece.
	r.pix += countPrimes(asc, &next, hi-1)
	return r
}

// bSieve runs the interval sieve for B, checkpointing under key.
func (e *engine) bSieve(x, y int64, key string) (int64, error) {
	if x < 4 {
		return 0, nil
	}
	sqrtx := numeric.Sqrt(x)
	if y >= sqrtx {
		return 0, nil
	}

	z := x / max(y, 1)
	low := sqrtx
	threads := numeric.IdealNumThreads(e.threads, z-low, 1<<16)

	startTime := time.Now()
	var sum int64
	piLow := piLegendre(low-1, threads)
	bal := balance.NewP2(low, z, threads)

	if ent, ok, err := e.bk.Resume(key, x, y, 0, 0); err != nil {
		return 0, err
	} else if ok {
		sum, err = ent.SumInt64()
		if err != nil {
			return 0, err
		}
		if ent.Low >= z {
			return sum, nil
		}
		low = ent.Low
		piLow = ent.PiLow
		bal = balance.NewP2(low, z, threads)
		bal.SetDist(ent.ThreadDist)
		startTime = time.Now().Add(-time.Duration(ent.Seconds * float64(time.Second)))
		e.log.Info().Str("formula", key).Float64("percent", ent.Percent).
			Msg("resuming from backup")
	}

	// Each round deals one interval per thread, sieves them in parallel
	// and folds the results in interval order: only the fold knows the
	// true pi(lo-1) each piece was missing.
	elapsed := time.Duration(0)
	for low < z {
		type piece struct {
			lo, hi int64
			res    bResult
		}
		var pieces []piece
		for i := 0; i < threads; i++ {
			lo, hi, ok := bal.Next(elapsed)
			elapsed = 0
			if !ok {
				break
			}
			pieces = append(pieces, piece{lo: lo, hi: hi})
		}
		if len(pieces) == 0 {
			break
		}

		roundStart := time.Now()
		var wg sync.WaitGroup
		for i := range pieces {
			wg.Add(1)
			go func(p *piece) {
				defer wg.Done()
				p.res = bInterval(x, sqrtx, y, p.lo, p.hi)
			}(&pieces[i])
		}
		wg.Wait()
		elapsed = time.Since(roundStart)

		for _, p := range pieces {
			sum += p.res.sum + piLow*p.res.iters
			piLow += p.res.pix
		}
		low = pieces[len(pieces)-1].hi

		e.st.Update(low, z)
		e.bk.Checkpoint(key, backup.Entry{
			X:          x,
			Y:          y,
			Low:        low,
			PiLow:      piLow,
			ThreadDist: bal.Dist(),
			Sum:        backup.FormatSum(sum),
			Percent:    numeric.Percent(low, z),
			Seconds:    time.Since(startTime).Seconds(),
		})
	}

	e.bk.Finish(key, backup.Entry{
		X:       x,
		Y:       y,
		Low:     z,
		PiLow:   piLow,
		Sum:     backup.FormatSum(sum),
		Percent: 100,
		Seconds: time.Since(startTime).Seconds(),
	})
	return sum, nil
}

func (e *engine) b(x, y int64) (int64, error) {
	e.log.Info().Msg("=== B(x, y) ===")
	e.log.Info().Int64("x", x).Int64("y", y).Int("threads", e.threads).
		Msg("parameters")

	start := time.Now()
	sum, err := e.bSieve(x, y, "B")
	if err != nil {
		return 0, err
	}
	e.st.Done()
	e.log.Info().Int64("B", sum).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")
	return sum, nil
}

func (e *engine) p2(x, y int64) (int64, error) {
	e.log.Info().Msg("=== P2(x, y) ===")
	e.log.Info().Int64("x", x).Int64("y", y).Int("threads", e.threads).
		Msg("parameters")

	if x < 4 {
		return 0, nil
	}

	start := time.Now()
	sum, err := e.bSieve(x, y, "P2")
	if err != nil {
		return 0, err
	}
	e.st.Done()

	// P2 = B + sum_{a < i <= b} (1 - i) with a = pi(y), b = pi(sqrt(x)):
	// each leaf pi(x/p) overcounts by pi(p) - 1 pairs q <= p.
	a := piLegendre(min(y, x), e.threads)
	b := piLegendre(numeric.Sqrt(x), e.threads)
	if a < b {
		sum += (a*(a-1) - b*(b-1)) / 2
	}

	e.log.Info().Int64("P2", sum).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")
	return sum, nil
}

// B returns the partial two-primes sum
//
//	B(x, y) = sum over primes y < p <= sqrt(x) of pi(x/p).
func B(x, y int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	return newEngine().b(x, y)
}

// P2 returns the count of integers <= x with exactly two prime factors,
// both greater than y.
func P2(x, y int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	return newEngine().p2(x, y)
}
