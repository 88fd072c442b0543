package primecount

import (
	"sync"
	"time"

	"primecount.lopezb.com/internal/backup"
	"primecount.lopezb.com/internal/balance"
	"primecount.lopezb.com/internal/numeric"
	"primecount.lopezb.com/internal/pitable"
	"primecount.lopezb.com/internal/sieve"
)

// Hard special leaves. A special leaf is a pair (p_b, m) with
// m * p_b above the ordinary threshold, lpf(m) > p_b and m squarefree; it
// contributes -mu(m) * phi(x/(m*p_b), b-1) to the count. The phi values
// cannot come from a table, so the leaf values x/(m*p_b) are sieved: one
// pass over [0, limit) crosses off the primes p_{c+1}, p_{c+2}, ... in
// order, and just before crossing off p_b the sieve's partial counts equal
// phi(n, b-1) for every n in the current segment.
//
// Parallelization
// ===============
//
// Segments must be consumed in order for phi to be exact, which looks
// inherently sequential. The trick: a thread sieving the chunk [lo, hi)
// from scratch computes, for each b, the leaf counts relative to the chunk
// start, plus how many integers in the chunk survive phi level b. The
// missing constant phi(lo-1, b-1) multiplies the number of leaves in the
// chunk, so each chunk reports per level b its relative sum, its survivor
// count and its leaf count, and the driver stitches chunks back together
// in interval order:
//
//	sum         += chunk.sum + phiTotal[b] * chunk.muSum[b]
//	phiTotal[b] += chunk.phi[b]
//
// The stitching products are the one place the int64 range gets tight, so
// they are overflow-checked; a failed check aborts the computation rather
// than returning a silently wrapped count.
//
// The same engine serves three kernels. The composite-m regime walks the
// factor table for primes p_b <= sqrt(threshold); above it m must itself
// be prime and the leaves are found by walking primes downward. The
// deltas between the kernels are confined to hardLeaves fields: the
// ordinary threshold, the bound on prime-m leaves, and whether a greatest
// prime factor filter applies.

// hardLeaves describes one hard leaf computation over [0, limit).
type hardLeaves struct {
	x      int64
	mLimit int64 // ordinary threshold: leaves require m * p_b > mLimit, m <= mLimit
	qMax   int64 // largest prime usable as a prime m
	qDiv   int64 // if > 0, prime-m leaves with q > qDiv/p_b are excluded
	limit  int64 // exclusive sieving bound, beyond every leaf value
	maxB1  int64 // last level of the composite-m regime
	maxB   int64 // last level overall
	c      int64 // pre-sieved primes

	primes []int64
	mu     []int8
	lpf    []int32
	gpf    []int32 // non-nil restricts composite m to gpf(m) <= qMax
	pi     *pitable.PiTable
}

// hardChunk is what one sieved chunk reports per level b.
type hardChunk struct {
	sum   int64
	phi   []int64 // survivors of level b within the chunk
	muSum []int64 // signed leaf count of level b within the chunk
}

// chunkMaxB returns the last level that can have a leaf in a chunk
// starting at low: x/(p*m) >= low with m > p forces p <= sqrt(x/low).
func (h *hardLeaves) chunkMaxB(low int64) int64 {
	v := numeric.Sqrt(h.x / max(low, 1))
	if v >= h.primes[h.maxB] {
		return h.maxB
	}
	return min(h.maxB, h.pi.Pi(v))
}

// chunk sieves [ch.Low, ch.High) in segments and accumulates the chunk's
// relative leaf sums. The per-prime cross-off state persists across the
// chunk's segments.
func (h *hardLeaves) chunk(ch balance.Chunk) hardChunk {
	res := hardChunk{
		phi:   make([]int64, h.maxB+1),
		muSum: make([]int64, h.maxB+1),
	}

	bMax := h.chunkMaxB(ch.Low)
	sv := sieve.New(h.maxB)

	for low := ch.Low; low < ch.High; low += ch.SegmentSize {
		high := min(low+ch.SegmentSize, ch.High)
		low1 := max(low, 1)
		sv.PreSieve(h.primes, h.c, low, high)

		// Once a level has no leaf left in this segment, later levels and
		// later segments have none either, so the loop simply stops; the
		// skipped levels never get counted again, which keeps their phi
		// slots consistent.
		for b := h.c + 1; b <= bMax; b++ {
			p := h.primes[b]

			if b <= h.maxB1 {
				// Composite m, enumerated via the factor tables. Leaves
				// of level b in this segment have m in (minM, maxM].
				minM := max(h.x/(p*high), h.mLimit/p)
				maxM := min(h.x/(p*low1), h.mLimit)
				if p >= maxM {
					break
				}
				for m := maxM; m > minM; m-- {
					if h.mu[m] == 0 || p >= int64(h.lpf[m]) {
						continue
					}
					if h.gpf != nil && int64(h.gpf[m]) > h.qMax {
						continue
					}
					cnt := sv.Count(h.x/(p*m) - low)
					res.sum -= int64(h.mu[m]) * (res.phi[b] + cnt)
					res.muSum[b] -= int64(h.mu[m])
				}
			} else {
				// Prime m = q > p, walked downward so the sieve counts
				// run upward.
				maxQ := min(h.x/(p*low1), h.qMax)
				if h.qDiv > 0 {
					maxQ = min(maxQ, h.qDiv/p)
				}
				l := h.pi.Pi(maxQ)
				if p >= h.primes[l] {
					break
				}
				minQ := max(h.x/(p*high), h.mLimit/p, p)
				for ; h.primes[l] > minQ; l-- {
					cnt := sv.Count(h.x/(p*h.primes[l]) - low)
					res.sum += res.phi[b] + cnt
					res.muSum[b]++
				}
			}

			res.phi[b] += sv.TotalCount()
			sv.CrossOffCount(p, b)
		}
	}

	return res
}

// hardSieve runs the parallel hard leaf computation, checkpointing under
// key. sumApprox feeds the progress estimate and may be 0.
func (e *engine) hardSieve(h *hardLeaves, key string, x, y, z, k, sumApprox int64) (int64, error) {
	low := int64(0)
	var sum int64
	phiTotal := make([]int64, h.maxB+1)

	threads := numeric.IdealNumThreads(e.threads, h.limit, 1<<20)
	bal := balance.New(low, h.limit, threads)
	startTime := time.Now()

	if ent, ok, err := e.bk.Resume(key, x, y, z, k); err != nil {
		return 0, err
	} else if ok {
		sum, err = ent.SumInt64()
		if err != nil {
			return 0, err
		}
		if ent.Low >= h.limit {
			return sum, nil
		}
		low = ent.Low
		copy(phiTotal, ent.Phi)
		bal = balance.New(low, h.limit, threads)
		bal.SetGeometry(ent.SegSize, ent.Segments)
		startTime = time.Now().Add(-time.Duration(ent.Seconds * float64(time.Second)))
		e.log.Info().Str("formula", key).Float64("percent", ent.Percent).
			Msg("resuming from backup")
	}

	// Each round deals one chunk per thread, sieves them in parallel and
	// stitches the results in interval order.
	elapsed := time.Duration(0)
	for low < h.limit {
		type job struct {
			ch  balance.Chunk
			res hardChunk
		}
		var jobs []job
		for i := 0; i < threads; i++ {
			ch, ok := bal.NextChunk(elapsed)
			elapsed = 0
			if !ok {
				break
			}
			jobs = append(jobs, job{ch: ch})
		}
		if len(jobs) == 0 {
			break
		}

		roundStart := time.Now()
		var wg sync.WaitGroup
		for i := range jobs {
			wg.Add(1)
			go func(j *job) {
				defer wg.Done()
				j.res = h.chunk(j.ch)
			}(&jobs[i])
		}
		wg.Wait()
		elapsed = time.Since(roundStart)

		for _, j := range jobs {
			var err error
			sum, err = numeric.CheckedAddSigned(sum, j.res.sum)
			if err != nil {
				return 0, err
			}
			for b := h.c + 1; b <= h.maxB; b++ {
				if j.res.muSum[b] != 0 {
					cross, err := numeric.CheckedMulSigned(phiTotal[b], j.res.muSum[b])
					if err != nil {
						return 0, err
					}
					sum, err = numeric.CheckedAddSigned(sum, cross)
					if err != nil {
						return 0, err
					}
				}
				phiTotal[b] += j.res.phi[b]
			}
		}
		low = jobs[len(jobs)-1].ch.High

		e.st.UpdateSum(low, h.limit, sum, sumApprox)
		segSize, segments := bal.Geometry()
		e.bk.Checkpoint(key, backup.Entry{
			X:        x,
			Y:        y,
			Z:        z,
			K:        k,
			Low:      low,
			Segments: segments,
			SegSize:  segSize,
			Phi:      append([]int64(nil), phiTotal...),
			Sum:      backup.FormatSum(sum),
			Percent:  numeric.Percent(low, h.limit),
			Seconds:  time.Since(startTime).Seconds(),
		})
	}

	e.bk.Finish(key, backup.Entry{
		X:       x,
		Y:       y,
		Z:       z,
		K:       k,
		Low:     h.limit,
		Sum:     backup.FormatSum(sum),
		Percent: 100,
		Seconds: time.Since(startTime).Seconds(),
	})
	return sum, nil
}
