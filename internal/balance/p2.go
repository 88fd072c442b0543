package balance

import (
	"sync"
	"time"

	"primecount.lopezb.com/internal/numeric"
)

// P2 deals out intervals of [low, z) for the two-primes formula. Unlike the
// hard leaf chunks, these intervals carry no inner segment structure: each
// thread sieves its whole interval in one pass, so only the interval width
// adapts.
type P2 struct {
	mu  sync.Mutex
	low int64
	z   int64

	dist    int64
	maxDist int64
}

// NewP2 returns a balancer over [low, z).
func NewP2(low, z int64, threads int) *P2 {
	if threads < 1 {
		threads = 1
	}
	maxDist := max(roundUp128(numeric.CeilDiv(z-low, int64(threads))), 128)

	return &P2{
		low:     low,
		z:       z,
		dist:    numeric.InBetween(minSegmentSize, maxDist/4, maxDist),
		maxDist: maxDist,
	}
}

// Next returns the next interval [lo, hi). elapsed is the duration of the
// caller's previous interval, zero on the first call.
func (p *P2) Next(elapsed time.Duration) (lo, hi int64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.low >= p.z {
		return 0, 0, false
	}

	switch {
	case elapsed > 0 && elapsed < growThreshold:
		p.dist = min(roundUp128(p.dist*2), p.maxDist)
	case elapsed > shrinkThreshold:
		p.dist = max(roundUp128(p.dist/2), minSegmentSize)
	}

	lo = p.low
	hi = min(lo+p.dist, p.z)
	p.low = hi
	return lo, hi, true
}

// Dist returns the current interval width, for checkpointing.
func (p *P2) Dist() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dist
}

// SetDist restores a checkpointed interval width.
func (p *P2) SetDist(dist int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dist >= 128 {
		p.dist = min(roundUp128(dist), p.maxDist)
	}
}
