// Package balance distributes sieving work across threads.
//
// The hard leaf kernels sieve a huge interval in segments, and the cost per
// segment varies by orders of magnitude: the low segments are packed with
// leaves, the high ones nearly empty. Static partitioning would leave most
// threads idle behind the one that drew the dense range, so the balancer
// hands out work in chunks and adapts the chunk geometry to the observed
// timings.
//
// Resizing policy
// ===============
//
// Each thread reports how long its previous chunk took when it asks for the
// next one:
//
//   - Under growThreshold the chunks are too small to amortize the fixed
//     per-chunk cost (pre-sieving, leaf scan startup). The balancer first
//     doubles the number of segments per chunk, then the segment size.
//   - Over shrinkThreshold a chunk holds a thread hostage for minutes,
//     which hurts both load balance and checkpoint granularity. The
//     balancer halves the geometry back down.
//
// Bounds: segments never drop below 1, the segment size never drops below
// minSegmentSize nor grows beyond its share of the remaining interval, and
// all sizes stay multiples of 128 so the sieve's bit words stay aligned.
package balance

import (
	"sync"
	"time"

	"primecount.lopezb.com/internal/numeric"
)

const (
	// minSegmentSize is the smallest segment in integers. Below this the
	// segment bit array fits deep in L1 and per-segment overhead wins.
	minSegmentSize = int64(1) << 23

	// maxSegmentsPerChunk caps how much work a single grow step can add.
	maxSegmentsPerChunk = int64(64)

	growThreshold   = 10 * time.Second
	shrinkThreshold = 60 * time.Second
)

// Chunk is one unit of work: sieve [Low, High) in Segments segments of
// SegmentSize integers each. The last segment of the last chunk may be cut
// short by the interval end.
type Chunk struct {
	Low         int64
	High        int64
	SegmentSize int64
	Segments    int64
}

// LoadBalancer deals out consecutive chunks of [low, limit).
type LoadBalancer struct {
	mu    sync.Mutex
	low   int64
	limit int64

	segSize  int64
	segments int64
	maxSize  int64
}

// New returns a balancer over [low, limit) for the given thread count.
// low must be a multiple of 128 (0 and resumed checkpoints both are).
func New(low, limit int64, threads int) *LoadBalancer {
	if threads < 1 {
		threads = 1
	}

	maxSize := numeric.CeilDiv(limit-low, int64(threads))
	maxSize = max(roundUp128(maxSize), 128)

	segSize := numeric.RoundPow2(numeric.Sqrt(limit))
	segSize = numeric.InBetween(minSegmentSize, segSize, maxSize)
	segSize = roundUp128(segSize)

	return &LoadBalancer{
		low:      low,
		limit:    limit,
		segSize:  segSize,
		segments: 1,
		maxSize:  maxSize,
	}
}

// NextChunk returns the next chunk of work. elapsed is the wall time the
// caller spent on its previous chunk, zero on the first call. The second
// return value is false once the interval is exhausted.
func (lb *LoadBalancer) NextChunk(elapsed time.Duration) (Chunk, bool) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if lb.low >= lb.limit {
		return Chunk{}, false
	}
	lb.resize(elapsed)

	c := Chunk{
		Low:         lb.low,
		High:        min(lb.low+lb.segments*lb.segSize, lb.limit),
		SegmentSize: lb.segSize,
		Segments:    lb.segments,
	}
	lb.low = c.High
	return c, true
}

// Geometry returns the current segment size and segment count, for
// checkpointing.
func (lb *LoadBalancer) Geometry() (segSize, segments int64) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.segSize, lb.segments
}

// SetGeometry restores a checkpointed geometry.
func (lb *LoadBalancer) SetGeometry(segSize, segments int64) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if segSize >= 128 {
		lb.segSize = min(roundUp128(segSize), lb.maxSize)
	}
	if segments >= 1 {
		lb.segments = min(segments, maxSegmentsPerChunk)
	}
}

func (lb *LoadBalancer) resize(elapsed time.Duration) {
	switch {
	case elapsed > 0 && elapsed < growThreshold:
		if lb.segments < maxSegmentsPerChunk {
			lb.segments *= 2
		} else if lb.segSize < lb.maxSize {
			lb.segSize = min(roundUp128(lb.segSize*2), lb.maxSize)
		}
	case elapsed > shrinkThreshold:
		if lb.segSize > minSegmentSize {
			lb.segSize = max(roundUp128(lb.segSize/2), minSegmentSize)
		} else if lb.segments > 1 {
			lb.segments /= 2
		}
	}
}

func roundUp128(n int64) int64 {
	return numeric.CeilDiv(n, 128) * 128
}
