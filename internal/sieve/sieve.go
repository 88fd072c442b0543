// Package sieve implements the segmented bit sieve that backs the hard
// special leaf computations. The sieve answers two queries while being
// crossed off one prime at a time:
//
//	CrossOffCount(p, b)  removes the odd multiples of p from the segment
//	Count(stop)          counts the survivors up to an offset, in sublinear time
//
// Representation
// ==============
//
// One bit per odd integer: bit i of the segment [low, high) corresponds to
// the integer low + 2i + 1 (low is always even). Even integers are never
// represented; after the pre-sieve every surviving value is odd anyway, and
// the count of survivors equals the partial sieve function phi(n, b)
// restricted to the segment (the integer 1 counts as a survivor, exactly as
// phi requires).
//
// Counting in sublinear time
// ==========================
//
// A plain popcount over the segment makes every phi query cost
// O(segment_size / 64). Instead the sieve maintains counters[]: the segment
// is partitioned into buckets of D consecutive bits and counters[i] holds
// the number of survivors in bucket i. A Count(stop) query first skips
// whole buckets using the counters, then popcounts at most D bits. Queries
// within one cross-off round have monotonically non-decreasing stop values,
// so a cursor over the counters makes a full round of queries cost O(1)
// amortized per bucket.
//
// The bucket width adapts to the segment position: leaves are spaced
// roughly sqrt(segment_low) apart, and the optimal bucket width for leaf
// spacing L is about sqrt(L). Each new segment therefore reselects
// D = roundPow2(sqrt(sqrt(segment_low))).
package sieve

import (
	bits64 "math/bits"

	"primecount.lopezb.com/internal/numeric"
)

const (
	// minCounterWidth keeps buckets word-aligned.
	minCounterWidth = 64
)

// Sieve holds one thread's sieving state. A Sieve is created once per
// work chunk and then advanced through the chunk's segments with PreSieve;
// the per-prime next-multiple pointers survive across segments.
type Sieve struct {
	low  int64 // current segment start, always even
	high int64

	bits       []uint64
	numBits    int64 // number of represented odd integers in [low, high)
	totalCount int64

	// next[b] is the smallest uncrossed odd multiple of primes[b], kept
	// between segments. 0 means not yet initialized for this chunk.
	next []int64

	counters []int64
	width    int64 // bucket width D in bits

	// Batched counting cursor. count holds the number of survivors in
	// bit positions [0, prevStop]; countersCnt holds the survivors in
	// the fully consumed buckets [0, countersIdx*width).
	prevStop    int64
	count       int64
	countersIdx int64
	countersCnt int64
}

// New returns a sieve able to sieve segments with at most maxPrimeIdx
// sieving primes.
func New(maxPrimeIdx int64) *Sieve {
	return &Sieve{next: make([]int64, maxPrimeIdx+1)}
}

// PreSieve initializes the segment [low, high): every odd position is set
// to 1, then the multiples of primes[1..c] are crossed off. primes[1] = 2
// needs no work since even integers are not represented. The counters and
// the counting cursor are reset. low must be even.
func (s *Sieve) PreSieve(primes []int64, c int64, low, high int64) {
	s.low = low
	s.high = high
	s.numBits = (high - low) / 2
	words := (s.numBits + 63) / 64

	if int64(cap(s.bits)) < words {
		s.bits = make([]uint64, words)
	}
	s.bits = s.bits[:words]

	if c >= wheelMinC {
		// Copy the pre-computed wheel pattern for 3, 5, 7, 11, 13; the
		// pattern is periodic in the odd-index space, so each word is a
		// single table lookup at the right phase.
		phase := (low / 2) % wheelPeriod
		for w := range s.bits {
			s.bits[w] = wheelWord((phase + int64(w)*64) % wheelPeriod)
		}
	} else {
		for w := range s.bits {
			s.bits[w] = ^uint64(0)
		}
	}

	// Mask the tail beyond high so popcounts stay exact.
	if tail := s.numBits % 64; tail != 0 {
		s.bits[words-1] &= (uint64(1) << tail) - 1
	}

	// The integer 1 survives every phi level by definition, so its bit
	// stays set. The wheel pattern already keeps it.

	// Cross off the remaining small primes conventionally. With the
	// wheel only primes[7..c] (17, ...) are left.
	lo := int64(2)
	if c >= wheelMinC {
		lo = wheelMinC + 1
	}
	for b := lo; b <= c; b++ {
		s.crossOff(primes[b])
	}

	s.initCounters()
}

// crossOff removes the odd multiples of p from the current segment without
// maintaining counters. Only used during PreSieve, before the counters are
// built.
func (s *Sieve) crossOff(p int64) {
	m := firstOddMultiple(p, s.low)
	for ; m < s.high; m += 2 * p {
		idx := (m - s.low) / 2
		s.bits[idx/64] &^= uint64(1) << (idx % 64)
	}
}

// firstOddMultiple returns the smallest odd multiple of p that is >= low.
func firstOddMultiple(p, low int64) int64 {
	if low <= p {
		return p
	}
	m := numeric.CeilDiv(low, p) * p
	if m%2 == 0 {
		m += p
	}
	return m
}

// initCounters reselects the bucket width for the new segment position,
// rebuilds counters[] and resets both the counters cursor and totalCount.
func (s *Sieve) initCounters() {
	s.width = numeric.RoundPow2(numeric.Sqrt(numeric.Sqrt(s.low)))
	s.width = numeric.InBetween(minCounterWidth, s.width, numeric.RoundPow2(s.numBits/2))

	buckets := numeric.CeilDiv(s.numBits, s.width)
	if int64(cap(s.counters)) < buckets {
		s.counters = make([]int64, buckets)
	}
	s.counters = s.counters[:buckets]

	s.totalCount = 0
	for i := range s.counters {
		s.counters[i] = 0
	}
	for w, word := range s.bits {
		n := int64(bits64.OnesCount64(word))
		s.totalCount += n
		s.counters[int64(w)*64/s.width] += n
	}

	s.resetCursor()
}

// resetCursor restarts the batched counting state. Called whenever the
// sieve content changes: after PreSieve and after every CrossOffCount.
func (s *Sieve) resetCursor() {
	s.prevStop = -1
	s.count = 0
	s.countersIdx = 0
	s.countersCnt = 0
}

// CrossOffCount removes the odd multiples of p = primes[b] from the
// segment, keeping totalCount and counters[] exact. The per-prime
// next-multiple pointer persists across segments of the same chunk.
func (s *Sieve) CrossOffCount(p int64, b int64) {
	m := s.next[b]
	if m == 0 {
		m = firstOddMultiple(p, s.low)
	}

	for ; m < s.high; m += 2 * p {
		idx := (m - s.low) / 2
		w, mask := idx/64, uint64(1)<<(idx%64)
		if s.bits[w]&mask != 0 {
			s.bits[w] &^= mask
			s.totalCount--
			s.counters[idx/s.width]--
		}
	}

	s.next[b] = m
	s.resetCursor()
}

// Count returns the number of survivors in positions [0, stop], where stop
// is an offset in integers from the segment start. Between two cross-offs
// the stop values must be monotonically non-decreasing; the counters
// cursor depends on it.
func (s *Sieve) Count(stop int64) int64 {
	// Offsets low+0 (even) and below the first odd carry no bits.
	bitStop := (stop - 1) / 2
	if stop < 1 || bitStop < 0 {
		return 0
	}
	if bitStop >= s.numBits {
		bitStop = s.numBits - 1
	}
	if bitStop <= s.prevStop {
		return s.count
	}

	// Phase 1: consume whole buckets below bitStop.
	for s.countersIdx < int64(len(s.counters)) &&
		(s.countersIdx+1)*s.width <= bitStop+1 {
		s.countersCnt += s.counters[s.countersIdx]
		s.countersIdx++
	}
	if consumed := s.countersIdx*s.width - 1; consumed > s.prevStop {
		s.count = s.countersCnt
		s.prevStop = consumed
	}

	// Phase 2: popcount the at most width remaining bits in
	// (prevStop, bitStop].
	for s.prevStop < bitStop {
		from := s.prevStop + 1
		w := from / 64
		word := s.bits[w] >> (from % 64)
		n := min(bitStop-from, 63-from%64)
		word &= (uint64(2) << n) - 1
		s.count += int64(bits64.OnesCount64(word))
		s.prevStop = from + n
	}

	return s.count
}

// TotalCount returns the number of survivors in the whole segment.
func (s *Sieve) TotalCount() int64 {
	return s.totalCount
}

// Low returns the current segment start.
func (s *Sieve) Low() int64 {
	return s.low
}
