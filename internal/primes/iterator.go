package primes

import (
	bits64 "math/bits"

	"primecount.lopezb.com/internal/numeric"
)

// Iterator enumerates primes forward or backward starting from a position,
// sieving one block at a time. The stop hint bounds the expected iteration
// range and is only used to size the blocks; iterating past it is valid,
// the iterator simply sieves additional blocks.
//
// NewIterator(start, stop).Next() returns the primes > start in ascending
// order; Prev() returns the primes < start in descending order. A single
// Iterator must not mix Next and Prev calls.
type Iterator struct {
	pos     int64
	buf     []int64
	idx     int
	base    []int64
	baseMax int64
	dist    int64
}

const (
	minIterDist = int64(1) << 14
	maxIterDist = int64(1) << 22
)

// NewIterator returns an iterator positioned at start.
func NewIterator(start, stop int64) *Iterator {
	if start < 0 {
		start = 0
	}

	dist := numeric.InBetween(minIterDist, (absDiff(start, stop))/4, maxIterDist)

	return &Iterator{pos: start, dist: dist}
}

// Next returns the next prime > the previous position. After exhausting
// the current block, the iterator sieves the following one.
func (it *Iterator) Next() int64 {
	for it.idx >= len(it.buf) {
		it.fillForward()
	}
	p := it.buf[it.idx]
	it.idx++
	return p
}

// Prev returns the largest prime < the previous position. Returns 0 once
// no smaller prime exists.
func (it *Iterator) Prev() int64 {
	for it.idx >= len(it.buf) {
		if it.pos <= 2 {
			return 0
		}
		it.fillBackward()
	}
	p := it.buf[it.idx]
	it.idx++
	return p
}

// fillForward sieves the next ascending block [pos+1, pos+dist].
func (it *Iterator) fillForward() {
	low := it.pos + 1
	high := low + it.dist
	it.ensureBase(numeric.Sqrt(high - 1))

	it.buf = it.collect(low, high, false)
	it.idx = 0
	it.pos = high - 1
	it.grow()
}

// fillBackward sieves the next descending block [pos-dist, pos-1].
func (it *Iterator) fillBackward() {
	high := it.pos
	low := high - it.dist
	if low < 0 {
		low = 0
	}
	it.ensureBase(numeric.Sqrt(high - 1))

	it.buf = it.collect(low, high, true)
	it.idx = 0
	it.pos = low
	it.grow()
}

// collect lists the primes in [low, high), descending when reverse is set.
func (it *Iterator) collect(low, high int64, reverse bool) []int64 {
	var out []int64

	if low <= 2 && high > 2 {
		out = append(out, 2)
	}

	bits := sieveOdd(low, high, it.base)
	evenLow := low &^ 1
	for w, word := range bits {
		for word != 0 {
			idx := int64(w)*64 + int64(bits64.TrailingZeros64(word))
			v := evenLow + idx*2 + 1
			if v >= low && v != 1 {
				out = append(out, v)
			}
			word &= word - 1
		}
	}

	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	return out
}

// ensureBase extends the base primes to cover sieving up to limit^2.
func (it *Iterator) ensureBase(limit int64) {
	if limit <= it.baseMax {
		return
	}
	it.base = basePrimes(limit)
	it.baseMax = limit
}

// grow doubles the block size up to the cap, so long iterations touch
// fewer block boundaries.
func (it *Iterator) grow() {
	if it.dist < maxIterDist {
		it.dist *= 2
	}
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
