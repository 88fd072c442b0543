package pitable

import (
	"testing"

	"primecount.lopezb.com/internal/primes"
)

func TestPiTableSmall(t *testing.T) {
	pt := New(1000, 1)
	pi := primes.GeneratePi(1000)

	for n := int64(0); n <= 1000; n++ {
		if got, want := pt.Pi(n), int64(pi[n]); got != want {
			t.Fatalf("Pi(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestPiTableKnownValues(t *testing.T) {
	pt := New(1000000, 4)

	cases := map[int64]int64{
		0: 0, 1: 0, 2: 1, 3: 2, 4: 2, 10: 4, 100: 25,
		127: 31, 128: 31, 129: 31, 1000: 168, 10000: 1229,
		100000: 9592, 1000000: 78498,
	}
	for n, want := range cases {
		if got := pt.Pi(n); got != want {
			t.Errorf("Pi(%d) = %d, want %d", n, got, want)
		}
	}
	if pt.Limit() != 1000000 {
		t.Errorf("Limit() = %d", pt.Limit())
	}
}

func TestPiTableBucketBoundaries(t *testing.T) {
	pt := New(100000, 2)
	pi := primes.GeneratePi(100000)

	// Every value around each bucket boundary.
	for low := int64(0); low <= 100000-2; low += 128 {
		for _, n := range []int64{low, low + 1, low + 126, low + 127} {
			if n > 100000 {
				continue
			}
			if got, want := pt.Pi(n), int64(pi[n]); got != want {
				t.Fatalf("Pi(%d) = %d, want %d", n, got, want)
			}
		}
	}
}

func TestSegmentedMatchesPiTable(t *testing.T) {
	limit := int64(300000)
	pt := New(limit, 2)
	seg := NewSegmented(limit, 0, 2)

	n := int64(0)
	for !seg.Finished() {
		if seg.Low()%128 != 0 {
			t.Fatalf("window start %d not a multiple of 128", seg.Low())
		}
		for ; n < seg.High() && n <= limit; n++ {
			if got, want := seg.Pi(n), pt.Pi(n); got != want {
				t.Fatalf("segmented Pi(%d) = %d, want %d", n, got, want)
			}
		}
		seg.Next()
	}
	if n <= limit {
		t.Fatalf("windows ended at %d, limit %d never covered", n, limit)
	}
}

func TestSegmentedMultipleWindows(t *testing.T) {
	// Force several windows by using the minimum segment size.
	limit := minSegmentSize*3 + 12345
	seg := NewSegmented(limit, minSegmentSize, 4)

	windows := 0
	var lastHigh int64
	for !seg.Finished() {
		if seg.Low() != lastHigh {
			t.Fatalf("window %d starts at %d, previous ended at %d",
				windows, seg.Low(), lastHigh)
		}
		lastHigh = seg.High()
		windows++
		seg.Next()
	}
	if windows != 4 {
		t.Errorf("covered %d windows, want 4", windows)
	}
	if lastHigh != limit+1 {
		t.Errorf("last window ends at %d, want %d", lastHigh, limit+1)
	}
}

func TestSegmentedCarriesCount(t *testing.T) {
	// pi at the very end of the range must match the direct table even
	// after many window transitions.
	limit := minSegmentSize * 2
	pt := New(limit, 2)
	seg := NewSegmented(limit, minSegmentSize, 3)

	for seg.High() <= limit {
		seg.Next()
	}
	if got, want := seg.Pi(limit), pt.Pi(limit); got != want {
		t.Errorf("Pi(%d) = %d, want %d", limit, got, want)
	}
}
