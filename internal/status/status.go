// Package status prints the in-place progress line of long running
// computations.
//
// The line is rewritten with a carriage return rather than a newline, so it
// only makes sense on an interactive terminal; printing is disabled when
// stderr is not a TTY, or when the caller never asked for it.
//
// Progress estimation
// ===================
//
// The special leaf kernels know two imperfect progress signals: how far the
// sieve has advanced through [0, limit), and how much of the approximated
// final sum has been accumulated. The sieve position understates progress
// early on (the dense leaves sit at the bottom of the range) while the sum
// ratio overshoots near the end, so the printed value is the maximum of
// both, with the sum ratio skewed by a small exponent and capped below 100
// until the computation really finishes.
//
// Threads report progress concurrently. The printer takes a TryLock and
// simply skips the update when another thread holds the lock; a dropped
// status update costs nothing, a contended mutex in the hot loop would.
package status

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

const (
	// updateInterval rate-limits terminal writes.
	updateInterval = 100 * time.Millisecond

	// skewExp bends the sum ratio upward: r^0.96 >= r for r in [0, 1], so
	// a ratio of 0.5 shows as 51%.
	skewExp = 0.96

	// capPercent holds the display below 100 until Done.
	capPercent = 95.0
)

// maxPrecision bounds the digits after the decimal point; float64 cannot
// resolve more anyway at the progress ratios involved.
const maxPrecision = 5

// Status is a rate-limited progress printer, safe for concurrent use.
type Status struct {
	mu        sync.Mutex
	out       io.Writer
	enabled   bool
	precision int
	last      time.Time
	lastPct   float64
	anything  bool
}

// New returns a printer writing to stderr with the given number of digits
// after the decimal point. The line is suppressed unless enabled is set and
// stderr is a terminal.
func New(enabled bool, precision int) *Status {
	return &Status{
		out:       os.Stderr,
		enabled:   enabled && isTerminal(os.Stderr),
		precision: clampPrecision(precision),
	}
}

func clampPrecision(p int) int {
	return max(0, min(p, maxPrecision))
}

// isTerminal reports whether f is attached to a TTY.
func isTerminal(f *os.File) bool {
	_, err := unix.IoctlGetTermios(int(f.Fd()), unix.TCGETS)
	return err == nil
}

// Update reports sieve progress only: percent = low / limit.
func (s *Status) Update(low, limit int64) {
	s.UpdateSum(low, limit, 0, 0)
}

// UpdateSum reports combined progress. sumApprox may be 0 when no sum
// estimate exists.
func (s *Status) UpdateSum(low, limit, sum, sumApprox int64) {
	if !s.enabled {
		return
	}
	if !s.mu.TryLock() {
		return
	}
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.last) < updateInterval {
		return
	}
	s.last = now

	pct := ratio(low, limit) * 100
	if sumApprox > 0 {
		pct = math.Max(pct, skewed(sum, sumApprox))
	}
	pct = math.Min(pct, capPercent)
	s.print(pct)
}

// Done finalizes the line at 100% and moves to a fresh line.
func (s *Status) Done() {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.print(100)
	if s.anything {
		fmt.Fprintln(s.out)
		s.anything = false
		s.lastPct = 0
		s.last = time.Time{}
	}
}

func (s *Status) print(pct float64) {
	if pct < s.lastPct {
		return
	}
	s.lastPct = pct
	s.anything = true
	fmt.Fprintf(s.out, "\rStatus: %.*f%%", s.precision, pct)
}

func skewed(sum, sumApprox int64) float64 {
	r := ratio(sum, sumApprox)
	return math.Pow(r, skewExp) * 100
}

func ratio(a, b int64) float64 {
	if b <= 0 || a <= 0 {
		return 0
	}
	r := float64(a) / float64(b)
	return math.Min(r, 1)
}
