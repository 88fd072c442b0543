package primecount

import (
	"time"

	"primecount.lopezb.com/internal/numeric"
	"primecount.lopezb.com/internal/phi"
	"primecount.lopezb.com/internal/pitable"
	"primecount.lopezb.com/internal/primes"
)

// The Lagarias-Miller-Odlyzko decomposition with y = alpha * x^(1/3):
//
//	pi(x) = S1 + S2 + pi(y) - 1 - P2(x, y)
//
// S1 sums the ordinary leaves (second factor <= y, tiny phi tables), S2
// sieves every special leaf over [0, x/y), and P2 corrects for the
// integers with exactly two prime factors above y.
func (e *engine) lmo(x int64) (int64, error) {
	if x < piSimpleLimit {
		return piSimple(x), nil
	}

	y := e.drY(x)
	z := x / y

	p2, err := e.p2(x, y)
	if err != nil {
		return 0, err
	}

	e.log.Info().Msg("=== S1(x, y) ===")
	pi := pitable.New(y, e.threads)
	piY := pi.Pi(y)
	c := phi.TinyC(y)

	start := time.Now()
	s1 := ordinaryLeaves(x, y, piY, c, e.threads)
	e.log.Info().Int64("S1", s1).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")

	e.log.Info().Msg("=== S2(x, y) ===")
	e.log.Info().Int64("x", x).Int64("y", y).Int64("z", z).Int64("c", c).
		Int("threads", e.threads).Msg("parameters")

	start = time.Now()
	h := &hardLeaves{
		x:      x,
		mLimit: y,
		qMax:   y,
		limit:  z + 1,
		maxB1:  pi.Pi(numeric.Sqrt(y)),
		maxB:   max(c, piY-1),
		c:      c,
		primes: primes.GenerateN(piY + 1),
		mu:     primes.Moebius(y),
		lpf:    primes.LeastPrimeFactor(y),
		pi:     pi,
	}
	s2Approx := Ri(x) - s1 - piY + 1 + p2
	s2, err := e.hardSieve(h, "S2", x, y, 0, 0, s2Approx)
	if err != nil {
		return 0, err
	}
	e.st.Done()
	e.log.Info().Int64("S2", s2).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")

	return s1 + s2 + piY - 1 - p2, nil
}

// PiLMO returns pi(x) using the Lagarias-Miller-Odlyzko algorithm,
// O(x^(2/3) / log x) time and O(x^(1/3) * log^3 x) memory.
func PiLMO(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	return newEngine().lmo(x)
}
