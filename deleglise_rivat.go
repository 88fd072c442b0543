package primecount

import (
	"time"

	"primecount.lopezb.com/internal/numeric"
	"primecount.lopezb.com/internal/phi"
	"primecount.lopezb.com/internal/pitable"
	"primecount.lopezb.com/internal/primes"
)

// The Deleglise-Rivat refinement of Lagarias-Miller-Odlyzko. The S2 sum is
// split by how each special leaf's phi value is obtained:
//
//	pi(x) = S1 + S2_trivial + S2_easy + S2_hard + pi(y) - 1 - P2(x, y)
//
// Trivial and easy leaves are answered from the pi table without sieving;
// only the hard leaves, whose values exceed y, go through the segmented
// sieve. Shrinking the sieved set is what makes the algorithm practical at
// 10^17 and beyond: the sieve's leaf density falls sharply once the table
// ranges take over.
// drParams bundles the tuning bounds and shared tables of one
// Deleglise-Rivat computation.
type drParams struct {
	y, z int64
	c    int64
	piY  int64
	p    []int64
	pi   *pitable.PiTable
}

func (e *engine) drSetup(x int64) drParams {
	y := e.drY(x)
	pi := pitable.New(y, e.threads)
	piY := pi.Pi(y)

	return drParams{
		y:   y,
		z:   x / y,
		c:   phi.TinyC(y),
		piY: piY,
		p:   primes.GenerateN(piY + 1),
		pi:  pi,
	}
}

// drHardLeaves builds the sieved leaf description of the S2_hard term.
func drHardLeaves(x int64, d drParams) *hardLeaves {
	return &hardLeaves{
		x:      x,
		mLimit: d.y,
		qMax:   d.y,
		qDiv:   d.z,
		limit:  d.z + 1,
		maxB1:  d.pi.Pi(numeric.Sqrt(d.y)),
		maxB:   max(d.c, d.pi.Pi(numeric.Sqrt(d.z))),
		c:      d.c,
		primes: d.p,
		mu:     primes.Moebius(d.y),
		lpf:    primes.LeastPrimeFactor(d.y),
		pi:     d.pi,
	}
}

func (e *engine) delegliseRivat(x int64) (int64, error) {
	if x < piSimpleLimit {
		return piSimple(x), nil
	}

	d := e.drSetup(x)
	y, z, c, piY, p, pi := d.y, d.z, d.c, d.piY, d.p, d.pi

	p2, err := e.p2(x, y)
	if err != nil {
		return 0, err
	}

	e.log.Info().Msg("=== S1(x, y) ===")
	start := time.Now()
	s1 := ordinaryLeaves(x, y, piY, c, e.threads)
	e.log.Info().Int64("S1", s1).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")

	e.log.Info().Msg("=== S2_trivial(x, y) ===")
	start = time.Now()
	trivial := s2Trivial(x, y, z, p, pi)
	e.log.Info().Int64("S2_trivial", trivial).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")

	e.log.Info().Msg("=== S2_easy(x, y) ===")
	start = time.Now()
	easy := s2Easy(x, y, z, c, p, pi, e.threads)
	e.log.Info().Int64("S2_easy", easy).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")

	e.log.Info().Msg("=== S2_hard(x, y) ===")
	e.log.Info().Int64("x", x).Int64("y", y).Int64("z", z).Int64("c", c).
		Int("threads", e.threads).Msg("parameters")

	start = time.Now()
	h := drHardLeaves(x, d)
	hardApprox := Ri(x) - s1 - trivial - easy - piY + 1 + p2
	hard, err := e.hardSieve(h, "S2_hard", x, y, 0, 0, hardApprox)
	if err != nil {
		return 0, err
	}
	e.st.Done()
	e.log.Info().Int64("S2_hard", hard).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")

	return s1 + trivial + easy + hard + piY - 1 - p2, nil
}

// PiDelegliseRivat returns pi(x) using the Deleglise-Rivat algorithm,
// O(x^(2/3) / log^2 x) time and O(x^(1/3) * log^3 x) memory.
func PiDelegliseRivat(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	return newEngine().delegliseRivat(x)
}

// S1 returns the ordinary leaves term of the Deleglise-Rivat algorithm for
// x, with y derived the same way PiDelegliseRivat derives it.
func S1(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	e := newEngine()
	d := e.drSetup(x)
	return ordinaryLeaves(x, d.y, d.piY, d.c, e.threads), nil
}

// S2Trivial returns the trivial special leaves term of the Deleglise-Rivat
// algorithm for x.
func S2Trivial(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	d := newEngine().drSetup(x)
	return s2Trivial(x, d.y, d.z, d.p, d.pi), nil
}

// S2Easy returns the easy special leaves term of the Deleglise-Rivat
// algorithm for x.
func S2Easy(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	e := newEngine()
	d := e.drSetup(x)
	return s2Easy(x, d.y, d.z, d.c, d.p, d.pi, e.threads), nil
}

// S2Hard returns the sieved special leaves term of the Deleglise-Rivat
// algorithm for x.
func S2Hard(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	e := newEngine()
	d := e.drSetup(x)
	return e.hardSieve(drHardLeaves(x, d), "S2_hard", x, d.y, 0, 0, 0)
}
