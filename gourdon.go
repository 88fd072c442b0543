package primecount

import (
	"time"

	"primecount.lopezb.com/internal/numeric"
	"primecount.lopezb.com/internal/phi"
	"primecount.lopezb.com/internal/pitable"
	"primecount.lopezb.com/internal/primes"
)

// Gourdon's algorithm, the fastest of the family. The partial sieve
// function phi(x, pi(y)) is expanded with ordinary threshold z = alpha_z * y
// instead of y, which thins out the sieved leaves considerably, and the
// two-primes correction is folded into a closed form:
//
//	pi(x) = Phi0 + AC + D + Sigma - B
//
// Phi0 sums the ordinary leaves (second factor <= z), AC the non-sieved
// special leaves of the levels above pi(x_star), D sieves the special
// leaves of the levels up to pi(x_star), Sigma is the closed-form part of
// the two-primes correction and B(x, y) its sieved remainder.
//
// x_star = max(x^(1/4), x/y^2) splits the special levels: above it every
// leaf value drops below sqrt(x) and phi comes from a counting table, below
// it the leaves go through the segmented sieve.

// gourdonParams bundles the tuning bounds and shared tables of one Gourdon
// computation.
type gourdonParams struct {
	y, z  int64
	xStar int64
	k     int64 // pre-sieved primes, within the tiny phi tables
	a     int64 // pi(y)
	s     int64 // pi(xStar)
	p     []int64
	pi    *pitable.PiTable
}

func (e *engine) gourdonSetup(x int64) gourdonParams {
	y, z := e.gourdonYZ(x)
	pi := pitable.New(y, e.threads)

	xStar := max(numeric.Root(4, x), x/(y*y))
	xStar = min(xStar, y)
	s := pi.Pi(xStar)

	return gourdonParams{
		y:     y,
		z:     z,
		xStar: xStar,
		k:     max(1, min(phi.TinyC(y), s-1)),
		a:     pi.Pi(y),
		s:     s,
		p:     primes.GenerateN(pi.Pi(y) + 1),
		pi:    pi,
	}
}

// gourdonSigma returns the closed-form part of the two-primes correction,
// derived from P2(x, y) = B(x, y) - sum_{a < i <= b2} (i - 1) with
// a = pi(y) and b2 = pi(sqrt(x)).
func gourdonSigma(a, b2 int64) int64 {
	return a - 1 + (b2*(b2-1)-a*(a-1))/2
}

func (e *engine) gourdon(x int64) (int64, error) {
	if x < piSimpleLimit {
		return piSimple(x), nil
	}

	g := e.gourdonSetup(x)
	e.log.Info().Msg("=== PiGourdon(x) ===")
	e.log.Info().Int64("x", x).Int64("y", g.y).Int64("z", g.z).
		Int64("x_star", g.xStar).Int64("k", g.k).
		Int("threads", e.threads).Msg("parameters")

	b, err := e.b(x, g.y)
	if err != nil {
		return 0, err
	}

	e.log.Info().Msg("=== Sigma(x, y) ===")
	start := time.Now()
	sigma := gourdonSigma(g.a, piLegendre(numeric.Sqrt(x), e.threads))
	e.log.Info().Int64("Sigma", sigma).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")

	e.log.Info().Msg("=== Phi0(x, y) ===")
	start = time.Now()
	phi0 := ordinaryLeaves(x, g.z, g.a, g.k, e.threads)
	e.log.Info().Int64("Phi0", phi0).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")

	e.log.Info().Msg("=== AC(x, y) ===")
	start = time.Now()
	ac := acLeaves(x, g.y, g.xStar, g.p, g.pi, e.threads)
	e.log.Info().Int64("AC", ac).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")

	dApprox := Ri(x) - phi0 - ac - sigma + b
	d, err := e.dKernel(x, g, dApprox)
	if err != nil {
		return 0, err
	}

	return phi0 + ac + d + sigma - b, nil
}

// dKernel sieves the special leaves of the levels in (k, pi(x_star)] over
// [0, x/z). The factor tables extend to z: the second factor of a D leaf
// may be as large as z, provided its prime factors stay within (p_b, y].
func (e *engine) dKernel(x int64, g gourdonParams, sumApprox int64) (int64, error) {
	e.log.Info().Msg("=== D(x, y) ===")
	e.log.Info().Int64("x", x).Int64("y", g.y).Int64("z", g.z).Int64("k", g.k).
		Int("threads", e.threads).Msg("parameters")

	start := time.Now()
	h := &hardLeaves{
		x:      x,
		mLimit: g.z,
		qMax:   g.y,
		limit:  x/g.z + 1,
		maxB1:  g.pi.Pi(numeric.Sqrt(g.z)),
		maxB:   max(g.k, g.s),
		c:      g.k,
		primes: g.p,
		mu:     primes.Moebius(g.z),
		lpf:    primes.LeastPrimeFactor(g.z),
		gpf:    primes.GreatestPrimeFactor(g.z),
		pi:     g.pi,
	}
	d, err := e.hardSieve(h, "D", x, g.y, g.z, g.k, sumApprox)
	if err != nil {
		return 0, err
	}
	e.st.Done()
	e.log.Info().Int64("D", d).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")
	return d, nil
}

// PiGourdon returns pi(x) using Gourdon's algorithm,
// O(x^(2/3) / log^2 x) time and O(x^(1/3) * log^3 x) memory.
func PiGourdon(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	return newEngine().gourdon(x)
}

// GourdonB returns the sieved two-primes term B(x, y) of Gourdon's
// algorithm for x, with y derived the same way PiGourdon derives it.
func GourdonB(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	e := newEngine()
	y, _ := e.gourdonYZ(x)
	return e.b(x, y)
}

// Phi0 returns the ordinary leaves term of Gourdon's algorithm for x, with
// y, z and k derived the same way PiGourdon derives them.
func Phi0(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	e := newEngine()
	g := e.gourdonSetup(x)
	return ordinaryLeaves(x, g.z, g.a, g.k, e.threads), nil
}

// AC returns the A + C term of Gourdon's algorithm for x.
func AC(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	e := newEngine()
	g := e.gourdonSetup(x)
	return acLeaves(x, g.y, g.xStar, g.p, g.pi, e.threads), nil
}

// D returns the sieved special leaves term of Gourdon's algorithm for x.
func D(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	e := newEngine()
	g := e.gourdonSetup(x)
	return e.dKernel(x, g, 0)
}

// Sigma returns the closed-form two-primes term of Gourdon's algorithm
// for x.
func Sigma(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	e := newEngine()
	g := e.gourdonSetup(x)
	return gourdonSigma(g.a, piLegendre(numeric.Sqrt(x), e.threads)), nil
}
