package primecount

import (
	"time"

	"primecount.lopezb.com/internal/numeric"
	"primecount.lopezb.com/internal/phi"
	"primecount.lopezb.com/internal/pitable"
	"primecount.lopezb.com/internal/primes"
)

// The classical recursive counts. Legendre's identity
//
//	pi(x) = phi(x, a) + a - 1  with a = pi(sqrt(x))
//
// needs nothing but the partial sieve function; Meissel shrinks a to
// pi(x^(1/3)) at the price of the two-primes correction P2, and Lehmer
// shrinks it further to pi(x^(1/4)) with a three-primes correction. All
// three are dominated asymptotically by the sieving algorithms but serve
// as independent cross-checks, and piLegendre is the subroutine the other
// kernels use for their pi side queries.

// piLegendre returns pi(x) by Legendre's identity. The recursion for
// a = pi(sqrt(x)) bottoms out in the plain sieve after one level.
func piLegendre(x int64, threads int) int64 {
	if x < 2 {
		return 0
	}
	sqrtx := numeric.Sqrt(x)
	var a int64
	if sqrtx < piSimpleLimit {
		a = piSimple(sqrtx)
	} else {
		a = piLegendre(sqrtx, threads)
	}
	return phi.Phi(x, a, threads) + a - 1
}

func (e *engine) legendre(x int64) (int64, error) {
	e.log.Info().Msg("=== PiLegendre(x) ===")
	e.log.Info().Int64("x", x).Int("threads", e.threads).Msg("parameters")

	start := time.Now()
	sum := piLegendre(x, e.threads)
	e.log.Info().Int64("pi", sum).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")
	return sum, nil
}

// meissel computes pi(x) = phi(x, a) + a - 1 - P2(x, y) with y = x^(1/3)
// and a = pi(y).
func (e *engine) meissel(x int64) (int64, error) {
	if x < 2 {
		return 0, nil
	}

	e.log.Info().Msg("=== PiMeissel(x) ===")
	e.log.Info().Int64("x", x).Int("threads", e.threads).Msg("parameters")

	start := time.Now()
	y := numeric.Root(3, x)
	a := piLegendre(y, e.threads)

	p2, err := e.p2(x, y)
	if err != nil {
		return 0, err
	}

	sum := phi.Phi(x, a, e.threads) + a - 1 - p2
	e.log.Info().Int64("pi", sum).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")
	return sum, nil
}

// lehmer computes pi(x) with a = pi(x^(1/4)), b = pi(sqrt(x)),
// c = pi(x^(1/3)):
//
//	pi(x) = phi(x, a) + (b+a-2)(b-a+1)/2
//	      - sum_{a < i <= b} pi(x/p_i)
//	      - sum_{a < i <= c} sum_{i <= j <= pi(sqrt(x/p_i))}
//	            (pi(x/(p_i p_j)) - (j-1))
//
// The double sum's arguments x/(p_i p_j) never exceed sqrt(x) because
// p_i > x^(1/4), so one pi table over [0, sqrt(x)] answers them all.
func (e *engine) lehmer(x int64) (int64, error) {
	if x < 2 {
		return 0, nil
	}

	e.log.Info().Msg("=== PiLehmer(x) ===")
	e.log.Info().Int64("x", x).Int("threads", e.threads).Msg("parameters")

	start := time.Now()
	sqrtx := numeric.Sqrt(x)
	a := piLegendre(numeric.Root(4, x), e.threads)
	b := piLegendre(sqrtx, e.threads)
	c := piLegendre(numeric.Root(3, x), e.threads)

	sum := phi.Phi(x, a, e.threads) + (b+a-2)*(b-a+1)/2

	p := primes.Generate(sqrtx)
	pi := pitable.New(sqrtx, e.threads)

	for i := a + 1; i <= b; i++ {
		w := x / p[i]
		sum -= piLegendre(w, e.threads)
		if i <= c {
			bi := pi.Pi(numeric.Sqrt(w))
			for j := i; j <= bi; j++ {
				sum -= pi.Pi(w/p[j]) - (j - 1)
			}
		}
	}

	e.log.Info().Int64("pi", sum).
		Float64("seconds", time.Since(start).Seconds()).Msg("result")
	return sum, nil
}

// PiLegendre returns pi(x) using Legendre's formula, O(x) time and
// O(sqrt(x)) memory.
func PiLegendre(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	return newEngine().legendre(x)
}

// PiMeissel returns pi(x) using Meissel's formula.
func PiMeissel(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	return newEngine().meissel(x)
}

// PiLehmer returns pi(x) using Lehmer's formula.
func PiLehmer(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	return newEngine().lehmer(x)
}

// Phi returns the partial sieve function phi(x, a): the number of integers
// in [1, x] not divisible by any of the first a primes.
func Phi(x, a int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	return phi.Phi(x, a, newEngine().threads), nil
}
