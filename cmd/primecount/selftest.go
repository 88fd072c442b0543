package main

import (
	"fmt"
	"io"
	"math/rand"

	primecount "primecount.lopezb.com"
)

// selfTest cross-checks the algorithms against each other on random inputs
// and against known values, printing one line per check. Returns 0 when
// every check passes, 1 otherwise.
func selfTest(out io.Writer) int {
	rng := rand.New(rand.NewSource(rand.Int63()))
	ok := true

	check := func(name string, got, want int64) {
		if got == want {
			fmt.Fprintf(out, "%-24s OK\n", name)
		} else {
			fmt.Fprintf(out, "%-24s FAILED: got %d, want %d\n", name, got, want)
			ok = false
		}
	}

	known := []struct {
		x, pi int64
	}{
		{10, 4},
		{100, 25},
		{1000, 168},
		{1_000_000, 78_498},
		{10_000_000, 664_579},
	}
	for _, k := range known {
		got, err := primecount.Pi(k.x)
		if err != nil {
			fmt.Fprintf(out, "Pi(%d) error: %v\n", k.x, err)
			return 1
		}
		check(fmt.Sprintf("pi(%d)", k.x), got, k.pi)
	}

	algos := []struct {
		name string
		f    func(int64) (int64, error)
	}{
		{"pi_legendre", primecount.PiLegendre},
		{"pi_meissel", primecount.PiMeissel},
		{"pi_lehmer", primecount.PiLehmer},
		{"pi_lmo", primecount.PiLMO},
		{"pi_deleglise_rivat", primecount.PiDelegliseRivat},
		{"pi_gourdon", primecount.PiGourdon},
	}
	for _, a := range algos {
		x := 1_000_000 + rng.Int63n(4_000_000)
		want, err := primecount.PiPrimesieve(x)
		if err != nil {
			fmt.Fprintf(out, "primesieve(%d) error: %v\n", x, err)
			return 1
		}
		got, err := a.f(x)
		if err != nil {
			fmt.Fprintf(out, "%s(%d) error: %v\n", a.name, x, err)
			return 1
		}
		check(fmt.Sprintf("%s(%d)", a.name, x), got, want)
	}

	n := 1 + rng.Int63n(1_000_000)
	p, err := primecount.NthPrime(n)
	if err != nil {
		fmt.Fprintf(out, "nth_prime(%d) error: %v\n", n, err)
		return 1
	}
	cnt, err := primecount.Pi(p)
	if err != nil {
		fmt.Fprintf(out, "pi(%d) error: %v\n", p, err)
		return 1
	}
	check(fmt.Sprintf("pi(nth_prime(%d))", n), cnt, n)

	if !ok {
		fmt.Fprintln(out, "Test failed!")
		return 1
	}
	fmt.Fprintln(out, "All tests passed successfully!")
	return 0
}
