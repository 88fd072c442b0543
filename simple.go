package primecount

import "primecount.lopezb.com/internal/primes"

// piSimpleLimit is the threshold below which Pi counts by plain sieving.
// The combinatorial drivers win only once their table setup is amortized.
const piSimpleLimit = int64(1) << 16

// piSimple counts the primes <= x with a bit sieve.
func piSimple(x int64) int64 {
	return primes.Count(x)
}

// PiPrimesieve returns pi(x) by plain sieving, without any combinatorial
// shortcut. Linear time, but unbeatable for small x and a useful
// cross-check for the clever algorithms.
func PiPrimesieve(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	return piSimple(x), nil
}
