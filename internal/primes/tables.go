package primes

import (
	"math"

	"primecount.lopezb.com/internal/numeric"
)

// Moebius returns mu[0..limit]. mu[n] is 0 if n has a squared prime
// factor, otherwise (-1)^k where k is the number of prime factors of n.
//
// The generation uses the signed-product trick: every prime p multiplies
// mu[m] by -p for each multiple m, and zeroes multiples of p^2. Afterwards
// |mu[n]| equals the product of the distinct primes of n up to sqrt(limit),
// so a final normalization pass recovers the sign. The intermediate
// products divide n, so they cannot overflow for limit < 2^31.
func Moebius(limit int64) []int8 {
	work := make([]int32, limit+1)
	for i := range work {
		work[i] = 1
	}

	for i := int64(2); i*i <= limit; i++ {
		if work[i] == 1 {
			for j := i; j <= limit; j += i {
				work[j] *= -int32(i)
			}
			for j := i * i; j <= limit; j += i * i {
				work[j] = 0
			}
		}
	}

	mu := make([]int8, limit+1)
	for n := int64(1); n <= limit; n++ {
		switch {
		case work[n] == int32(n):
			mu[n] = 1
		case work[n] == -int32(n):
			mu[n] = -1
		case work[n] < 0:
			// A prime factor > sqrt(n) is missing from the product,
			// flipping the parity once more.
			mu[n] = 1
		case work[n] > 0:
			mu[n] = -1
		}
	}

	return mu
}

// LeastPrimeFactor returns lpf[0..limit]. lpf[n] is the smallest prime
// dividing n (n itself when n is prime). lpf[1] is set to MaxInt32 so that
// the ordinary-leaves condition lpf[m] > primes[c] holds for m = 1.
func LeastPrimeFactor(limit int64) []int32 {
	lpf := make([]int32, limit+1)

	if limit >= 1 {
		lpf[1] = math.MaxInt32
	}

	for i := int64(2); i <= limit; i++ {
		if lpf[i] == 0 {
			for j := i; j <= limit; j += i {
				if lpf[j] == 0 {
					lpf[j] = int32(i)
				}
			}
		}
	}

	return lpf
}

// GreatestPrimeFactor returns gpf[0..limit]. gpf[n] is the largest prime
// dividing n; gpf[0] and gpf[1] are 0. Built by sieving primes in
// increasing order, so each slot ends up holding the last prime that
// touched it.
func GreatestPrimeFactor(limit int64) []int32 {
	gpf := make([]int32, limit+1)

	for i := int64(2); i <= limit; i++ {
		if gpf[i] == 0 {
			for j := i; j <= limit; j += i {
				gpf[j] = int32(i)
			}
		}
	}

	return gpf
}

// GeneratePi returns pi[0..limit] where pi[n] is the number of primes <= n.
func GeneratePi(limit int64) []int32 {
	pi := make([]int32, limit+1)
	if limit < 2 {
		return pi
	}

	base := basePrimes(numeric.Sqrt(limit))
	bits := sieveOdd(0, limit+1, base)

	count := int32(0)
	for n := int64(0); n <= limit; n++ {
		if n == 2 {
			count++
		} else if n%2 == 1 && n > 2 {
			idx := n / 2
			if bits[idx/64]>>(idx%64)&1 == 1 {
				count++
			}
		}
		pi[n] = count
	}

	return pi
}
