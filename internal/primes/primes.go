// Package primes generates prime numbers and the small multiplicative
// tables (Moebius, least prime factor, PrimePi) that the counting kernels
// share read-only across threads.
//
// All generation is based on a bit-packed sieve of Eratosthenes over odd
// integers: even numbers are never represented, the prime 2 is handled
// explicitly. One uint64 word covers 128 integers.
package primes

import (
	"math"
	bits64 "math/bits"

	"primecount.lopezb.com/internal/numeric"
)

// sieveOdd sieves the interval [low, high) and returns one bit per odd
// integer: bit i of word w is set iff low' + (w*64+i)*2 + 1 is prime, where
// low' is low rounded down to an even number. The caller supplies the base
// primes (all odd primes <= sqrt(high-1)).
func sieveOdd(low, high int64, base []int64) []uint64 {
	if low < 0 {
		low = 0
	}
	evenLow := low &^ 1
	n := (high - evenLow) / 2
	words := (n + 63) / 64
	bits := make([]uint64, words)

	for i := range bits {
		bits[i] = ^uint64(0)
	}

	// Mask out the tail bits beyond high so popcounts stay exact.
	if tail := n % 64; tail != 0 {
		bits[words-1] = (uint64(1) << tail) - 1
	}

	// 1 is not prime.
	if evenLow == 0 {
		bits[0] &^= 1
	}

	for _, p := range base {
		// First odd multiple of p inside [low, high).
		m := p * p
		if m < low {
			m = numeric.CeilDiv(low, p) * p
			if m%2 == 0 {
				m += p
			}
		}
		for ; m < high; m += 2 * p {
			idx := (m - evenLow) / 2
			bits[idx/64] &^= uint64(1) << (idx % 64)
		}
	}

	return bits
}

// basePrimes returns all odd primes <= limit using a plain boolean sieve.
// Only used to bootstrap the bit sieve, so limit is at most sqrt(x).
func basePrimes(limit int64) []int64 {
	if limit < 3 {
		return nil
	}
	composite := make([]bool, limit+1)
	var base []int64

	for i := int64(3); i <= limit; i += 2 {
		if composite[i] {
			continue
		}
		base = append(base, i)
		for j := i * i; j <= limit; j += 2 * i {
			composite[j] = true
		}
	}

	return base
}

// Generate returns all primes <= limit with a 0 sentinel at index 0, so
// that primes[i] is the i-th prime. The result is immutable by convention
// and shared read-only across threads.
func Generate(limit int64) []int64 {
	primes := []int64{0}
	if limit < 2 {
		return primes
	}
	primes = append(primes, 2)

	base := basePrimes(numeric.Sqrt(limit))
	bits := sieveOdd(0, limit+1, base)

	for w, word := range bits {
		for word != 0 {
			idx := int64(w)*64 + int64(bits64.TrailingZeros64(word))
			primes = append(primes, idx*2+1)
			word &= word - 1
		}
	}

	return primes
}

// Count returns the number of primes <= limit by sieving, without
// materializing them.
func Count(limit int64) int64 {
	if limit < 2 {
		return 0
	}

	base := basePrimes(numeric.Sqrt(limit))
	bits := sieveOdd(0, limit+1, base)

	count := int64(1) // the prime 2
	for _, word := range bits {
		count += int64(bits64.OnesCount64(word))
	}
	return count
}

// GenerateN returns the first n primes with the 0 sentinel at index 0.
func GenerateN(n int64) []int64 {
	if n < 1 {
		return []int64{0}
	}

	// Over-estimate the n-th prime: p_n < n(ln n + ln ln n) for n >= 6.
	limit := int64(64)
	if n >= 6 {
		fn := float64(n)
		limit = int64(fn*(math.Log(fn)+math.Log(math.Log(fn)))) + 64
	}

	for {
		primes := Generate(limit)
		if int64(len(primes)) > n {
			return primes[:n+1]
		}
		limit *= 2
	}
}
