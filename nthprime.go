package primecount

import (
	"errors"

	"primecount.lopezb.com/internal/primes"
)

// maxNthPrimeN is pi(10^18): the largest n whose prime fits the supported
// input range.
const maxNthPrimeN = int64(24739954287740860)

// ErrInvalidN is returned by NthPrime for n < 1.
var ErrInvalidN = errors.New("primecount: nth prime requires n >= 1")

// NthPrime returns the nth prime, with NthPrime(1) = 2. The prime is found
// by inverting the Riemann R approximation and correcting the guess with an
// exact count: pi(guess) tells how far off the guess is, and a prime
// iterator walks the remaining distance, which is tiny compared to n.
func NthPrime(n int64) (int64, error) {
	if n < 1 {
		return 0, ErrInvalidN
	}
	if n > maxNthPrimeN {
		return 0, ErrTooLarge
	}

	if n < piSimpleLimit {
		p := primes.GenerateN(n)
		return p[n], nil
	}

	guess := RiInverse(n)
	cnt, err := Pi(guess)
	if err != nil {
		return 0, err
	}

	if cnt < n {
		it := primes.NewIterator(guess, guess)
		var p int64
		for ; cnt < n; cnt++ {
			p = it.Next()
		}
		return p, nil
	}

	// Guessed past the target: walk down. The first Prev yields the cnt-th
	// prime, each further step lowers the rank by one.
	it := primes.NewIterator(guess+1, guess+1)
	p := it.Prev()
	for ; cnt > n; cnt-- {
		p = it.Prev()
	}
	return p, nil
}
