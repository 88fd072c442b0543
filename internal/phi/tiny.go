// Package phi computes the partial sieve function phi(x, a): the count of
// integers in [1, x] not divisible by any of the first a primes.
//
// Two layers share the work. Tiny answers phi(x, a) for a <= TinyMaxA in
// O(1) using the periodicity of the sieve pattern: the integers coprime to
// the first a primes repeat with period primorial(a), so
//
//	phi(x, a) = (x / pp) * totient(pp) + phi(x % pp, a)
//
// and the remainder term comes from a precomputed table. Phi handles
// arbitrary a with the recurrence phi(x, a) = phi(x, a-1) - phi(x/p_a, a-1),
// cutting the recursion off with Tiny, with pi-based closed forms, and with
// a small memo cache.
package phi

import "sync"

// TinyMaxA is the largest a the Tiny tables cover. The first 7 primes are
// 2, 3, 5, 7, 11, 13, 17 with primorial 510510, so the largest remainder
// table has half a million entries.
const TinyMaxA = 7

var tinyPrimes = [TinyMaxA + 1]int64{0, 2, 3, 5, 7, 11, 13, 17}

var (
	tinyOnce     sync.Once
	tinyPP       [TinyMaxA + 1]int64 // primorials
	tinyTotients [TinyMaxA + 1]int64
	tinyCache    [TinyMaxA + 1][]int32 // tinyCache[a][i] = phi(i, a), i < pp[a]
)

func buildTiny() {
	tinyPP[0] = 1
	tinyTotients[0] = 1
	for a := 1; a <= TinyMaxA; a++ {
		tinyPP[a] = tinyPP[a-1] * tinyPrimes[a]
		tinyTotients[a] = tinyTotients[a-1] * (tinyPrimes[a] - 1)
	}

	for a := 0; a <= TinyMaxA; a++ {
		pp := tinyPP[a]
		coprime := make([]bool, pp)
		for i := range coprime {
			coprime[i] = true
		}
		for b := 1; b <= a; b++ {
			for j := int64(0); j < pp; j += tinyPrimes[b] {
				coprime[j] = false
			}
		}

		table := make([]int32, pp)
		count := int32(0)
		for i := int64(1); i < pp; i++ {
			if coprime[i] {
				count++
			}
			table[i] = count
		}
		tinyCache[a] = table
	}
}

// Tiny returns phi(x, a) for 0 <= a <= TinyMaxA. Returns 0 for x < 1.
func Tiny(x, a int64) int64 {
	if x < 1 {
		return 0
	}
	tinyOnce.Do(buildTiny)
	pp := tinyPP[a]
	return (x/pp)*tinyTotients[a] + int64(tinyCache[a][x%pp])
}

// TinyC returns the number of sieving primes the tiny tables can absorb
// for a computation with primes up to y: min(TinyMaxA, pi(y)).
func TinyC(y int64) int64 {
	for a := int64(TinyMaxA); a >= 1; a-- {
		if y >= tinyPrimes[a] {
			return a
		}
	}
	return 0
}
