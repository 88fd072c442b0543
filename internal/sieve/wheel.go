package sieve

import "sync"

// The pre-sieve wheel covers the primes 3, 5, 7, 11 and 13. In the odd-index
// space (bit i represents 2i+1 relative to an even segment start) the
// crossed-off pattern of these five primes is periodic with period
// 3*5*7*11*13 = 15015 bits. wheelTable[i] caches the 64 pattern bits
// starting at phase i, so PreSieve fills a whole word with one lookup.
const (
	// wheelMinC is the highest prime index the wheel covers: primes[2..6]
	// are 3, 5, 7, 11, 13. PreSieve uses the wheel whenever c >= wheelMinC.
	wheelMinC = 6

	wheelPeriod = 3 * 5 * 7 * 11 * 13
)

var (
	wheelOnce  sync.Once
	wheelTable []uint64
)

// wheelWord returns the 64 pattern bits starting at the given phase,
// where phase is a bit offset into the periodic pattern. Bit j of the
// pattern is set iff 2j+1 is coprime to 15015.
func wheelWord(phase int64) uint64 {
	wheelOnce.Do(buildWheel)
	return wheelTable[phase]
}

func buildWheel() {
	// One pass marks the bits of a single period; a second pass assembles,
	// for every phase, the word formed by the 64 bits at phase..phase+63
	// (wrapping around the period end).
	pattern := make([]bool, wheelPeriod)
	for j := int64(0); j < wheelPeriod; j++ {
		v := 2*j + 1
		pattern[j] = v%3 != 0 && v%5 != 0 && v%7 != 0 && v%11 != 0 && v%13 != 0
	}

	wheelTable = make([]uint64, wheelPeriod)
	for phase := int64(0); phase < wheelPeriod; phase++ {
		var w uint64
		for bit := int64(0); bit < 64; bit++ {
			if pattern[(phase+bit)%wheelPeriod] {
				w |= uint64(1) << bit
			}
		}
		wheelTable[phase] = w
	}
}
