package phi

import (
	"testing"

	"primecount.lopezb.com/internal/primes"
)

// phiSlow counts the integers in [1, x] not divisible by any of the first
// a primes, by trial division.
func phiSlow(x, a int64) int64 {
	p := primes.GenerateN(a)
	count := int64(0)
	for n := int64(1); n <= x; n++ {
		ok := true
		for b := int64(1); b <= a; b++ {
			if n%p[b] == 0 {
				ok = false
				break
			}
		}
		if ok {
			count++
		}
	}
	return count
}

func TestTinyOracle(t *testing.T) {
	for a := int64(0); a <= TinyMaxA; a++ {
		for _, x := range []int64{0, 1, 2, 10, 100, 1000, 12345} {
			if got, want := Tiny(x, a), phiSlow(x, a); got != want {
				t.Errorf("Tiny(%d, %d) = %d, want %d", x, a, got, want)
			}
		}
	}
}

func TestTinyPeriodicity(t *testing.T) {
	// phi(x + pp, a) = phi(x, a) + totient(pp).
	tinyOnce.Do(buildTiny)
	for a := int64(1); a <= TinyMaxA; a++ {
		pp, tot := tinyPP[a], tinyTotients[a]
		for _, x := range []int64{0, 1, 97, pp - 1, pp, 3 * pp} {
			if got, want := Tiny(x+pp, a), Tiny(x, a)+tot; got != want {
				t.Errorf("a=%d: Tiny(%d+pp) = %d, want %d", a, x, got, want)
			}
		}
	}
}

func TestTinyC(t *testing.T) {
	cases := map[int64]int64{
		0: 0, 1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 7: 4, 11: 5,
		13: 6, 16: 6, 17: 7, 100: 7, 1 << 40: 7,
	}
	for y, want := range cases {
		if got := TinyC(y); got != want {
			t.Errorf("TinyC(%d) = %d, want %d", y, got, want)
		}
	}
}

func TestPhiOracle(t *testing.T) {
	for _, a := range []int64{0, 1, 5, 8, 10, 15, 25} {
		for _, x := range []int64{0, 1, 17, 100, 1000, 20000} {
			if got, want := Phi(x, a, 1), phiSlow(x, a); got != want {
				t.Errorf("Phi(%d, %d) = %d, want %d", x, a, got, want)
			}
		}
	}
}

func TestPhiLegendreIdentity(t *testing.T) {
	// With a = pi(sqrt(x)): pi(x) = phi(x, a) + a - 1.
	pi := primes.GeneratePi(100000)

	for _, x := range []int64{100, 1000, 10000, 100000} {
		sqrtx := int64(0)
		for sqrtx*sqrtx <= x {
			sqrtx++
		}
		sqrtx--
		a := int64(pi[sqrtx])
		if got, want := Phi(x, a, 1)+a-1, int64(pi[x]); got != want {
			t.Errorf("x=%d: phi + a - 1 = %d, want pi(x) = %d", x, got, want)
		}
	}
}

func TestPhiParallelMatchesSerial(t *testing.T) {
	for _, x := range []int64{100000, 2000000} {
		for _, a := range []int64{10, 30, 60} {
			serial := Phi(x, a, 1)
			parallel := Phi(x, a, 4)
			if serial != parallel {
				t.Errorf("Phi(%d, %d): serial %d, parallel %d", x, a, serial, parallel)
			}
		}
	}
}

func TestPhiLargePrimeIndex(t *testing.T) {
	// When primes[a] >= x every integer in [2, x] is divisible by some
	// sieving prime or is itself one of them, leaving only 1.
	if got := Phi(10, 25, 1); got != 1 {
		t.Errorf("Phi(10, 25) = %d, want 1", got)
	}
	if got := Phi(1, 5, 1); got != 1 {
		t.Errorf("Phi(1, 5) = %d, want 1", got)
	}
	if got := Phi(0, 5, 1); got != 0 {
		t.Errorf("Phi(0, 5) = %d, want 0", got)
	}
}
