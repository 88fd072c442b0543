package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primecount.lopezb.com/internal/numeric"
)

func TestEvalNumbers(t *testing.T) {
	cases := map[string]int64{
		"0":            0,
		"42":           42,
		"1e3":          1000,
		"1E6":          1000000,
		"5e15":         5000000000000000,
		"1000000":      1000000,
		"  123  ":      123,
		"1e18":         1000000000000000000,
		"922337203685": 922337203685,
	}
	for in, want := range cases {
		got, err := Eval(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestEvalArithmetic(t *testing.T) {
	cases := map[string]int64{
		"1+2":         3,
		"10-4":        6,
		"6*7":         42,
		"10/3":        3,
		"10%3":        1,
		"2^10":        1024,
		"2**10":       1024,
		"10^9+7":      1000000007,
		"2^32-1":      4294967295,
		"(1+2)*3":     9,
		"2*3+4":       10,
		"2+3*4":       14,
		"2^3^2":       512,
		"-5+10":       5,
		"--5":         5,
		"10^2 * 10^2": 10000,
	}
	for in, want := range cases {
		got, err := Eval(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestEvalErrors(t *testing.T) {
	for _, in := range []string{
		"", "abc", "1+", "(1+2", "1/0", "1%0", "2^-1", "1..2", "1 2",
	} {
		_, err := Eval(in)
		assert.Error(t, err, "input %q", in)
		assert.ErrorIs(t, err, ErrSyntax, "input %q", in)
	}
}

func TestEvalOverflow(t *testing.T) {
	for _, in := range []string{
		"2^64", "1e19", "9223372036854775808", "10^18*10", "5e18+5e18",
	} {
		_, err := Eval(in)
		require.Error(t, err, "input %q", in)
		assert.ErrorIs(t, err, numeric.ErrOverflow, "input %q", in)
	}
}

func TestEvalStrict(t *testing.T) {
	_, err := EvalStrict("   ")
	assert.ErrorIs(t, err, ErrSyntax)

	got, err := EvalStrict(" 1e14 ")
	require.NoError(t, err)
	assert.Equal(t, int64(100000000000000), got)
}
