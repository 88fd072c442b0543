package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "primecount.backup")
	return NewManager(path, zerolog.Nop()), path
}

func TestDisabledManager(t *testing.T) {
	m := NewManager("", zerolog.Nop())
	assert.False(t, m.Enabled())

	m.Finish("P2", Entry{X: 100, Sum: "42"})
	_, ok, err := m.Resume("P2", 100, 0, 0, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveAndResume(t *testing.T) {
	m, path := testManager(t)

	e := Entry{
		X:          1000000,
		Y:          1000,
		Low:        500000,
		ThreadDist: 1 << 23,
		Sum:        FormatSum(123456789),
		Percent:    50.5,
		Seconds:    12.5,
	}
	m.Finish("P2", e)

	// A fresh manager reading the same file sees the entry.
	m2 := NewManager(path, zerolog.Nop())
	got, ok, err := m2.Resume("P2", 1000000, 1000, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e, got)

	sum, err := got.SumInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), sum)
}

func TestValidate(t *testing.T) {
	m, path := testManager(t)
	m.Finish("B", Entry{X: 1000, Low: 100, Sum: "7", Percent: 10})

	entries, err := Validate(path)
	require.NoError(t, err)
	require.Contains(t, entries, "B")
	assert.Equal(t, int64(1000), entries["B"].X)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = Validate(path)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestResumeParameterMismatch(t *testing.T) {
	m, path := testManager(t)
	m.Finish("S2Hard", Entry{X: 100, Y: 10, Sum: "1"})

	m2 := NewManager(path, zerolog.Nop())
	_, ok, err := m2.Resume("S2Hard", 200, 10, 0, 0)
	require.NoError(t, err)
	assert.False(t, ok, "different x must not resume")
}

func TestResumeMissingFile(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope"), zerolog.Nop())
	_, ok, err := m.Resume("P2", 1, 0, 0, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResumeCorruptFile(t *testing.T) {
	m, path := testManager(t)
	m.Finish("P2", Entry{X: 1, Sum: "0"})

	// Flip a byte inside the document.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)/2] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, _, err = m.Resume("P2", 1, 0, 0, 0)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestRemove(t *testing.T) {
	m, path := testManager(t)
	m.Finish("P2", Entry{X: 1, Sum: "0"})
	m.Finish("S1", Entry{X: 1, Sum: "5"})
	m.Remove("P2")

	m2 := NewManager(path, zerolog.Nop())
	_, ok, err := m2.Resume("P2", 1, 0, 0, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := m2.Resume("S1", 1, 0, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "5", got.Sum)
}

func TestCheckpointRateLimit(t *testing.T) {
	m, path := testManager(t)

	m.Checkpoint("P2", Entry{X: 1, Low: 10, Sum: "1"})
	info1, err := os.Stat(path)
	require.NoError(t, err)

	// Inside the interval: entry updated in memory, file untouched.
	m.Checkpoint("P2", Entry{X: 1, Low: 20, Sum: "2"})
	info2, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime())

	// Finish forces the write.
	m.Finish("P2", Entry{X: 1, Low: 30, Sum: "3"})
	m2 := NewManager(path, zerolog.Nop())
	got, ok, err := m2.Resume("P2", 1, 0, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(30), got.Low)
}

func TestSumRoundTrip(t *testing.T) {
	// Sums beyond 2^53 must survive unharmed; that is why they are strings.
	big := int64(1) << 62
	e := Entry{X: 1, Sum: FormatSum(big)}
	m, path := testManager(t)
	m.Finish("D", e)

	m2 := NewManager(path, zerolog.Nop())
	got, ok, err := m2.Resume("D", 1, 0, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	sum, err := got.SumInt64()
	require.NoError(t, err)
	assert.Equal(t, big, sum)
}
