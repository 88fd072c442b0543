// Package primecount counts primes. Pi(x) returns the exact number of
// primes <= x for any x up to 10^18, in far less time than enumerating
// them: the combinatorial algorithms of Legendre, Meissel, Lehmer,
// Lagarias-Miller-Odlyzko, Deleglise-Rivat and Gourdon compute pi(x) from
// cleverly arranged partial sieve counts with roughly O(x^(2/3)) work.
//
// The package picks the fastest algorithm automatically; the specific
// variants are exported for testing and comparison. NthPrime inverts Pi,
// Phi exposes the partial sieve function, and Li/Ri provide the analytic
// approximations used for initial guesses.
//
// All functions are safe for concurrent use. Long running computations can
// print a progress line and periodically checkpoint their state to a backup
// file; see SetStatus and SetBackupFile. Tuning factors and thread counts
// default to sane values derived from x and the machine, overridable via
// Set* calls or PRIMECOUNT_* environment variables.
package primecount

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"primecount.lopezb.com/internal/backup"
	"primecount.lopezb.com/internal/config"
	"primecount.lopezb.com/internal/numeric"
	"primecount.lopezb.com/internal/status"
)

// ErrTooLarge is returned for inputs beyond MaxX. The hard leaf
// accumulators would overflow int64 above 10^18; rather than silently
// wrapping, the package refuses.
var ErrTooLarge = errors.New("primecount: x exceeds the supported range")

var (
	setMu    sync.Mutex
	settings = config.Load()
	logger   = zerolog.Nop()
)

// MaxX returns the largest supported input, 10^18.
func MaxX() int64 {
	return numeric.MaxX
}

// SetNumThreads fixes the number of worker goroutines. n < 1 restores the
// default (all CPUs).
func SetNumThreads(n int) {
	setMu.Lock()
	defer setMu.Unlock()
	if n < 1 {
		settings.Threads = config.Load().Threads
		return
	}
	settings.Threads = n
}

// NumThreads returns the current worker count.
func NumThreads() int {
	setMu.Lock()
	defer setMu.Unlock()
	return settings.Threads
}

// SetStatus enables or disables the progress line on stderr.
func SetStatus(enabled bool) {
	setMu.Lock()
	defer setMu.Unlock()
	settings.Status = enabled
}

// SetStatusPrecision fixes the number of digits after the decimal point of
// the progress line, up to 5.
func SetStatusPrecision(digits int) {
	setMu.Lock()
	defer setMu.Unlock()
	settings.StatusPrec = digits
}

// SetBackupFile points checkpointing at path. An empty path disables it.
func SetBackupFile(path string) {
	setMu.Lock()
	defer setMu.Unlock()
	settings.BackupFile = path
}

// SetLogger routes diagnostic output. The default discards it.
func SetLogger(l zerolog.Logger) {
	setMu.Lock()
	defer setMu.Unlock()
	logger = l
}

// SetAlpha fixes the Deleglise-Rivat tuning factor y = alpha * x^(1/3).
// alpha <= 0 restores the automatic choice.
func SetAlpha(alpha float64) {
	setMu.Lock()
	defer setMu.Unlock()
	settings.Alpha = alpha
}

// SetAlphaY fixes the Gourdon tuning factor y = alpha_y * x^(1/3).
// alpha_y <= 0 restores the automatic choice.
func SetAlphaY(alpha float64) {
	setMu.Lock()
	defer setMu.Unlock()
	settings.AlphaY = alpha
}

// SetAlphaZ fixes the Gourdon tuning factor z = alpha_z * y.
// alpha_z <= 0 restores the automatic choice.
func SetAlphaZ(alpha float64) {
	setMu.Lock()
	defer setMu.Unlock()
	settings.AlphaZ = alpha
}

// engine bundles the per-computation plumbing so the kernels do not reach
// into package globals.
type engine struct {
	threads int
	alpha   float64
	alphaY  float64
	alphaZ  float64
	st      *status.Status
	bk      *backup.Manager
	log     zerolog.Logger
}

func newEngine() *engine {
	setMu.Lock()
	s := settings
	l := logger
	setMu.Unlock()

	return &engine{
		threads: s.Threads,
		alpha:   s.Alpha,
		alphaY:  s.AlphaY,
		alphaZ:  s.AlphaZ,
		st:      status.New(s.Status, s.StatusPrec),
		bk:      backup.NewManager(s.BackupFile, l),
		log:     l,
	}
}

func checkX(x int64) error {
	if x > numeric.MaxX {
		return fmt.Errorf("%w: %d > %d", ErrTooLarge, x, numeric.MaxX)
	}
	return nil
}

// Pi returns the number of primes <= x.
func Pi(x int64) (int64, error) {
	if err := checkX(x); err != nil {
		return 0, err
	}
	if x < piSimpleLimit {
		return piSimple(x), nil
	}
	return PiGourdon(x)
}
