// Package backup persists the partial state of long running computations so
// an interrupted run can resume instead of starting over. Computations at
// the 10^17 scale run for hours; losing a nearly finished sieve pass to a
// reboot is expensive enough to justify a little bookkeeping.
//
// File format
// ===========
//
// The backup file is a single JSON document:
//
//	{
//	  "version": 1,
//	  "checksum": "c4ceb7b6078603f3",
//	  "entries": {
//	    "P2": { "x": ..., "y": ..., "low": ..., "sum": "...", ... }
//	  }
//	}
//
// One entry per formula, keyed by the formula name. An entry records the
// input parameters, the resume cursor (low plus the balancer geometry) and
// the partial sum. Sums are stored as decimal strings, not JSON numbers:
// they exceed 2^53 routinely and must survive tools that round JSON numbers
// through float64.
//
// The checksum is the xxhash64 of the serialized entries object. A file
// that fails the check is reported as an error rather than silently
// ignored: resuming from corrupt state would produce a wrong count, which
// is the one thing this program must never do.
//
// Writing is crash-safe: the document goes to a temporary file first and is
// renamed over the previous one, so a crash mid-write leaves the old backup
// intact. Write failures are logged and otherwise ignored; the computation
// is worth more than the checkpoint. Read failures on resume surface to the
// caller.
package backup

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"github.com/sugawarayuuta/sonnet"
)

// ErrCorrupt is returned when the backup file exists but fails validation.
var ErrCorrupt = errors.New("backup: corrupt backup file")

const (
	formatVersion = 1

	// checkpointInterval rate-limits Checkpoint writes.
	checkpointInterval = 60 * time.Second
)

// Entry is the saved state of one formula.
type Entry struct {
	X          int64   `json:"x"`
	Y          int64   `json:"y,omitempty"`
	Z          int64   `json:"z,omitempty"`
	K          int64   `json:"k,omitempty"`
	Low        int64   `json:"low"`
	PiLow      int64   `json:"pi_low,omitempty"`
	Segments   int64   `json:"segments,omitempty"`
	SegSize    int64   `json:"segment_size,omitempty"`
	ThreadDist int64   `json:"thread_dist,omitempty"`
	Phi        []int64 `json:"phi,omitempty"`
	Sum        string  `json:"sum"`
	Percent    float64 `json:"percent"`
	Seconds    float64 `json:"seconds"`
}

// SumInt64 parses the partial sum.
func (e Entry) SumInt64() (int64, error) {
	v, err := strconv.ParseInt(e.Sum, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad sum %q", ErrCorrupt, e.Sum)
	}
	return v, nil
}

// FormatSum renders a partial sum for storage.
func FormatSum(sum int64) string {
	return strconv.FormatInt(sum, 10)
}

type document struct {
	Version  int              `json:"version"`
	Checksum string           `json:"checksum"`
	Entries  map[string]Entry `json:"entries"`
}

// Manager serializes access to one backup file. A Manager with an empty
// path is valid and does nothing.
type Manager struct {
	path string
	log  zerolog.Logger

	mu        sync.Mutex
	entries   map[string]Entry
	lastWrite time.Time
}

// NewManager returns a manager for the given file. An empty path disables
// all persistence.
func NewManager(path string, log zerolog.Logger) *Manager {
	return &Manager{
		path:    path,
		log:     log,
		entries: make(map[string]Entry),
	}
}

// Enabled reports whether a backup file is configured.
func (m *Manager) Enabled() bool {
	return m.path != ""
}

// Resume loads the entry for key if the backup file holds one matching the
// given parameters. A missing file, missing key or parameter mismatch is a
// normal non-resume; a present but invalid file is an error.
func (m *Manager) Resume(key string, x, y, z, k int64) (Entry, bool, error) {
	if !m.Enabled() {
		return Entry{}, false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	m.entries = doc.Entries

	e, ok := doc.Entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	if e.X != x || e.Y != y || e.Z != z || e.K != k {
		m.log.Info().
			Str("formula", key).
			Int64("x", e.X).
			Msg("backup entry has different parameters, ignoring")
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Checkpoint saves the entry, rate-limited to one write per interval.
// Failures are logged and swallowed.
func (m *Manager) Checkpoint(key string, e Entry) {
	m.save(key, e, false)
}

// Finish saves the completed entry immediately.
func (m *Manager) Finish(key string, e Entry) {
	m.save(key, e, true)
}

// Remove drops the entry for key, typically after its result has been
// consumed by the enclosing computation.
func (m *Manager) Remove(key string) {
	if !m.Enabled() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	if err := m.write(); err != nil {
		m.log.Warn().Err(err).Str("formula", key).Msg("backup write failed")
	}
}

func (m *Manager) save(key string, e Entry, force bool) {
	if !m.Enabled() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = e
	if !force && time.Since(m.lastWrite) < checkpointInterval {
		return
	}
	if err := m.write(); err != nil {
		m.log.Warn().Err(err).Str("formula", key).Msg("backup write failed")
		return
	}
	m.lastWrite = time.Now()
}

func (m *Manager) read() (document, error) {
	return readFile(m.path)
}

// Validate reads the backup file at path and returns its entries after
// checking the format version and the checksum.
func Validate(path string) (map[string]Entry, error) {
	doc, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

func readFile(path string) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document{}, err
	}

	var doc document
	if err := sonnet.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Version != formatVersion {
		return document{}, fmt.Errorf("%w: unsupported version %d",
			ErrCorrupt, doc.Version)
	}

	sum, err := checksum(doc.Entries)
	if err != nil {
		return document{}, err
	}
	if sum != doc.Checksum {
		return document{}, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return doc, nil
}

func (m *Manager) write() error {
	sum, err := checksum(m.entries)
	if err != nil {
		return err
	}
	doc := document{
		Version:  formatVersion,
		Checksum: sum,
		Entries:  m.entries,
	}

	data, err := sonnet.Marshal(doc)
	if err != nil {
		return err
	}

	// Temp file plus rename keeps the previous backup intact on a crash.
	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".backup-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmp.Name())
		if werr != nil {
			return werr
		}
		return cerr
	}
	return os.Rename(tmp.Name(), m.path)
}

// checksum hashes the canonical serialization of the entries object.
func checksum(entries map[string]Entry) (string, error) {
	data, err := sonnet.Marshal(entries)
	if err != nil {
		return "", err
	}
	h := xxhash.Sum64(data)
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b[:]), nil
}
