package status

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestDisabledPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	s := &Status{out: &buf, enabled: false}
	s.Update(50, 100)
	s.Done()
	if buf.Len() != 0 {
		t.Fatalf("disabled printer wrote %q", buf.String())
	}
}

func TestUpdateFormat(t *testing.T) {
	var buf bytes.Buffer
	s := &Status{out: &buf, enabled: true}

	s.Update(50, 100)
	if got := buf.String(); got != "\rStatus: 50%" {
		t.Fatalf("got %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	var buf bytes.Buffer
	s := &Status{out: &buf, enabled: true}

	s.Update(10, 100)
	s.Update(20, 100)
	if got := strings.Count(buf.String(), "Status:"); got != 1 {
		t.Fatalf("wrote %d updates inside the interval, want 1", got)
	}

	s.last = time.Now().Add(-time.Second)
	s.Update(30, 100)
	if got := strings.Count(buf.String(), "Status:"); got != 2 {
		t.Fatalf("wrote %d updates, want 2", got)
	}
}

func TestPercentNeverDecreases(t *testing.T) {
	var buf bytes.Buffer
	s := &Status{out: &buf, enabled: true}

	s.Update(80, 100)
	s.last = time.Time{}
	s.Update(10, 100)

	if strings.Contains(buf.String(), "10%") {
		t.Fatalf("percent went backwards: %q", buf.String())
	}
}

func TestCapBeforeDone(t *testing.T) {
	var buf bytes.Buffer
	s := &Status{out: &buf, enabled: true}

	s.UpdateSum(100, 100, 100, 100)
	if !strings.Contains(buf.String(), "95%") {
		t.Fatalf("expected cap at 95%%, got %q", buf.String())
	}

	s.Done()
	if !strings.Contains(buf.String(), "100%") {
		t.Fatalf("Done did not print 100%%: %q", buf.String())
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Fatalf("Done did not end the line: %q", buf.String())
	}
}

func TestPrecision(t *testing.T) {
	var buf bytes.Buffer
	s := &Status{out: &buf, enabled: true, precision: 2}

	s.Update(1, 3)
	if got := buf.String(); got != "\rStatus: 33.33%" {
		t.Fatalf("got %q", got)
	}
}

func TestClampPrecision(t *testing.T) {
	cases := map[int]int{-3: 0, 0: 0, 2: 2, 5: 5, 9: 5}
	for in, want := range cases {
		if got := clampPrecision(in); got != want {
			t.Errorf("clampPrecision(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestSkewedSumDominatesEarlySieve(t *testing.T) {
	var buf bytes.Buffer
	s := &Status{out: &buf, enabled: true}

	// Sieve barely started but half the sum is in: display follows the sum.
	s.UpdateSum(1, 1000, 50, 100)
	if !strings.Contains(buf.String(), "51%") {
		t.Fatalf("got %q, want the skewed sum ratio (51%%)", buf.String())
	}
}
