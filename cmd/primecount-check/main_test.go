package main

import (
	"testing"

	"primecount.lopezb.com/internal/backup"
)

func TestCheckEntry(t *testing.T) {
	good := backup.Entry{X: 1000, Low: 500, Sum: "12345", Percent: 50, Seconds: 1.5}

	tests := []struct {
		name  string
		entry backup.Entry
		valid bool
	}{
		{"valid", good, true},
		{"finished", backup.Entry{X: 10, Low: 10, Sum: "0", Percent: 100}, true},
		{"bad sum", backup.Entry{X: 10, Sum: "not a number"}, false},
		{"empty sum", backup.Entry{X: 10}, false},
		{"x zero", backup.Entry{X: 0, Sum: "0"}, false},
		{"x too large", backup.Entry{X: 2_000_000_000_000_000_000, Sum: "0"}, false},
		{"percent over 100", backup.Entry{X: 10, Sum: "0", Percent: 101}, false},
		{"negative percent", backup.Entry{X: 10, Sum: "0", Percent: -1}, false},
		{"negative seconds", backup.Entry{X: 10, Sum: "0", Seconds: -1}, false},
		{"negative low", backup.Entry{X: 10, Low: -1, Sum: "0"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := checkEntry(tt.entry)
			if tt.valid && msg != "" {
				t.Errorf("checkEntry() = %q, want valid", msg)
			}
			if !tt.valid && msg == "" {
				t.Error("checkEntry() accepted an invalid entry")
			}
		})
	}
}
