package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	primecount "primecount.lopezb.com"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)

	primecount.SetNumThreads(0)
	primecount.SetStatus(false)
	primecount.SetBackupFile("")
	primecount.SetAlpha(0)
	primecount.SetAlphaY(0)
	primecount.SetAlphaZ(0)

	return code, stdout.String(), stderr.String()
}

func TestRunPi(t *testing.T) {
	cases := map[string]string{
		"100":    "25",
		"1e6":    "78498",
		"10^6":   "78498",
		"2^10":   "172",
		"1000+24": "172",
	}
	for arg, want := range cases {
		code, out, errOut := runCLI(t, arg)
		if code != 0 {
			t.Fatalf("run(%q) = %d, stderr %q", arg, code, errOut)
		}
		if got := strings.TrimSpace(out); got != want {
			t.Errorf("run(%q) printed %q, want %q", arg, got, want)
		}
	}
}

func TestRunAlgorithmFlags(t *testing.T) {
	for _, flag := range []string{"--legendre", "--meissel", "--lehmer",
		"--lmo", "--deleglise-rivat", "--gourdon", "--primesieve"} {
		code, out, errOut := runCLI(t, "1e6", flag)
		if code != 0 {
			t.Fatalf("run(1e6 %s) = %d, stderr %q", flag, code, errOut)
		}
		if got := strings.TrimSpace(out); got != "78498" {
			t.Errorf("run(1e6 %s) printed %q, want 78498", flag, got)
		}
	}
}

func TestRunNthPrime(t *testing.T) {
	code, out, _ := runCLI(t, "1e6", "--nth-prime")
	if code != 0 || strings.TrimSpace(out) != "15485863" {
		t.Errorf("run(1e6 --nth-prime) = %d, %q", code, out)
	}
}

func TestRunPhi(t *testing.T) {
	code, out, _ := runCLI(t, "1000", "5", "--phi")
	if code != 0 || strings.TrimSpace(out) != "207" {
		t.Errorf("run(1000 5 --phi) = %d, %q, want 207", code, out)
	}

	code, _, errOut := runCLI(t, "1000", "--phi")
	if code != 1 {
		t.Errorf("run(1000 --phi) = %d, want 1 (missing operand)", code)
	}
	if !strings.Contains(errOut, "two operands") {
		t.Errorf("stderr %q does not name the missing operand", errOut)
	}
}

func TestRunGourdonTerms(t *testing.T) {
	// Phi0 + AC + D + Sigma - B must reproduce pi(x).
	const x = "2000000"
	terms := map[string]int64{}
	for _, flag := range []string{"--Phi0", "--AC", "-D", "--Sigma", "-B"} {
		code, out, errOut := runCLI(t, x, flag)
		if code != 0 {
			t.Fatalf("run(%s %s) = %d, stderr %q", x, flag, code, errOut)
		}
		var v int64
		if _, err := fmt.Sscan(out, &v); err != nil {
			t.Fatalf("run(%s %s) printed %q", x, flag, out)
		}
		terms[flag] = v
	}
	got := terms["--Phi0"] + terms["--AC"] + terms["-D"] + terms["--Sigma"] - terms["-B"]
	if got != 148933 {
		t.Errorf("recombined Gourdon terms = %d, want 148933", got)
	}
}

func TestRunApproximations(t *testing.T) {
	code, out, _ := runCLI(t, "1e6", "--Ri")
	if code != 0 || strings.TrimSpace(out) != "78527" {
		t.Errorf("run(1e6 --Ri) = %d, %q, want 78527", code, out)
	}
	code, out, _ = runCLI(t, "1e6", "--Li")
	if code != 0 || strings.TrimSpace(out) != "78626" {
		t.Errorf("run(1e6 --Li) = %d, %q, want 78626", code, out)
	}
}

func TestRunErrors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"--no-such-flag", "100"},
		{"10^^4"},
		{"abc"},
		{"1e19"},
		{"100", "--status=x"},
	} {
		code, _, errOut := runCLI(t, args...)
		if code != 1 {
			t.Errorf("run(%v) = %d, want 1 (stderr %q)", args, code, errOut)
		}
	}
}

func TestRunVersion(t *testing.T) {
	code, out, _ := runCLI(t, "--version")
	if code != 0 || !strings.Contains(out, version) {
		t.Errorf("run(--version) = %d, %q", code, out)
	}
}

func TestRunTime(t *testing.T) {
	code, out, _ := runCLI(t, "1e5", "--time")
	if code != 0 {
		t.Fatalf("run(1e5 --time) = %d", code)
	}
	if !strings.Contains(out, "Seconds:") {
		t.Errorf("run(1e5 --time) printed %q, no Seconds line", out)
	}
}

func TestRunBackup(t *testing.T) {
	path := t.TempDir() + "/state.json"
	code, out, errOut := runCLI(t, "2e6", "--deleglise-rivat", "-b", path)
	if code != 0 {
		t.Fatalf("run(-b) = %d, stderr %q", code, errOut)
	}
	want := strings.TrimSpace(out)

	code, out, errOut = runCLI(t, "2e6", "--deleglise-rivat", "-r", path)
	if code != 0 {
		t.Fatalf("run(-r) = %d, stderr %q", code, errOut)
	}
	if got := strings.TrimSpace(out); got != want {
		t.Errorf("resumed run printed %q, want %q", got, want)
	}
}

func TestSelfTest(t *testing.T) {
	var buf bytes.Buffer
	if code := selfTest(&buf); code != 0 {
		t.Fatalf("selfTest = %d, output:\n%s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "All tests passed") {
		t.Errorf("selfTest output %q lacks the pass banner", buf.String())
	}
}
