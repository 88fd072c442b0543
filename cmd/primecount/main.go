// primecount is the command line front end of the counting engine.
//
// The positional argument is an integer expression; flags pick the quantity
// and the algorithm:
//
//	primecount 1e14                  pi(10^14), fastest algorithm
//	primecount 1e14 --lmo --time     pi(10^14) via Lagarias-Miller-Odlyzko
//	primecount 1e9 --nth-prime       the 10^9 th prime
//	primecount 1e10 1000 --phi       phi(10^10, 1000)
//	primecount 1e16 -s -b state.json checkpoint to state.json, show progress
//
// Expressions understand + - * / % ^ ( ) and scientific notation, so
// 2^32-1, 10^9+7 and 1e15 all work. Exit code 0 on success, 1 on a bad
// option, a bad expression or a failed self test.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	primecount "primecount.lopezb.com"
	"primecount.lopezb.com/internal/expr"
)

const version = "1.0.0"

// defaultBackupFile is used when --resume is given without a path.
const defaultBackupFile = "primecount.backup"

type options struct {
	legendre       bool
	meissel        bool
	lehmer         bool
	lmo            bool
	delegliseRivat bool
	gourdon        bool
	primesieve     bool
	nthPrime       bool
	phi            bool
	li             bool
	liInverse      bool
	ri             bool
	riInverse      bool
	ac             bool
	b              bool
	d              bool
	phi0           bool
	sigma          bool

	threads   int
	alpha     float64
	alphaY    float64
	alphaZ    float64
	status    string
	timeRun   bool
	test      bool
	version   bool
	backup    string
	resume    string
	number  string
	verbose bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var o options
	fs := pflag.NewFlagSet("primecount", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr, fs) }

	fs.BoolVar(&o.legendre, "legendre", false, "count primes with Legendre's formula")
	fs.BoolVar(&o.meissel, "meissel", false, "count primes with Meissel's formula")
	fs.BoolVar(&o.lehmer, "lehmer", false, "count primes with Lehmer's formula")
	fs.BoolVarP(&o.lmo, "lmo", "l", false, "count primes with Lagarias-Miller-Odlyzko")
	fs.BoolVarP(&o.delegliseRivat, "deleglise-rivat", "d", false, "count primes with Deleglise-Rivat")
	fs.BoolVarP(&o.gourdon, "gourdon", "g", false, "count primes with Gourdon's algorithm")
	fs.BoolVar(&o.primesieve, "primesieve", false, "count primes by plain sieving")
	fs.BoolVarP(&o.nthPrime, "nth-prime", "n", false, "calculate the nth prime")
	fs.BoolVarP(&o.phi, "phi", "p", false, "phi(x, a): numbers <= x not divisible by any of the first a primes")
	fs.BoolVar(&o.li, "Li", false, "approximate pi(x) with the logarithmic integral")
	fs.BoolVar(&o.liInverse, "Li-inverse", false, "approximate the nth prime with Li^-1(x)")
	fs.BoolVar(&o.ri, "Ri", false, "approximate pi(x) with the Riemann R function")
	fs.BoolVar(&o.riInverse, "Ri-inverse", false, "approximate the nth prime with Ri^-1(x)")
	fs.BoolVar(&o.ac, "AC", false, "compute the A + C term of Gourdon's algorithm")
	fs.BoolVarP(&o.b, "B", "B", false, "compute the B term of Gourdon's algorithm")
	fs.BoolVarP(&o.d, "D", "D", false, "compute the D term of Gourdon's algorithm")
	fs.BoolVar(&o.phi0, "Phi0", false, "compute the Phi0 term of Gourdon's algorithm")
	fs.BoolVar(&o.sigma, "Sigma", false, "compute the Sigma term of Gourdon's algorithm")

	fs.IntVarP(&o.threads, "threads", "t", 0, "number of threads, 0 = all CPUs")
	fs.Float64VarP(&o.alpha, "alpha", "a", 0, "Deleglise-Rivat tuning factor, y = alpha * x^(1/3)")
	fs.Float64Var(&o.alphaY, "alpha-y", 0, "Gourdon tuning factor, y = alpha_y * x^(1/3)")
	fs.Float64Var(&o.alphaZ, "alpha-z", 0, "Gourdon tuning factor, z = alpha_z * y")
	fs.StringVarP(&o.status, "status", "s", "", "print the progress line, optionally with PREC digits")
	fs.Lookup("status").NoOptDefVal = "0"
	fs.BoolVar(&o.timeRun, "time", false, "print the elapsed seconds")
	fs.BoolVar(&o.test, "test", false, "run the self tests and exit")
	fs.BoolVarP(&o.version, "version", "v", false, "print the version and exit")
	fs.StringVarP(&o.backup, "backup", "b", "", "checkpoint the computation to FILE")
	fs.StringVarP(&o.resume, "resume", "r", "", "resume the computation from FILE")
	fs.Lookup("resume").NoOptDefVal = defaultBackupFile
	fs.StringVar(&o.number, "number", "", "the number x, as an alternative to the positional argument")
	fs.BoolVar(&o.verbose, "verbose", false, "print the per-formula log on stderr")

	// pflag binds an optional value only in the -r=FILE form. The argument
	// after a bare -r/--resume is taken as FILE when it is not a number.
	joined := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if (a == "-r" || a == "--resume") && i+1 < len(args) && args[i+1] != "" && args[i+1][0] != '-' {
			if _, err := expr.EvalStrict(args[i+1]); err != nil {
				a += "=" + args[i+1]
				i++
			}
		}
		joined = append(joined, a)
	}
	args = joined

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintf(stderr, "primecount: %v\n", err)
		return 1
	}

	if o.version {
		fmt.Fprintf(stdout, "primecount %s, built with %s\n", version, goVersion())
		return 0
	}

	if err := applySettings(&o, stderr); err != nil {
		fmt.Fprintf(stderr, "primecount: %v\n", err)
		return 1
	}

	if o.test {
		return selfTest(stdout)
	}

	operands := fs.Args()
	if o.number != "" {
		operands = append([]string{o.number}, operands...)
	}
	if len(operands) == 0 {
		usage(stderr, fs)
		return 1
	}

	nums := make([]int64, len(operands))
	for i, s := range operands {
		v, err := expr.EvalStrict(s)
		if err != nil {
			fmt.Fprintf(stderr, "primecount: %v\n", err)
			return 1
		}
		nums[i] = v
	}

	start := time.Now()
	result, err := compute(&o, nums)
	if err != nil {
		fmt.Fprintf(stderr, "primecount: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, result)
	if o.timeRun {
		fmt.Fprintf(stdout, "Seconds: %.3f\n", time.Since(start).Seconds())
	}
	return 0
}

// applySettings pushes the flag values into the library configuration.
func applySettings(o *options, stderr io.Writer) error {
	primecount.SetNumThreads(o.threads)
	if o.alpha > 0 {
		primecount.SetAlpha(o.alpha)
	}
	if o.alphaY > 0 {
		primecount.SetAlphaY(o.alphaY)
	}
	if o.alphaZ > 0 {
		primecount.SetAlphaZ(o.alphaZ)
	}
	if o.status != "" {
		prec, err := strconv.Atoi(o.status)
		if err != nil {
			return fmt.Errorf("invalid --status precision %q", o.status)
		}
		primecount.SetStatus(true)
		primecount.SetStatusPrecision(prec)
	}

	switch {
	case o.backup != "":
		primecount.SetBackupFile(o.backup)
	case o.resume != "":
		primecount.SetBackupFile(o.resume)
	}

	if o.verbose || o.status != "" {
		w := zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly}
		primecount.SetLogger(zerolog.New(w).With().Timestamp().Logger())
	}
	return nil
}

// compute dispatches to the selected quantity. Exactly the first matching
// selector wins; with none set the fastest pi algorithm is used.
func compute(o *options, nums []int64) (int64, error) {
	x := nums[0]

	if o.phi {
		if len(nums) < 2 {
			return 0, fmt.Errorf("--phi needs two operands: x and a")
		}
		return primecount.Phi(x, nums[1])
	}
	if o.b && len(nums) >= 2 {
		// B takes an explicit y when given, the Gourdon default otherwise.
		return primecount.B(x, nums[1])
	}

	switch {
	case o.nthPrime:
		return primecount.NthPrime(x)
	case o.legendre:
		return primecount.PiLegendre(x)
	case o.meissel:
		return primecount.PiMeissel(x)
	case o.lehmer:
		return primecount.PiLehmer(x)
	case o.lmo:
		return primecount.PiLMO(x)
	case o.delegliseRivat:
		return primecount.PiDelegliseRivat(x)
	case o.gourdon:
		return primecount.PiGourdon(x)
	case o.primesieve:
		return primecount.PiPrimesieve(x)
	case o.li:
		return primecount.Li(x), nil
	case o.liInverse:
		return primecount.LiInverse(x), nil
	case o.ri:
		return primecount.Ri(x), nil
	case o.riInverse:
		return primecount.RiInverse(x), nil
	case o.ac:
		return primecount.AC(x)
	case o.b:
		return primecount.GourdonB(x)
	case o.d:
		return primecount.D(x)
	case o.phi0:
		return primecount.Phi0(x)
	case o.sigma:
		return primecount.Sigma(x)
	default:
		return primecount.Pi(x)
	}
}

func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, `Usage: primecount x [options]
Count the primes <= x, with x <= 10^18.

x may be an integer expression: 1e15, 2^32, 10^9+7.

Options:
%s`, fs.FlagUsages())
}
