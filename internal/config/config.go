// Package config resolves the runtime settings of the counting engine.
//
// Every setting has a built-in default, can be overridden by an environment
// variable with the PRIMECOUNT_ prefix, and finally by an explicit command
// line flag. The environment layer exists for batch jobs: a scheduler can
// pin PRIMECOUNT_THREADS or point PRIMECOUNT_BACKUP_FILE at scratch storage
// without touching the invocation of every job in the queue.
//
//	PRIMECOUNT_THREADS          worker goroutines (0 = all CPUs)
//	PRIMECOUNT_ALPHA            tuning factor of the Deleglise-Rivat y
//	PRIMECOUNT_ALPHA_Y          tuning factor of the Gourdon y
//	PRIMECOUNT_ALPHA_Z          tuning factor of the Gourdon z
//	PRIMECOUNT_STATUS           print the progress line (bool)
//	PRIMECOUNT_STATUS_PRECISION digits after the decimal point of the line
//	PRIMECOUNT_BACKUP_FILE      checkpoint file path ("" disables)
//	PRIMECOUNT_LOG_LEVEL        zerolog level name (info, debug, ...)
package config

import (
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Settings carries the resolved configuration. Alpha values of 0 mean
// "pick automatically from x".
type Settings struct {
	Threads    int
	Alpha      float64
	AlphaY     float64
	AlphaZ     float64
	Status     bool
	StatusPrec int
	BackupFile string
	LogLevel   zerolog.Level
}

// Load resolves the settings from defaults and the environment.
func Load() Settings {
	v := viper.New()
	v.SetEnvPrefix("PRIMECOUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("threads", 0)
	v.SetDefault("alpha", 0.0)
	v.SetDefault("alpha_y", 0.0)
	v.SetDefault("alpha_z", 0.0)
	v.SetDefault("status", false)
	v.SetDefault("status_precision", 0)
	v.SetDefault("backup_file", "")
	v.SetDefault("log_level", "info")

	s := Settings{
		Threads:    v.GetInt("threads"),
		Alpha:      v.GetFloat64("alpha"),
		AlphaY:     v.GetFloat64("alpha_y"),
		AlphaZ:     v.GetFloat64("alpha_z"),
		Status:     v.GetBool("status"),
		StatusPrec: v.GetInt("status_precision"),
		BackupFile: v.GetString("backup_file"),
		LogLevel:   parseLevel(v.GetString("log_level")),
	}

	if s.Threads <= 0 {
		s.Threads = runtime.NumCPU()
	}
	return s
}

func parseLevel(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
