// Package config loads locknote settings from the environment and
// command-line flags.
//
// Priority, highest first: flags, LOCKNOTE_* environment variables, defaults.
// The password is deliberately not part of Config.
package config

import (
	"errors"
	"flag"
	"fmt"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

const envPrefix = "LOCKNOTE_"

const (
	BackendFile = "file"
	BackendBolt = "bolt"
)

var (
	ErrUnknownBackend  = errors.New("unknown storage backend")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Config holds the runtime settings shared by every command.
type Config struct {
	// Dir is the data directory holding the records and the index.
	// Env: LOCKNOTE_DIR
	Dir string `env:"DIR"`

	// Backend selects the record store: "file" (one .enc file per record)
	// or "bolt" (a single bbolt database).
	// Env: LOCKNOTE_BACKEND
	Backend string `env:"BACKEND"`

	// LogLevel is a zerolog level name.
	// Env: LOCKNOTE_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`

	// LogJSON switches diagnostics from console to JSON output.
	// Env: LOCKNOTE_LOG_JSON
	LogJSON bool `env:"LOG_JSON"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Dir:      "notes",
		Backend:  BackendFile,
		LogLevel: "warn",
	}
}

// Flags is the command-line layer of the configuration.
type Flags struct {
	Config
	fs *flag.FlagSet
}

// Bind registers the shared flags on fs. The returned Flags are filled in
// when fs is parsed.
func Bind(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Dir, "dir", "", "Data directory (env LOCKNOTE_DIR)")
	fs.StringVar(&f.Backend, "backend", "", "Storage backend: file or bolt (env LOCKNOTE_BACKEND)")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (env LOCKNOTE_LOG_LEVEL)")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Emit JSON logs (env LOCKNOTE_LOG_JSON)")
	return f
}

// isSet reports whether the named flag was given on the command line.
func (f *Flags) isSet(name string) bool {
	set := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

// Load merges flags over the environment over defaults and validates the
// result. flags may be nil.
func Load(flags *Flags) (*Config, error) {
	envCfg := Config{}
	if err := env.ParseWithOptions(&envCfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}

	cfg := Config{}
	if flags != nil {
		cfg = flags.Config
	}
	for _, src := range []Config{envCfg, Default()} {
		if err := mergo.Merge(&cfg, src); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	// Merge only fills zero values, so an explicit -log-json=false is
	// reapplied over the environment.
	if flags != nil && flags.isSet("log-json") {
		cfg.LogJSON = flags.LogJSON
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the backend and log level are recognised.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendBolt:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}
