package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

// FileName is the config file looked up in the target directory.
const FileName = ".decomment.yaml"

// DefaultExcludes are the globs skipped on every run.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	"vendor/**",
	"dist/**",
	"build/**",
	"public/build/**",
	"public/**",
	"coverage/**",
	".next/**",
	".nuxt/**",
	".cache/**",
	"storage/**",
	"bootstrap/cache/**",
	"resources/js/actions/**",
	"venv/**",
	".venv/**",
	"*.min.js",
	"**/*.min.js",
	"*.min.css",
	"**/*.min.css",
	".idea/**",
	".vscode/**",
	"tests/**",
}

// Cfg holds all runtime configuration. It is built once at start and passed
// by value; nothing mutates it afterwards.
type Cfg struct {
	// Comment handling
	KeepDirectives []string // regexes; a matching comment is never removed

	// Traversal
	Exclude      []string // globs, on top of DefaultExcludes
	ExcludeRegex []string // searched anywhere in the relative path

	// Whitespace post-pass
	CollapseBlankLines int  // max consecutive blank lines; negative disables
	NoWhitespace       bool // only ensure a trailing newline

	// External tokenizers
	Python          string        // DECOMMENT_PYTHON=python3
	PHP             string        // DECOMMENT_PHP=php
	DelegateTimeout time.Duration // DECOMMENT_DELEGATE_TIMEOUT=0 (no limit)

	// Regex engine
	MatchTimeout time.Duration // DECOMMENT_MATCH_TIMEOUT=5s
	ChunkLines   int

	Workers int // DECOMMENT_WORKERS, defaults to NumCPU

	// Logging
	LogLevel string // debug|info|warn|error
	LogFile  string // rotated by lumberjack when set

	// Server
	ListenAddr string // e.g. :8080

	// ConfigFile is the YAML file that was applied, if any.
	ConfigFile string
}

// Defaults returns the built-in configuration.
func Defaults() Cfg {
	return Cfg{
		CollapseBlankLines: 2,
		Python:             "python3",
		PHP:                "php",
		MatchTimeout:       5 * time.Second,
		ChunkLines:         2000,
		Workers:            runtime.NumCPU(),
		LogLevel:           "info",
		ListenAddr:         ":8080",
	}
}

// Load reads .env (if present), then environment variables, then the YAML
// config file. path wins over DECOMMENT_CONFIG; with neither set,
// .decomment.yaml in dir is used when it exists.
func Load(path, dir string) (Cfg, error) {
	// Best-effort: load .env from current directory
	_ = godotenv.Load()

	cfg := Defaults()
	if err := applyEnv(&cfg); err != nil {
		return Cfg{}, err
	}

	if path == "" {
		path = strings.TrimSpace(os.Getenv("DECOMMENT_CONFIG"))
	}
	if path == "" && dir != "" {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Cfg{}, err
		}
		cfg.ConfigFile = path
	}
	return cfg, nil
}

func applyEnv(cfg *Cfg) error {
	var errs *multierror.Error

	if v := strings.TrimSpace(os.Getenv("DECOMMENT_PYTHON")); v != "" {
		cfg.Python = v
	}
	if v := strings.TrimSpace(os.Getenv("DECOMMENT_PHP")); v != "" {
		cfg.PHP = v
	}
	if v := strings.TrimSpace(os.Getenv("DECOMMENT_DELEGATE_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("DECOMMENT_DELEGATE_TIMEOUT: %w", err))
		}
		cfg.DelegateTimeout = d
	}
	if v := strings.TrimSpace(os.Getenv("DECOMMENT_MATCH_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("DECOMMENT_MATCH_TIMEOUT: %w", err))
		}
		cfg.MatchTimeout = d
	}
	if v := strings.TrimSpace(os.Getenv("DECOMMENT_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("DECOMMENT_WORKERS: %w", err))
		}
		cfg.Workers = n
	}
	if v := strings.TrimSpace(os.Getenv("DECOMMENT_LOG_LEVEL")); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("DECOMMENT_LOG_FILE")); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		cfg.ListenAddr = ":" + v
	}
	return errs.ErrorOrNil()
}

// Validate checks value ranges. Pattern syntax is checked by the packages
// that compile the patterns.
func (c Cfg) Validate() error {
	var errs *multierror.Error
	if c.Workers < 1 {
		errs = multierror.Append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.MatchTimeout <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("match timeout must be positive, got %s", c.MatchTimeout))
	}
	if c.DelegateTimeout < 0 {
		errs = multierror.Append(errs, fmt.Errorf("delegate timeout must not be negative, got %s", c.DelegateTimeout))
	}
	if c.ChunkLines < 1 {
		errs = multierror.Append(errs, fmt.Errorf("chunk lines must be at least 1, got %d", c.ChunkLines))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = multierror.Append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	return errs.ErrorOrNil()
}

// Excludes returns DefaultExcludes followed by the configured globs.
func (c Cfg) Excludes() []string {
	out := make([]string, 0, len(DefaultExcludes)+len(c.Exclude))
	out = append(out, DefaultExcludes...)
	return append(out, c.Exclude...)
}
