package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/gonkalabs/decomment/internal/config"
	"github.com/gonkalabs/decomment/internal/engine"
	"github.com/gonkalabs/decomment/internal/profile"
	"github.com/gonkalabs/decomment/internal/report"
	"github.com/gonkalabs/decomment/internal/runner"
	"github.com/gonkalabs/decomment/internal/sanitize"
	"github.com/gonkalabs/decomment/internal/walk"
	"github.com/gonkalabs/decomment/internal/whitespace"
)

// flags holds the command line. Only flags the user set override the
// config file.
type flags struct {
	configFile     string
	dryRun         bool
	noWhitespace   bool
	collapse       int
	keepDirectives []string
	exclude        []string
	excludeRegex   []string
	workers        int
	summary        bool
	reportJSON     string
	logLevel       string
	logFile        string
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "decomment <target>",
		Short:         "Remove comments from source files without moving code",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStrip(cmd, f, args[0])
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "YAML config file (default: <target dir>/"+config.FileName+")")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&f.logFile, "log-file", "", "write logs to a rotated file instead of stderr")
	pf.StringArrayVar(&f.keepDirectives, "keep-directive", nil, "regex for comments to keep (repeatable)")

	fl := cmd.Flags()
	fl.BoolVar(&f.dryRun, "dry-run", false, "do not write changes")
	fl.BoolVar(&f.noWhitespace, "no-whitespace", false, "do not trim trailing spaces or collapse blank lines")
	fl.IntVar(&f.collapse, "collapse-blank-lines", 2, "max consecutive blank lines; -1 disables")
	fl.StringArrayVar(&f.exclude, "exclude", nil, "glob matched against the relative path (repeatable)")
	fl.StringArrayVar(&f.excludeRegex, "exclude-regex", nil, "regex searched in the relative path (repeatable)")
	fl.IntVar(&f.workers, "workers", 0, "files processed in parallel (default: number of CPUs)")
	fl.BoolVar(&f.summary, "summary", false, "print a per-profile summary table")
	fl.StringVar(&f.reportJSON, "report-json", "", "write a JSON report to this file")

	cmd.AddCommand(newServeCmd(f), newProfilesCmd())
	return cmd
}

// loadConfig applies the config file and the flags the user set on top of
// the environment defaults.
func loadConfig(cmd *cobra.Command, f *flags, dir string) (config.Cfg, error) {
	cfg, err := config.Load(f.configFile, dir)
	if err != nil {
		return config.Cfg{}, err
	}

	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	cfg.KeepDirectives = append(cfg.KeepDirectives, f.keepDirectives...)
	cfg.Exclude = append(cfg.Exclude, f.exclude...)
	cfg.ExcludeRegex = append(cfg.ExcludeRegex, f.excludeRegex...)
	if changed("no-whitespace") {
		cfg.NoWhitespace = f.noWhitespace
	}
	if changed("collapse-blank-lines") {
		cfg.CollapseBlankLines = f.collapse
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("log-file") {
		cfg.LogFile = f.logFile
	}
	return cfg, nil
}

// buildEngine compiles every user pattern up front. All bad patterns are
// reported together before any file is touched.
func buildEngine(cfg config.Cfg) (*engine.Engine, engine.Options, *walk.Matcher, error) {
	var errs *multierror.Error
	if err := cfg.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	keep, err := sanitize.CompileKeep(cfg.KeepDirectives)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	matcher, err := walk.NewMatcher(cfg.Excludes(), cfg.ExcludeRegex)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, engine.Options{}, nil, err
	}

	opts := engine.Options{
		Keep:            keep,
		Python:          cfg.Python,
		PHP:             cfg.PHP,
		DelegateTimeout: cfg.DelegateTimeout,
		MatchTimeout:    cfg.MatchTimeout,
		ChunkLines:      cfg.ChunkLines,
	}
	eng, err := engine.New(profile.Default(), opts)
	if err != nil {
		return nil, engine.Options{}, nil, err
	}
	return eng, opts, matcher, nil
}

func runStrip(cmd *cobra.Command, f *flags, target string) error {
	info, err := os.Stat(target)
	if err != nil || (!info.IsDir() && !info.Mode().IsRegular()) {
		slog.Debug("invalid target", "target", target, "err", err)
		return &exitError{code: 2, err: walk.ErrInvalidTarget, msg: "Invalid target"}
	}
	dir := target
	if !info.IsDir() {
		dir = filepath.Dir(target)
	}

	cfg, err := loadConfig(cmd, f, dir)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	closeLog, err := setupLogging(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	defer closeLog()

	eng, _, matcher, err := buildEngine(cfg)
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	files, err := walk.Files(ctx, target, matcher, eng.Supported)
	if errors.Is(err, context.Canceled) {
		return &exitError{code: 130, err: err}
	}
	if err != nil {
		return err
	}

	rep, err := report.New(f.dryRun, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	slog.Debug("run started", "run_id", rep.RunID, "target", target, "files", len(files),
		"config", cfg.ConfigFile, "workers", cfg.Workers, "dry_run", f.dryRun)

	r := runner.New(eng, runner.Options{
		DryRun: f.dryRun,
		Whitespace: whitespace.Options{
			MaxBlankLines: cfg.CollapseBlankLines,
			Off:           cfg.NoWhitespace,
		},
		Workers: cfg.Workers,
	}, rep)
	runErr := r.Run(ctx, files)

	rep.Done()
	if f.summary {
		rep.Summary(cmd.OutOrStdout())
	}
	if f.reportJSON != "" {
		if err := rep.WriteJSON(f.reportJSON); err != nil {
			return err
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return &exitError{code: 130, err: runErr}
	}
	return runErr
}
