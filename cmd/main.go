package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wp-ansible/purelog/internal/filereader"
	"github.com/wp-ansible/purelog/internal/filesystem"
	"github.com/wp-ansible/purelog/internal/filterconfig"
	"github.com/wp-ansible/purelog/internal/linefilter"
	"github.com/wp-ansible/purelog/internal/logging"
	"github.com/wp-ansible/purelog/internal/reporter/textsummary"
)

type options struct {
	configPath string
	source     string
	dest       string
	marker     string
	encoding   string
	verbosity  string
	atomic     bool
	counts     bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "purelog [flags]",
		Short: "Remove log lines containing a marker",
		Long: `purelog copies a log file to a new file, leaving out every line that contains
a literal marker string. Surviving lines keep their order and their exact bytes.

Without flags it cleans error.log of WP_MEMORY_LIMIT warnings into error_cleaned.log.
Options may also come from a YAML file (--config); flags given explicitly win.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML file with source, dest, marker, atomic, encoding, verbosity and show_counts")
	flags.StringVar(&opts.source, "source", filterconfig.DefaultSource, "Log file to read")
	flags.StringVar(&opts.dest, "dest", filterconfig.DefaultDest, "File to write the remaining lines to (created or overwritten)")
	flags.StringVar(&opts.marker, "marker", filterconfig.DefaultMarker, "Literal text; lines containing it are removed")
	flags.StringVar(&opts.encoding, "encoding", "", "Source charset used for matching, e.g. latin1 or windows-1252 (default: raw bytes)")
	flags.StringVar(&opts.verbosity, "verbosity", logging.Info.String(), "Logging verbosity level ("+strings.Join(logging.LevelNames, ", ")+")")
	flags.BoolVar(&opts.atomic, "atomic", false, "Write to a temporary file and replace dest only on success")
	flags.BoolVar(&opts.counts, "counts", false, "Also print how many lines were read, kept and removed")

	return cmd
}

// resolveConfig layers explicitly set flags over the config file (or the
// defaults when no file is given).
func resolveConfig(cmd *cobra.Command, opts *options) (*filterconfig.FilterConfiguration, error) {
	cfg := filterconfig.Default()
	if opts.configPath != "" {
		loaded, err := filterconfig.LoadFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.SrcPath = opts.source
	}
	if flags.Changed("dest") {
		cfg.DstPath = opts.dest
	}
	if flags.Changed("marker") {
		cfg.MarkerText = opts.marker
	}
	if flags.Changed("encoding") {
		cfg.EncodingLabel = opts.encoding
	}
	if flags.Changed("atomic") {
		cfg.AtomicWrite = opts.atomic
	}
	if flags.Changed("counts") {
		cfg.CountsEnabled = opts.counts
	}
	if flags.Changed("verbosity") {
		level, err := logging.ParseVerbosity(opts.verbosity)
		if err != nil {
			return nil, err
		}
		cfg.VLevel = level
	}
	return cfg, nil
}

func run(cmd *cobra.Command, opts *options) error {
	start := time.Now()

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.VerbosityLevel(), cmd.ErrOrStderr())
	defer logger.Sync() //nolint:errcheck

	fsys := filesystem.DefaultFS{}
	if err := cfg.Validate(fsys); err != nil {
		return err
	}

	counts, err := linefilter.NewLineFilter(fsys, logger).FilterFile(cfg)
	if err != nil {
		return err
	}

	report := textsummary.NewTextReportBuilder(cmd.OutOrStdout())
	if err := report.WriteConfirmation(cfg.Marker(), cfg.DestPath()); err != nil {
		return err
	}
	if cfg.ShowCounts() {
		if err := report.WriteCounts(counts); err != nil {
			return err
		}
	}

	if ce := logger.Check(zap.DebugLevel, "destination written"); ce != nil {
		if n, err := filereader.CountLinesInFile(cfg.DestPath()); err == nil {
			ce.Write(zap.String("dest", cfg.DestPath()), zap.Int("lines", n))
		}
	}
	logger.Debug("run finished", zap.Duration("elapsed", time.Since(start)))
	return nil
}
