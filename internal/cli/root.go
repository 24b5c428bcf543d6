package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/digilab/internal/config"
	"github.com/roach88/digilab/internal/logs"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string
	Session    string

	// Config and Logger are set before any subcommand runs.
	Config config.Config
	Logger *logs.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the digilab CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "digilab",
		Short: "digilab - number systems for digital electronics",
		Long: `Work through number-system exercises from digital electronics: base
conversion, complements, BCD, Gray code, parity, checksums and ASCII.

Every calculation is an operation run by the engine. With --db set, each
invocation and its completion are journaled so a session can be traced
and replayed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.Logger.Close()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to CUE config (default digilab.cue if present)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite journal (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Session, "session", "", "session token to resume or inspect")

	for _, sub := range calcCommands(opts) {
		cmd.AddCommand(sub)
	}
	cmd.AddCommand(NewInvokeCommand(opts))
	cmd.AddCommand(NewOpsCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// Execute runs the root command and returns the process exit code.
// Errors not already reported by a command are printed to stderr.
func Execute(ctx context.Context, args []string) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if !isReported(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return GetExitCode(err)
}

// setup loads configuration and builds the logger. Flags win over the
// config file.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Resolve(o.ConfigPath))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.Config = cfg
	if o.Database == "" {
		o.Database = cfg.Database
	}

	level := cfg.Log.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	logger, err := logs.New(logs.Options{
		Writer:  cmd.ErrOrStderr(),
		Level:   level,
		File:    cfg.Log.File,
		Journal: cfg.Log.Journal,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create logger", err)
	}
	o.Logger = logger
	return nil
}

// logger returns the configured logger, or a discard logger when a
// subcommand runs without the root's setup.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
