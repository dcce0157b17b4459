package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"sweepdu/internal/config"
	"sweepdu/internal/services"
	"sweepdu/internal/state"
	"sweepdu/internal/ui"
)

// Execute runs the command line and returns the error that should end the
// process with a non-zero status.
func Execute(ctx context.Context, version string) error {
	base, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sweepdu: config warning: %v (using defaults)\n", err)
		base = config.DefaultConfig()
	}
	return NewRootCommand(version, base).ExecuteContext(ctx)
}

func NewRootCommand(version string, base config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "sweepdu [paths...]",
		Short: "Interactive disk usage analyzer",
		Long: heredoc.Doc(`
			sweepdu scans the given paths in parallel and opens an interactive
			browser of their sizes, largest first. Entries can be marked and
			deleted from the browser; totals update as entries go away.

			Without paths, every entry of the working directory is scanned.
			'sweepdu interactive' is the same browser; 'sweepdu aggregate'
			prints totals instead.
		`),
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	bindBrowser(root, base)
	root.AddCommand(newInteractiveCommand(base), newAggregateCommand(base))
	return root
}

func newInteractiveCommand(base config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "interactive [paths...]",
		Aliases: []string{"i"},
		Short:   "Browse the sizes of the given paths and delete entries",
		Args:    cobra.ArbitraryArgs,
	}
	bindBrowser(cmd, base)
	return cmd
}

// bindBrowser gives cmd the browser flags and makes it open the browser.
func bindBrowser(cmd *cobra.Command, base config.Config) {
	flags := config.BindFlags(cmd.Flags(), base)
	flags.BindBrowserFlags(cmd.Flags(), base)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.Resolve(base)
		if err != nil {
			return err
		}
		return runBrowser(cmd.Context(), cfg, args)
	}
}

func newAggregateCommand(base config.Config) *cobra.Command {
	var flags *config.Flags
	cmd := &cobra.Command{
		Use:     "aggregate [paths...]",
		Aliases: []string{"a"},
		Short:   "Print the total size of each path",
		Long: heredoc.Doc(`
			aggregate walks every path and prints its total size, smallest first,
			followed by the total of all paths. Nothing is kept in memory but the
			running sums.

			The exit status is 1 if any entry could not be read.
		`),
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.Resolve(base)
			if err != nil {
				return err
			}
			return runAggregate(cmd.Context(), cfg, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	flags = config.BindFlags(cmd.Flags(), base)
	flags.BindAggregateFlags(cmd.Flags(), base)
	return cmd
}

func runBrowser(ctx context.Context, cfg config.Config, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("the browser needs a terminal; use 'sweepdu aggregate' for plain output")
	}
	logger, closeLog, err := newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	roots, err := resolveRoots(args)
	if err != nil {
		return err
	}
	request := services.ScanRequest{
		Roots:                roots,
		SizeMetric:           cfg.SizeMetric,
		FollowSymlinkedFiles: cfg.FollowSymlinkedFiles,
		CountHardLinks:       cfg.CountHardLinks,
		Threads:              cfg.Threads,
		EmptyDirs:            cfg.EmptyDirPolicy(),
	}
	var actions services.Actions = services.NewFSActions(logger, cfg.SafeMode)
	if cfg.DryRun {
		actions = services.NewDryRunActions(logger)
	}
	logger.Info("starting browser", "roots", len(roots), "metric", cfg.SizeMetric, "dryRun", cfg.DryRun)

	initial := state.NewState(state.Preferences{SortKey: cfg.SortKey, Format: cfg.ByteFormat})
	model := ui.NewModel(ctx, initial, services.NewFSScanner(logger), actions, request, ui.Options{
		Theme:  cfg.Theme,
		Logger: logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run browser: %w", err)
	}
	if finished, ok := final.(ui.Model); ok && finished.Err() != nil {
		return finished.Err()
	}
	return nil
}

// resolveRoots turns the arguments into scan roots. Without arguments the
// entries of the working directory are used, or the directory itself when it
// is empty.
func resolveRoots(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	entries, err := os.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("list working directory: %w", err)
	}
	if len(entries) == 0 {
		return []string{"."}, nil
	}
	roots := make([]string, 0, len(entries))
	for _, entry := range entries {
		roots = append(roots, filepath.Join(".", entry.Name()))
	}
	return roots, nil
}

// newLogger writes to cfg.LogFile when set and to fallback otherwise.
func newLogger(cfg config.Config, fallback io.Writer) (*slog.Logger, func(), error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	out := fallback
	closeLog := func() {}
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = file
		closeLog = func() { _ = file.Close() }
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, closeLog, nil
}

func parseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(value) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
}
