package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"sweepdu/internal/config"
	"sweepdu/internal/domain"
	"sweepdu/internal/services"
)

type aggregateStyles struct {
	size lipgloss.Style
	file lipgloss.Style
}

func stylesFor(color bool) aggregateStyles {
	if !color {
		return aggregateStyles{size: lipgloss.NewStyle(), file: lipgloss.NewStyle()}
	}
	return aggregateStyles{
		size: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		file: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func runAggregate(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	logger, closeLog, err := newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	roots, err := resolveRoots(args)
	if err != nil {
		return err
	}
	result, err := services.Aggregate(ctx, services.AggregateRequest{
		Roots:                roots,
		SizeMetric:           cfg.SizeMetric,
		FollowSymlinkedFiles: cfg.FollowSymlinkedFiles,
		CountHardLinks:       cfg.CountHardLinks,
		Threads:              cfg.Threads,
	}, logger)
	if err != nil {
		return err
	}

	color := false
	if file, ok := stdout.(*os.File); ok {
		color = isatty.IsTerminal(file.Fd())
	}
	if err := writeAggregate(stdout, result, cfg, stylesFor(color)); err != nil {
		return err
	}
	if cfg.Stats {
		writeStats(stderr, result.Stats, cfg.ByteFormat)
	}
	if errs := result.Errors(); errs > 0 {
		return fmt.Errorf("%d I/O errors while reading", errs)
	}
	return nil
}

func writeAggregate(out io.Writer, result services.AggregateResult, cfg config.Config, styles aggregateStyles) error {
	roots := result.Roots
	if !cfg.NoSort {
		roots = result.BySize()
	}
	for _, root := range roots {
		if err := writeLine(out, cfg.ByteFormat, styles, root); err != nil {
			return err
		}
	}
	if len(result.Roots) > 1 && !cfg.NoTotal {
		total := services.RootTotal{Path: "total", Bytes: result.Total, Errors: result.Errors()}
		return writeLine(out, cfg.ByteFormat, styles, total)
	}
	return nil
}

func writeLine(out io.Writer, format domain.ByteFormat, styles aggregateStyles, root services.RootTotal) error {
	size := styles.size.Render(fmt.Sprintf("%*s", format.Width(), format.Display(root.Bytes)))
	path := root.Path
	if root.IsFile {
		path = styles.file.Render(path)
	}
	line := size + " " + path
	if root.Errors == 1 {
		line += "  <1 IO Error>"
	} else if root.Errors > 1 {
		line += fmt.Sprintf("  <%d IO Errors>", root.Errors)
	}
	_, err := fmt.Fprintln(out, line)
	return err
}

func writeStats(out io.Writer, stats domain.ScanStats, format domain.ByteFormat) {
	fmt.Fprintf(out, "entries traversed: %d\n", stats.Entries)
	fmt.Fprintf(out, "files: %d  directories: %d  unsupported: %d\n", stats.Files, stats.Dirs, stats.Unsupported)
	fmt.Fprintf(out, "smallest file: %s  largest file: %s\n", format.Display(stats.SmallestFile), format.Display(stats.LargestFile))
	fmt.Fprintf(out, "elapsed: %s\n", stats.Elapsed)
}
