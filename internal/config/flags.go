package config

import (
	"fmt"

	"github.com/spf13/pflag"

	"sweepdu/internal/domain"
)

// Flags holds the raw flag values until Resolve turns them into a Config.
type Flags struct {
	apparentSize         bool
	followSymlinkedFiles bool
	countHardLinks       bool
	threads              int
	format               string
	sort                 string
	pruneEmptyDirs       bool
	dryRun               bool
	safeMode             bool
	theme                string
	logFile              string
	logLevel             string
	noTotal              bool
	noSort               bool
	stats                bool
}

// BindFlags registers the options shared by every command. Defaults come
// from base, so values from the config file show up in --help.
func BindFlags(set *pflag.FlagSet, base Config) *Flags {
	flags := &Flags{}
	set.BoolVarP(&flags.apparentSize, "apparent-size", "A", base.SizeMetric == domain.SizeApparent, "count apparent size instead of disk usage")
	set.BoolVarP(&flags.countHardLinks, "count-hard-links", "l", base.CountHardLinks, "count every hard link instead of each inode once")
	set.BoolVar(&flags.followSymlinkedFiles, "follow-symlinked-files", base.FollowSymlinkedFiles, "count the target size of symlinks to regular files")
	set.IntVarP(&flags.threads, "threads", "t", base.Threads, "number of scan workers (0 means one per CPU)")
	set.StringVarP(&flags.format, "format", "f", string(base.ByteFormat), "size format: metric, binary, bytes, gb, gib, mb or mib")
	set.StringVar(&flags.logFile, "log-file", base.LogFile, "write logs to this file")
	set.StringVar(&flags.logLevel, "log-level", base.LogLevel, "log level: debug, info, warn or error")
	return flags
}

// BindBrowserFlags registers the options of the interactive browser.
func (flags *Flags) BindBrowserFlags(set *pflag.FlagSet, base Config) {
	set.StringVar(&flags.sort, "sort", string(base.SortKey), "initial sort: size, name, count or mtime")
	set.BoolVar(&flags.pruneEmptyDirs, "prune-empty-dirs", base.PruneEmptyDirs, "hide directories emptied by a deletion")
	set.BoolVar(&flags.dryRun, "dry-run", base.DryRun, "log deletions instead of performing them")
	set.BoolVar(&flags.safeMode, "safe-mode", base.SafeMode, "refuse to delete system directories and the home directory")
	set.StringVar(&flags.theme, "theme", base.Theme, "color theme: dark or light")
}

// BindAggregateFlags registers the options of aggregate mode.
func (flags *Flags) BindAggregateFlags(set *pflag.FlagSet, base Config) {
	set.BoolVar(&flags.noTotal, "no-total", base.NoTotal, "do not print the total of all paths")
	set.BoolVar(&flags.noSort, "no-sort", base.NoSort, "print paths in argument order instead of by size")
	set.BoolVar(&flags.stats, "stats", base.Stats, "print scan statistics to stderr")
	flags.sort = string(base.SortKey)
	flags.theme = base.Theme
	flags.safeMode = base.SafeMode
	flags.pruneEmptyDirs = base.PruneEmptyDirs
	flags.dryRun = base.DryRun
}

func (flags *Flags) Resolve(base Config) (Config, error) {
	cfg := base
	cfg.SizeMetric = domain.SizeOnDisk
	if flags.apparentSize {
		cfg.SizeMetric = domain.SizeApparent
	}
	cfg.CountHardLinks = flags.countHardLinks
	cfg.FollowSymlinkedFiles = flags.followSymlinkedFiles
	if flags.threads < 0 {
		return base, fmt.Errorf("threads must not be negative, got %d", flags.threads)
	}
	cfg.Threads = flags.threads
	format, err := domain.ParseByteFormat(flags.format)
	if err != nil {
		return base, err
	}
	cfg.ByteFormat = format
	if flags.sort != "" {
		key := domain.ParseSortKey(flags.sort, "")
		if key == "" {
			return base, fmt.Errorf("unknown sort key %q", flags.sort)
		}
		cfg.SortKey = key
	}
	cfg.PruneEmptyDirs = flags.pruneEmptyDirs
	cfg.DryRun = flags.dryRun
	cfg.SafeMode = flags.safeMode
	if flags.theme != "" {
		cfg.Theme = flags.theme
	}
	cfg.LogFile = flags.logFile
	cfg.LogLevel = flags.logLevel
	cfg.NoTotal = flags.noTotal
	cfg.NoSort = flags.noSort
	cfg.Stats = flags.stats
	return cfg, nil
}
