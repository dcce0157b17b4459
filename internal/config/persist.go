package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"sweepdu/internal/domain"
)

const (
	configDirName  = "sweepdu"
	configFileName = "config.json"
)

func DefaultConfig() Config {
	return Config{
		SizeMetric: domain.SizeOnDisk,
		ByteFormat: domain.FormatMetric,
		SortKey:    domain.SortBySize,
		SafeMode:   true,
		Theme:      "dark",
		LogLevel:   "info",
	}
}

// ConfigPath is where the optional config file lives. The file is only read;
// nothing writes it back.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, configDirName, configFileName)
}

func LoadConfig() (Config, error) {
	return LoadConfigFrom(ConfigPath())
}

// LoadConfigFrom merges the file at path over the defaults. A missing file is
// not an error.
func LoadConfigFrom(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("read config %s: %w", path, err)
	}
	var stored fileConfig
	if err := json.Unmarshal(data, &stored); err != nil {
		return config, fmt.Errorf("parse config %s: %w", path, err)
	}
	return mergeConfig(config, stored)
}

func mergeConfig(base Config, stored fileConfig) (Config, error) {
	merged := base
	if stored.SizeMetric != nil {
		metric, err := parseSizeMetric(*stored.SizeMetric)
		if err != nil {
			return base, err
		}
		merged.SizeMetric = metric
	}
	if stored.FollowSymlinkedFiles != nil {
		merged.FollowSymlinkedFiles = *stored.FollowSymlinkedFiles
	}
	if stored.CountHardLinks != nil {
		merged.CountHardLinks = *stored.CountHardLinks
	}
	if stored.Threads != nil {
		merged.Threads = *stored.Threads
	}
	if stored.ByteFormat != nil {
		format, err := domain.ParseByteFormat(*stored.ByteFormat)
		if err != nil {
			return base, err
		}
		merged.ByteFormat = format
	}
	if stored.SortKey != nil {
		merged.SortKey = domain.ParseSortKey(*stored.SortKey, base.SortKey)
	}
	if stored.PruneEmptyDirs != nil {
		merged.PruneEmptyDirs = *stored.PruneEmptyDirs
	}
	if stored.DryRun != nil {
		merged.DryRun = *stored.DryRun
	}
	if stored.SafeMode != nil {
		merged.SafeMode = *stored.SafeMode
	}
	if stored.Theme != nil {
		merged.Theme = *stored.Theme
	}
	if stored.LogFile != nil {
		merged.LogFile = *stored.LogFile
	}
	if stored.LogLevel != nil {
		merged.LogLevel = *stored.LogLevel
	}
	if stored.NoTotal != nil {
		merged.NoTotal = *stored.NoTotal
	}
	if stored.NoSort != nil {
		merged.NoSort = *stored.NoSort
	}
	if stored.Stats != nil {
		merged.Stats = *stored.Stats
	}
	return merged, nil
}

func parseSizeMetric(value string) (domain.SizeMetric, error) {
	switch domain.SizeMetric(value) {
	case domain.SizeApparent, domain.SizeOnDisk:
		return domain.SizeMetric(value), nil
	}
	return "", fmt.Errorf("unknown size metric %q (want %s or %s)", value, domain.SizeApparent, domain.SizeOnDisk)
}
