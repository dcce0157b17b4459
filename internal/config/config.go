package config

import "sweepdu/internal/domain"

type Config struct {
	SizeMetric           domain.SizeMetric `json:"sizeMetric"`
	FollowSymlinkedFiles bool              `json:"followSymlinkedFiles"`
	CountHardLinks       bool              `json:"countHardLinks"`
	Threads              int               `json:"threads"`
	ByteFormat           domain.ByteFormat `json:"format"`
	SortKey              domain.SortKey    `json:"sort"`
	PruneEmptyDirs       bool              `json:"pruneEmptyDirs"`
	DryRun               bool              `json:"dryRun"`
	SafeMode             bool              `json:"safeMode"`
	Theme                string            `json:"theme"`
	LogFile              string            `json:"logFile"`
	LogLevel             string            `json:"logLevel"`

	// Aggregate mode only.
	NoTotal bool `json:"noTotal"`
	NoSort  bool `json:"noSort"`
	Stats   bool `json:"stats"`
}

type fileConfig struct {
	SizeMetric           *string `json:"sizeMetric"`
	FollowSymlinkedFiles *bool   `json:"followSymlinkedFiles"`
	CountHardLinks       *bool   `json:"countHardLinks"`
	Threads              *int    `json:"threads"`
	ByteFormat           *string `json:"format"`
	SortKey              *string `json:"sort"`
	PruneEmptyDirs       *bool   `json:"pruneEmptyDirs"`
	DryRun               *bool   `json:"dryRun"`
	SafeMode             *bool   `json:"safeMode"`
	Theme                *string `json:"theme"`
	LogFile              *string `json:"logFile"`
	LogLevel             *string `json:"logLevel"`
	NoTotal              *bool   `json:"noTotal"`
	NoSort               *bool   `json:"noSort"`
	Stats                *bool   `json:"stats"`
}

func (cfg Config) EmptyDirPolicy() domain.EmptyDirPolicy {
	if cfg.PruneEmptyDirs {
		return domain.PruneEmptyDirs
	}
	return domain.RetainEmptyDirs
}
