package services

import (
	"time"

	"sweepdu/internal/domain"
)

type ScanResult struct {
	Tree     *domain.Tree
	Stats    domain.ScanStats
	Duration time.Duration
}

type RootTotal struct {
	Path   string
	Bytes  int64
	Errors int64
	IsFile bool
}

type AggregateResult struct {
	Roots    []RootTotal
	Total    int64
	Stats    domain.ScanStats
	Duration time.Duration
}
