package services

import "sweepdu/internal/domain"

type ScanRequest struct {
	Roots                []string
	SizeMetric           domain.SizeMetric
	FollowSymlinkedFiles bool
	CountHardLinks       bool
	Threads              int
	EmptyDirs            domain.EmptyDirPolicy
}

type AggregateRequest struct {
	Roots                []string
	SizeMetric           domain.SizeMetric
	FollowSymlinkedFiles bool
	CountHardLinks       bool
	Threads              int
}
