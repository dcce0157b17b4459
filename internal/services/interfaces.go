package services

import (
	"context"

	"sweepdu/internal/domain"
)

type Scanner interface {
	Scan(ctx context.Context, req ScanRequest) (ScanResult, error)
}

// Actions performs the filesystem side of tree removals.
type Actions interface {
	domain.Remover
}

type ProgressProvider interface {
	Progress() domain.ScanStats
}

type Canceller interface {
	Cancel()
}
