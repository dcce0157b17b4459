package ui

import (
	"sweepdu/internal/domain"
	"sweepdu/internal/services"
)

type scanResultMsg struct {
	result services.ScanResult
	err    error
}

type scanTickMsg struct {
	stats domain.ScanStats
}

type volumeMsg struct {
	info services.VolumeInfo
	err  error
}
