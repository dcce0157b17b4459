package services

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

type VolumeInfo struct {
	Path        string
	Fstype      string
	Total       uint64
	Free        uint64
	Used        uint64
	UsedPercent float64
}

// VolumeFor reports the filesystem holding path.
func VolumeFor(path string) (VolumeInfo, error) {
	if path == "" {
		path = "/"
	}
	usage, err := disk.Usage(path)
	if err != nil {
		return VolumeInfo{}, fmt.Errorf("volume usage for %s: %w", path, err)
	}
	return VolumeInfo{
		Path:        usage.Path,
		Fstype:      usage.Fstype,
		Total:       usage.Total,
		Free:        usage.Free,
		Used:        usage.Used,
		UsedPercent: usage.UsedPercent,
	}, nil
}
