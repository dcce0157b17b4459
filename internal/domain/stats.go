package domain

import "time"

type ScanFailure struct {
	Path   string
	Reason string
}

// ScanStats summarizes one scan. Failures are informational only.
type ScanStats struct {
	Files        int64
	Dirs         int64
	Bytes        int64
	Entries      int64
	Unsupported  int64
	SmallestFile int64
	LargestFile  int64
	Failures     []ScanFailure
	FailureCount int64
	Elapsed      time.Duration
	CurrentPath  string
	Truncated    bool
}
