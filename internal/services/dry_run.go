package services

import (
	"log/slog"
	"sync"

	"sweepdu/internal/domain"
)

// DryRunActions records removals without touching the disk. The tree still
// prunes the entries, so the browser shows what a real run would free.
type DryRunActions struct {
	mu      sync.Mutex
	logger  *slog.Logger
	removed []string
}

func NewDryRunActions(logger *slog.Logger) *DryRunActions {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRunActions{logger: logger}
}

func (actions *DryRunActions) Remove(path string, kind domain.EntryKind) error {
	actions.mu.Lock()
	defer actions.mu.Unlock()
	actions.removed = append(actions.removed, path)
	actions.logger.Info("dry run: would remove", "path", path, "kind", kind)
	return nil
}

func (actions *DryRunActions) Removed() []string {
	actions.mu.Lock()
	defer actions.mu.Unlock()
	return append([]string(nil), actions.removed...)
}
