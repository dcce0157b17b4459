package services

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"sweepdu/internal/domain"
)

var ErrProtectedPath = errors.New("protected path")

// FSActions removes entries from disk. The tree only hands it empty
// directories, so a plain os.Remove is enough for every kind.
type FSActions struct {
	logger   *slog.Logger
	safeMode bool
}

func NewFSActions(logger *slog.Logger, safeMode bool) *FSActions {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSActions{logger: logger, safeMode: safeMode}
}

func (actions *FSActions) Remove(path string, kind domain.EntryKind) error {
	if actions.safeMode && isCriticalPath(path) {
		actions.logger.Warn("refused to remove protected path", "path", path)
		return fmt.Errorf("remove %s: %w", path, ErrProtectedPath)
	}
	if err := os.Remove(path); err != nil {
		actions.logger.Debug("remove failed", "path", path, "kind", kind, "err", err)
		return err
	}
	actions.logger.Info("removed", "path", path, "kind", kind)
	return nil
}

// isCriticalPath reports whether path is one of the system directories or the
// home directory itself. Their contents stay removable.
func isCriticalPath(path string) bool {
	path = filepath.Clean(path)
	critical := []string{"/", "/bin", "/boot", "/dev", "/etc", "/lib", "/proc", "/sbin", "/sys", "/usr", "/var"}
	if home, err := os.UserHomeDir(); err == nil {
		critical = append(critical, home)
	}
	for _, root := range critical {
		if path == filepath.Clean(root) {
			return true
		}
	}
	return false
}
