package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PruneSessionLogs removes session log files older than retentionDays from
// <logDir>/sessions. A retentionDays value of 0 disables pruning. It returns
// the number of files removed.
func PruneSessionLogs(logger *slog.Logger, logDir string, retentionDays int, exclude ...string) int {
	if retentionDays <= 0 || strings.TrimSpace(logDir) == "" {
		return 0
	}
	return pruneOlderThan(logger, filepath.Join(logDir, SessionLogDir), "*.log",
		time.Now().AddDate(0, 0, -retentionDays), exclude)
}

func pruneOlderThan(logger *slog.Logger, dir, pattern string, cutoff time.Time, exclude []string) int {
	exclusions := make(map[string]struct{}, len(exclude))
	for _, path := range exclude {
		if abs, err := filepath.Abs(strings.TrimSpace(path)); err == nil {
			exclusions[abs] = struct{}{}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if matched, err := filepath.Match(pattern, entry.Name()); err != nil || !matched {
			continue
		}
		fullPath := filepath.Join(dir, entry.Name())
		if abs, err := filepath.Abs(fullPath); err == nil {
			fullPath = abs
		}
		if _, skip := exclusions[fullPath]; skip {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(fullPath); err != nil {
			WarnWithContext(logger, "session log removal failed; file remains", "log_retention_failed",
				String("path", fullPath),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old session log remains on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("session log pruned",
				String("path", fullPath),
				String(FieldEventType, "log_pruned"),
			)
		}
	}
	return removed
}
