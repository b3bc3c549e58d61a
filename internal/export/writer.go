package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"scriptdna/internal/logging"
	"scriptdna/internal/services"
	"scriptdna/internal/stages"
)

// Writer writes rendered scripts into a directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates dir when needed and verifies it is writable.
func NewWriter(dir string, logger *slog.Logger) (*Writer, error) {
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "export", "prepare", "export directory is empty", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "export", "prepare", "create export directory", err)
	}
	if err := CheckDirectory(dir); err != nil {
		return nil, err
	}
	return &Writer{dir: dir, logger: logging.NewComponentLogger(logger, "export")}, nil
}

// Dir returns the export directory.
func (w *Writer) Dir() string {
	return w.dir
}

// CheckDirectory verifies that path is a directory the process can write to.
func CheckDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "export", "check directory", path, err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "export", "check directory", path+" is not a directory", nil)
	}
	if err := unix.Access(path, unix.W_OK|unix.X_OK); err != nil {
		return services.Wrap(services.ErrConfiguration, "export", "check directory", path+": insufficient permissions", err)
	}
	return nil
}

// WriteFile writes content to name inside the export directory while holding
// an advisory lock on the file. A file locked by another writer is reported
// as busy.
func (w *Writer) WriteFile(name, content string) (string, error) {
	path := filepath.Join(w.dir, filepath.Base(name))
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "export", "lock", path, err)
	}
	if !ok {
		return "", services.Wrap(services.ErrBusy, "export", "lock", path+" is being written by another process", nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(w.logger, "failed to release export lock", "export_unlock_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the lock is released when the process exits"),
			)
		}
	}()

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", services.Wrap(services.ErrTransient, "export", "write", path, err)
	}
	w.logger.Info("export written",
		logging.String("path", path),
		logging.Int("bytes", len(content)),
	)
	return path, nil
}

// WritePart writes a single part under its default name.
func (w *Writer) WritePart(part stages.ScriptPart) (string, error) {
	return w.WriteFile(PartFileName(part.PartNumber), PartText(part))
}

// WriteScript writes every part and the combined script. It returns the
// written paths, full script first.
func (w *Writer) WriteScript(topic string, parts []stages.ScriptPart) ([]string, error) {
	if len(parts) == 0 {
		return nil, services.Wrap(services.ErrPrerequisite, "export", "write script", "no script parts to export", nil)
	}
	paths := make([]string, 0, len(parts)+1)
	path, err := w.WriteFile(FullScriptFileName(topic), FullScript(topic, parts))
	if err != nil {
		return nil, err
	}
	paths = append(paths, path)
	for _, part := range parts {
		path, err := w.WritePart(part)
		if err != nil {
			return paths, fmt.Errorf("write part %d: %w", part.PartNumber, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
