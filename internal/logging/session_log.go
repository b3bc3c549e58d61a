package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SessionLogDir is the subdirectory of the log directory holding per-session files.
const SessionLogDir = "sessions"

// SessionLog is a logger that writes to the base logger and to a JSON file
// dedicated to one pipeline session.
type SessionLog struct {
	Logger *slog.Logger
	Path   string
	file   *os.File
}

// Close flushes and closes the session file.
func (s *SessionLog) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// OpenSessionLog tees base into <logDir>/sessions/<sessionID>.log at debug
// level. An empty logDir disables the file and returns base unchanged. The
// session field itself is attached by the pipeline session.
func OpenSessionLog(base *slog.Logger, logDir, sessionID string) (*SessionLog, error) {
	if base == nil {
		base = NewNop()
	}
	logDir = strings.TrimSpace(logDir)
	if logDir == "" {
		return &SessionLog{Logger: base}, nil
	}
	path := filepath.Join(logDir, SessionLogDir, sessionID+".log")
	file, err := openLogFile(path)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	fileHandler := newJSONHandler(file, slog.LevelDebug, false)
	logger := TeeLogger(base, fileHandler)
	return &SessionLog{Logger: logger, Path: path, file: file}, nil
}

var _ io.Closer = (*SessionLog)(nil)

type fanoutHandler struct {
	handlers []slog.Handler
}

func newFanoutHandler(handlers ...slog.Handler) slog.Handler {
	filtered := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h == nil {
			continue
		}
		if _, noop := h.(NoopHandler); noop {
			continue
		}
		filtered = append(filtered, h)
	}
	switch len(filtered) {
	case 0:
		return NoopHandler{}
	case 1:
		return filtered[0]
	default:
		return &fanoutHandler{handlers: filtered}
	}
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}

// TeeLogger duplicates log output from base into the provided handlers.
func TeeLogger(base *slog.Logger, handlers ...slog.Handler) *slog.Logger {
	if base == nil {
		return slog.New(newFanoutHandler(handlers...))
	}
	all := append([]slog.Handler{base.Handler()}, handlers...)
	return slog.New(newFanoutHandler(all...))
}
