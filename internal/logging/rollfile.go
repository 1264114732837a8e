package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// rollingWriter is a zapcore.WriteSyncer that opens a new file each day,
// named "<component>-<YYYY-MM-DD>.jsonl", under dir. It is intentionally
// simple: one open file handle, re-evaluated on every write against the
// current date.
type rollingWriter struct {
	mu        sync.Mutex
	dir       string
	component string
	day       string
	f         *os.File
	now       func() time.Time
}

// NewRollingWriter returns a writer that rolls daily-named JSONL files
// under dir for the given component.
func NewRollingWriter(dir, component string) (*rollingWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log dir: %w", err)
	}
	return &rollingWriter{dir: dir, component: component, now: time.Now}, nil
}

func (w *rollingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	day := w.now().UTC().Format("2006-01-02")
	if w.f == nil || day != w.day {
		if w.f != nil {
			_ = w.f.Close()
		}
		path := filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl", w.component, day))
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
		if err != nil {
			return 0, fmt.Errorf("logging: open log file: %w", err)
		}
		w.f = f
		w.day = day
	}
	return w.f.Write(p)
}

func (w *rollingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	return w.f.Sync()
}
