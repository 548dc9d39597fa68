package session

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// fileState is the on-disk shape. Deliberately only the flag: tokens and
// profiles never touch disk.
type fileState struct {
	Authenticated bool `json:"authenticated"`
}

// FileFlag persists the authenticated flag in a small JSON file, the
// process equivalent of the browser's local storage entry.
type FileFlag struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewFileFlag creates a FileFlag at path. A nil logger falls back to
// slog.Default.
func NewFileFlag(path string, logger *slog.Logger) *FileFlag {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileFlag{path: path, logger: logger}
}

// LoadAuthenticated reads the persisted flag. A missing or unreadable file
// means signed out.
func (f *FileFlag) LoadAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return false
	}
	var st fileState
	if err := json.Unmarshal(raw, &st); err != nil {
		f.logger.Warn("unreadable session file, treating as signed out", slog.String("path", f.path))
		return false
	}
	return st.Authenticated
}

// SaveAuthenticated writes the flag. Persistence failures only log; the
// in-memory session stays authoritative for this process.
func (f *FileFlag) SaveAuthenticated(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := json.Marshal(fileState{Authenticated: v})
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		f.logger.Warn("cannot create session dir", slog.Any("error", err))
		return
	}
	if err := os.WriteFile(f.path, raw, 0o600); err != nil {
		f.logger.Warn("cannot persist session flag", slog.Any("error", err))
	}
}
