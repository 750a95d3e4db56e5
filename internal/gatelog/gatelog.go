// Package gatelog resolves session log paths through the same
// path-security checks the rest of the gate applies, and writes
// rolling, gzip-compressed session logs.
package gatelog

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/maos-gate/gate/internal/gateerr"
	"github.com/maos-gate/gate/internal/ids"
	"github.com/maos-gate/gate/internal/pathutil"
)

// SessionLogPath returns the on-disk path for sessionID's log under
// root, rejecting any session id whose normalized form would escape
// root or still contains a path separator.
func SessionLogPath(root string, sessionID ids.SessionID) (string, error) {
	raw := sessionID.String()
	if raw == "" {
		return "", gateerr.NewPathValidation("invalid-component", raw)
	}

	normalized := pathutil.NormalizePath(raw)
	if strings.Contains(normalized, "..") || strings.HasPrefix(normalized, "/") {
		return "", gateerr.NewPathValidation("path-traversal", raw)
	}
	if strings.Contains(normalized, "/") {
		return "", gateerr.NewPathValidation("invalid-component", raw)
	}

	return filepath.Join(root, normalized+".log"), nil
}

// Writer is a mutex-guarded append-only log file that rolls over into
// a gzip-compressed backup once it exceeds maxBytes, keeping at most
// maxBackups compressed generations.
type Writer struct {
	mu         sync.Mutex
	path       string
	maxBytes   int64
	maxBackups int
	file       *os.File
	size       int64
}

// NewWriter opens (creating if necessary) the log file at path for
// appending. maxBytes <= 0 disables rollover; maxBackups <= 0 keeps
// every rolled-over generation without removing old ones (spec.md's
// Open Question on an unbounded rollover count is left unresolved
// rather than inventing a cap).
func NewWriter(path string, maxBytes int64, maxBackups int) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("statting log file: %w", err)
	}

	return &Writer{
		path:       path,
		maxBytes:   maxBytes,
		maxBackups: maxBackups,
		file:       f,
		size:       info.Size(),
	}, nil
}

// Write appends p to the log, rolling over first if the write would
// exceed maxBytes.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.maxBytes > 0 && w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// rotate closes the current file, gzip-compresses it into a numbered
// backup, and reopens a fresh, empty file at path. Caller must hold mu.
func (w *Writer) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing log file before rotation: %w", err)
	}

	backupPath := fmt.Sprintf("%s.%d.gz", w.path, nextGeneration(w.path))
	if err := compressToGzip(w.path, backupPath); err != nil {
		return err
	}

	if err := os.Remove(w.path); err != nil {
		return fmt.Errorf("removing rotated log source: %w", err)
	}

	w.pruneOldBackups()

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reopening log file after rotation: %w", err)
	}
	w.file = f
	w.size = 0
	return nil
}

func nextGeneration(path string) int {
	n := 1
	for {
		if _, err := os.Stat(fmt.Sprintf("%s.%d.gz", path, n)); os.IsNotExist(err) {
			return n
		}
		n++
	}
}

func compressToGzip(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening log file for compression: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("creating compressed backup: %w", err)
	}
	defer dst.Close()

	gw := gzip.NewWriter(dst)
	if _, err := io.Copy(gw, src); err != nil {
		gw.Close()
		return fmt.Errorf("compressing log backup: %w", err)
	}
	return gw.Close()
}

// pruneOldBackups removes the oldest generations past maxBackups.
// Caller must hold mu.
func (w *Writer) pruneOldBackups() {
	if w.maxBackups <= 0 {
		return
	}

	var generations []int
	for n := 1; ; n++ {
		if _, err := os.Stat(fmt.Sprintf("%s.%d.gz", w.path, n)); os.IsNotExist(err) {
			break
		}
		generations = append(generations, n)
	}

	excess := len(generations) - w.maxBackups
	for i := 0; i < excess; i++ {
		os.Remove(fmt.Sprintf("%s.%d.gz", w.path, generations[i]))
	}
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// Size reports the current uncompressed file size in bytes.
func (w *Writer) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}
