// Package delivery moves backup files between the engine and the user:
// handing out a finished export and reading back a file the user picked.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Deliverer hands export content to the user and reads selected files.
type Deliverer interface {
	// Deliver stores content under filename and returns where it went.
	Deliver(ctx context.Context, content []byte, filename string) (string, error)
	// Open returns the text content of a user-selected source.
	Open(ctx context.Context, source string) (string, error)
}

// ErrNoBackups is returned by LatestBackup when nothing matches.
var ErrNoBackups = errors.New("no backup files found")

// Dir delivers files into a directory on disk.
type Dir struct {
	Path string
}

// Deliver writes content atomically into the directory.
func (d Dir) Deliver(_ context.Context, content []byte, filename string) (string, error) {
	if filename == "" || filepath.Base(filename) != filename {
		return "", fmt.Errorf("invalid backup filename %q", filename)
	}

	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	dest := filepath.Join(d.Path, filename)
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize backup: %w", err)
	}

	return dest, nil
}

// Open reads a file. Relative sources resolve against the directory first
// and then the working directory.
func (d Dir) Open(_ context.Context, source string) (string, error) {
	candidates := []string{source}
	if !filepath.IsAbs(source) && d.Path != "" {
		candidates = []string{filepath.Join(d.Path, source), source}
	}

	var lastErr error
	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err == nil {
			return string(data), nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("failed to read backup: %w", lastErr)
}

// LatestBackup returns the newest complete backup for product in dir.
// Safety backups taken before an import are not candidates. Backups sort by
// the date embedded in their name, so lexical order is chronological.
func LatestBackup(dir, product string) (string, error) {
	found, err := doublestar.Glob(os.DirFS(dir), "**/"+product+"_complete_backup_*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to search backups: %w", err)
	}
	if len(found) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoBackups, dir)
	}

	matches := make([]string, len(found))
	for i, m := range found {
		matches[i] = filepath.Join(dir, filepath.FromSlash(m))
	}

	sort.Slice(matches, func(i, j int) bool {
		bi, bj := filepath.Base(matches[i]), filepath.Base(matches[j])
		di, dj := backupDate(bi), backupDate(bj)
		if di != dj {
			return di < dj
		}
		return bi < bj
	})

	return matches[len(matches)-1], nil
}

// backupDate extracts the part after "_backup_" without the extension.
func backupDate(name string) string {
	idx := strings.LastIndex(name, "_backup_")
	if idx < 0 {
		return ""
	}
	return strings.TrimSuffix(name[idx+len("_backup_"):], ".csv")
}
