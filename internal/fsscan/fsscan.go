// Package fsscan enumerates and reads source files for term harvesting.
package fsscan

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/itsmostafa/autoindex/internal/pattern"
)

// Lister walks directories on behalf of the harvester.
type Lister struct {
	// WorkDir is the working directory for relative paths (defaults to current directory)
	WorkDir string

	// MaxFileSize is the maximum file size in bytes to read (default: 16MB)
	MaxFileSize int64

	// ExcludeDirs is a list of directory names never descended into
	ExcludeDirs []string

	// Logger receives a warning for each truncated file (defaults to slog.Default)
	Logger *slog.Logger
}

// NewLister creates a lister with default settings.
func NewLister() *Lister {
	wd, _ := os.Getwd()
	return &Lister{
		WorkDir:     wd,
		MaxFileSize: 16 * 1024 * 1024,
		ExcludeDirs: []string{".git", ".svn", ".hg", "node_modules"},
	}
}

// Resolve converts path to a clean path, joining relative paths onto WorkDir.
func (l *Lister) Resolve(path string) string {
	if filepath.IsAbs(path) || l.WorkDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(l.WorkDir, path))
}

// List returns the regular files under dir whose base name fully matches
// mask, in lexical order. Subdirectories are searched only when recursive.
func (l *Lister) List(dir string, mask *pattern.Matcher, recursive bool) ([]string, error) {
	resolved := l.Resolve(dir)
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, err
	}

	var result []string
	for _, entry := range entries {
		path := filepath.Join(resolved, entry.Name())
		if entry.IsDir() {
			if !recursive || l.isExcludedDir(entry.Name()) {
				continue
			}
			sub, err := l.List(path, mask, recursive)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
			continue
		}
		if entry.Type().IsRegular() && mask.Match(entry.Name()) {
			result = append(result, path)
		}
	}

	return result, nil
}

// Read returns the contents of a file. Files larger than MaxFileSize are
// truncated.
func (l *Lister) Read(path string) (string, error) {
	resolved := l.Resolve(path)

	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", &os.PathError{Op: "read", Path: resolved, Err: os.ErrInvalid}
	}

	if l.MaxFileSize > 0 && info.Size() > l.MaxFileSize {
		file, err := os.Open(resolved)
		if err != nil {
			return "", err
		}
		defer file.Close()

		buf := make([]byte, l.MaxFileSize)
		n, err := io.ReadFull(io.LimitReader(file, l.MaxFileSize), buf)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
			return "", err
		}
		l.logger().Warn("file truncated", "path", resolved, "size", info.Size(), "read", n)
		return string(buf[:n]), nil
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func (l *Lister) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l *Lister) isExcludedDir(name string) bool {
	return slices.Contains(l.ExcludeDirs, name)
}
