// Package watch re-runs an indexing job when its inputs change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a set of files and directory trees.
type Watcher struct {
	// Files are watched individually, through their parent directories.
	Files []string
	// Dirs are watched recursively.
	Dirs []string
	// Ignore lists files whose changes never trigger a rebuild, such as the
	// job's own output.
	Ignore []string
	// Debounce is how long events must be quiet before a rebuild.
	Debounce time.Duration
	// ExcludeDirs names directories not descended into.
	ExcludeDirs []string
	Logger      *slog.Logger
}

// New returns a watcher with the default excluded directories.
func New(files, dirs, ignore []string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		Files:       cleanAll(files),
		Dirs:        cleanAll(dirs),
		Ignore:      cleanAll(ignore),
		Debounce:    debounce,
		ExcludeDirs: []string{".git", ".svn", ".hg", "node_modules"},
		Logger:      logger,
	}
}

func cleanAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, filepath.Clean(p))
	}
	return out
}

// Run calls rebuild each time the watched paths settle after a change, until
// ctx is cancelled. Rebuild failures are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, rebuild func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.watchDirs() {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	// Armed only while events are pending.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == fsnotify.Create && w.underDirs(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(fw, event.Name)
				}
			}
			if event.Op == fsnotify.Chmod || !w.Relevant(event.Name) {
				continue
			}
			w.Logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watch error", "error", err)

		case <-timer.C:
			if err := rebuild(ctx); err != nil {
				w.Logger.Error("rebuild failed", "error", err)
			}
		}
	}
}

// Relevant reports whether a change to path should trigger a rebuild.
func (w *Watcher) Relevant(path string) bool {
	path = filepath.Clean(path)
	if slices.Contains(w.Ignore, path) {
		return false
	}
	return slices.Contains(w.Files, path) || w.underDirs(path)
}

func (w *Watcher) underDirs(path string) bool {
	for _, dir := range w.Dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				continue
			}
			excluded := false
			for _, part := range strings.Split(rel, string(filepath.Separator)) {
				if slices.Contains(w.ExcludeDirs, part) {
					excluded = true
					break
				}
			}
			if !excluded {
				return true
			}
		}
	}
	return false
}

// watchDirs returns the directories to register: the parent of every file
// and every directory of each tree.
func (w *Watcher) watchDirs() []string {
	var dirs []string
	add := func(d string) {
		if !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	for _, f := range w.Files {
		add(filepath.Dir(f))
	}
	for _, root := range w.Dirs {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if path != root && slices.Contains(w.ExcludeDirs, d.Name()) {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
	}
	return dirs
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if slices.Contains(w.ExcludeDirs, d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			w.Logger.Warn("cannot watch directory", "dir", path, "error", err)
		}
		return nil
	})
}
