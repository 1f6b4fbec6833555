package fsscan

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/itsmostafa/autoindex/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTree(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	files := map[string]string{
		"a.hpp":            "class A {};",
		"b.cpp":            "void b() {}",
		"notes.txt":        "text",
		"sub/c.hpp":        "class C {};",
		"sub/deep/d.hpp":   "class D {};",
		".git/objects.hpp": "class Git {};",
	}
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	// a directory whose name matches the mask is never returned as a file
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "dir.hpp"), 0o755))
	return tmpDir
}

func TestListFlat(t *testing.T) {
	tmpDir := setupTree(t)
	l := NewLister()
	l.WorkDir = tmpDir

	got, err := l.List(".", pattern.MustCompile(`.*\.hpp`, 0), false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmpDir, "a.hpp")}, got)
}

func TestListRecursive(t *testing.T) {
	tmpDir := setupTree(t)
	l := NewLister()

	got, err := l.List(tmpDir, pattern.MustCompile(`.*\.hpp`, 0), true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(tmpDir, "a.hpp"),
		filepath.Join(tmpDir, "sub", "c.hpp"),
		filepath.Join(tmpDir, "sub", "deep", "d.hpp"),
	}, got)
}

func TestListMaskIsWholeName(t *testing.T) {
	tmpDir := setupTree(t)
	l := NewLister()

	got, err := l.List(tmpDir, pattern.MustCompile(`hpp`, 0), true)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListMissingDir(t *testing.T) {
	l := NewLister()
	_, err := l.List(filepath.Join(t.TempDir(), "nope"), pattern.MustCompile(`.*`, 0), false)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRead(t *testing.T) {
	tmpDir := setupTree(t)
	l := NewLister()
	l.WorkDir = tmpDir

	content, err := l.Read("a.hpp")
	require.NoError(t, err)
	assert.Equal(t, "class A {};", content)

	var logs bytes.Buffer
	l.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	l.MaxFileSize = 5
	content, err = l.Read("a.hpp")
	require.NoError(t, err)
	assert.Equal(t, "class", content)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "file truncated")
	assert.Contains(t, logs.String(), "size=11")

	_, err = l.Read("sub")
	assert.ErrorIs(t, err, os.ErrInvalid)

	_, err = l.Read("missing.hpp")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
