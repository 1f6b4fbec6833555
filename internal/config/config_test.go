package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/itsmostafa/autoindex/internal/terms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `input: doc.xml
output: out.xml
scripts:
  - terms.idx
scans:
  - include/widget.hpp
no_duplicates: true
index_title: Subject Index
category_patterns:
  class:
    prefix: ""
    suffix: '\s*<'
debounce: 2s
`

const tomlConfig = `input = "doc.xml"
output = "out.xml"
scripts = ["terms.idx"]
scans = ["include/widget.hpp"]
no_duplicates = true
index_title = "Subject Index"
debounce = "2s"

[category_patterns.class]
prefix = ""
suffix = '\s*<'
`

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"yaml", "autoindex.yaml", yamlConfig},
		{"yml", "autoindex.yml", yamlConfig},
		{"toml", "autoindex.toml", tomlConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "doc.xml", cfg.Input)
			assert.Equal(t, "out.xml", cfg.Output)
			assert.Equal(t, []string{"terms.idx"}, cfg.Scripts)
			assert.Equal(t, []string{"include/widget.hpp"}, cfg.Scans)
			assert.True(t, cfg.NoDuplicates)
			assert.False(t, cfg.InternalIndex)
			assert.Equal(t, "Subject Index", cfg.IndexTitle)
			assert.Equal(t, "idx_id_", cfg.AnchorPrefix)
			assert.Equal(t, 2*time.Second, cfg.Debounce)
			assert.Equal(t, CategoryPattern{Suffix: `\s*<`}, cfg.CategoryPatterns["class"])
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	ini := filepath.Join(dir, "autoindex.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x=1"), 0o644))
	_, err = Load(ini)
	assert.ErrorContains(t, err, "unsupported config format")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("input = "), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "Index", cfg.IndexTitle)
	assert.Equal(t, "idx_id_", cfg.AnchorPrefix)
	assert.Equal(t, DefaultDebounce, cfg.Debounce)
}

func TestIndexer(t *testing.T) {
	cfg := Default()
	cfg.InternalIndex = true
	cfg.BasePath = "/src"
	cfg.CategoryPatterns = map[string]CategoryPattern{"function": {Prefix: `\b`}}

	ic := cfg.Indexer(nil)
	assert.True(t, ic.InternalIndex)
	assert.Equal(t, "/src", ic.BasePath)
	assert.Equal(t, map[string]terms.Template{"function": {Prefix: `\b`}}, ic.CategoryPatterns)

	assert.Nil(t, Default().Indexer(nil).CategoryPatterns)
}
