// Package autoindex owns the state of one indexing run: the term registry,
// the accumulated index entries and the collaborators that fill them.
package autoindex

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/itsmostafa/autoindex/internal/annotate"
	"github.com/itsmostafa/autoindex/internal/fsscan"
	"github.com/itsmostafa/autoindex/internal/harvest"
	"github.com/itsmostafa/autoindex/internal/index"
	"github.com/itsmostafa/autoindex/internal/terms"
	"github.com/itsmostafa/autoindex/internal/xmltree"
)

// Config holds run options.
type Config struct {
	// NoDuplicates files a term at most once per section id.
	NoDuplicates bool
	// InternalIndex leaves the document free of indexterm markers and
	// expands its index placeholders instead.
	InternalIndex bool
	// BasePath resolves relative paths in scripts. Defaults to each
	// script's own directory.
	BasePath string
	// IndexTitle titles generated index sections that lack one.
	IndexTitle string
	// AnchorPrefix prefixes minted anchor ids.
	AnchorPrefix string
	// CategoryPatterns presets harvest match templates by kind
	// (class, function, typedef).
	CategoryPatterns map[string]terms.Template
	Logger           *slog.Logger
}

func (c *Config) defaults() {
	if c.IndexTitle == "" {
		c.IndexTitle = index.DefaultTitle
	}
	if c.AnchorPrefix == "" {
		c.AnchorPrefix = index.DefaultAnchorPrefix
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Summary describes a run so far.
type Summary struct {
	RunID     string
	Documents int
	Terms     int
	Rules     int
	Entries   int
	Indexes   int
	Harvest   harvest.Stats
	Annotate  annotate.Stats
}

// Indexer indexes documents. Terms and entries accumulate across calls, so
// documents indexed by the same Indexer share one index. It is not safe for
// concurrent use.
type Indexer struct {
	Registry *terms.Registry
	Entries  *index.Set

	cfg       Config
	runID     uuid.UUID
	logger    *slog.Logger
	harvester *harvest.Harvester
	builder   *index.Builder

	documents int
	indexes   int
	stats     annotate.Stats
}

// New returns an Indexer with an empty registry.
func New(cfg Config) (*Indexer, error) {
	cfg.defaults()

	runID := uuid.New()
	logger := cfg.Logger.With("run", runID.String())

	reg := terms.NewRegistry()
	kinds := make([]string, 0, len(cfg.CategoryPatterns))
	for kind := range cfg.CategoryPatterns {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		tmpl := cfg.CategoryPatterns[kind]
		if err := reg.SetTemplate(kind, tmpl.Prefix, tmpl.Suffix); err != nil {
			return nil, fmt.Errorf("category pattern: %w", err)
		}
	}

	lister := fsscan.NewLister()
	lister.Logger = logger

	return &Indexer{
		Registry:  reg,
		Entries:   index.NewSet(),
		cfg:       cfg,
		runID:     runID,
		logger:    logger,
		harvester: harvest.New(reg, lister, logger),
		builder:   &index.Builder{Title: cfg.IndexTitle, AnchorPrefix: cfg.AnchorPrefix},
	}, nil
}

// RunID identifies this Indexer in log records.
func (ix *Indexer) RunID() string {
	return ix.runID.String()
}

// ScanFile harvests terms from a source file.
func (ix *Indexer) ScanFile(path string) error {
	return ix.harvester.ScanFile(path)
}

// ScanDir harvests terms from the files under dir matching mask.
func (ix *Indexer) ScanDir(dir, mask string, recurse bool) error {
	return ix.harvester.ScanDir(dir, mask, recurse)
}

// RunScript executes an index script against the registry.
func (ix *Indexer) RunScript(path string) error {
	s := &terms.Script{
		Registry: ix.Registry,
		Scanner:  ix.harvester,
		BasePath: ix.cfg.BasePath,
		Logger:   ix.logger,
	}
	return s.RunFile(path)
}

// IndexDocument reads a document from r, annotates it and writes the result
// to w. Index placeholders are expanded only in internal index mode.
func (ix *Indexer) IndexDocument(r io.Reader, w io.Writer) (annotate.Stats, error) {
	doc, err := xmltree.ReadDocument(r)
	if err != nil {
		return annotate.Stats{}, err
	}

	a := annotate.New(ix.Registry, ix.Entries, annotate.Options{
		NoDuplicates:  ix.cfg.NoDuplicates,
		InternalIndex: ix.cfg.InternalIndex,
		Logger:        ix.logger,
	})
	a.Annotate(doc.Root)
	// With markers in place the DocBook toolchain builds the index, so
	// placeholders are left for it.
	if ix.cfg.InternalIndex {
		for _, p := range a.Placeholders() {
			ix.builder.Generate(p, ix.Entries)
			ix.indexes++
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return a.Stats(), fmt.Errorf("write document: %w", err)
	}
	ix.documents++
	ix.stats = ix.stats.Add(a.Stats())
	return a.Stats(), nil
}

// IndexFile indexes the document at in and writes it to out. The input is
// read completely before out is created, so in and out may be the same file.
func (ix *Indexer) IndexFile(in, out string) (annotate.Stats, error) {
	ix.logger.Info("indexing document", "in", in, "out", out, "terms", ix.Registry.Len())

	data, err := os.ReadFile(in)
	if err != nil {
		return annotate.Stats{}, fmt.Errorf("read input: %w", err)
	}

	var buf bytes.Buffer
	stats, err := ix.IndexDocument(bytes.NewReader(data), &buf)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", in, err)
	}

	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return stats, fmt.Errorf("write output: %w", err)
	}
	return stats, nil
}

// Summary returns the totals so far.
func (ix *Indexer) Summary() Summary {
	return Summary{
		RunID:     ix.RunID(),
		Documents: ix.documents,
		Terms:     ix.Registry.Len(),
		Rules:     len(ix.Registry.Rules()),
		Entries:   ix.Entries.Len(),
		Indexes:   ix.indexes,
		Harvest:   ix.harvester.Stats(),
		Annotate:  ix.stats,
	}
}
