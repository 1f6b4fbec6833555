// Package harvest discovers index terms in source code. It recognises class
// and struct declarations, typedefs, macro definitions and function
// definitions with line-oriented patterns rather than a parser, so it will
// sometimes miss a name or pick up a spurious one.
package harvest

import (
	"fmt"
	"log/slog"

	"github.com/itsmostafa/autoindex/internal/fsscan"
	"github.com/itsmostafa/autoindex/internal/pattern"
	"github.com/itsmostafa/autoindex/internal/terms"
)

// Categories assigned to harvested terms.
const (
	CategoryClass    = "class_name"
	CategoryTypedef  = "typedef_name"
	CategoryMacro    = "macro_name"
	CategoryFunction = "function_name"
)

var (
	classExpr = pattern.MustCompile(
		`^\s*`+
			`(template\s*<[^;:{]+>\s*)?`+
			`(class|struct)\s*`+
			`(\b\w+\b([ \t]*\([^)]*\))?\s*)*`+
			`(\b\w+\b)\s*`+
			`(<[^;:{]+>)?\s*`+
			`(\{|:[^;{()]*\{)`,
		pattern.Multiline)
	typedefExpr  = pattern.MustCompile(`\btypedef\b[^;{}#]+?(\w+)\s*;`, 0)
	macroExpr    = pattern.MustCompile(`^\s*#\s*define\s+(\w+)`, pattern.Multiline)
	functionExpr = pattern.MustCompile(`\b(\w+)\s+(\w+)\s*\([^)]*\)\s*[{;]`, 0)
)

// keywords can never be a function's return type or name.
var keywords = map[string]bool{
	"if": true, "else": true, "while": true, "for": true, "switch": true,
	"case": true, "do": true, "return": true, "sizeof": true, "new": true,
	"delete": true, "throw": true, "goto": true, "catch": true, "typedef": true,
	"decltype": true, "alignof": true, "static_assert": true, "using": true,
}

// PatternError reports a harvested name whose match pattern failed to
// compile. The name is skipped; harvesting continues.
type PatternError struct {
	Name     string
	Category string
	Err      error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("cannot build pattern for %s %q: %v", e.Category, e.Name, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Result lists what one ScanText call did.
type Result struct {
	Added   []*terms.Term
	Skipped []*PatternError
}

// Stats accumulates over every scan a Harvester performs.
type Stats struct {
	Files   int
	Added   int
	Skipped int
}

// Harvester feeds names found in source files into a term registry. A name
// already registered under the same term is left alone, so whichever source
// registers a term first wins.
type Harvester struct {
	Registry *terms.Registry
	Lister   *fsscan.Lister
	Logger   *slog.Logger

	stats Stats
}

// New returns a harvester for reg. A nil lister or logger selects the
// defaults.
func New(reg *terms.Registry, lister *fsscan.Lister, logger *slog.Logger) *Harvester {
	if lister == nil {
		lister = fsscan.NewLister()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Harvester{Registry: reg, Lister: lister, Logger: logger}
}

// Stats returns the totals so far.
func (h *Harvester) Stats() Stats {
	return h.stats
}

// ScanFile reads path and harvests its names. A file that cannot be read is
// an error.
func (h *Harvester) ScanFile(path string) error {
	h.Logger.Debug("scanning file", "path", path)
	text, err := h.Lister.Read(path)
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	h.stats.Files++
	h.ScanText(path, text)
	return nil
}

// ScanDir harvests every file under dir whose name matches mask, descending
// into subdirectories when recurse is set.
func (h *Harvester) ScanDir(dir, mask string, recurse bool) error {
	m, err := pattern.Compile(mask, 0)
	if err != nil {
		return fmt.Errorf("file name pattern %q: %w", mask, err)
	}
	files, err := h.Lister.List(dir, m, recurse)
	if err != nil {
		return fmt.Errorf("scan directory %s: %w", dir, err)
	}
	h.Logger.Debug("scanning directory", "dir", dir, "mask", mask, "recurse", recurse, "files", len(files))
	for _, f := range files {
		if err := h.ScanFile(f); err != nil {
			return err
		}
	}
	return nil
}

// ScanText harvests names from source text. source only labels log records.
func (h *Harvester) ScanText(source, text string) Result {
	var res Result

	for _, m := range classExpr.Submatches(text) {
		h.add(&res, source, m[5], terms.KindClass, CategoryClass)
	}
	for _, name := range typedefExpr.FindAll(text, 1) {
		h.add(&res, source, name, terms.KindTypedef, CategoryTypedef)
	}
	for _, name := range macroExpr.FindAll(text, 1) {
		h.add(&res, source, name, terms.KindMacro, CategoryMacro)
	}
	for _, m := range functionExpr.Submatches(text) {
		if keywords[m[1]] || keywords[m[2]] {
			continue
		}
		h.add(&res, source, m[2], terms.KindFunction, CategoryFunction)
	}

	h.stats.Added += len(res.Added)
	h.stats.Skipped += len(res.Skipped)
	return res
}

func (h *Harvester) add(res *Result, source, name, kind, category string) {
	if name == "" || h.Registry.Has(name) {
		return
	}

	expr := pattern.Word(name)
	if kind != terms.KindMacro {
		tmpl := h.Registry.Template(kind)
		expr = tmpl.Prefix + expr + tmpl.Suffix
	}
	m, err := pattern.Compile(expr, 0)
	if err != nil {
		perr := &PatternError{Name: name, Category: category, Err: err}
		h.Logger.Warn("skipping name", "source", source, "error", perr)
		res.Skipped = append(res.Skipped, perr)
		return
	}

	h.Logger.Debug("indexing "+kind, "name", name, "source", source)
	t := &terms.Term{Term: name, Match: m, Category: category}
	h.Registry.Add(t)
	res.Added = append(res.Added, t)
}
