// Package annotate walks a document tree, finds registered index terms in its
// text and records each hit against the enclosing section.
//
// Two scope chains are threaded through the walk. The id chain resolves the
// nearest enclosing element carrying a non-empty id attribute (the zone); the
// title chain resolves the nearest enclosing section title. A <title> element
// sets the title of the scope that contains it, not its own.
package annotate

import (
	"log/slog"
	"strings"

	"github.com/itsmostafa/autoindex/internal/index"
	"github.com/itsmostafa/autoindex/internal/terms"
	"github.com/itsmostafa/autoindex/internal/xmltree"
)

// Element names with special meaning during the walk.
const (
	TitleElement       = "title"
	PlaceholderElement = "index"
	MarkerElement      = "indexterm"
)

// Options control what the annotator records and inserts.
type Options struct {
	// NoDuplicates records a term at most once per zone.
	NoDuplicates bool
	// InternalIndex suppresses marker insertion; the hits are still
	// accumulated for generated index sections.
	InternalIndex bool
	Logger        *slog.Logger
}

// Stats counts what one annotator did.
type Stats struct {
	Sections     int
	TextNodes    int
	Matches      int
	Markers      int
	Placeholders int
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Sections:     s.Sections + o.Sections,
		TextNodes:    s.TextNodes + o.TextNodes,
		Matches:      s.Matches + o.Matches,
		Markers:      s.Markers + o.Markers,
		Placeholders: s.Placeholders + o.Placeholders,
	}
}

type foundKey struct {
	zone string
	term string
}

type idFrame struct {
	id   string
	prev *idFrame
}

func (f *idFrame) resolve() string {
	for ; f != nil; f = f.prev {
		if f.id != "" {
			return f.id
		}
	}
	return ""
}

type titleFrame struct {
	title string
	prev  *titleFrame
}

func (f *titleFrame) resolve() string {
	for ; f != nil; f = f.prev {
		if f.title != "" {
			return f.title
		}
	}
	return ""
}

// Annotator annotates one document. Registry and entry set may be shared
// between annotators run one after another.
type Annotator struct {
	registry *terms.Registry
	entries  *index.Set
	opts     Options
	logger   *slog.Logger

	found        map[foundKey]struct{}
	placeholders []*xmltree.Element
	stats        Stats
}

// New returns an annotator filing hits for reg's terms into entries.
func New(reg *terms.Registry, entries *index.Set, opts Options) *Annotator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Annotator{
		registry: reg,
		entries:  entries,
		opts:     opts,
		logger:   logger,
		found:    make(map[foundKey]struct{}),
	}
}

// Annotate walks root depth-first, mutating it in place unless InternalIndex
// is set.
func (a *Annotator) Annotate(root *xmltree.Element) {
	a.walk(root, nil, nil, nil)
}

// Placeholders returns the index placeholders met so far, in document order.
func (a *Annotator) Placeholders() []*xmltree.Element {
	return a.placeholders
}

// Stats returns the counters so far.
func (a *Annotator) Stats() Stats {
	return a.stats
}

// Seen reports whether term has been recorded in zone.
func (a *Annotator) Seen(zone, term string) bool {
	_, ok := a.found[foundKey{zone, term}]
	return ok
}

func (a *Annotator) walk(node, parent *xmltree.Element, prevID *idFrame, prevTitle *titleFrame) {
	id := &idFrame{prev: prevID}
	id.id, _ = node.Attr("id")
	title := &titleFrame{prev: prevTitle}

	switch node.Name {
	case TitleElement:
		if prevTitle != nil {
			prevTitle.title = node.ConsolidatedText()
			a.stats.Sections++
			a.logger.Debug("indexing section", "title", prevTitle.title, "id", id.resolve())
		}
	case PlaceholderElement:
		a.placeholders = append(a.placeholders, node)
		a.stats.Placeholders++
		if parent != nil && isParagraph(parent.Name) && soleContent(parent, node) {
			parent.Name = ""
			parent.Attrs = nil
		}
	}

	if node.IsText() && strings.TrimSpace(node.Text) != "" {
		a.stats.TextNodes++
		a.match(node, parent, id.resolve(), title.resolve())
	}

	// Markers are prepended to node while its children are visited; the
	// index is shifted past them so no child is visited twice.
	for i := 0; i < len(node.Children); i++ {
		n := len(node.Children)
		a.walk(node.Children[i], node, id, title)
		i += len(node.Children) - n
	}
}

func (a *Annotator) match(node, parent *xmltree.Element, zone, rawTitle string) {
	display := a.registry.RewriteTitle(rawTitle, zone)

	for _, t := range a.registry.Terms() {
		if !t.Match.Find(node.Text) {
			continue
		}
		key := foundKey{zone, t.Term}
		if a.opts.NoDuplicates {
			if _, ok := a.found[key]; ok {
				continue
			}
		}
		if t.Zone != nil && !t.Zone.Find(zone) {
			continue
		}
		a.found[key] = struct{}{}
		a.stats.Matches++

		byTitle, _ := a.entries.Insert(index.NewEntry(display, ""))
		byTitle.Children.Insert(index.NewEntry(t.Term, zone))

		// The category sticks only to an entry this match creates.
		termEntry := index.NewEntry(t.Term, "")
		termEntry.Category = t.Category
		byTerm, _ := a.entries.Insert(termEntry)
		byTerm.Children.Insert(index.NewEntry(rawTitle, zone))

		if a.opts.InternalIndex || parent == nil {
			continue
		}
		parent.Prepend(marker(display, t.Term, ""))
		parent.Prepend(marker(t.Term, rawTitle, t.Category))
		a.stats.Markers += 2
	}
}

// marker builds <indexterm [type=category]><primary>..</primary><secondary>..</secondary></indexterm>.
func marker(primary, secondary, category string) *xmltree.Element {
	m := xmltree.NewElement(MarkerElement,
		xmltree.NewElement("primary", xmltree.NewText(primary)),
		xmltree.NewElement("secondary", xmltree.NewText(secondary)),
	)
	if category != "" {
		m.SetAttr("type", category)
	}
	return m
}

func isParagraph(name string) bool {
	return name == "para" || name == "simpara"
}

// soleContent reports whether child is the only non-blank content of parent.
func soleContent(parent, child *xmltree.Element) bool {
	if strings.TrimSpace(parent.Text) != "" {
		return false
	}
	for _, c := range parent.Children {
		if c == child {
			continue
		}
		if !c.IsText() || strings.TrimSpace(c.Text) != "" {
			return false
		}
	}
	return true
}
