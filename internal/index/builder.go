package index

import (
	"strconv"

	"github.com/itsmostafa/autoindex/internal/xmltree"
)

// Default rendering parameters.
const (
	DefaultTitle        = "Index"
	DefaultAnchorPrefix = "idx_id_"
)

// Builder renders index placeholders. Anchor ids are unique for the life of
// the builder, so one builder should serve a whole run.
type Builder struct {
	Title        string
	AnchorPrefix string

	next int
}

// NewBuilder returns a builder using the default title and anchor prefix.
func NewBuilder() *Builder {
	return &Builder{Title: DefaultTitle, AnchorPrefix: DefaultAnchorPrefix}
}

// NextID mints a fresh anchor id.
func (b *Builder) NextID() string {
	prefix := b.AnchorPrefix
	if prefix == "" {
		prefix = DefaultAnchorPrefix
	}
	id := prefix + strconv.Itoa(b.next)
	b.next++
	return id
}

// Generate turns placeholder into an index section listing entries. A
// non-empty type attribute on the placeholder restricts the index to entries
// of that category. Entries with an empty key are not listed.
//
// The section holds a navigation paragraph with one link per letter and a
// variablelist with one varlistentry per letter; each letter's listitem
// nests a variablelist of primary entries, and each primary entry a
// simplelist of its sub-entries.
func (b *Builder) Generate(placeholder *xmltree.Element, entries *Set) {
	category, _ := placeholder.Attr("type")
	hasTitle := placeholder.Child("title") != nil

	navbar := xmltree.NewElement("para")
	list := xmltree.NewElement("variablelist")
	placeholder.Append(navbar, list)

	letter := ""
	var sublist *xmltree.Element
	for _, e := range entries.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		l := e.Letter()
		if l == "" {
			continue
		}
		if l != letter || sublist == nil {
			letter = l
			id := b.NextID()

			sublist = xmltree.NewElement("variablelist")
			group := xmltree.NewElement("varlistentry",
				&xmltree.Element{Name: "term", Text: letter},
				xmltree.NewElement("listitem", sublist),
			)
			group.SetAttr("id", id)
			list.Append(group)

			navbar.Append(link(letter, id), xmltree.NewText(" "))
		}

		term := xmltree.NewElement("term")
		setLinkOrText(term, e)
		secondary := xmltree.NewElement("simplelist")
		for _, sub := range e.Children.Entries() {
			para := xmltree.NewElement("para")
			setLinkOrText(para, sub)
			secondary.Append(xmltree.NewElement("member", para))
		}
		sublist.Append(xmltree.NewElement("varlistentry",
			term,
			xmltree.NewElement("listitem", secondary),
		))
	}

	placeholder.Name = "section"
	placeholder.Attrs = nil
	if !hasTitle {
		title := b.Title
		if title == "" {
			title = DefaultTitle
		}
		placeholder.Prepend(&xmltree.Element{Name: "title", Text: title})
	}
}

func link(text, target string) *xmltree.Element {
	l := &xmltree.Element{Name: "link", Text: text}
	l.SetAttr("linkend", target)
	return l
}

// setLinkOrText fills parent with e's key, as a link when e has an id.
func setLinkOrText(parent *xmltree.Element, e *Entry) {
	if e.ID == "" {
		parent.Text = e.Key
		return
	}
	parent.Append(link(e.Key, e.ID))
}
