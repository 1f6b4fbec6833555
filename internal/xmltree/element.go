// Package xmltree implements the small markup subset used by DocBook and
// BoostBook sources: elements, double-quoted attributes, text runs and
// comments. It is not a general XML toolkit: there are no namespaces, no
// entity expansion and no CDATA sections. Text and attribute values are kept
// exactly as written so that a parsed tree serializes back byte for byte.
package xmltree

import "strings"

// Attr is a single name="value" pair. Values are stored raw.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the document tree. An empty Name denotes a text node,
// whose content lives in Text.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
	Text     string
}

// NewText returns a text node holding s.
func NewText(s string) *Element {
	return &Element{Text: s}
}

// NewElement returns an element named name with the given children.
func NewElement(name string, children ...*Element) *Element {
	return &Element{Name: name, Children: children}
}

// IsText reports whether e is an anonymous text node.
func (e *Element) IsText() bool {
	return e.Name == ""
}

// Attr returns the value of the first attribute called name.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr replaces the first attribute called name, or appends a new one.
func (e *Element) SetAttr(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// Append adds children at the end of e.
func (e *Element) Append(children ...*Element) {
	e.Children = append(e.Children, children...)
}

// Prepend inserts child as the first child of e.
func (e *Element) Prepend(child *Element) {
	e.Children = append(e.Children, nil)
	copy(e.Children[1:], e.Children)
	e.Children[0] = child
}

// Child returns the first direct child named name.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ConsolidatedText returns the text of e and all of its descendants joined
// with single spaces, with whitespace runs collapsed and the ends trimmed.
func (e *Element) ConsolidatedText() string {
	var b strings.Builder
	e.collect(&b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func (e *Element) collect(b *strings.Builder) {
	b.WriteString(e.Text)
	for _, c := range e.Children {
		b.WriteByte(' ')
		c.collect(b)
	}
}

// String serializes e. Errors cannot occur when writing to a builder.
func (e *Element) String() string {
	var b strings.Builder
	_ = Write(&b, e)
	return b.String()
}
