package xmltree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnexpectedEOF is wrapped by a ParseError when input ends inside a construct.
var ErrUnexpectedEOF = errors.New("unexpected end of input")

// ParseError reports malformed markup.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("xml: line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Document is a parsed file: the verbatim prolog followed by the root element.
type Document struct {
	Header string
	Root   *Element
}

// ReadDocument reads the prolog and the root element from r.
func ReadDocument(r io.Reader) (*Document, error) {
	p := newParser(r)
	header, err := p.header()
	if err != nil {
		return nil, err
	}
	root, err := p.element()
	if err != nil {
		return nil, err
	}
	return &Document{Header: header, Root: root}, nil
}

// WriteTo writes the header, a newline and the serialized root.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if _, err := io.WriteString(cw, d.Header+"\n"); err != nil {
		return cw.n, err
	}
	err := Write(cw, d.Root)
	return cw.n, err
}

// Parse reads one element starting at the next '<' of r. Comments ahead of
// the element are skipped.
func Parse(r io.Reader) (*Element, error) {
	p := newParser(r)
	for {
		p.skipSpace()
		if !p.lookingAt("<!--") {
			break
		}
		if err := p.comment(); err != nil {
			return nil, err
		}
	}
	return p.element()
}

type parser struct {
	r    *bufio.Reader
	line int
}

func newParser(r io.Reader) *parser {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &parser{r: br, line: 1}
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof(what string) error {
	return &ParseError{Line: p.line, Msg: "unexpected end of input in " + what, Err: ErrUnexpectedEOF}
}

// next consumes one byte. ok is false at end of input.
func (p *parser) next() (byte, bool) {
	c, err := p.r.ReadByte()
	if err != nil {
		return 0, false
	}
	if c == '\n' {
		p.line++
	}
	return c, true
}

func (p *parser) peek() (byte, bool) {
	b, err := p.r.Peek(1)
	if err != nil {
		return 0, false
	}
	return b[0], true
}

func (p *parser) lookingAt(s string) bool {
	b, err := p.r.Peek(len(s))
	return err == nil && string(b) == s
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == '.' || c == ':'
}

func (p *parser) skipSpace() {
	for {
		c, ok := p.peek()
		if !ok || !isSpace(c) {
			return
		}
		p.next()
	}
}

func (p *parser) expect(delim byte, what string) error {
	p.skipSpace()
	c, ok := p.next()
	if !ok {
		return p.eof(what)
	}
	if c != delim {
		return p.errorf("expected %q in %s, found %q", delim, what, c)
	}
	return nil
}

func (p *parser) name(what string) (string, error) {
	p.skipSpace()
	var b strings.Builder
	for {
		c, ok := p.peek()
		if !ok {
			return "", p.eof(what)
		}
		if !isNameByte(c) {
			break
		}
		b.WriteByte(c)
		p.next()
	}
	if b.Len() == 0 {
		c, _ := p.peek()
		return "", p.errorf("expected name in %s, found %q", what, c)
	}
	return b.String(), nil
}

// header captures the leading <?...> and <!...> blocks verbatim, each
// followed by a newline, and stops in front of the root element.
func (p *parser) header() (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		if !p.lookingAt("<?") && !p.lookingAt("<!") {
			return b.String(), nil
		}
		depth := 0
		for {
			c, ok := p.next()
			if !ok {
				return "", p.eof("document header")
			}
			b.WriteByte(c)
			switch c {
			case '\\':
				if c, ok = p.next(); !ok {
					return "", p.eof("document header")
				}
				b.WriteByte(c)
				continue
			case '[':
				depth++
			case ']':
				depth--
			}
			if c == '>' && depth <= 0 {
				break
			}
		}
		b.WriteByte('\n')
	}
}

func (p *parser) comment() error {
	for _, want := range []byte("<!--") {
		c, ok := p.next()
		if !ok {
			return p.eof("comment")
		}
		if c != want {
			return p.errorf("invalid comment")
		}
	}
	dashes := 0
	for {
		c, ok := p.next()
		if !ok {
			return p.eof("comment")
		}
		switch {
		case c == '-':
			dashes++
		case c == '>' && dashes >= 2:
			return nil
		default:
			dashes = 0
		}
	}
}

func (p *parser) element() (*Element, error) {
	if err := p.expect('<', "start tag"); err != nil {
		return nil, err
	}
	name, err := p.name("start tag")
	if err != nil {
		return nil, err
	}
	e := &Element{Name: name}

	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.eof("start tag <" + name + ">")
		}
		if c == '/' {
			p.next()
			if err := p.expect('>', "empty element <"+name+"/>"); err != nil {
				return nil, err
			}
			return e, nil
		}
		if c == '>' {
			p.next()
			break
		}
		attr, err := p.attr(name)
		if err != nil {
			return nil, err
		}
		e.Attrs = append(e.Attrs, attr)
	}

	if err := p.content(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) attr(elem string) (Attr, error) {
	where := "attributes of <" + elem + ">"
	name, err := p.name(where)
	if err != nil {
		return Attr{}, err
	}
	if err := p.expect('=', where); err != nil {
		return Attr{}, err
	}
	if err := p.expect('"', where); err != nil {
		return Attr{}, err
	}
	var b strings.Builder
	for {
		c, ok := p.next()
		if !ok {
			return Attr{}, p.eof(where)
		}
		if c == '"' {
			break
		}
		b.WriteByte(c)
	}
	return Attr{Name: name, Value: b.String()}, nil
}

// content reads children of e up to and including its end tag.
func (p *parser) content(e *Element) error {
	where := "content of <" + e.Name + ">"
	for {
		c, ok := p.peek()
		if !ok {
			return p.eof(where)
		}
		if c != '<' {
			text, err := p.text(where)
			if err != nil {
				return err
			}
			e.Children = append(e.Children, NewText(text))
			continue
		}
		switch {
		case p.lookingAt("</"):
			return p.endTag(e.Name)
		case p.lookingAt("<!"):
			if err := p.comment(); err != nil {
				return err
			}
		default:
			child, err := p.element()
			if err != nil {
				return err
			}
			e.Children = append(e.Children, child)
		}
	}
}

func (p *parser) text(where string) (string, error) {
	var b strings.Builder
	for {
		c, ok := p.peek()
		if !ok {
			return "", p.eof(where)
		}
		if c == '<' {
			return b.String(), nil
		}
		b.WriteByte(c)
		p.next()
	}
}

func (p *parser) endTag(name string) error {
	p.next()
	p.next()
	end, err := p.name("end tag")
	if err != nil {
		return err
	}
	if end != name {
		return p.errorf("start tag <%s> does not match end tag </%s>", name, end)
	}
	return p.expect('>', "end tag </"+end+">")
}
