package xmltree

import (
	"bufio"
	"io"
)

// Write serializes e: start tag with attributes in insertion order, children,
// own text, end tag. Text nodes are written as their raw text only.
func Write(w io.Writer, e *Element) error {
	bw := bufio.NewWriter(w)
	write(bw, e)
	return bw.Flush()
}

func write(w *bufio.Writer, e *Element) {
	if e.Name != "" {
		w.WriteByte('<')
		w.WriteString(e.Name)
		for _, a := range e.Attrs {
			w.WriteByte(' ')
			w.WriteString(a.Name)
			w.WriteString(`="`)
			w.WriteString(a.Value)
			w.WriteByte('"')
		}
		w.WriteByte('>')
	}
	for _, c := range e.Children {
		write(w, c)
	}
	w.WriteString(e.Text)
	if e.Name != "" {
		w.WriteString("</")
		w.WriteString(e.Name)
		w.WriteByte('>')
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
