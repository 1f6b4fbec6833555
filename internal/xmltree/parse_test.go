package xmltree

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("nested elements and text runs", func(t *testing.T) {
		root, err := Parse(strings.NewReader(`<section id="s1"><title>Intro</title>Some <emphasis>bold</emphasis> text</section>`))
		require.NoError(t, err)

		assert.Equal(t, "section", root.Name)
		id, ok := root.Attr("id")
		assert.True(t, ok)
		assert.Equal(t, "s1", id)

		require.Len(t, root.Children, 4)
		assert.Equal(t, "title", root.Children[0].Name)
		assert.Equal(t, "Some ", root.Children[1].Text)
		assert.True(t, root.Children[1].IsText())
		assert.Equal(t, "emphasis", root.Children[2].Name)
		assert.Equal(t, " text", root.Children[3].Text)
	})

	t.Run("self-closing element", func(t *testing.T) {
		root, err := Parse(strings.NewReader(`<para>a<index type="class_name" />b</para>`))
		require.NoError(t, err)
		require.Len(t, root.Children, 3)
		idx := root.Children[1]
		assert.Equal(t, "index", idx.Name)
		assert.Empty(t, idx.Children)
		typ, _ := idx.Attr("type")
		assert.Equal(t, "class_name", typ)
	})

	t.Run("attributes keep insertion order", func(t *testing.T) {
		root, err := Parse(strings.NewReader(`<link linkend="x" role = "y" zeta="z"/>`))
		require.NoError(t, err)
		assert.Equal(t, []Attr{{"linkend", "x"}, {"role", "y"}, {"zeta", "z"}}, root.Attrs)
	})

	t.Run("comments are discarded", func(t *testing.T) {
		root, err := Parse(strings.NewReader(`<!-- lead --><a><!-- inner - with -- dashes -->x<b/></a>`))
		require.NoError(t, err)
		require.Len(t, root.Children, 2)
		assert.Equal(t, "x", root.Children[0].Text)
		assert.Equal(t, "b", root.Children[1].Name)
	})

	t.Run("end tag with whitespace", func(t *testing.T) {
		root, err := Parse(strings.NewReader("<a>x</ a >"))
		require.NoError(t, err)
		assert.Equal(t, "<a>x</a>", root.String())
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		eof   bool
	}{
		{"mismatched end tag", "<a><b></a></b>", "does not match", false},
		{"missing equals", `<a id"x"></a>`, `expected '='`, false},
		{"missing quote", `<a id=x></a>`, `expected '"'`, false},
		{"slash without close", `<a/ b>`, `expected '>'`, false},
		{"eof in content", "<a>text", "unexpected end of input", true},
		{"eof in attribute", `<a id="x`, "unexpected end of input", true},
		{"eof in comment", "<a><!-- never closed", "unexpected end of input", true},
		{"bad comment", "<a><!DOCTYPE x></a>", "invalid comment", false},
		{"missing name", "<a><=/></a>", "expected name", false},
		{"empty input", "", "unexpected end of input", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected ParseError, got %T", err)
			assert.Contains(t, perr.Error(), tt.want)
			assert.Equal(t, tt.eof, errors.Is(err, ErrUnexpectedEOF))
		})
	}
}

func TestParseErrorLine(t *testing.T) {
	_, err := Parse(strings.NewReader("<a>\n<b>\n</c>\n</a>"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Line)
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		`<article><title>Intro</title><para>Widgets are useful.</para></article>`,
		"<a x=\"1\" y=\"2\">\n  <b>text &amp; more</b>\n  tail\n</a>",
		`<a><b></b><c>x<d>y</d>z</c></a>`,
		`<a></a>`,
	}

	for _, in := range inputs {
		first, err := Parse(strings.NewReader(in))
		require.NoError(t, err)
		once := first.String()

		second, err := Parse(strings.NewReader(once))
		require.NoError(t, err)
		assert.Equal(t, once, second.String())
		assert.Equal(t, in, once)
	}
}

func TestRoundTripBuiltTree(t *testing.T) {
	tree := NewElement("section",
		NewElement("title", NewText("Index")),
		&Element{Name: "para", Text: "own text", Children: []*Element{NewText("child ")}},
	)
	tree.SetAttr("id", "idx")

	serialized := tree.String()
	assert.Equal(t, `<section id="idx"><title>Index</title><para>child own text</para></section>`, serialized)

	reparsed, err := Parse(strings.NewReader(serialized))
	require.NoError(t, err)
	assert.Equal(t, serialized, reparsed.String())
}

func TestWriteTextNode(t *testing.T) {
	assert.Equal(t, "plain", NewText("plain").String())
}

func TestReadDocument(t *testing.T) {
	input := "<?xml version=\"1.0\"?>\n<!DOCTYPE article PUBLIC \"-//x\" \"y.dtd\" [\n<!ENTITY foo \"bar\">\n]>\n<article><para>x</para></article>\n"

	doc, err := ReadDocument(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "<?xml version=\"1.0\"?>\n<!DOCTYPE article PUBLIC \"-//x\" \"y.dtd\" [\n<!ENTITY foo \"bar\">\n]>\n", doc.Header)
	assert.Equal(t, "article", doc.Root.Name)

	var out strings.Builder
	n, err := doc.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(out.Len()), n)
	assert.Equal(t, doc.Header+"\n<article><para>x</para></article>", out.String())
}

func TestReadDocumentWithoutHeader(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader("  <a/>"))
	require.NoError(t, err)
	assert.Empty(t, doc.Header)
	assert.Equal(t, "a", doc.Root.Name)
}
