package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/itsmostafa/autoindex/internal/annotate"
	"github.com/itsmostafa/autoindex/internal/autoindex"
	"github.com/itsmostafa/autoindex/internal/harvest"
	"github.com/itsmostafa/autoindex/internal/terms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in))
	}
}

func TestFormatSummary(t *testing.T) {
	s := autoindex.Summary{
		Terms:    12,
		Rules:    2,
		Entries:  1500,
		Indexes:  1,
		Harvest:  harvest.Stats{Files: 3, Skipped: 1},
		Annotate: annotate.Stats{Sections: 4, Matches: 7, Markers: 14},
	}

	var b strings.Builder
	FormatSummary(&b, s, nil)
	out := b.String()
	assert.Contains(t, out, "Index Complete")
	assert.Contains(t, out, "1,500")
	assert.Contains(t, out, "Rewrites:")
	assert.Contains(t, out, "14")
	assert.Contains(t, out, "OK")

	b.Reset()
	FormatSummary(&b, s, errors.New("boom"))
	assert.Contains(t, b.String(), "ERROR")
}

func TestFormatHeader(t *testing.T) {
	var b strings.Builder
	FormatHeader(&b, Header{Input: "doc.xml", Output: "out.xml", Scripts: []string{"a.idx", "b.idx"}})
	out := b.String()
	assert.Contains(t, out, "doc.xml")
	assert.Contains(t, out, "a.idx, b.idx")
	assert.NotContains(t, out, "Scans:")
}

func TestFormatTerms(t *testing.T) {
	reg := terms.NewRegistry()
	_, err := reg.AddExplicit("widget", "", "", "class_name")
	require.NoError(t, err)
	_, err = reg.AddExplicit("smart pointer", "", "", "")
	require.NoError(t, err)

	var b strings.Builder
	FormatTerms(&b, reg.Terms())
	out := b.String()
	assert.Contains(t, out, "widget")
	assert.Contains(t, out, "class_name")
	assert.Contains(t, out, "2 terms")
}
