// Package report renders run summaries for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/itsmostafa/autoindex/internal/autoindex"
	"github.com/itsmostafa/autoindex/internal/terms"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("160"))

	// dimStyle for muted labels
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for error indicators
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// boxStyle for summary box with rounded border
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(0, 1)

	// headerBoxStyle for the run header
	headerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(0, 1)

	// termStyle for term names in listings
	termStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	// categoryStyle for category labels
	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))
)

// Header describes what a run is about to do.
type Header struct {
	Input   string
	Output  string
	Scripts []string
	Scans   []string
}

// FormatHeader renders the run header.
func FormatHeader(w io.Writer, h Header) {
	content := fmt.Sprintf("%s %s\n%s %s",
		dimStyle.Render("Input:"), titleStyle.Render(h.Input),
		dimStyle.Render("Output:"), h.Output,
	)
	if len(h.Scripts) > 0 {
		content += fmt.Sprintf("\n%s %s", dimStyle.Render("Scripts:"), strings.Join(h.Scripts, ", "))
	}
	if len(h.Scans) > 0 {
		content += fmt.Sprintf("\n%s %s", dimStyle.Render("Scans:"), strings.Join(h.Scans, ", "))
	}
	fmt.Fprintln(w, headerBoxStyle.Render(content))
}

// FormatSummary renders the summary box for a run. err is the run's
// outcome and may be nil.
func FormatSummary(w io.Writer, s autoindex.Summary, err error) {
	status := successStyle.Render("OK")
	if err != nil {
		status = errorStyle.Render("ERROR")
	}

	line1 := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		dimStyle.Render("Terms:"), formatNumber(s.Terms),
		dimStyle.Render("Rewrites:"), formatNumber(s.Rules),
		dimStyle.Render("Entries:"), formatNumber(s.Entries),
		dimStyle.Render("Indexes:"), formatNumber(s.Indexes),
	)
	line2 := fmt.Sprintf("%s %s  %s %s  %s %s",
		dimStyle.Render("Sections:"), formatNumber(s.Annotate.Sections),
		dimStyle.Render("Matches:"), formatNumber(s.Annotate.Matches),
		dimStyle.Render("Markers:"), formatNumber(s.Annotate.Markers),
	)
	line3 := fmt.Sprintf("%s %s  %s %s  %s",
		dimStyle.Render("Scanned:"), formatNumber(s.Harvest.Files),
		dimStyle.Render("Skipped names:"), formatNumber(s.Harvest.Skipped),
		status,
	)

	content := titleStyle.Render("Index Complete") + "\n" + line1 + "\n" + line2 + "\n" + line3
	fmt.Fprintln(w, boxStyle.Render(content))
}

// FormatTerms lists registered terms, one per line, with their category and
// match pattern.
func FormatTerms(w io.Writer, list []*terms.Term) {
	width := 0
	for _, t := range list {
		width = max(width, lipgloss.Width(t.Term))
	}
	for _, t := range list {
		name := termStyle.Render(t.Term + strings.Repeat(" ", width-lipgloss.Width(t.Term)))
		category := t.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(w, "%s  %s  %s\n", name, categoryStyle.Render(category), dimStyle.Render(t.Match.String()))
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%s terms", formatNumber(len(list)))))
}

// formatNumber adds commas to large numbers for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}
