// Package pattern wraps github.com/dlclark/regexp2 as the matcher used for
// index terms, section-id constraints, title rewrites and source scanning.
//
// Patterns use Perl syntax. The word anchors \< and \> and the POSIX bracket
// classes ([[:space:]], [[:alpha:]], ...) found in older index scripts are
// translated to their regexp2 equivalents before compilation.
package pattern

import (
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// Flags select compilation options.
type Flags int

const (
	// IgnoreCase makes the pattern case-insensitive.
	IgnoreCase Flags = 1 << iota
	// Multiline makes ^ and $ match at line boundaries.
	Multiline
)

// Matcher is a compiled pattern.
type Matcher struct {
	expr   string
	re     *regexp2.Regexp
	anchor *regexp2.Regexp
}

// Compile translates and compiles expr.
func Compile(expr string, flags Flags) (*Matcher, error) {
	var opts regexp2.RegexOptions
	if flags&IgnoreCase != 0 {
		opts |= regexp2.IgnoreCase
	}
	if flags&Multiline != 0 {
		opts |= regexp2.Multiline
	}

	translated := translate(expr)
	re, err := regexp2.Compile(translated, opts)
	if err != nil {
		return nil, err
	}
	anchor, err := regexp2.Compile(`\A(?:`+translated+`)\z`, opts)
	if err != nil {
		return nil, err
	}
	return &Matcher{expr: expr, re: re, anchor: anchor}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string, flags Flags) *Matcher {
	m, err := Compile(expr, flags)
	if err != nil {
		panic(`pattern: Compile(` + expr + `): ` + err.Error())
	}
	return m
}

// String returns the source expression as given to Compile.
func (m *Matcher) String() string {
	return m.expr
}

// Find reports whether the pattern occurs anywhere in text.
// regexp2 only fails on match timeouts, which are not configured here.
func (m *Matcher) Find(text string) bool {
	ok, _ := m.re.MatchString(text)
	return ok
}

// Match reports whether the pattern matches the whole of text.
func (m *Matcher) Match(text string) bool {
	ok, _ := m.anchor.MatchString(text)
	return ok
}

// ReplaceWhole substitutes template for text when the pattern matches all of
// it. ok is false, and text is returned unchanged, otherwise.
func (m *Matcher) ReplaceWhole(text, template string) (string, bool) {
	if !m.Match(text) {
		return text, false
	}
	out, err := m.anchor.Replace(text, template, -1, 1)
	if err != nil {
		return text, false
	}
	return out, true
}

// FindAll returns the text of capture group n for every successive match.
// Matches where the group did not participate are skipped.
func (m *Matcher) FindAll(text string, n int) []string {
	var out []string
	match, _ := m.re.FindStringMatch(text)
	for match != nil {
		if g := match.GroupByNumber(n); g != nil && len(g.Captures) > 0 {
			out = append(out, g.String())
		}
		match, _ = m.re.FindNextMatch(match)
	}
	return out
}

// Submatches returns, for every successive match, the text of each group
// from 0 to the highest numbered group. Groups that did not participate are
// empty strings.
func (m *Matcher) Submatches(text string) [][]string {
	var out [][]string
	match, _ := m.re.FindStringMatch(text)
	for match != nil {
		groups := match.Groups()
		row := make([]string, len(groups))
		for i := range groups {
			if len(groups[i].Captures) > 0 {
				row[i] = groups[i].String()
			}
		}
		out = append(out, row)
		match, _ = m.re.FindNextMatch(match)
	}
	return out
}

// Escape quotes every metacharacter in s.
func Escape(s string) string {
	return regexp2.Escape(s)
}

// Word returns an expression matching s as a whole word.
func Word(s string) string {
	return `(?<!\w)` + Escape(s) + `(?!\w)`
}

// Term returns the default expression for an explicitly declared index term:
// the term as a whole word, optionally followed by a plural suffix when it
// ends in a letter, so "Widget" also finds "Widgets".
func Term(s string) string {
	if s == "" {
		return ""
	}
	last := []rune(s)
	if !unicode.IsLetter(last[len(last)-1]) {
		return Word(s)
	}
	return `(?<!\w)` + Escape(s) + `(?:e?s)?(?!\w)`
}

var posixClasses = map[string]string{
	"alpha":  `a-zA-Z`,
	"digit":  `0-9`,
	"alnum":  `a-zA-Z0-9`,
	"upper":  `A-Z`,
	"lower":  `a-z`,
	"space":  `\s`,
	"blank":  ` \t`,
	"xdigit": `0-9A-Fa-f`,
	"word":   `\w`,
	"punct":  `!-/:-@\[-` + "`" + `{-~`,
}

// translate rewrites \<, \> and POSIX bracket classes into regexp2 syntax.
func translate(expr string) string {
	var b strings.Builder
	inClass := false
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\\' && i+1 < len(expr):
			next := expr[i+1]
			i++
			switch {
			case !inClass && next == '<':
				b.WriteString(`\b(?=\w)`)
			case !inClass && next == '>':
				b.WriteString(`\b(?<=\w)`)
			default:
				b.WriteByte(c)
				b.WriteByte(next)
			}
		case c == '[' && inClass && strings.HasPrefix(expr[i:], "[:"):
			end := strings.Index(expr[i+2:], ":]")
			if end >= 0 {
				if repl, ok := posixClasses[expr[i+2:i+2+end]]; ok {
					b.WriteString(repl)
					i += end + 3
					continue
				}
			}
			b.WriteByte(c)
		case c == '[' && !inClass:
			inClass = true
			b.WriteByte(c)
			if i+1 < len(expr) && expr[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
			if i+1 < len(expr) && expr[i+1] == ']' {
				b.WriteByte(']')
				i++
			}
		case c == ']' && inClass:
			inClass = false
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
