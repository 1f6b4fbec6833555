package terms

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Scanner harvests terms from source files on behalf of !scan and !scan-path.
type Scanner interface {
	ScanFile(path string) error
	ScanDir(dir, mask string, recurse bool) error
}

// ScriptError reports a malformed or failing script line. Line is zero when
// the script itself could not be read.
type ScriptError struct {
	Path string
	Line int
	Text string
	Msg  string
	Err  error
}

func (e *ScriptError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("script %s: %s", e.Path, e.Msg)
	}
	return fmt.Sprintf("script %s:%d: %s: %q", e.Path, e.Line, e.Msg, e.Text)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Script executes index scripts against a registry.
//
// Each line is one of:
//
//	# comment
//	!scan FILE
//	!scan-path DIR MASK [true]
//	!rewrite-name PATTERN REPLACEMENT
//	!rewrite-id PATTERN TITLE
//	!exclude TERM...
//	!set-category-pattern class|function|typedef PREFIX SUFFIX
//	TERM [PATTERN [SECTION-ID-PATTERN [CATEGORY]]]
//
// Fields containing whitespace are double-quoted; inside quotes a backslash
// keeps the next character from ending the field. Empty quoted fields ("")
// leave an optional field unset.
type Script struct {
	Registry *Registry
	Scanner  Scanner
	// BasePath resolves relative scan paths. Defaults to the directory of
	// the script being run.
	BasePath string
	Logger   *slog.Logger
}

// RunFile opens and runs the script at path.
func (s *Script) RunFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &ScriptError{Path: path, Msg: "could not open script", Err: err}
	}
	defer f.Close()
	return s.Run(f, path)
}

// Run executes the script read from r. name is used for diagnostics and, if
// BasePath is unset, as the anchor for relative paths.
func (s *Script) Run(r io.Reader, name string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("processing script", "path", name)

	base := s.BasePath
	if base == "" {
		base = filepath.Dir(name)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := s.exec(line, base); err != nil {
			return &ScriptError{Path: name, Line: lineNum, Text: line, Msg: err.Error(), Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return &ScriptError{Path: name, Line: lineNum, Msg: "read failed", Err: err}
	}
	return nil
}

func (s *Script) exec(line, base string) error {
	fields, err := splitFields(line)
	if err != nil {
		return err
	}
	directive, args := fields[0], fields[1:]
	if !strings.HasPrefix(directive, "!") {
		return s.entry(fields)
	}

	switch directive {
	case "!scan":
		if len(args) != 1 {
			return fmt.Errorf("!scan takes one file")
		}
		if s.Scanner == nil {
			return fmt.Errorf("source scanning is not available")
		}
		return s.Scanner.ScanFile(resolve(base, args[0]))

	case "!scan-path":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("!scan-path takes a directory, a file name pattern and an optional recurse flag")
		}
		if s.Scanner == nil {
			return fmt.Errorf("source scanning is not available")
		}
		recurse := len(args) == 3 && args[2] == "true"
		return s.Scanner.ScanDir(resolve(base, args[0]), args[1], recurse)

	case "!rewrite-name", "!rewrite-id":
		if len(args) != 2 {
			return fmt.Errorf("%s takes a pattern and a replacement", directive)
		}
		rule, err := NewRewriteRule(args[0], args[1], directive == "!rewrite-id")
		if err != nil {
			return err
		}
		s.Registry.AddRule(rule)
		return nil

	case "!exclude":
		if len(args) == 0 {
			return fmt.Errorf("!exclude takes at least one term")
		}
		for _, term := range args {
			s.Registry.Remove(term)
		}
		return nil

	case "!set-category-pattern":
		if len(args) != 3 {
			return fmt.Errorf("!set-category-pattern takes a category, a prefix and a suffix")
		}
		return s.Registry.SetTemplate(args[0], args[1], args[2])
	}
	return fmt.Errorf("unknown directive %s", directive)
}

// entry registers a TERM [PATTERN [SECTION-ID [CATEGORY]]] line.
func (s *Script) entry(fields []string) error {
	if len(fields) > 4 {
		return fmt.Errorf("too many fields in index entry")
	}
	fields = append(fields, make([]string, 4-len(fields))...)
	_, err := s.Registry.AddExplicit(fields[0], fields[1], fields[2], fields[3])
	return err
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

// splitFields splits a line into bare or double-quoted fields. Quotes are
// removed; the text between them is kept verbatim, backslashes included.
func splitFields(line string) ([]string, error) {
	var fields []string
	i := 0
	for i < len(line) {
		for i < len(line) && isBlank(line[i]) {
			i++
		}
		if i == len(line) {
			break
		}

		start := i
		if line[i] == '"' {
			i++
			for i < len(line) && line[i] != '"' {
				if line[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(line) {
				return nil, fmt.Errorf("unterminated quoted field")
			}
			i++
			fields = append(fields, line[start+1:i-1])
		} else {
			for i < len(line) && !isBlank(line[i]) && line[i] != '"' {
				i++
			}
			fields = append(fields, line[start:i])
		}

		if i < len(line) && !isBlank(line[i]) {
			return nil, fmt.Errorf("expected whitespace after field %q", line[start:i])
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty line")
	}
	return fields, nil
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}
