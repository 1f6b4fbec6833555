package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/itsmostafa/autoindex/internal/autoindex"
	"github.com/itsmostafa/autoindex/internal/config"
	"github.com/itsmostafa/autoindex/internal/report"
)

type stepKind int

const (
	stepScan stepKind = iota
	stepScript
)

// step registers terms, either by harvesting a source file or by running a
// script. Steps run in the order given, which decides which registration of
// a term comes first.
type step struct {
	kind stepKind
	path string
}

type job struct {
	in    string
	out   string
	steps []step
}

// usageError reports missing or malformed command-line input.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return "usage: " + e.msg
}

// parseArgs reads in=, out=, scan= and script= arguments.
func parseArgs(args []string) (*job, error) {
	j := &job{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || value == "" {
			return nil, &usageError{fmt.Sprintf("expected key=value argument, got %q", arg)}
		}
		switch key {
		case "in":
			j.in = value
		case "out":
			j.out = value
		case "scan":
			j.steps = append(j.steps, step{stepScan, value})
		case "script":
			j.steps = append(j.steps, step{stepScript, value})
		default:
			return nil, &usageError{fmt.Sprintf("unknown argument %q (want in=, out=, scan= or script=)", key)}
		}
	}
	return j, nil
}

// withConfig fills unset input and output from cfg and runs the configured
// scans and scripts ahead of those given on the command line.
func (j *job) withConfig(cfg *config.Config) {
	if j.in == "" {
		j.in = cfg.Input
	}
	if j.out == "" {
		j.out = cfg.Output
	}
	var steps []step
	for _, p := range cfg.Scans {
		steps = append(steps, step{stepScan, p})
	}
	for _, p := range cfg.Scripts {
		steps = append(steps, step{stepScript, p})
	}
	j.steps = append(steps, j.steps...)
}

func (j *job) validate() error {
	switch {
	case j.in == "" && j.out == "":
		return &usageError{"no input or output document (in=PATH out=PATH)"}
	case j.in == "":
		return &usageError{"no input document (in=PATH)"}
	case j.out == "":
		return &usageError{"no output document (out=PATH)"}
	}
	return nil
}

func (j *job) scripts() []string {
	return j.paths(stepScript)
}

func (j *job) scans() []string {
	return j.paths(stepScan)
}

func (j *job) paths(kind stepKind) []string {
	var out []string
	for _, s := range j.steps {
		if s.kind == kind {
			out = append(out, s.path)
		}
	}
	return out
}

// run performs one complete indexing run and writes its summary to w.
func (j *job) run(cfg *config.Config, logger *slog.Logger, w io.Writer) (autoindex.Summary, error) {
	report.FormatHeader(w, report.Header{Input: j.in, Output: j.out, Scripts: j.scripts(), Scans: j.scans()})

	ix, err := autoindex.New(cfg.Indexer(logger))
	if err != nil {
		return autoindex.Summary{}, err
	}

	err = j.execute(ix, cfg.ScanMask)
	summary := ix.Summary()
	report.FormatSummary(w, summary, err)
	return summary, err
}

// execute runs the steps and indexes the document. A scan of a directory
// harvests every file below it whose name matches mask.
func (j *job) execute(ix *autoindex.Indexer, mask string) error {
	for _, s := range j.steps {
		var err error
		switch s.kind {
		case stepScan:
			if info, statErr := os.Stat(s.path); statErr == nil && info.IsDir() {
				err = ix.ScanDir(s.path, mask, true)
			} else {
				err = ix.ScanFile(s.path)
			}
		case stepScript:
			err = ix.RunScript(s.path)
		}
		if err != nil {
			return err
		}
	}
	_, err := ix.IndexFile(j.in, j.out)
	return err
}
