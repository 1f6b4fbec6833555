package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/itsmostafa/autoindex/internal/fsscan"
	"github.com/itsmostafa/autoindex/internal/harvest"
	"github.com/itsmostafa/autoindex/internal/report"
	"github.com/itsmostafa/autoindex/internal/terms"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var scanMask string
var scanRecursive bool
var scanFormat string

var scanCmd = &cobra.Command{
	Use:   "scan PATH...",
	Short: "List the terms harvested from source files",
	Long: `Harvest class, typedef, macro and function names from the given source files
and directories and print them without indexing any document.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("mask") {
			scanMask = cfg.ScanMask
		}

		reg := terms.NewRegistry()
		for kind, p := range cfg.Indexer(nil).CategoryPatterns {
			if err := reg.SetTemplate(kind, p.Prefix, p.Suffix); err != nil {
				return err
			}
		}
		h := harvest.New(reg, fsscan.NewLister(), slog.Default())
		if err := scanPaths(h, args, scanMask, scanRecursive); err != nil {
			return err
		}
		return printTerms(cmd.OutOrStdout(), reg.Terms(), scanFormat)
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanMask, "mask", "m", "", "File name pattern for directories (default from config)")
	scanCmd.Flags().BoolVarP(&scanRecursive, "recursive", "r", false, "Descend into subdirectories")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "text", "Output format (text, yaml)")
	rootCmd.AddCommand(scanCmd)
}

func scanPaths(h *harvest.Harvester, paths []string, mask string, recursive bool) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if info.IsDir() {
			err = h.ScanDir(p, mask, recursive)
		} else {
			err = h.ScanFile(p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// termRecord is the YAML form of a harvested term.
type termRecord struct {
	Term     string `yaml:"term"`
	Category string `yaml:"category,omitempty"`
	Pattern  string `yaml:"pattern"`
}

func printTerms(w io.Writer, list []*terms.Term, format string) error {
	switch format {
	case "text":
		report.FormatTerms(w, list)
		return nil
	case "yaml":
		records := make([]termRecord, 0, len(list))
		for _, t := range list {
			records = append(records, termRecord{Term: t.Term, Category: t.Category, Pattern: t.Match.String()})
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (want text or yaml)", format)
}
