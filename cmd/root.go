package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/itsmostafa/autoindex/internal/config"
	"github.com/itsmostafa/autoindex/internal/version"
	"github.com/spf13/cobra"
)

var verbose bool
var configFile string

var rootCmd = &cobra.Command{
	Use:   "autoindex",
	Short: "Build back-of-book indexes for DocBook and BoostBook documents",
	Long: `autoindex finds index terms in a DocBook or BoostBook document and records
each occurrence against the enclosing section.

Terms come from index scripts or are harvested from C and C++ sources. By
default the document is annotated with indexterm markers and its <index/>
placeholders are left for the DocBook toolchain. With --internal-index no
markers are inserted and each placeholder is expanded into a letter-grouped
index section instead.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), verbose))
	},
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("autoindex %s\n", version.String()))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress, including every term and section indexed")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file (.yaml, .yml or .toml)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads --config when given, or returns the defaults.
func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Verbose && !verbose {
		verbose = true
		slog.SetDefault(newLogger(os.Stderr, true))
	}
	return cfg, nil
}
