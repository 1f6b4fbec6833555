package cmd

import (
	"log/slog"

	"github.com/itsmostafa/autoindex/internal/config"
	"github.com/spf13/cobra"
)

var inFile string
var outFile string
var noDuplicates bool
var internalIndex bool

var indexCmd = &cobra.Command{
	Use:   "index [in=PATH] [out=PATH] [scan=PATH]... [script=PATH]...",
	Short: "Annotate a document with index markers or build its index",
	Long: `Register terms from source scans and index scripts, in the order given, then
annotate the input document and write it to the output path.

Arguments may also come from --config; command-line values take precedence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, cfg, err := prepareJob(cmd, args)
		if err != nil {
			return err
		}
		_, err = j.run(cfg, slog.Default(), cmd.OutOrStdout())
		return err
	},
}

func init() {
	addJobFlags(indexCmd)
	rootCmd.AddCommand(indexCmd)
}

func addJobFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&inFile, "in", "i", "", "Input document")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output document")
	cmd.Flags().BoolVar(&noDuplicates, "no-duplicates", false, "Index each term at most once per section id")
	cmd.Flags().BoolVar(&internalIndex, "internal-index", false, "Do not insert indexterm markers; only generate index sections")
}

// prepareJob merges positional arguments, flags and the configuration file.
// Missing input or output is reported before any file is touched, unless a
// configuration file has to be read to supply them.
func prepareJob(cmd *cobra.Command, args []string) (*job, *config.Config, error) {
	j, err := parseArgs(args)
	if err != nil {
		return nil, nil, err
	}
	if inFile != "" {
		j.in = inFile
	}
	if outFile != "" {
		j.out = outFile
	}
	if configFile == "" {
		if err := j.validate(); err != nil {
			return nil, nil, err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	j.withConfig(cfg)
	if err := j.validate(); err != nil {
		return nil, nil, err
	}

	if cmd.Flags().Changed("no-duplicates") {
		cfg.NoDuplicates = noDuplicates
	}
	if cmd.Flags().Changed("internal-index") {
		cfg.InternalIndex = internalIndex
	}
	return j, cfg, nil
}
