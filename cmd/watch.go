package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itsmostafa/autoindex/internal/watch"
	"github.com/spf13/cobra"
)

var debounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [in=PATH] [out=PATH] [scan=PATH]... [script=PATH]...",
	Short: "Re-index whenever the document, scripts or sources change",
	Long: `Run index once, then again each time the input document, an index script or a
scanned source file changes. Directories scanned by scripts are not followed;
list them in the configuration's scans to have them watched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, cfg, err := prepareJob(cmd, args)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("debounce") {
			cfg.Debounce = debounce
		}

		logger := slog.Default()
		w := cmd.OutOrStdout()
		rebuild := func(context.Context) error {
			_, err := j.run(cfg, logger, w)
			return err
		}
		if err := rebuild(cmd.Context()); err != nil {
			logger.Error("index failed", "error", err)
		}

		files := append([]string{j.in}, j.scripts()...)
		var dirs []string
		for _, p := range j.scans() {
			if info, err := os.Stat(p); err == nil && info.IsDir() {
				dirs = append(dirs, p)
			} else {
				files = append(files, p)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("watching for changes", "files", len(files), "dirs", len(dirs))
		watcher := watch.New(files, dirs, []string{j.out}, cfg.Debounce, logger)
		return watcher.Run(ctx, rebuild)
	},
}

func init() {
	addJobFlags(watchCmd)
	watchCmd.Flags().DurationVar(&debounce, "debounce", 0, "Quiet period before re-indexing (default from config, 500ms)")
	rootCmd.AddCommand(watchCmd)
}
