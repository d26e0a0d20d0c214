package main

import (
	"fmt"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"picdup/internal/config"
	"picdup/internal/events"
	"picdup/internal/session"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var recursive bool
	var flat bool

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory for supported image files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			root, err = config.ExpandPath(root)
			if err != nil {
				return err
			}

			descend := cfg.Scan.Recursive
			if cmd.Flags().Changed("recursive") {
				descend = recursive
			}
			if flat {
				descend = false
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			bar := newProgressBar(cmd.ErrOrStderr(), -1, "scanning")
			job := session.StartScan(runCtx, logger, root, descend)

			var failure string
			for event := range job.Events() {
				switch ev := event.(type) {
				case events.FileFound:
					if bar != nil {
						_ = bar.Add(1)
					}
				case events.Error:
					failure = ev.Message
				}
			}
			if bar != nil {
				_ = bar.Finish()
			}
			if failure != "" {
				return fmt.Errorf("scan: %s", failure)
			}
			if err := job.Err(); err != nil {
				return err
			}

			return printScanSummary(cmd, root, descend, job)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "Descend into subdirectories")
	cmd.Flags().BoolVar(&flat, "flat", false, "Scan only the top-level directory")
	return cmd
}

func printScanSummary(cmd *cobra.Command, root string, recursive bool, job *session.Job) error {
	result := job.Result()
	if result == nil {
		return fmt.Errorf("scan produced no result")
	}
	stats := result.Stats

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanned %s under %s (recursive: %s)\n",
		pluralFiles(stats.Scanned), root, yesNo(recursive))
	fmt.Fprintf(out, "Found %s totaling %s\n",
		pluralImages(stats.Found), formatBytes(stats.TotalBytes))

	if len(stats.ByFormat) > 0 {
		formats := make([]string, 0, len(stats.ByFormat))
		for format := range stats.ByFormat {
			formats = append(formats, format)
		}
		sort.Strings(formats)

		rows := make([][]string, 0, len(formats))
		for _, format := range formats {
			rows = append(rows, []string{strings.ToUpper(format), formatCount(stats.ByFormat[format])})
		}
		fmt.Fprintln(out, renderTable([]column{
			{title: "Format"},
			{title: "Files", right: true},
		}, rows))
	}

	if stats.Errors > 0 {
		fmt.Fprintf(out, "Skipped %d unreadable entries (%d permission, %d network, %d other)\n",
			stats.Errors, stats.PermissionErrors, stats.NetworkErrors, stats.OtherErrors)
	}
	return nil
}

func pluralFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%s files", formatCount(n))
}

func pluralImages(n int) string {
	if n == 1 {
		return "1 image"
	}
	return fmt.Sprintf("%s images", formatCount(n))
}
