package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"picdup/internal/config"
	"picdup/internal/duplicates"
	"picdup/internal/events"
	"picdup/internal/hasher"
	"picdup/internal/imagefile"
	"picdup/internal/report"
	"picdup/internal/session"
)

const (
	digestDisplayLength = 12
	summaryRounding     = time.Millisecond
)

func newDupesCommand(ctx *commandContext) *cobra.Command {
	var recursive bool
	var algorithmFlag string
	var workers int
	var noCache bool
	var showPaths bool
	var exportPath string

	cmd := &cobra.Command{
		Use:   "dupes [path...]",
		Short: "Find duplicate images by content hash",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			roots := args
			if len(roots) == 0 {
				roots = []string{"."}
			}

			descend := cfg.Scan.Recursive
			if cmd.Flags().Changed("recursive") {
				descend = recursive
			}

			algorithmValue := cfg.Hash.Algorithm
			if cmd.Flags().Changed("algorithm") {
				algorithmValue = algorithmFlag
			}
			algorithm, err := hasher.ParseAlgorithm(algorithmValue)
			if err != nil {
				return err
			}

			workerCount := cfg.WorkerCount()
			if cmd.Flags().Changed("workers") {
				workerCount = workers
			}

			cachePath := cfg.CacheDatabasePath()
			if noCache || !cfg.Hash.CacheEnabled {
				cachePath = ""
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			files, err := collectFiles(runCtx, logger, roots, descend)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No supported image files found")
				return nil
			}

			bar := newProgressBar(cmd.ErrOrStderr(), len(files), "hashing")
			job := session.StartHash(runCtx, logger, files, algorithm, workerCount, cachePath)

			var failure string
			for event := range job.Events() {
				switch ev := event.(type) {
				case events.Progress:
					if bar != nil {
						_ = bar.Set(ev.Done)
					}
				case events.Error:
					failure = ev.Message
				}
			}
			if bar != nil {
				_ = bar.Finish()
			}
			if failure != "" {
				return fmt.Errorf("hash: %s", failure)
			}
			if err := job.Err(); err != nil {
				return err
			}

			groups := duplicates.Find(job.Digests(), files)
			printDupes(cmd, groups, job.Summary(), showPaths)

			if exportPath != "" {
				target, err := config.ExpandPath(exportPath)
				if err != nil {
					return err
				}
				if err := report.Export(target, groups); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", target)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "Descend into subdirectories")
	cmd.Flags().StringVarP(&algorithmFlag, "algorithm", "a", "", "Digest algorithm: md5 or sha256")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent hashing workers (0 selects automatically)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Hash every file, bypassing the identity cache")
	cmd.Flags().BoolVar(&showPaths, "paths", false, "List every member path under each group")
	cmd.Flags().StringVarP(&exportPath, "export", "e", "", "Write a plain-text report to this path")
	return cmd
}

// collectFiles scans every root in turn, deduplicating by path so overlapping
// roots do not double-count files.
func collectFiles(ctx context.Context, logger *slog.Logger, roots []string, recursive bool) ([]imagefile.File, error) {
	seen := make(map[string]struct{})
	var files []imagefile.File

	for _, root := range roots {
		expanded, err := config.ExpandPath(root)
		if err != nil {
			return nil, err
		}

		job := session.StartScan(ctx, logger, expanded, recursive)
		var failure string
		for event := range job.Events() {
			if ev, ok := event.(events.Error); ok {
				failure = ev.Message
			}
		}
		if failure != "" {
			return nil, fmt.Errorf("scan %s: %s", expanded, failure)
		}
		if err := job.Err(); err != nil {
			return nil, err
		}

		for _, file := range job.Result().Files {
			if _, ok := seen[file.Path]; ok {
				continue
			}
			seen[file.Path] = struct{}{}
			files = append(files, file)
		}
	}
	return files, nil
}

func printDupes(cmd *cobra.Command, groups []duplicates.Group, summary hasher.Summary, showPaths bool) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Hashed %s (%s cached, %s computed",
		pluralFiles(summary.Total), formatCount(summary.CacheHits), formatCount(summary.Computed))
	if summary.Failed > 0 {
		fmt.Fprintf(out, ", %s failed", formatCount(summary.Failed))
	}
	fmt.Fprintf(out, ") in %s\n", summary.Elapsed.Round(summaryRounding))

	if len(groups) == 0 {
		fmt.Fprintln(out, "No duplicates found")
		return
	}

	rows := make([][]string, 0, len(groups))
	for i, group := range groups {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			group.Filename(),
			formatCount(group.Count()),
			formatBytes(group.Size),
			group.Digest,
		})
	}
	fmt.Fprintln(out, renderTable([]column{
		{title: "#", right: true},
		{title: "Filename"},
		{title: "Copies", right: true},
		{title: "Size", right: true},
		{title: "Hash", maxWidth: digestDisplayLength},
	}, rows))

	fmt.Fprintf(out, "%s duplicate groups, %s redundant files, %s wasted\n",
		formatCount(len(groups)),
		formatCount(duplicates.TotalDuplicates(groups)),
		formatBytes(duplicates.WastedBytes(groups)))
	if !showPaths {
		return
	}
	for _, group := range groups {
		fmt.Fprintf(out, "\n%s (%s):\n", group.Filename(), group.Digest)
		for _, file := range group.Files {
			fmt.Fprintf(out, "  %s\n", file.Path)
		}
	}
}
