package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"picdup/internal/hashcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the hash cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePurgeCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func withCache(ctx *commandContext, fn func(*cobra.Command, *hashcache.Cache) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return err
		}
		logger, err := ctx.ensureLogger()
		if err != nil {
			return err
		}
		cache, err := hashcache.Open(cfg.CacheDatabasePath(), logger)
		if err != nil {
			return fmt.Errorf("open hash cache: %w", err)
		}
		defer cache.Close()
		return fn(cmd, cache)
	}
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show hash cache usage",
		RunE: withCache(ctx, func(cmd *cobra.Command, cache *hashcache.Cache) error {
			entries, err := cache.EntryCount(cmd.Context())
			if err != nil {
				return err
			}
			var size int64
			if info, err := os.Stat(cache.Path()); err == nil {
				size = info.Size()
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database: %s\n", cache.Path())
			fmt.Fprintf(out, "Entries:  %s\n", formatCount(int(entries)))
			fmt.Fprintf(out, "Size:     %s\n", formatBytes(size))
			return nil
		}),
	}
}

func newCachePurgeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Drop cache entries whose files no longer exist",
		RunE: withCache(ctx, func(cmd *cobra.Command, cache *hashcache.Cache) error {
			removed, err := cache.PurgeMissing(cmd.Context())
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stale entries found")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s stale entries\n", formatCount(int(removed)))
			return nil
		}),
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		RunE: withCache(ctx, func(cmd *cobra.Command, cache *hashcache.Cache) error {
			removed, err := cache.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s entries\n", formatCount(int(removed)))
			return nil
		}),
	}
}
