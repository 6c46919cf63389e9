package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"medialookup/internal/api"
	"medialookup/internal/lookup"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the lookup result cache",
		Long: `Inspect and manage the lookup result cache.

The result cache stores the outcome of every lookup per title and constraint
set. Matches are kept for a week and misses for a day.

Commands:
  list     - List all cached results
  remove   - Remove a specific entry by number (see 'list' for numbers)
  clear    - Remove all cached results, or only expired ones with --expired`,
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, closer, err := openResultCache(cmd, ctx)
			if err != nil {
				return err
			}
			defer closeQuietly(closer)

			entries, err := cache.Entries(cmd.Context())
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				if entries == nil {
					entries = []lookup.CacheEntry{}
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Result cache: empty")
				return nil
			}

			fmt.Fprintf(out, "Result cache: %d entries\n\n", len(entries))

			const stampLayout = "2006-01-02 15:04"
			now := time.Now()
			for i, entry := range entries {
				result := "no match"
				if entry.Value != nil {
					result = fmt.Sprintf("%s (%s)", entry.Value.ID, entry.Value.Type)
				}
				expiry := "Expires: " + entry.ExpiresAt.Local().Format(stampLayout)
				if entry.Expired(now) {
					expiry = "Expired: " + entry.ExpiresAt.Local().Format(stampLayout)
				}
				fmt.Fprintf(out, "  %d. %s\n", i+1, entry.Key)
				fmt.Fprintf(out, "     %s | %s\n\n", result, expiry)
			}
			return nil
		},
	}
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <number>",
		Short: "Remove a specific cache entry by number",
		Long: `Remove a specific cache entry by its number from 'medialookup cache list'.

Example:
  medialookup cache list        # Shows numbered list of cached results
  medialookup cache remove 2    # Removes entry #2 from the list`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entryNum int
			if _, err := fmt.Sscanf(args[0], "%d", &entryNum); err != nil || entryNum < 1 {
				return fmt.Errorf("invalid entry number: %s (must be a positive integer)", args[0])
			}

			cache, closer, err := openResultCache(cmd, ctx)
			if err != nil {
				return err
			}
			defer closeQuietly(closer)

			entry, err := api.RemoveCacheEntryByNumber(cmd.Context(), cache, entryNum)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"removed": true,
					"entry":   entryNum,
					"key":     entry.Key,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed result cache entry %d (%s)\n", entryNum, entry.Key)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var expiredOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached results",
		Long:  "Delete cached lookup results. Titles are looked up again on the next request.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, closer, err := openResultCache(cmd, ctx)
			if err != nil {
				return err
			}
			defer closeQuietly(closer)

			removed, err := cache.Clear(cmd.Context(), expiredOnly)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"removed": removed})
			}
			out := cmd.OutOrStdout()
			if removed == 0 {
				fmt.Fprintln(out, "Result cache: nothing to remove")
				return nil
			}
			fmt.Fprintf(out, "Removed %d result cache entries\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "Only remove entries past their expiry")
	return cmd
}

func openResultCache(cmd *cobra.Command, ctx *commandContext) (*lookup.ResultCache, io.Closer, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := ctx.newLogger(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	return api.OpenResultCache(cfg, logger)
}
