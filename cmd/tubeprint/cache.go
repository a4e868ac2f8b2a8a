// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tubeprint/internal/fetch"
	"github.com/pdiddy/tubeprint/internal/format"
	"github.com/pdiddy/tubeprint/internal/store"
	"github.com/pdiddy/tubeprint/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local transcript cache (list, show, search, clear)",
	Long: `Cache manages the SQLite transcript cache. Use subcommands to list
cached transcripts, print one, run full-text search across caption
text, or remove entries.`,
}

// --- list subcommand ---

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached transcripts",
	RunE:  runCacheList,
}

func runCacheList(cmd *cobra.Command, args []string) error {
	s, err := mustOpenCache(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.List(context.Background())
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("Cache is empty.")
		return nil
	}

	fmt.Printf("%-12s  %-40s  %-6s  %-6s  %-6s  %s\n",
		"VIDEO", "TITLE", "LANG", "KIND", "LINES", "FETCHED")
	for _, e := range entries {
		title := e.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Printf("%-12s  %-40s  %-6s  %-6s  %-6d  %s\n",
			e.VideoID, title, e.Language, e.Kind, e.LineCount, e.FetchedAt.Format("2006-01-02"))
	}
	fmt.Printf("\n%d transcript(s)\n", len(entries))
	return nil
}

// --- show subcommand ---

var cacheShowCmd = &cobra.Command{
	Use:   "show [url]",
	Short: "Print a cached transcript as formatted text",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheShow,
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	videoID, err := fetch.ParseVideoID(args[0])
	if err != nil {
		return exitMessage(err)
	}

	s, err := mustOpenCache(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	languages, _ := cmd.Flags().GetStringSlice("languages")

	tracks, err := s.Tracks(ctx, videoID)
	if err != nil {
		return err
	}
	track, err := fetch.SelectTrack(tracks, languages, true)
	if err != nil {
		return fmt.Errorf("video %s is not in the cache: %w", videoID, err)
	}

	t, err := s.Get(ctx, videoID, track.LanguageCode, track.Kind)
	if err != nil {
		return err
	}
	return writeTranscript(cmd, t, os.Stdout)
}

// --- search subcommand ---

var cacheSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search across cached caption text",
	Long: `Search runs an FTS5 query over every cached caption line and prints
matching snippets with timestamped watch links.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCacheSearch,
}

func runCacheSearch(cmd *cobra.Command, args []string) error {
	s, err := mustOpenCache(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	hits, err := s.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for i, h := range hits {
		title := h.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Printf("%2d. [%s] %s (%s/%s)\n    %s\n    %s\n",
			i+1, format.Timestamp(h.Start), title, h.Language, h.Kind, h.Snippet, h.WatchURL())
	}
	fmt.Printf("\n%d result(s)\n", len(hits))
	return nil
}

// --- delete / clear subcommands ---

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete [url]",
	Short: "Remove one video's transcripts from the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID, err := fetch.ParseVideoID(args[0])
		if err != nil {
			return exitMessage(err)
		}
		s, err := mustOpenCache(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Delete(context.Background(), videoID); err != nil {
			return err
		}
		fmt.Printf("Removed %s from the cache.\n", videoID)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached transcript",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := mustOpenCache(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Clear(context.Background()); err != nil {
			return err
		}
		fmt.Println("Cache cleared.")
		return nil
	},
}

// mustOpenCache opens the cache or fails the command. Unlike the
// fetch path, cache subcommands are useless without a database.
func mustOpenCache(cmd *cobra.Command) (*store.Store, error) {
	cfg := cacheConfig(cmd)
	if cfg.Dir == "" {
		return nil, fmt.Errorf("no cache directory configured: set --cache-dir or cache.dir")
	}
	// Cache subcommands read everything ever stored, regardless of age.
	return store.Open(types.CacheConfig{Dir: cfg.Dir})
}

func init() {
	cacheListCmd.Flags().Bool("json", false, "output entries as JSON")

	addFormatFlags(cacheShowCmd)
	cacheShowCmd.Flags().StringSliceP("languages", "l", nil, "preferred caption languages in priority order")
	cacheShowCmd.Flags().String("format", "text", "output format: text, plain, json, srt, vtt")

	cacheSearchCmd.Flags().Int("limit", 0, "maximum results (0 = default 20)")
	cacheSearchCmd.Flags().Bool("json", false, "output hits as JSON")

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheSearchCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}
