// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tubeprint/internal/fetch"
	"github.com/pdiddy/tubeprint/pkg/types"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks [url]",
	Short: "List the caption tracks a video offers",
	Long: `Tracks lists every caption track the video advertises, manual and
auto-generated, so you can pick a language before fetching. Tracks
already present in the local cache are marked.`,
	Args: cobra.ExactArgs(1),
	RunE: runTracks,
}

func init() {
	addFetchFlags(tracksCmd)
	tracksCmd.Flags().Bool("json", false, "output tracks as JSON")

	rootCmd.AddCommand(tracksCmd)
}

func runTracks(cmd *cobra.Command, args []string) error {
	videoID, err := fetch.ParseVideoID(args[0])
	if err != nil {
		return exitMessage(err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	fetcher := fetch.New(fetchConfig(cmd), os.Stderr)
	listing, err := fetcher.Tracks(ctx, videoID)
	if err != nil {
		return exitMessage(err)
	}

	cached := cachedLanguages(ctx, cmd, videoID)

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listing.Tracks)
	}

	fmt.Printf("%s (%s)\n\n", listing.Title, listing.Author)
	fmt.Printf("%-10s  %-30s  %-8s  %s\n", "LANGUAGE", "NAME", "KIND", "CACHED")
	for _, tr := range listing.Tracks {
		mark := ""
		if cached[trackKey(tr)] {
			mark = "yes"
		}
		fmt.Printf("%-10s  %-30s  %-8s  %s\n", tr.LanguageCode, tr.LanguageName, tr.Kind, mark)
	}
	fmt.Printf("\n%d track(s)\n", len(listing.Tracks))
	return nil
}

// cachedLanguages reports which of the video's tracks already live in
// the cache. Cache trouble just means nothing is marked.
func cachedLanguages(ctx context.Context, cmd *cobra.Command, videoID string) map[string]bool {
	cache := openCache(cmd)
	if cache == nil {
		return nil
	}
	defer cache.Close()

	tracks, err := cache.Tracks(ctx, videoID)
	if err != nil {
		return nil
	}
	marks := make(map[string]bool, len(tracks))
	for _, tr := range tracks {
		marks[trackKey(tr)] = true
	}
	return marks
}

func trackKey(tr types.Track) string {
	return tr.LanguageCode + "/" + string(tr.Kind)
}
