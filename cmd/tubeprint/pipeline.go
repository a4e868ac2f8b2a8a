// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tubeprint/internal/fetch"
	"github.com/pdiddy/tubeprint/internal/format"
	"github.com/pdiddy/tubeprint/internal/store"
	"github.com/pdiddy/tubeprint/pkg/types"
)

// fetchConfig assembles the acquisition settings. Flags win over the
// viper config file, which wins over secrets and built-in defaults.
func fetchConfig(cmd *cobra.Command) types.FetchConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("fetch.timeout")
	}
	languages, _ := cmd.Flags().GetStringSlice("languages")
	if len(languages) == 0 {
		languages = viper.GetStringSlice("fetch.languages")
	}
	manualOnly, _ := cmd.Flags().GetBool("no-auto")
	if !manualOnly {
		manualOnly = viper.GetBool("fetch.manual_only")
	}
	sources, _ := cmd.Flags().GetStringSlice("sources")
	if len(sources) == 0 {
		sources = viper.GetStringSlice("fetch.sources")
	}
	cookie, _ := cmd.Flags().GetString("cookie")
	ytdlp, _ := cmd.Flags().GetString("ytdlp-path")
	if ytdlp == "" {
		ytdlp = viper.GetString("fetch.ytdlp_path")
	}

	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: viper.GetString("fetch.user_agent"),
		},
		Languages:         languages,
		ManualOnly:        manualOnly,
		Sources:           sources,
		RequestsPerSecond: viper.GetFloat64("fetch.requests_per_second"),
		YtDlpPath:         ytdlp,
		ProxyURL:          secretDefault("proxy-url", viper.GetString("fetch.proxy_url")),
		InnertubeAPIKey:   secretDefault("innertube-api-key", viper.GetString("fetch.innertube_api_key")),
		CookieHeader:      secretDefault("cookie", cookie),
	}
}

// formatOptions assembles text formatting settings from flags.
func formatOptions(cmd *cobra.Command) format.Options {
	wrap, _ := cmd.Flags().GetInt("wrap")
	if wrap == 0 {
		wrap = -1
	}
	timestamps, _ := cmd.Flags().GetBool("timestamps")
	gap, _ := cmd.Flags().GetDuration("paragraph-gap")
	strip, _ := cmd.Flags().GetBool("strip-sound-tags")

	return format.FromConfig(types.FormatConfig{
		WrapWidth:      wrap,
		Timestamps:     timestamps,
		ParagraphGap:   gap,
		StripSoundTags: strip,
	})
}

// openCache opens the transcript cache, or returns nil when the cache
// is disabled or unavailable. Cache trouble is never fatal for a
// fetch; it just forces network access.
func openCache(cmd *cobra.Command) *store.Store {
	cfg := cacheConfig(cmd)
	if cfg.Dir == "" {
		return nil
	}
	s, err := store.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", err)
		return nil
	}
	return s
}

// fetchTranscript resolves the URL and returns its transcript,
// preferring the cache unless --refresh is set. Fresh fetches are
// written through to the cache either way.
func fetchTranscript(cmd *cobra.Command, rawURL string) (*types.Transcript, error) {
	videoID, err := fetch.ParseVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	cfg := fetchConfig(cmd)
	refresh, _ := cmd.Flags().GetBool("refresh")

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	cache := openCache(cmd)
	if cache != nil {
		defer cache.Close()
		if !refresh {
			if t, err := cachedTranscript(ctx, cache, videoID, cfg); err == nil {
				fmt.Fprintf(os.Stderr, "Using cached transcript for %s (%s, %s)\n", videoID, t.LanguageCode, t.Kind)
				return t, nil
			}
		}
	}

	fetcher := fetch.New(cfg, os.Stderr)
	t, err := fetcher.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.Put(ctx, t); err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache write failed: %v\n", err)
		}
	}
	return t, nil
}

// cachedTranscript looks for a cached track acceptable under the
// language preferences. With no preferences any cached manual track
// for the video wins.
func cachedTranscript(ctx context.Context, cache *store.Store, videoID string, cfg types.FetchConfig) (*types.Transcript, error) {
	tracks, err := cache.Tracks(ctx, videoID)
	if err != nil {
		return nil, err
	}
	track, err := fetch.SelectTrack(tracks, cfg.Languages, !cfg.ManualOnly)
	if err != nil {
		return nil, err
	}
	return cache.Get(ctx, videoID, track.LanguageCode, track.Kind)
}

// exitMessage rewrites pipeline sentinel errors into actionable CLI
// messages.
func exitMessage(err error) error {
	switch {
	case errors.Is(err, fetch.ErrBadVideoID):
		return fmt.Errorf("%w\nprovide a watch URL, youtu.be link, or bare 11-character video ID", err)
	case errors.Is(err, fetch.ErrNoMatchingTrack):
		return fmt.Errorf("%w\nrun 'tubeprint tracks' to list available captions", err)
	default:
		return err
	}
}

// addFetchFlags registers the flags shared by every command that
// acquires captions.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("languages", "l", nil, "preferred caption languages in priority order (e.g. en,de)")
	cmd.Flags().Bool("no-auto", false, "reject auto-generated caption tracks (accepted by default)")
	cmd.Flags().StringSlice("sources", nil, "caption sources to try in order: innertube, watchpage, ytdlp")
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	cmd.Flags().String("cookie", "", "Cookie header for age-restricted videos (default: .secrets/cookie)")
	cmd.Flags().String("ytdlp-path", "", "yt-dlp binary location (default: PATH lookup)")
	cmd.Flags().Bool("refresh", false, "ignore cached transcripts and refetch from the network")
}

// addFormatFlags registers the flags shared by text-producing commands.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().Int("wrap", format.DefaultWrapWidth, "maximum line width in characters (0 disables wrapping)")
	cmd.Flags().BoolP("timestamps", "t", false, "prefix paragraphs with [hh:mm:ss] markers")
	cmd.Flags().Duration("paragraph-gap", 0, "silence between cues that starts a new paragraph (default 4s)")
	cmd.Flags().Bool("strip-sound-tags", false, "drop non-speech cues like [Music] or [Applause]")
}
