// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch acquires caption transcripts from YouTube. Sources
// (Innertube player API, watch-page scrape, yt-dlp binary) implement a
// common interface; the Fetcher tries them in configured order and
// falls through on failure.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/tubeprint/internal/httputil"
	"github.com/pdiddy/tubeprint/pkg/types"
)

// Sentinel errors callers branch on.
var (
	// ErrNoCaptions means the video exists but exposes no caption tracks.
	ErrNoCaptions = errors.New("video has no captions")

	// ErrUnavailable means the video is private, removed, or region-locked.
	ErrUnavailable = errors.New("video unavailable")

	// ErrNoMatchingTrack means captions exist but none matches the
	// requested languages.
	ErrNoMatchingTrack = errors.New("no caption track matches the requested languages")
)

// Listing is what a source learns from the video page: identity plus
// the advertised caption tracks.
type Listing struct {
	Title  string
	Author string
	Tracks []types.Track
}

// Source retrieves caption data from one provider.
type Source interface {
	Name() string

	// Listing returns video metadata and available caption tracks.
	// Returns ErrNoCaptions or ErrUnavailable (possibly wrapped) when
	// the video offers nothing to fetch.
	Listing(ctx context.Context, videoID string) (*Listing, error)

	// Lines downloads and parses the cues for one track.
	Lines(ctx context.Context, track types.Track) ([]types.Line, error)
}

// client wraps the HTTP plumbing shared by sources: rate limiting,
// retry with backoff, and standard headers.
type client struct {
	http    *http.Client
	limiter *rate.Limiter
	ua      string
	cookie  string
}

func (c *client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	return httputil.DoWithRetry(ctx, c.http, req, 0)
}

// Fetcher orchestrates caption acquisition across sources.
type Fetcher struct {
	cfg     types.FetchConfig
	sources []Source
	w       io.Writer
}

// New builds a Fetcher from config. Progress and per-source warnings
// are written to w. The ytdlp source is included only when the binary
// is found.
func New(cfg types.FetchConfig, w io.Writer) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = 2
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.ProxyURL != "" {
		if proxy, err := url.Parse(cfg.ProxyURL); err != nil {
			fmt.Fprintf(w, "warning: ignoring bad proxy URL %q: %v\n", cfg.ProxyURL, err)
		} else {
			httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxy)}
		}
	}

	c := &client{
		http:   httpClient,
		ua:     cfg.UserAgent,
		cookie: cfg.CookieHeader,
	}
	if c.ua == "" {
		c.ua = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	}
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	order := cfg.Sources
	if len(order) == 0 {
		order = []string{"innertube", "watchpage", "ytdlp"}
	}

	f := &Fetcher{cfg: cfg, w: w}
	for _, name := range order {
		switch name {
		case "innertube":
			f.sources = append(f.sources, &InnertubeSource{c: c, APIKey: cfg.InnertubeAPIKey})
		case "watchpage":
			f.sources = append(f.sources, &WatchPageSource{c: c})
		case "ytdlp":
			src, err := NewYtDlpSource(cfg.YtDlpPath, c)
			if err != nil {
				fmt.Fprintf(w, "warning: ytdlp source disabled: %v\n", err)
				continue
			}
			f.sources = append(f.sources, src)
		default:
			fmt.Fprintf(w, "warning: unknown caption source %q ignored\n", name)
		}
	}
	return f
}

// Sources returns the source names in try order.
func (f *Fetcher) Sources() []string {
	names := make([]string, len(f.sources))
	for i, s := range f.sources {
		names[i] = s.Name()
	}
	return names
}

// Tracks returns the caption tracks of the first source that can list
// the video.
func (f *Fetcher) Tracks(ctx context.Context, videoID string) (*Listing, error) {
	listing, _, err := f.listing(ctx, videoID)
	return listing, err
}

// Fetch retrieves the best-matching transcript for the video. Sources
// are tried in order; a source failure falls through with a warning.
// ErrUnavailable stops the chain since later sources hit the same wall.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (*types.Transcript, error) {
	listing, src, err := f.listing(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, err := SelectTrack(listing.Tracks, f.cfg.Languages, !f.cfg.ManualOnly)
	if err != nil {
		return nil, err
	}

	lines, err := src.Lines(ctx, track)
	if err != nil {
		return nil, fmt.Errorf("fetching %s track %q: %w", src.Name(), track.LanguageCode, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s track %q: %w", src.Name(), track.LanguageCode, ErrNoCaptions)
	}

	return &types.Transcript{
		VideoID:      videoID,
		Title:        listing.Title,
		Author:       listing.Author,
		LanguageCode: track.LanguageCode,
		Kind:         track.Kind,
		Source:       src.Name(),
		FetchedAt:    time.Now().UTC(),
		Lines:        lines,
	}, nil
}

func (f *Fetcher) listing(ctx context.Context, videoID string) (*Listing, Source, error) {
	if len(f.sources) == 0 {
		return nil, nil, fmt.Errorf("no caption sources configured")
	}

	var lastErr error
	for _, src := range f.sources {
		listing, err := src.Listing(ctx, videoID)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				return nil, nil, err
			}
			fmt.Fprintf(f.w, "warning: source %s failed: %v\n", src.Name(), err)
			lastErr = err
			continue
		}
		return listing, src, nil
	}
	return nil, nil, fmt.Errorf("all caption sources failed: %w", lastErr)
}

// SelectTrack picks the best track for the language preferences.
// Explicit preferences win in list order, manual beating auto within a
// language. Without preferences, any manual track beats any auto track.
func SelectTrack(tracks []types.Track, languages []string, includeAuto bool) (types.Track, error) {
	if len(tracks) == 0 {
		return types.Track{}, ErrNoCaptions
	}

	candidates := tracks
	if !includeAuto {
		candidates = nil
		for _, tr := range tracks {
			if tr.Kind == types.KindManual {
				candidates = append(candidates, tr)
			}
		}
		if len(candidates) == 0 {
			return types.Track{}, fmt.Errorf("only auto-generated captions available: %w", ErrNoMatchingTrack)
		}
	}

	if len(languages) == 0 {
		for _, tr := range candidates {
			if tr.Kind == types.KindManual {
				return tr, nil
			}
		}
		return candidates[0], nil
	}

	for _, lang := range languages {
		for _, kind := range []types.TrackKind{types.KindManual, types.KindAuto} {
			for _, tr := range candidates {
				if tr.Kind == kind && languageMatches(tr.LanguageCode, lang) {
					return tr, nil
				}
			}
		}
	}

	return types.Track{}, fmt.Errorf("%w (available: %s)", ErrNoMatchingTrack, trackSummary(tracks))
}

// languageMatches compares BCP-47 codes, treating a bare primary tag as
// a wildcard for its regional variants ("en" matches "en-GB").
func languageMatches(code, want string) bool {
	code = strings.ToLower(code)
	want = strings.ToLower(want)
	if code == want {
		return true
	}
	return strings.HasPrefix(code, want+"-")
}

func trackSummary(tracks []types.Track) string {
	parts := make([]string, len(tracks))
	for i, tr := range tracks {
		parts[i] = fmt.Sprintf("%s/%s", tr.LanguageCode, tr.Kind)
	}
	return strings.Join(parts, ", ")
}
