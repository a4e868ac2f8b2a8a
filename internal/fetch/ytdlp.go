// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"

	"github.com/pdiddy/tubeprint/pkg/types"
)

const binYtDlp = "yt-dlp"

// cueFormatPreference lists the yt-dlp caption formats ParseTimedText
// understands, best first. Tracks offering none of these are skipped.
var cueFormatPreference = []string{"srv3", "srv1"}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// YtDlpSource shells out to the yt-dlp binary. It is the last-resort
// source: yt-dlp keeps up with YouTube page changes faster than any
// in-process scraper can.
type YtDlpSource struct {
	bin  string
	exec executor
	c    *client
}

// NewYtDlpSource locates the yt-dlp binary. path overrides the PATH
// lookup when non-empty.
func NewYtDlpSource(path string, c *client) (*YtDlpSource, error) {
	return newYtDlpSource(path, c, &osExecutor{})
}

func newYtDlpSource(path string, c *client, ex executor) (*YtDlpSource, error) {
	bin := path
	if bin == "" {
		bin = binYtDlp
	}
	resolved, err := ex.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp not found: %w", err)
	}
	return &YtDlpSource{bin: resolved, exec: ex, c: c}, nil
}

// Name returns the source identifier.
func (s *YtDlpSource) Name() string { return "ytdlp" }

// ytdlpInfo models the subset of `yt-dlp --dump-json` output we read.
type ytdlpInfo struct {
	Title             string                     `json:"title"`
	Uploader          string                     `json:"uploader"`
	Subtitles         map[string][]ytdlpCaption `json:"subtitles"`
	AutomaticCaptions map[string][]ytdlpCaption `json:"automatic_captions"`
}

type ytdlpCaption struct {
	URL string `json:"url"`
	Ext string `json:"ext"`
}

// Listing dumps the video metadata without downloading media and
// builds the track list from the subtitle maps.
func (s *YtDlpSource) Listing(ctx context.Context, videoID string) (*Listing, error) {
	out, err := s.exec.Output(ctx, s.bin,
		"--dump-json", "--skip-download", "--no-warnings",
		"https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		return nil, fmt.Errorf("running yt-dlp: %w", err)
	}

	var info ytdlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("parsing yt-dlp output: %w", err)
	}

	l := &Listing{Title: info.Title, Author: info.Uploader}
	appendTracks(l, info.Subtitles, types.KindManual)
	appendTracks(l, info.AutomaticCaptions, types.KindAuto)

	if len(l.Tracks) == 0 {
		return nil, ErrNoCaptions
	}

	// Map iteration order is random; keep the listing stable.
	sort.Slice(l.Tracks, func(i, j int) bool {
		if l.Tracks[i].Kind != l.Tracks[j].Kind {
			return l.Tracks[i].Kind == types.KindManual
		}
		return l.Tracks[i].LanguageCode < l.Tracks[j].LanguageCode
	})
	return l, nil
}

func appendTracks(l *Listing, captions map[string][]ytdlpCaption, kind types.TrackKind) {
	for lang, formats := range captions {
		url := pickCueFormat(formats)
		if url == "" {
			continue
		}
		l.Tracks = append(l.Tracks, types.Track{
			LanguageCode: lang,
			Kind:         kind,
			BaseURL:      url,
		})
	}
}

// pickCueFormat returns the URL of the best supported caption format,
// or empty when the track offers only formats we cannot parse.
func pickCueFormat(formats []ytdlpCaption) string {
	for _, want := range cueFormatPreference {
		for _, f := range formats {
			if f.Ext == want {
				return f.URL
			}
		}
	}
	return ""
}

// Lines downloads the track's cues over HTTP; the URLs yt-dlp reports
// are plain timedtext endpoints.
func (s *YtDlpSource) Lines(ctx context.Context, track types.Track) ([]types.Line, error) {
	return fetchCues(ctx, s.c, track.BaseURL)
}
