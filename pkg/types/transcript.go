// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the transcript data model and per-stage
// configuration shared across the pipeline.
package types

import (
	"strings"
	"time"
)

// TrackKind distinguishes creator-uploaded captions from captions
// auto-generated by YouTube's speech recognition.
type TrackKind string

const (
	KindManual TrackKind = "manual"
	KindAuto   TrackKind = "auto"
)

// Track describes one caption track advertised for a video.
type Track struct {
	// LanguageCode is the BCP-47 code (e.g. "en", "pt-BR").
	LanguageCode string `json:"language_code" yaml:"language_code"`

	// LanguageName is the human-readable track name (e.g. "English (auto-generated)").
	LanguageName string `json:"language_name" yaml:"language_name"`

	// Kind reports whether the track is manual or auto-generated.
	Kind TrackKind `json:"kind" yaml:"kind"`

	// BaseURL is the timedtext endpoint for the track's cues.
	BaseURL string `json:"-" yaml:"-"`
}

// Line is a single caption cue: a span of spoken text with its timing.
type Line struct {
	Start    time.Duration `json:"start" yaml:"start"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Text     string        `json:"text" yaml:"text"`
}

// End returns the cue's end offset.
func (l Line) End() time.Duration {
	return l.Start + l.Duration
}

// Transcript is the full caption text of one video in one language.
type Transcript struct {
	// VideoID is the 11-character YouTube video identifier.
	VideoID string `json:"video_id" yaml:"video_id"`

	// Title is the video title as reported by the caption source.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Author is the channel name, when the source exposes it.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// LanguageCode identifies the track the lines came from.
	LanguageCode string `json:"language_code" yaml:"language_code"`

	// Kind reports whether the track was manual or auto-generated.
	Kind TrackKind `json:"kind" yaml:"kind"`

	// Source names the backend that produced the transcript
	// (innertube, watchpage, ytdlp, cache).
	Source string `json:"source" yaml:"source"`

	// FetchedAt is when the transcript was retrieved from YouTube.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`

	Lines []Line `json:"lines" yaml:"lines"`
}

// Duration returns the end offset of the last cue, or zero for an
// empty transcript.
func (t *Transcript) Duration() time.Duration {
	if len(t.Lines) == 0 {
		return 0
	}
	return t.Lines[len(t.Lines)-1].End()
}

// PlainText joins all cue text with single spaces, without any
// paragraph structure. Formatting beyond this lives in internal/format.
func (t *Transcript) PlainText() string {
	parts := make([]string, 0, len(t.Lines))
	for _, l := range t.Lines {
		if s := strings.TrimSpace(l.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// WatchURL returns the canonical watch page URL for the video.
func (t *Transcript) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + t.VideoID
}
