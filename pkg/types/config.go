// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "tubeprint/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the caption acquisition stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Languages lists preferred language codes in priority order.
	// Empty means any language, manual tracks preferred.
	Languages []string `json:"languages" yaml:"languages"`

	// ManualOnly rejects auto-generated tracks. The zero value accepts
	// them; manual tracks still win whenever both exist.
	ManualOnly bool `json:"manual_only" yaml:"manual_only"`

	// Sources orders the caption backends to try: innertube, watchpage, ytdlp.
	Sources []string `json:"sources" yaml:"sources"`

	// RequestsPerSecond caps the request rate against YouTube endpoints.
	// Zero means the default (2); negative disables the limiter.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// YtDlpPath overrides the yt-dlp binary location. Empty means PATH lookup.
	YtDlpPath string `json:"ytdlp_path" yaml:"ytdlp_path"`

	// ProxyURL routes caption requests through an HTTP proxy.
	ProxyURL string `json:"proxy_url,omitempty" yaml:"proxy_url,omitempty"`

	// InnertubeAPIKey overrides the public web client key sent to the
	// Innertube player API.
	InnertubeAPIKey string `json:"innertube_api_key,omitempty" yaml:"innertube_api_key,omitempty"`

	// CookieHeader is an optional Cookie header for age-restricted videos.
	CookieHeader string `json:"cookie_header,omitempty" yaml:"cookie_header,omitempty"`
}

// FormatConfig holds settings for the text formatting stage.
type FormatConfig struct {
	// WrapWidth is the maximum output line width in runes. Zero means
	// the default (80); negative disables wrapping.
	WrapWidth int `json:"wrap_width" yaml:"wrap_width"`

	// Timestamps controls whether [hh:mm:ss] markers prefix paragraphs.
	Timestamps bool `json:"timestamps" yaml:"timestamps"`

	// ParagraphGap is the silence between cues that starts a new
	// paragraph (default 4s).
	ParagraphGap time.Duration `json:"paragraph_gap" yaml:"paragraph_gap"`

	// StripSoundTags removes bracketed non-speech cues like [Music].
	StripSoundTags bool `json:"strip_sound_tags" yaml:"strip_sound_tags"`
}

// PageSize selects the PDF page format.
type PageSize string

const (
	PageA4     PageSize = "A4"
	PageLetter PageSize = "Letter"
)

// PDFConfig holds settings for the PDF export stage.
type PDFConfig struct {
	// Page selects the page format: A4 or Letter.
	Page PageSize `json:"page" yaml:"page"`

	// MarginMM is the page margin in millimeters (default 20).
	MarginMM float64 `json:"margin_mm" yaml:"margin_mm"`

	// FontFamily is a core PDF font: helvetica, times, or courier.
	FontFamily string `json:"font_family" yaml:"font_family"`

	// BodySize is the body font size in points (default 11).
	BodySize float64 `json:"body_size" yaml:"body_size"`

	// TitleSize is the title font size in points (default 18).
	TitleSize float64 `json:"title_size" yaml:"title_size"`
}

// CacheConfig holds settings for the transcript cache.
type CacheConfig struct {
	// Dir is the cache directory (contains tubeprint.db). Empty disables
	// the cache entirely.
	Dir string `json:"dir" yaml:"dir"`

	// MaxAge is how long a cached transcript stays fresh (default 30 days).
	// Zero means never stale.
	MaxAge time.Duration `json:"max_age" yaml:"max_age"`
}

// ServerConfig holds settings for the HTTP export service.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// Workers is the number of concurrent export workers (default 2).
	Workers int `json:"workers" yaml:"workers"`

	// JobTTL is how long finished jobs are kept before the janitor
	// removes them (default 1h).
	JobTTL time.Duration `json:"job_ttl" yaml:"job_ttl"`

	// WorkDir is where per-job output files are written. Empty uses the
	// system temp directory.
	WorkDir string `json:"work_dir" yaml:"work_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch  FetchConfig  `json:"fetch" yaml:"fetch"`
	Format FormatConfig `json:"format" yaml:"format"`
	PDF    PDFConfig    `json:"pdf" yaml:"pdf"`
	Cache  CacheConfig  `json:"cache" yaml:"cache"`
	Server ServerConfig `json:"server" yaml:"server"`
}
