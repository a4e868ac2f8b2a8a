// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package format turns raw caption cues into readable output: plain
// text with paragraph structure, JSON, and subtitle formats.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/tubeprint/pkg/types"
)

// Defaults applied when Options fields are zero.
const (
	DefaultWrapWidth    = 80
	DefaultParagraphGap = 4 * time.Second

	// paragraphTargetLen is the soft cap after which a sentence break
	// ends the paragraph.
	paragraphTargetLen = 600
)

// Options controls the plain-text rendering.
type Options struct {
	// WrapWidth is the maximum line width in runes. Zero means
	// DefaultWrapWidth; negative disables wrapping.
	WrapWidth int

	// Timestamps prefixes each paragraph with its start offset.
	Timestamps bool

	// ParagraphGap is the silence between cues that forces a paragraph
	// break. Zero means DefaultParagraphGap.
	ParagraphGap time.Duration

	// StripSoundTags removes bracketed non-speech annotations such as
	// [Music] or (applause).
	StripSoundTags bool
}

// FromConfig converts the config struct into render options.
func FromConfig(cfg types.FormatConfig) Options {
	return Options{
		WrapWidth:      cfg.WrapWidth,
		Timestamps:     cfg.Timestamps,
		ParagraphGap:   cfg.ParagraphGap,
		StripSoundTags: cfg.StripSoundTags,
	}
}

// Paragraph is a run of cues rendered as one block of text.
type Paragraph struct {
	Start time.Duration
	Text  string
}

// soundTagPattern matches bracketed and parenthesized annotations and
// music note markers.
var soundTagPattern = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|♪+`)

// Paragraphs merges cues into paragraphs. A new paragraph starts when
// the silence before a cue reaches ParagraphGap, or when the running
// text has passed the target length and the previous cue ended a
// sentence. Cue order is preserved.
func Paragraphs(t *types.Transcript, opts Options) []Paragraph {
	gap := opts.ParagraphGap
	if gap <= 0 {
		gap = DefaultParagraphGap
	}

	var (
		out     []Paragraph
		current strings.Builder
		start   time.Duration
		prevEnd time.Duration
	)

	flush := func() {
		text := strings.TrimSpace(current.String())
		if text != "" {
			out = append(out, Paragraph{Start: start, Text: text})
		}
		current.Reset()
	}

	for _, line := range t.Lines {
		text := line.Text
		if opts.StripSoundTags {
			text = strings.Join(strings.Fields(soundTagPattern.ReplaceAllString(text, " ")), " ")
			if text == "" {
				continue
			}
		}

		if current.Len() > 0 {
			silence := line.Start - prevEnd
			endsSentence := strings.ContainsAny(lastRune(current.String()), ".!?")
			if silence >= gap || (current.Len() > paragraphTargetLen && endsSentence) {
				flush()
			}
		}

		if current.Len() == 0 {
			start = line.Start
		} else {
			current.WriteByte(' ')
		}
		current.WriteString(text)

		if end := line.End(); end > prevEnd {
			prevEnd = end
		}
	}
	flush()

	return out
}

func lastRune(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return ""
	}
	return string(runes[len(runes)-1])
}

// Text renders the transcript as wrapped plain-text paragraphs
// separated by blank lines.
func Text(t *types.Transcript, opts Options, w io.Writer) error {
	width := opts.WrapWidth
	if width == 0 {
		width = DefaultWrapWidth
	}

	for i, p := range Paragraphs(t, opts) {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		text := p.Text
		if opts.Timestamps {
			text = fmt.Sprintf("[%s] %s", Timestamp(p.Start), text)
		}

		for _, line := range Wrap(text, width) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// JSON renders the transcript as indented JSON.
func JSON(t *types.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// Wrap greedily wraps text at width runes. Words longer than the width
// get a line of their own. A non-positive width disables wrapping.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var (
		lines   []string
		current strings.Builder
		curLen  int
	)
	for _, word := range words {
		wordLen := len([]rune(word))
		if curLen > 0 && curLen+1+wordLen > width {
			lines = append(lines, current.String())
			current.Reset()
			curLen = 0
		}
		if curLen > 0 {
			current.WriteByte(' ')
			curLen++
		}
		current.WriteString(word)
		curLen += wordLen
	}
	if curLen > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// Timestamp renders an offset as mm:ss, or h:mm:ss past the first hour.
func Timestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
