// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/tubeprint/pkg/types"
)

func cue(startSec, durSec float64, text string) types.Line {
	return types.Line{
		Start:    time.Duration(startSec * float64(time.Second)),
		Duration: time.Duration(durSec * float64(time.Second)),
		Text:     text,
	}
}

func transcript(lines ...types.Line) *types.Transcript {
	return &types.Transcript{
		VideoID:      "dQw4w9WgXcQ",
		Title:        "A Talk",
		LanguageCode: "en",
		Kind:         types.KindManual,
		Lines:        lines,
	}
}

func TestParagraphsGapBreak(t *testing.T) {
	tr := transcript(
		cue(0, 2, "first thought continues"),
		cue(2, 2, "across two cues."),
		cue(10, 2, "after a long pause a new thought"),
	)

	got := Paragraphs(tr, Options{})
	if len(got) != 2 {
		t.Fatalf("len(paragraphs) = %d, want 2", len(got))
	}
	if got[0].Text != "first thought continues across two cues." {
		t.Errorf("paragraph 0 = %q", got[0].Text)
	}
	if got[1].Start != 10*time.Second {
		t.Errorf("paragraph 1 start = %v, want 10s", got[1].Start)
	}
}

func TestParagraphsNoBreakWithinGap(t *testing.T) {
	tr := transcript(
		cue(0, 2, "one"),
		cue(2.5, 2, "two"),
		cue(5, 2, "three"),
	)
	got := Paragraphs(tr, Options{})
	if len(got) != 1 {
		t.Fatalf("len(paragraphs) = %d, want 1", len(got))
	}
	if got[0].Text != "one two three" {
		t.Errorf("merged text = %q", got[0].Text)
	}
}

func TestParagraphsSentenceBreakAfterTarget(t *testing.T) {
	long := strings.Repeat("some words here and more words too. ", 20) // > target length
	tr := transcript(
		cue(0, 2, strings.TrimSpace(long)),
		cue(2, 2, "next sentence starts a new paragraph"),
	)
	got := Paragraphs(tr, Options{})
	if len(got) != 2 {
		t.Fatalf("len(paragraphs) = %d, want 2", len(got))
	}
}

func TestParagraphsStripSoundTags(t *testing.T) {
	tr := transcript(
		cue(0, 2, "[Music]"),
		cue(2, 2, "hello [Applause] there"),
		cue(4, 2, "(laughter)"),
		cue(6, 2, "♪ ♪"),
	)
	got := Paragraphs(tr, Options{StripSoundTags: true})
	if len(got) != 1 {
		t.Fatalf("len(paragraphs) = %d, want 1", len(got))
	}
	if got[0].Text != "hello there" {
		t.Errorf("text = %q, want %q", got[0].Text, "hello there")
	}
	// Tag-only leading cue must not claim the paragraph start.
	if got[0].Start != 2*time.Second {
		t.Errorf("start = %v, want 2s", got[0].Start)
	}
}

func TestTextWrapInvariant(t *testing.T) {
	tr := transcript(
		cue(0, 2, strings.Repeat("word ", 60)),
		cue(20, 2, "short tail"),
	)

	var buf bytes.Buffer
	if err := Text(tr, Options{WrapWidth: 40, Timestamps: true}, &buf); err != nil {
		t.Fatalf("Text() error = %v", err)
	}

	out := buf.String()
	for _, line := range strings.Split(out, "\n") {
		if len([]rune(line)) > 40 {
			t.Errorf("line exceeds width: %q", line)
		}
	}
	if !strings.HasPrefix(out, "[00:00] ") {
		t.Errorf("missing timestamp prefix: %q", out[:20])
	}
	if !strings.Contains(out, "\n\n[00:20] ") {
		t.Error("paragraphs not separated by blank line with timestamps")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	tr := transcript(cue(1, 2, "hello"))

	var buf bytes.Buffer
	if err := JSON(tr, &buf); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var back types.Transcript
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("round trip unmarshal: %v", err)
	}
	if back.VideoID != tr.VideoID || len(back.Lines) != 1 || back.Lines[0].Text != "hello" {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "short line", 20, []string{"short line"}},
		{"splits", "aa bb cc dd", 5, []string{"aa bb", "cc dd"}},
		{"long word alone", "x verylongword y", 6, []string{"x", "verylongword", "y"}},
		{"empty", "   ", 10, nil},
		{"disabled", "anything at all", -1, []string{"anything at all"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.width)
			if len(got) != len(tt.want) {
				t.Fatalf("Wrap() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Wrap()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{59 * time.Second, "00:59"},
		{61 * time.Second, "01:01"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour, "1:00:00"},
		{2*time.Hour + 3*time.Minute + 4*time.Second, "2:03:04"},
	}
	for _, tt := range tests {
		if got := Timestamp(tt.d); got != tt.want {
			t.Errorf("Timestamp(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
