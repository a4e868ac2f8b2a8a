// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"
)

func TestTranscriptPlainText(t *testing.T) {
	tr := &Transcript{
		VideoID: "dQw4w9WgXcQ",
		Lines: []Line{
			{Start: 0, Duration: time.Second, Text: "  hello there  "},
			{Start: time.Second, Duration: time.Second, Text: ""},
			{Start: 2 * time.Second, Duration: time.Second, Text: "general kenobi"},
		},
	}
	if got, want := tr.PlainText(), "hello there general kenobi"; got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}

	empty := &Transcript{VideoID: "dQw4w9WgXcQ"}
	if got := empty.PlainText(); got != "" {
		t.Errorf("PlainText() on empty transcript = %q", got)
	}
}

func TestTranscriptDuration(t *testing.T) {
	tr := &Transcript{Lines: []Line{
		{Start: 0, Duration: 2 * time.Second},
		{Start: 10 * time.Second, Duration: 1500 * time.Millisecond},
	}}
	if got := tr.Duration(); got != 11500*time.Millisecond {
		t.Errorf("Duration() = %v, want 11.5s", got)
	}
	if got := (&Transcript{}).Duration(); got != 0 {
		t.Errorf("Duration() on empty transcript = %v", got)
	}
}
