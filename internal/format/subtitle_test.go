// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestSRT(t *testing.T) {
	tr := transcript(
		cue(0.12, 2.5, "first cue"),
		cue(3662.5, 1.25, "second cue"),
	)

	var buf bytes.Buffer
	if err := SRT(tr, &buf); err != nil {
		t.Fatalf("SRT() error = %v", err)
	}

	want := "1\n00:00:00,120 --> 00:00:02,620\nfirst cue\n\n" +
		"2\n01:01:02,500 --> 01:01:03,750\nsecond cue\n\n"
	if buf.String() != want {
		t.Errorf("SRT output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestVTT(t *testing.T) {
	tr := transcript(cue(0, 1, "hello"))

	var buf bytes.Buffer
	if err := VTT(tr, &buf); err != nil {
		t.Fatalf("VTT() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "WEBVTT\n\n") {
		t.Errorf("missing WEBVTT header: %q", out)
	}
	if !strings.Contains(out, "00:00:00.000 --> 00:00:01.000\nhello\n") {
		t.Errorf("cue missing or misformatted: %q", out)
	}
}

func TestCueEndFallbacks(t *testing.T) {
	tr := transcript(
		cue(0, 0, "no duration, next start wins"),
		cue(5, 0, "last cue gets the fixed fallback"),
	)

	if got := cueEnd(tr.Lines, 0); got != 5*time.Second {
		t.Errorf("cueEnd(0) = %v, want 5s", got)
	}
	if got := cueEnd(tr.Lines, 1); got != 7*time.Second {
		t.Errorf("cueEnd(1) = %v, want 7s", got)
	}
}
