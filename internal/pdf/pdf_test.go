// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/tubeprint/internal/format"
	"github.com/pdiddy/tubeprint/pkg/types"
)

func sampleTranscript() *types.Transcript {
	lines := []types.Line{
		{Start: 0, Duration: 2 * time.Second, Text: "welcome to the talk"},
		{Start: 2 * time.Second, Duration: 3 * time.Second, Text: "today we cover caption exports."},
		{Start: 10 * time.Second, Duration: 2 * time.Second, Text: "thanks for watching"},
	}
	return &types.Transcript{
		VideoID:      "dQw4w9WgXcQ",
		Title:        "Export Talk — with dashes",
		Author:       "Some Channel",
		LanguageCode: "en",
		Kind:         types.KindManual,
		Source:       "innertube",
		FetchedAt:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Lines:        lines,
	}
}

func TestBuildWritesPDF(t *testing.T) {
	doc, err := Build(sampleTranscript(), format.Options{Timestamps: true}, types.PDFConfig{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with PDF header: %q", buf.Bytes()[:8])
	}
	if buf.Len() < 500 {
		t.Errorf("suspiciously small PDF: %d bytes", buf.Len())
	}
}

func TestBuildWriteFile(t *testing.T) {
	doc, err := Build(sampleTranscript(), format.Options{}, types.PDFConfig{Page: types.PageLetter})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := doc.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("wrote empty PDF file")
	}
}

func TestBuildEmptyTranscript(t *testing.T) {
	tr := &types.Transcript{VideoID: "dQw4w9WgXcQ"}
	if _, err := Build(tr, format.Options{}, types.PDFConfig{}); err == nil {
		t.Error("expected error for transcript with no lines")
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "My Video Title", "My-Video-Title.pdf"},
		{"punctuation stripped", "What?! A Talk: Part 2", "What-A-Talk-Part-2.pdf"},
		{"dash runs collapse", "a -- b  --  c", "a-b-c.pdf"},
		{"unicode symbols dropped", "Gophers ♥ PDFs", "Gophers-PDFs.pdf"},
		{"empty falls back", "", "video-transcript.pdf"},
		{"symbols only falls back", "!!!???", "video-transcript.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeFilename(tt.title); got != tt.want {
				t.Errorf("SafeFilename(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSafeFilenameAlwaysPDF(t *testing.T) {
	for _, title := range []string{"x", "résumé", "a/b\\c", strings.Repeat("y", 300)} {
		got := SafeFilename(title)
		if !strings.HasSuffix(got, ".pdf") {
			t.Errorf("SafeFilename(%q) = %q, missing .pdf suffix", title, got)
		}
	}
}
