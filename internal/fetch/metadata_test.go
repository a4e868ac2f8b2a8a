// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/tubeprint/pkg/types"
)

func TestMetadataRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := &types.Transcript{
		VideoID:      "dQw4w9WgXcQ",
		Title:        "A Talk",
		Author:       "Some Channel",
		LanguageCode: "en",
		Kind:         types.KindManual,
		Source:       "innertube",
		FetchedAt:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Lines: []types.Line{
			{Start: 0, Duration: 2 * time.Second, Text: "hello"},
			{Start: 2 * time.Second, Duration: time.Second, Text: "world"},
		},
	}

	if err := WriteMetadata(in, dir); err != nil {
		t.Fatalf("WriteMetadata() error = %v", err)
	}

	path := MetadataPath(dir, in)
	if filepath.Base(path) != "dQw4w9WgXcQ-en.yaml" {
		t.Errorf("sidecar name = %q", filepath.Base(path))
	}

	got, err := ReadMetadata(path)
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}
	if got.Title != in.Title || got.LanguageCode != "en" || got.Kind != types.KindManual {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if len(got.Lines) != 2 || got.Lines[1].Text != "world" || got.Lines[1].Start != 2*time.Second {
		t.Errorf("lines mismatch: %+v", got.Lines)
	}

	// No temp file left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file still present: %v", err)
	}
}

func TestReadMetadataErrors(t *testing.T) {
	if _, err := ReadMetadata(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing sidecar")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadMetadata(bad); err == nil {
		t.Error("expected error for malformed sidecar")
	}
}
