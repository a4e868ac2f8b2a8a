// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/tubeprint/pkg/types"
)

// MetadataPath returns the sidecar path for a transcript inside dir.
func MetadataPath(dir string, t *types.Transcript) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", t.VideoID, t.LanguageCode))
}

// WriteMetadata writes the transcript record as a YAML sidecar,
// creating dir as needed. The write goes through a temp file so a
// partial sidecar never lands at the final path.
func WriteMetadata(t *types.Transcript, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating metadata directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	path := MetadataPath(dir, t)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// ReadMetadata loads a transcript record from a YAML sidecar.
func ReadMetadata(path string) (*types.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata %s: %w", path, err)
	}
	var t types.Transcript
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing metadata %s: %w", path, err)
	}
	return &t, nil
}
