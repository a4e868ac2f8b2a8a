// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/tubeprint/internal/fetch"
	"github.com/pdiddy/tubeprint/internal/format"
	"github.com/pdiddy/tubeprint/internal/pdf"
	"github.com/pdiddy/tubeprint/internal/store"
	"github.com/pdiddy/tubeprint/pkg/types"
)

// PipelineExporter builds the production Exporter: fetch captions,
// format, and render the PDF into the job's work directory. st may be
// nil when the cache is disabled; fetched transcripts are written
// through to it otherwise.
func PipelineExporter(cfg types.PipelineConfig, st *store.Store, log *logrus.Logger) Exporter {
	return func(ctx context.Context, req ExportRequest, outDir string, progress func(pct float64, stage string)) (string, string, error) {
		videoID, err := fetch.ParseVideoID(req.URL)
		if err != nil {
			return "", "", err
		}

		progress(0, "fetching transcript")

		fcfg := cfg.Fetch
		if len(req.Languages) > 0 {
			fcfg.Languages = req.Languages
		}
		if req.ManualOnly {
			fcfg.ManualOnly = true
		}
		fetcher := fetch.New(fcfg, io.Discard)

		transcript, err := fetcher.Fetch(ctx, videoID)
		if err != nil {
			return "", "", err
		}
		if st != nil {
			if err := st.Put(ctx, transcript); err != nil {
				log.WithField("video_id", videoID).WithError(err).Warn("cache write failed")
			}
		}

		progress(50, "rendering pdf")

		fopts := format.FromConfig(cfg.Format)
		fopts.Timestamps = req.Timestamps

		doc, err := pdf.Build(transcript, fopts, cfg.PDF)
		if err != nil {
			return "", "", err
		}

		filename := pdf.SafeFilename(transcript.Title)
		outputPath := filepath.Join(outDir, filename)
		if err := doc.WriteFile(outputPath); err != nil {
			return "", "", err
		}

		progress(95, "finalizing")
		return outputPath, filename, nil
	}
}
