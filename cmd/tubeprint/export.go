// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tubeprint/internal/fetch"
	"github.com/pdiddy/tubeprint/internal/pdf"
	"github.com/pdiddy/tubeprint/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export [url]",
	Short: "Export a video's captions as a typeset PDF",
	Long: `Export fetches the transcript and renders it as a PDF document with a
title block, reading metadata, and reflowed paragraphs. The output
filename defaults to a sanitized form of the video title.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	addFetchFlags(exportCmd)
	addFormatFlags(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "output PDF path (default: derived from the video title)")
	exportCmd.Flags().String("title", "", "override the document title")
	exportCmd.Flags().String("page", "A4", "page size: A4 or Letter")
	exportCmd.Flags().Float64("margin", 0, "page margin in millimeters (default 20)")
	exportCmd.Flags().String("font", "", "core PDF font: helvetica, times, or courier")
	exportCmd.Flags().Float64("font-size", 0, "body font size in points (default 11)")
	exportCmd.Flags().Bool("metadata", false, "write a YAML metadata sidecar next to the PDF")
	exportCmd.Flags().String("from", "", "render from a metadata sidecar instead of fetching")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	var (
		t   *types.Transcript
		err error
	)
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		t, err = fetch.ReadMetadata(from)
	} else if len(args) == 0 {
		return fmt.Errorf("provide a video URL, or --from with a metadata sidecar")
	} else {
		t, err = fetchTranscript(cmd, args[0])
	}
	if err != nil {
		return exitMessage(err)
	}

	if title, _ := cmd.Flags().GetString("title"); title != "" {
		t.Title = title
	}

	page, _ := cmd.Flags().GetString("page")
	margin, _ := cmd.Flags().GetFloat64("margin")
	font, _ := cmd.Flags().GetString("font")
	bodySize, _ := cmd.Flags().GetFloat64("font-size")

	cfg := types.PDFConfig{
		Page:       types.PageSize(page),
		MarginMM:   margin,
		FontFamily: font,
		BodySize:   bodySize,
	}

	doc, err := pdf.Build(t, formatOptions(cmd), cfg)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		outPath = pdf.SafeFilename(t.Title)
	}
	if err := doc.WriteFile(outPath); err != nil {
		return err
	}

	if sidecar, _ := cmd.Flags().GetBool("metadata"); sidecar {
		if err := fetch.WriteMetadata(t, filepath.Dir(outPath)); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "Wrote %s (%s, %d caption lines)\n", outPath, t.LanguageCode, len(t.Lines))
	return nil
}
