// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tubeprint/internal/fetch"
	"github.com/pdiddy/tubeprint/internal/format"
	"github.com/pdiddy/tubeprint/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Fetch a video's captions as formatted text",
	Long: `Fetch downloads the best-matching caption track for a YouTube video and
writes it as reflowed paragraphs, JSON, or SRT/VTT subtitles. Transcripts
are cached locally, so fetching the same video twice needs no network.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	addFetchFlags(fetchCmd)
	addFormatFlags(fetchCmd)
	fetchCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	fetchCmd.Flags().String("format", "text", "output format: text, plain, json, srt, vtt")
	fetchCmd.Flags().Bool("metadata", false, "write a YAML metadata sidecar next to the output file")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	t, err := fetchTranscript(cmd, args[0])
	if err != nil {
		return exitMessage(err)
	}

	outPath, _ := cmd.Flags().GetString("output")
	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeTranscript(cmd, t, w); err != nil {
		return err
	}

	if sidecar, _ := cmd.Flags().GetBool("metadata"); sidecar {
		if outPath == "" {
			return fmt.Errorf("--metadata requires --output")
		}
		if err := fetch.WriteMetadata(t, filepath.Dir(outPath)); err != nil {
			return err
		}
	}

	if outPath != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s (%d lines, %s)\n", outPath, len(t.Lines), t.LanguageCode)
	}
	return nil
}

func writeTranscript(cmd *cobra.Command, t *types.Transcript, w io.Writer) error {
	outFormat, _ := cmd.Flags().GetString("format")
	switch outFormat {
	case "text", "":
		return format.Text(t, formatOptions(cmd), w)
	case "plain":
		_, err := fmt.Fprintln(w, t.PlainText())
		return err
	case "json":
		return format.JSON(t, w)
	case "srt":
		return format.SRT(t, w)
	case "vtt":
		return format.VTT(t, w)
	default:
		return fmt.Errorf("unsupported format %q: use text, plain, json, srt, or vtt", outFormat)
	}
}
