// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdf renders a transcript as a paginated PDF document.
package pdf

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/tubeprint/internal/format"
	"github.com/pdiddy/tubeprint/pkg/types"
)

// Defaults applied when PDFConfig fields are zero.
const (
	defaultMarginMM   = 20.0
	defaultBodySize   = 11.0
	defaultTitleSize  = 18.0
	defaultFontFamily = "helvetica"

	metaSize      = 9.0
	timestampSize = 8.5
	bodyLineHt    = 5.5
	metaLineHt    = 4.5
)

// Document is a rendered PDF ready to be written out.
type Document struct {
	pdf *fpdf.Fpdf
}

// Build lays out the transcript: a title block with video metadata,
// then the formatted paragraphs, with page numbers in the footer.
// Returns an error for a transcript with no lines.
func Build(t *types.Transcript, fopts format.Options, cfg types.PDFConfig) (*Document, error) {
	if len(t.Lines) == 0 {
		return nil, fmt.Errorf("transcript for %s has no lines", t.VideoID)
	}

	page := "A4"
	if cfg.Page == types.PageLetter {
		page = "Letter"
	}
	margin := cfg.MarginMM
	if margin <= 0 {
		margin = defaultMarginMM
	}
	family := cfg.FontFamily
	if family == "" {
		family = defaultFontFamily
	}
	bodySize := cfg.BodySize
	if bodySize <= 0 {
		bodySize = defaultBodySize
	}
	titleSize := cfg.TitleSize
	if titleSize <= 0 {
		titleSize = defaultTitleSize
	}

	doc := fpdf.New("P", "mm", page, "")
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)
	doc.SetTitle(tr(title(t)), false)
	doc.SetAuthor(tr(t.Author), false)

	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-margin + 5)
		doc.SetFont(family, "I", metaSize)
		doc.SetTextColor(128, 128, 128)
		doc.CellFormat(0, 10, fmt.Sprintf("page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	doc.AddPage()

	pageW, _ := doc.GetPageSize()
	contentW := pageW - 2*margin

	// Title block.
	doc.SetTextColor(0, 0, 0)
	doc.SetFont(family, "B", titleSize)
	doc.MultiCell(contentW, titleSize*0.5, tr(title(t)), "", "L", false)
	doc.Ln(2)

	doc.SetFont(family, "", metaSize)
	doc.SetTextColor(90, 90, 90)
	for _, line := range metaLines(t) {
		doc.MultiCell(contentW, metaLineHt, tr(line), "", "L", false)
	}

	doc.Ln(2)
	doc.SetDrawColor(180, 180, 180)
	doc.Line(margin, doc.GetY(), pageW-margin, doc.GetY())
	doc.Ln(5)

	// Body.
	for i, p := range format.Paragraphs(t, fopts) {
		if i > 0 {
			doc.Ln(3)
		}
		if fopts.Timestamps {
			doc.SetFont(family, "B", timestampSize)
			doc.SetTextColor(120, 120, 120)
			doc.CellFormat(contentW, metaLineHt, format.Timestamp(p.Start), "", 1, "L", false, 0, "")
		}
		doc.SetFont(family, "", bodySize)
		doc.SetTextColor(0, 0, 0)
		doc.MultiCell(contentW, bodyLineHt, tr(p.Text), "", "L", false)
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("laying out PDF: %w", err)
	}
	return &Document{pdf: doc}, nil
}

// Write streams the PDF bytes to w.
func (d *Document) Write(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}

// WriteFile writes the PDF to path.
func (d *Document) WriteFile(path string) error {
	if err := d.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing PDF %s: %w", path, err)
	}
	return nil
}

func title(t *types.Transcript) string {
	if t.Title != "" {
		return t.Title
	}
	return t.VideoID
}

func metaLines(t *types.Transcript) []string {
	var lines []string
	if t.Author != "" {
		lines = append(lines, t.Author)
	}
	lines = append(lines, t.WatchURL())

	track := fmt.Sprintf("captions: %s (%s)", t.LanguageCode, t.Kind)
	if !t.FetchedAt.IsZero() {
		track += ", fetched " + t.FetchedAt.Format("2006-01-02")
	}
	lines = append(lines, track)

	if d := t.Duration(); d > 0 {
		lines = append(lines, "duration: "+format.Timestamp(d))
	}
	return lines
}

// nonWordPattern matches runs of characters unsafe in a filename.
var nonWordPattern = regexp.MustCompile(`[^\w\s-]`)

// dashRunPattern collapses whitespace and dash runs.
var dashRunPattern = regexp.MustCompile(`[-\s]+`)

// SafeFilename derives a download filename from a video title: strips
// non-word characters, collapses spaces and dashes, and falls back to
// a generic stem for titles that sanitize to nothing.
func SafeFilename(videoTitle string) string {
	s := nonWordPattern.ReplaceAllString(videoTitle, "")
	s = strings.TrimSpace(s)
	s = dashRunPattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "video-transcript"
	}
	return s + ".pdf"
}
