// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/tubeprint/pkg/types"
)

// fetchCues downloads a caption track URL and parses the cues.
func fetchCues(ctx context.Context, c *client, baseURL string) ([]types.Line, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("timedtext request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading timedtext body: %w", err)
	}

	return ParseTimedText(data)
}

// Legacy timedtext format: <transcript><text start="1.2" dur="3.4">.
type timedTextDoc struct {
	XMLName xml.Name       `xml:"transcript"`
	Texts   []timedTextCue `xml:"text"`
}

type timedTextCue struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

// srv3 format: <timedtext><body><p t="1200" d="3400"> with optional
// <s> word segments. Times are in milliseconds.
type srv3Doc struct {
	XMLName xml.Name `xml:"timedtext"`
	Body    struct {
		Paragraphs []srv3Paragraph `xml:"p"`
	} `xml:"body"`
}

type srv3Paragraph struct {
	T        int64  `xml:"t,attr"`
	D        int64  `xml:"d,attr"`
	Text     string `xml:",chardata"`
	Segments []struct {
		Text string `xml:",chardata"`
	} `xml:"s"`
}

// ParseTimedText parses caption cues in either the legacy timedtext XML
// format or the srv3 format, returning cues in document order. HTML
// entities are decoded (YouTube double-escapes, so "&amp;#39;" survives
// the XML pass) and intra-cue newlines collapse to spaces.
func ParseTimedText(data []byte) ([]types.Line, error) {
	var legacy timedTextDoc
	if err := xml.Unmarshal(data, &legacy); err == nil {
		return legacyLines(legacy)
	}

	var srv3 srv3Doc
	if err := xml.Unmarshal(data, &srv3); err == nil {
		return srv3Lines(srv3)
	}

	return nil, fmt.Errorf("unrecognized caption payload")
}

func legacyLines(doc timedTextDoc) ([]types.Line, error) {
	var lines []types.Line
	for _, cue := range doc.Texts {
		start, err := strconv.ParseFloat(cue.Start, 64)
		if err != nil {
			return nil, fmt.Errorf("bad cue start %q: %w", cue.Start, err)
		}
		// dur is omitted for the last cue of some tracks.
		var dur float64
		if cue.Dur != "" {
			if dur, err = strconv.ParseFloat(cue.Dur, 64); err != nil {
				return nil, fmt.Errorf("bad cue dur %q: %w", cue.Dur, err)
			}
		}

		text := cleanCueText(cue.Text)
		if text == "" {
			continue
		}
		lines = append(lines, types.Line{
			Start:    time.Duration(start * float64(time.Second)),
			Duration: time.Duration(dur * float64(time.Second)),
			Text:     text,
		})
	}
	return lines, nil
}

func srv3Lines(doc srv3Doc) ([]types.Line, error) {
	var lines []types.Line
	for _, p := range doc.Body.Paragraphs {
		text := p.Text
		if len(p.Segments) > 0 {
			var b strings.Builder
			for _, s := range p.Segments {
				b.WriteString(s.Text)
			}
			text = b.String()
		}

		text = cleanCueText(text)
		if text == "" {
			continue
		}
		lines = append(lines, types.Line{
			Start:    time.Duration(p.T) * time.Millisecond,
			Duration: time.Duration(p.D) * time.Millisecond,
			Text:     text,
		})
	}
	return lines, nil
}

// cleanCueText decodes residual HTML entities and collapses all
// whitespace runs to single spaces.
func cleanCueText(s string) string {
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
