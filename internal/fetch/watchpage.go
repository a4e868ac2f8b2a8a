// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/tubeprint/pkg/types"
)

// watchPageBase is the watch page endpoint. Declared as a var so tests
// can substitute an httptest server.
var watchPageBase = "https://www.youtube.com/watch"

// playerResponseMarker precedes the embedded player response JSON in
// the watch page HTML.
const playerResponseMarker = "ytInitialPlayerResponse"

// WatchPageSource scrapes the player response embedded in the watch
// page. It sees the same caption data as the Innertube API and serves
// as the fallback when the API answer is rejected.
type WatchPageSource struct {
	c *client
}

// Name returns the source identifier.
func (s *WatchPageSource) Name() string { return "watchpage" }

// Listing fetches the watch page and extracts the caption track list
// from the embedded player response.
func (s *WatchPageSource) Listing(ctx context.Context, videoID string) (*Listing, error) {
	u := fmt.Sprintf("%s?v=%s&hl=en", watchPageBase, url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("watch page request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page returned HTTP %d", resp.StatusCode)
	}

	page, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading watch page: %w", err)
	}

	raw, err := extractPlayerResponse(string(page))
	if err != nil {
		return nil, err
	}

	var pr playerResponse
	if err := json.Unmarshal([]byte(raw), &pr); err != nil {
		return nil, fmt.Errorf("parsing embedded player response: %w", err)
	}

	return pr.listing()
}

// Lines downloads the track's timedtext cues.
func (s *WatchPageSource) Lines(ctx context.Context, track types.Track) ([]types.Line, error) {
	return fetchCues(ctx, s.c, track.BaseURL)
}

// extractPlayerResponse locates the ytInitialPlayerResponse assignment
// in the page HTML and returns the JSON object literal.
func extractPlayerResponse(page string) (string, error) {
	idx := strings.Index(page, playerResponseMarker)
	if idx < 0 {
		return "", fmt.Errorf("watch page has no %s", playerResponseMarker)
	}

	rest := page[idx+len(playerResponseMarker):]
	start := strings.IndexByte(rest, '{')
	if start < 0 {
		return "", fmt.Errorf("malformed %s assignment", playerResponseMarker)
	}

	obj, ok := balancedJSONObject(rest[start:])
	if !ok {
		return "", fmt.Errorf("unterminated %s object", playerResponseMarker)
	}
	return obj, nil
}

// balancedJSONObject returns the prefix of s spanning one JSON object,
// tracking brace depth outside string literals.
func balancedJSONObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
