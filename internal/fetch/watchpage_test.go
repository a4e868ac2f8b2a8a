// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/tubeprint/pkg/types"
)

const fakePlayerResponse = `{
	"playabilityStatus": {"status": "OK"},
	"videoDetails": {"videoId": "dQw4w9WgXcQ", "title": "A {Braced} Talk", "author": "Chan \"nel\""},
	"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
		{"baseUrl": "TIMEDTEXT", "name": {"simpleText": "English"}, "languageCode": "en"},
		{"baseUrl": "TIMEDTEXT", "name": {"runs": [{"text": "English "}, {"text": "(auto-generated)"}]}, "languageCode": "en", "kind": "asr"}
	]}}
}`

func newTestClient(ts *httptest.Server) *client {
	return &client{http: ts.Client()}
}

func TestExtractPlayerResponse(t *testing.T) {
	page := `<html><script>var ytInitialPlayerResponse = {"a": "close } brace", "b": {"c": 1}};var other = 2;</script></html>`
	got, err := extractPlayerResponse(page)
	if err != nil {
		t.Fatalf("extractPlayerResponse() error = %v", err)
	}
	want := `{"a": "close } brace", "b": {"c": 1}}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractPlayerResponseEscapedQuote(t *testing.T) {
	page := `ytInitialPlayerResponse = {"a": "quote \" and } inside"};`
	got, err := extractPlayerResponse(page)
	if err != nil {
		t.Fatalf("extractPlayerResponse() error = %v", err)
	}
	if got != `{"a": "quote \" and } inside"}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractPlayerResponseMissing(t *testing.T) {
	if _, err := extractPlayerResponse("<html>nothing here</html>"); err == nil {
		t.Error("expected error for page without player response")
	}
	if _, err := extractPlayerResponse("ytInitialPlayerResponse = {unterminated"); err == nil {
		t.Error("expected error for unterminated object")
	}
}

func TestWatchPageListing(t *testing.T) {
	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	defer ts.Close()

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "dQw4w9WgXcQ" {
			http.NotFound(w, r)
			return
		}
		body := fakePlayerResponse
		fmt.Fprintf(w, "<html><script>var ytInitialPlayerResponse = %s;</script></html>", body)
	})

	oldBase := watchPageBase
	watchPageBase = ts.URL + "/watch"
	defer func() { watchPageBase = oldBase }()

	src := &WatchPageSource{c: newTestClient(ts)}
	listing, err := src.Listing(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Listing() error = %v", err)
	}

	if listing.Title != "A {Braced} Talk" {
		t.Errorf("Title = %q", listing.Title)
	}
	if len(listing.Tracks) != 2 {
		t.Fatalf("len(Tracks) = %d, want 2", len(listing.Tracks))
	}
	if listing.Tracks[0].Kind != types.KindManual || listing.Tracks[1].Kind != types.KindAuto {
		t.Errorf("track kinds = %s, %s", listing.Tracks[0].Kind, listing.Tracks[1].Kind)
	}
	if listing.Tracks[1].LanguageName != "English (auto-generated)" {
		t.Errorf("runs name = %q", listing.Tracks[1].LanguageName)
	}
}

func TestWatchPageListingNoCaptions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><script>var ytInitialPlayerResponse = {"playabilityStatus": {"status": "OK"}};</script></html>`)
	}))
	defer ts.Close()

	oldBase := watchPageBase
	watchPageBase = ts.URL + "/watch"
	defer func() { watchPageBase = oldBase }()

	src := &WatchPageSource{c: newTestClient(ts)}
	_, err := src.Listing(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, ErrNoCaptions) {
		t.Fatalf("error = %v, want ErrNoCaptions", err)
	}
}

func TestWatchPageListingUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><script>var ytInitialPlayerResponse = {"playabilityStatus": {"status": "ERROR", "reason": "Video unavailable"}};</script></html>`)
	}))
	defer ts.Close()

	oldBase := watchPageBase
	watchPageBase = ts.URL + "/watch"
	defer func() { watchPageBase = oldBase }()

	src := &WatchPageSource{c: newTestClient(ts)}
	_, err := src.Listing(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestInnertubeListingAndLines(t *testing.T) {
	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	defer ts.Close()

	mux.HandleFunc("/youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		fmt.Fprint(w, fakePlayerResponse)
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, legacyPayload)
	})

	oldBase := innertubeAPIBase
	innertubeAPIBase = ts.URL + "/youtubei/v1/player"
	defer func() { innertubeAPIBase = oldBase }()

	src := &InnertubeSource{c: newTestClient(ts)}
	listing, err := src.Listing(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Listing() error = %v", err)
	}
	if len(listing.Tracks) != 2 {
		t.Fatalf("len(Tracks) = %d, want 2", len(listing.Tracks))
	}

	track := listing.Tracks[0]
	track.BaseURL = ts.URL + "/timedtext"
	lines, err := src.Lines(context.Background(), track)
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	if len(lines) != 3 {
		t.Errorf("len(lines) = %d, want 3", len(lines))
	}
}

func TestInnertubeAPIKey(t *testing.T) {
	var gotKeys []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKeys = append(gotKeys, r.URL.Query().Get("key"))
		fmt.Fprint(w, fakePlayerResponse)
	}))
	defer ts.Close()

	oldBase := innertubeAPIBase
	innertubeAPIBase = ts.URL + "/youtubei/v1/player"
	defer func() { innertubeAPIBase = oldBase }()

	c := newTestClient(ts)
	for _, src := range []*InnertubeSource{
		{c: c},
		{c: c, APIKey: "custom-key"},
	} {
		if _, err := src.Listing(context.Background(), "dQw4w9WgXcQ"); err != nil {
			t.Fatalf("Listing() error = %v", err)
		}
	}

	if len(gotKeys) != 2 || gotKeys[0] != defaultInnertubeKey || gotKeys[1] != "custom-key" {
		t.Errorf("keys sent = %v, want default then custom-key", gotKeys)
	}
}
