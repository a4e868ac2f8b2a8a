// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"strings"

	"github.com/pdiddy/tubeprint/pkg/types"
)

// playerResponse models the subset of YouTube's player response shared
// by the Innertube API and the watch page embed.
type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails struct {
		VideoID string `json:"videoId"`
		Title   string `json:"title"`
		Author  string `json:"author"`
	} `json:"videoDetails"`
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string    `json:"baseUrl"`
	Name         trackName `json:"name"`
	LanguageCode string    `json:"languageCode"`
	Kind         string    `json:"kind"` // "asr" for auto-generated
}

// trackName handles both name encodings YouTube serves: simpleText and
// runs.
type trackName struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (n trackName) String() string {
	if n.SimpleText != "" {
		return n.SimpleText
	}
	var b strings.Builder
	for _, r := range n.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// listing converts the player response into a Listing, mapping
// playability problems to sentinel errors.
func (pr *playerResponse) listing() (*Listing, error) {
	switch pr.PlayabilityStatus.Status {
	case "OK", "":
	case "LOGIN_REQUIRED", "ERROR", "UNPLAYABLE":
		reason := pr.PlayabilityStatus.Reason
		if reason == "" {
			reason = pr.PlayabilityStatus.Status
		}
		return nil, fmt.Errorf("%s: %w", reason, ErrUnavailable)
	default:
		return nil, fmt.Errorf("playability status %s: %w", pr.PlayabilityStatus.Status, ErrUnavailable)
	}

	raw := pr.Captions.Renderer.CaptionTracks
	if len(raw) == 0 {
		return nil, ErrNoCaptions
	}

	l := &Listing{
		Title:  pr.VideoDetails.Title,
		Author: pr.VideoDetails.Author,
	}
	for _, ct := range raw {
		kind := types.KindManual
		if ct.Kind == "asr" {
			kind = types.KindAuto
		}
		l.Tracks = append(l.Tracks, types.Track{
			LanguageCode: ct.LanguageCode,
			LanguageName: ct.Name.String(),
			Kind:         kind,
			BaseURL:      ct.BaseURL,
		})
	}
	return l, nil
}
