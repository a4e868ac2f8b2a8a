// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrBadVideoID reports input that is neither a YouTube URL nor a video ID.
var ErrBadVideoID = errors.New("not a YouTube URL or video ID")

// videoIDPattern matches the 11-character video identifier alphabet.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// youtubeHosts lists the hostnames accepted for watch URLs.
var youtubeHosts = map[string]bool{
	"youtube.com":          true,
	"www.youtube.com":      true,
	"m.youtube.com":        true,
	"music.youtube.com":    true,
	"youtube-nocookie.com": true,
	"www.youtube-nocookie.com": true,
}

// pathPrefixes lists URL path forms that embed the video ID as the next
// path segment.
var pathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/"}

// ParseVideoID extracts the 11-character video ID from a raw ID or any
// common YouTube URL form: watch?v=, youtu.be/, /shorts/, /embed/,
// /live/, /v/. A scheme-less URL like "youtu.be/xyz" is accepted.
func ParseVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrBadVideoID
	}

	if videoIDPattern.MatchString(input) {
		return input, nil
	}

	raw := input
	if !strings.Contains(raw, "://") {
		if !strings.Contains(raw, "youtube.com") && !strings.Contains(raw, "youtu.be") {
			return "", ErrBadVideoID
		}
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrBadVideoID
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrBadVideoID
	}

	host := strings.ToLower(u.Hostname())

	if host == "youtu.be" {
		return validateID(strings.Trim(u.Path, "/"))
	}

	if !youtubeHosts[host] {
		return "", ErrBadVideoID
	}

	if u.Path == "/watch" {
		return validateID(u.Query().Get("v"))
	}

	for _, prefix := range pathPrefixes {
		if strings.HasPrefix(u.Path, prefix) {
			id := strings.TrimPrefix(u.Path, prefix)
			if i := strings.IndexByte(id, '/'); i >= 0 {
				id = id[:i]
			}
			return validateID(id)
		}
	}

	return "", ErrBadVideoID
}

func validateID(id string) (string, error) {
	if !videoIDPattern.MatchString(id) {
		return "", ErrBadVideoID
	}
	return id, nil
}
