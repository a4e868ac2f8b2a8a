// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/tubeprint/pkg/types"
)

const defaultSearchLimit = 20

// SearchHit is one caption line matching a full-text query, with
// enough provenance to jump back into the video.
type SearchHit struct {
	VideoID  string
	Title    string
	Language string
	Kind     types.TrackKind
	Start    time.Duration
	Snippet  string
}

// WatchURL returns a watch link seeked to the hit's timestamp.
func (h SearchHit) WatchURL() string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&t=%ds", h.VideoID, int(h.Start/time.Second))
}

// Search runs an FTS5 query over cached caption text, ranked by
// relevance. Matched terms are bracketed in the snippet.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT tr.video_id, v.title, tr.language, tr.kind, l.start_ms,
			snippet(lines_fts, 0, '[', ']', CHAR(8230), 12)
		 FROM lines_fts
		 JOIN lines l ON l.rowid = lines_fts.rowid
		 JOIN transcripts tr ON tr.rowid = l.transcript_rowid
		 JOIN videos v ON v.id = tr.video_id
		 WHERE lines_fts MATCH ?
		 ORDER BY lines_fts.rank
		 LIMIT ?`,
		query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching cache: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var (
			h       SearchHit
			kind    string
			startMS int64
		)
		if err := rows.Scan(&h.VideoID, &h.Title, &h.Language, &kind, &startMS, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		h.Kind = types.TrackKind(kind)
		h.Start = time.Duration(startMS) * time.Millisecond
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
