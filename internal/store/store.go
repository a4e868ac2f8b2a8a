// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store caches fetched transcripts in SQLite and builds a
// full-text index over the caption text.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/tubeprint/pkg/types"
)

const dbFile = "tubeprint.db"

// ErrNotCached reports a cache miss, including entries rejected as stale.
var ErrNotCached = errors.New("transcript not cached")

// Store manages the transcript cache database.
type Store struct {
	db     *sql.DB
	maxAge time.Duration
}

// Open opens or creates the cache database at cfg.Dir/tubeprint.db and
// creates the schema if it does not exist.
func Open(cfg types.CacheConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("cache directory not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db, maxAge: cfg.MaxAge}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS videos (
			id TEXT PRIMARY KEY,
			title TEXT,
			author TEXT,
			duration_ms INTEGER,
			fetched_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS transcripts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			video_id TEXT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			language TEXT NOT NULL,
			kind TEXT NOT NULL,
			source TEXT,
			fetched_at TEXT NOT NULL,
			line_count INTEGER NOT NULL,
			UNIQUE(video_id, language, kind)
		)`,
		`CREATE TABLE IF NOT EXISTS lines (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			transcript_rowid INTEGER NOT NULL REFERENCES transcripts(rowid) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			start_ms INTEGER NOT NULL,
			dur_ms INTEGER NOT NULL,
			text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lines_transcript ON lines(transcript_rowid, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_transcripts_video ON transcripts(video_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='lines_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE lines_fts USING fts5(text, content=lines, content_rowid=rowid)`,
			`CREATE TRIGGER lines_ai AFTER INSERT ON lines BEGIN
				INSERT INTO lines_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
			`CREATE TRIGGER lines_ad AFTER DELETE ON lines BEGIN
				INSERT INTO lines_fts(lines_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			END`,
			`CREATE TRIGGER lines_au AFTER UPDATE ON lines BEGIN
				INSERT INTO lines_fts(lines_fts, rowid, text) VALUES('delete', old.rowid, old.text);
				INSERT INTO lines_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Put upserts the transcript, replacing any previously cached lines
// for the same (video, language, kind) in one transaction.
func (s *Store) Put(ctx context.Context, t *types.Transcript) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	fetchedAt := t.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	stamp := fetchedAt.UTC().Format(time.RFC3339Nano)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO videos (id, title, author, duration_ms, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, author=excluded.author,
			duration_ms=excluded.duration_ms, fetched_at=excluded.fetched_at`,
		t.VideoID, t.Title, t.Author, t.Duration().Milliseconds(), stamp,
	)
	if err != nil {
		return fmt.Errorf("upserting video: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transcripts (video_id, language, kind, source, fetched_at, line_count)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(video_id, language, kind) DO UPDATE SET
			source=excluded.source, fetched_at=excluded.fetched_at,
			line_count=excluded.line_count`,
		t.VideoID, t.LanguageCode, string(t.Kind), t.Source, stamp, len(t.Lines),
	)
	if err != nil {
		return fmt.Errorf("upserting transcript: %w", err)
	}

	// LastInsertId is unreliable on the upsert's update path, so look
	// the rowid up explicitly.
	var transcriptID int64
	err = tx.QueryRowContext(ctx,
		`SELECT rowid FROM transcripts WHERE video_id = ? AND language = ? AND kind = ?`,
		t.VideoID, t.LanguageCode, string(t.Kind),
	).Scan(&transcriptID)
	if err != nil {
		return fmt.Errorf("resolving transcript rowid: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM lines WHERE transcript_rowid = ?`, transcriptID); err != nil {
		return fmt.Errorf("deleting old lines: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO lines (transcript_rowid, seq, start_ms, dur_ms, text)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, line := range t.Lines {
		_, err := stmt.ExecContext(ctx, transcriptID, i,
			line.Start.Milliseconds(), line.Duration.Milliseconds(), line.Text)
		if err != nil {
			return fmt.Errorf("inserting line %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// fresh reports whether a cached stamp is inside the max-age window.
func (s *Store) fresh(stamp string) bool {
	if s.maxAge <= 0 {
		return true
	}
	at, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return false
	}
	return time.Since(at) < s.maxAge
}

// Tracks lists the fresh cached tracks for a video. BaseURL stays
// empty; cached tracks are read through Get, not refetched.
func (s *Store) Tracks(ctx context.Context, videoID string) ([]types.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT language, kind, fetched_at FROM transcripts WHERE video_id = ? ORDER BY language, kind`,
		videoID)
	if err != nil {
		return nil, fmt.Errorf("querying cached tracks: %w", err)
	}
	defer rows.Close()

	var tracks []types.Track
	for rows.Next() {
		var lang, kind, stamp string
		if err := rows.Scan(&lang, &kind, &stamp); err != nil {
			return nil, fmt.Errorf("scanning track row: %w", err)
		}
		if !s.fresh(stamp) {
			continue
		}
		tracks = append(tracks, types.Track{LanguageCode: lang, Kind: types.TrackKind(kind)})
	}
	return tracks, rows.Err()
}

// Get loads a cached transcript by exact track identity. Stale and
// missing entries both return ErrNotCached.
func (s *Store) Get(ctx context.Context, videoID, language string, kind types.TrackKind) (*types.Transcript, error) {
	var (
		transcriptID int64
		t            = &types.Transcript{
			VideoID:      videoID,
			LanguageCode: language,
			Kind:         kind,
			Source:       "cache",
		}
		stamp string
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT tr.rowid, tr.fetched_at, v.title, v.author
		 FROM transcripts tr JOIN videos v ON v.id = tr.video_id
		 WHERE tr.video_id = ? AND tr.language = ? AND tr.kind = ?`,
		videoID, language, string(kind),
	).Scan(&transcriptID, &stamp, &t.Title, &t.Author)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("querying transcript: %w", err)
	}
	if !s.fresh(stamp) {
		return nil, fmt.Errorf("cached %s: %w", stamp, ErrNotCached)
	}
	if at, err := time.Parse(time.RFC3339Nano, stamp); err == nil {
		t.FetchedAt = at
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT start_ms, dur_ms, text FROM lines WHERE transcript_rowid = ? ORDER BY seq`,
		transcriptID)
	if err != nil {
		return nil, fmt.Errorf("querying lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var startMS, durMS int64
		var text string
		if err := rows.Scan(&startMS, &durMS, &text); err != nil {
			return nil, fmt.Errorf("scanning line row: %w", err)
		}
		t.Lines = append(t.Lines, types.Line{
			Start:    time.Duration(startMS) * time.Millisecond,
			Duration: time.Duration(durMS) * time.Millisecond,
			Text:     text,
		})
	}
	return t, rows.Err()
}

// Entry summarizes one cached transcript for listings.
type Entry struct {
	VideoID   string
	Title     string
	Language  string
	Kind      types.TrackKind
	Source    string
	LineCount int
	FetchedAt time.Time
}

// List returns all cached transcripts, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tr.video_id, v.title, tr.language, tr.kind, tr.source, tr.line_count, tr.fetched_at
		 FROM transcripts tr JOIN videos v ON v.id = tr.video_id
		 ORDER BY tr.fetched_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying cache entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var kind, stamp string
		if err := rows.Scan(&e.VideoID, &e.Title, &e.Language, &kind, &e.Source, &e.LineCount, &stamp); err != nil {
			return nil, fmt.Errorf("scanning cache entry: %w", err)
		}
		e.Kind = types.TrackKind(kind)
		if at, err := time.Parse(time.RFC3339Nano, stamp); err == nil {
			e.FetchedAt = at
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes a video and all its cached transcripts.
func (s *Store) Delete(ctx context.Context, videoID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, videoID); err != nil {
		return fmt.Errorf("deleting video %s: %w", videoID, err)
	}
	return nil
}

// Clear empties the cache.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM videos`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}
