// CLAUDE:SUMMARY SQLite log of engine builds: one row per build with index sizes, plus the load warnings and name collisions it raised.
package buildlog

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hazyhaar/termlink/pkg/content"
	"github.com/hazyhaar/termlink/pkg/termindex"
	_ "modernc.org/sqlite"
)

// Build is a row of the builds table.
type Build struct {
	ID             string `json:"id"`
	ContentID      string `json:"content_id"`
	Version        string `json:"version"`
	Origin         string `json:"origin"`
	BuiltAt        int64  `json:"built_at"`
	Terms          int    `json:"terms"`
	Categories     int    `json:"categories"`
	QuestionDecks  int    `json:"question_decks"`
	FlashcardDecks int    `json:"flashcard_decks"`
	Lessons        int    `json:"lessons"`
	IndexKeys      int    `json:"index_keys"`
	Collisions     int    `json:"collisions"`
	Warnings       int    `json:"warnings"`
}

// Store manages the builds and build_warnings SQLite tables.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the
// tables exist.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open build db: %w", err)
	}

	ddl := []string{`CREATE TABLE IF NOT EXISTS builds (
		id               TEXT PRIMARY KEY,
		content_id       TEXT NOT NULL,
		version          TEXT NOT NULL DEFAULT '',
		origin           TEXT NOT NULL DEFAULT '',
		built_at         INTEGER NOT NULL,
		terms            INTEGER NOT NULL,
		categories       INTEGER NOT NULL,
		question_decks   INTEGER NOT NULL,
		flashcard_decks  INTEGER NOT NULL,
		lessons          INTEGER NOT NULL,
		index_keys       INTEGER NOT NULL,
		collisions       INTEGER NOT NULL,
		warnings         INTEGER NOT NULL
	)`, `CREATE TABLE IF NOT EXISTS build_warnings (
		build_id  TEXT NOT NULL REFERENCES builds(id),
		seq       INTEGER NOT NULL,
		kind      TEXT NOT NULL,
		source    TEXT NOT NULL DEFAULT '',
		record    TEXT NOT NULL DEFAULT '',
		reason    TEXT NOT NULL,
		PRIMARY KEY (build_id, seq)
	)`}
	for _, q := range ddl {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("create build tables: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the SQLite connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record persists an engine build and its warnings in one transaction.
func (s *Store) Record(e *termindex.Engine) error {
	m := e.Repository().Manifest()
	st := e.Stats()
	report := e.Report()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO builds
		(id, content_id, version, origin, built_at, terms, categories, question_decks,
		 flashcard_decks, lessons, index_keys, collisions, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, m.ID, m.Version, report.Origin, e.BuiltAt.Unix(), st.Terms, st.Categories,
		st.QuestionDecks, st.FlashcardDecks, st.Lessons, st.IndexKeys, st.Collisions, st.Warnings,
	)
	if err != nil {
		return fmt.Errorf("insert build %s: %w", e.ID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO build_warnings (build_id, seq, kind, source, record, reason)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare warnings: %w", err)
	}
	defer stmt.Close()
	for i, w := range report.Warnings {
		if _, err := stmt.Exec(e.ID, i, w.Kind, w.Source, w.Record, w.Reason); err != nil {
			return fmt.Errorf("insert warning %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ListBuilds returns the most recent builds first, at most limit rows.
func (s *Store) ListBuilds(limit int) ([]Build, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT id, content_id, version, origin, built_at, terms, categories,
		question_decks, flashcard_decks, lessons, index_keys, collisions, warnings
		FROM builds ORDER BY built_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		var b Build
		if err := rows.Scan(&b.ID, &b.ContentID, &b.Version, &b.Origin, &b.BuiltAt, &b.Terms,
			&b.Categories, &b.QuestionDecks, &b.FlashcardDecks, &b.Lessons, &b.IndexKeys,
			&b.Collisions, &b.Warnings); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

// ErrUnknownBuild is returned for a build id with no row in the log.
var ErrUnknownBuild = errors.New("unknown build")

// Warnings returns the warnings recorded for a build in emission order.
func (s *Store) Warnings(buildID string) ([]content.Warning, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM builds WHERE id = ?`, buildID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("build %s: %w", buildID, ErrUnknownBuild)
	}
	if err != nil {
		return nil, fmt.Errorf("look up build %s: %w", buildID, err)
	}

	rows, err := s.db.Query(`SELECT kind, source, record, reason
		FROM build_warnings WHERE build_id = ? ORDER BY seq`, buildID)
	if err != nil {
		return nil, fmt.Errorf("list warnings for %s: %w", buildID, err)
	}
	defer rows.Close()

	var out []content.Warning
	for rows.Next() {
		var w content.Warning
		if err := rows.Scan(&w.Kind, &w.Source, &w.Record, &w.Reason); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Prune deletes builds older than the given age along with their warnings.
func (s *Store) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()
	if _, err := s.db.Exec(`DELETE FROM build_warnings WHERE build_id IN
		(SELECT id FROM builds WHERE built_at < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("prune warnings: %w", err)
	}
	res, err := s.db.Exec(`DELETE FROM builds WHERE built_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune builds: %w", err)
	}
	return res.RowsAffected()
}
