// CLAUDE:SUMMARY Gob serialization of a validated corpus for fast loading; the snapshot wins over source files.
package content

import (
	"encoding/gob"
	"fmt"
	"os"
)

// SnapshotFile is the snapshot name inside a content directory.
const SnapshotFile = "snapshot.gob"

// snapshot is the on-disk form. The manifest is not stored: it is always
// read from manifest.yaml so category metadata edits apply without a
// re-import.
type snapshot struct {
	Terms          []*Term
	QuestionDecks  []*QuestionDeck
	FlashcardDecks []*FlashcardDeck
	Lessons        []*VisualLesson
	Warnings       []Warning
}

// LoadSnapshot decodes a corpus from a gob-encoded file.
func LoadSnapshot(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var s snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &Corpus{
		Terms:          s.Terms,
		QuestionDecks:  s.QuestionDecks,
		FlashcardDecks: s.FlashcardDecks,
		Lessons:        s.Lessons,
		Warnings:       s.Warnings,
	}, nil
}

// SaveSnapshot serializes c to a gob-encoded file at path.
func SaveSnapshot(c *Corpus, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	s := snapshot{
		Terms:          c.Terms,
		QuestionDecks:  c.QuestionDecks,
		FlashcardDecks: c.FlashcardDecks,
		Lessons:        c.Lessons,
		Warnings:       c.Warnings,
	}
	if err := gob.NewEncoder(f).Encode(&s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
