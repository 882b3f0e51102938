package content

import (
	"errors"
	"fmt"
	"log/slog"
)

// Record validation failures. They never abort a load; each one becomes a
// Warning and the offending record is skipped.
var (
	ErrMissingID    = errors.New("missing id")
	ErrMissingName  = errors.New("missing name")
	ErrMissingTag   = errors.New("missing primary tag")
	ErrDuplicateID  = errors.New("duplicate id")
	ErrMissingTitle = errors.New("missing title")
	ErrBadCount     = errors.New("count is not a non-negative integer")
)

// Warning kinds that are not record kinds.
const (
	WarnCollision = "collision"
	WarnSection   = "section"
	WarnSelfRef   = "self_reference"
)

// Warning is a non-fatal problem found while loading or indexing.
type Warning struct {
	Kind   string `json:"kind"`
	Source string `json:"source,omitempty"`
	Record string `json:"record,omitempty"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	if w.Record != "" {
		return fmt.Sprintf("%s %s (%s): %s", w.Kind, w.Record, w.Source, w.Reason)
	}
	return fmt.Sprintf("%s (%s): %s", w.Kind, w.Source, w.Reason)
}

// Log emits w at warn level.
func (w Warning) Log(logger *slog.Logger) {
	logger.Warn("content warning", "kind", w.Kind, "source", w.Source, "record", w.Record, "reason", w.Reason)
}

// LoadReport summarizes a corpus load.
type LoadReport struct {
	Origin         string    `json:"origin"` // "sources" or "snapshot"
	Terms          int       `json:"terms"`
	QuestionDecks  int       `json:"question_decks"`
	FlashcardDecks int       `json:"flashcard_decks"`
	Lessons        int       `json:"lessons"`
	Warnings       []Warning `json:"warnings"`
}

func (r *LoadReport) warn(kind Kind, source, record string, err error) {
	r.Warnings = append(r.Warnings, Warning{Kind: kind.String(), Source: source, Record: record, Reason: err.Error()})
}
