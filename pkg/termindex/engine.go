// CLAUDE:SUMMARY Engine: every index derived from one corpus snapshot (categories, alphabet, name index, cross-content links, linker), read-only after Build.
package termindex

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/hazyhaar/termlink/pkg/content"
)

// Engine holds one repository and every index derived from it. All
// indices come from the same snapshot; an Engine is never patched, only
// replaced by a new Build. Safe for concurrent readers.
type Engine struct {
	ID      string
	BuiltAt time.Time

	repo       *content.Repository
	report     *content.LoadReport
	categories []Category
	catByID    map[string]int
	alphabet   []Bucket
	names      *NameIndex
	cross      *CrossIndex
	linker     *Linker
	resolver   *Resolver
}

// Build derives every index from c. report may be nil.
func Build(c *content.Corpus, report *content.LoadReport) (*Engine, error) {
	repo := content.NewRepository(c)
	terms := repo.Terms()

	e := &Engine{
		ID:      uuid.NewString(),
		BuiltAt: time.Now().UTC(),
		repo:    repo,
	}
	e.categories = BuildCategories(terms, repo.CategoryMeta)
	e.catByID = make(map[string]int, len(e.categories))
	for i, cat := range e.categories {
		e.catByID[cat.ID] = i
	}
	e.alphabet = BuildAlphabetIndex(terms)
	e.names = BuildNameIndex(terms)
	cross, err := BuildCrossIndex(e.names, repo.Lessons(), repo.QuestionDecks(), repo.FlashcardDecks())
	if err != nil {
		return nil, err
	}
	e.cross = cross
	e.linker = NewLinker(e.names)
	e.resolver = NewResolver(repo.Term)

	r := content.LoadReport{}
	if report != nil {
		r = *report
		r.Warnings = append([]content.Warning(nil), report.Warnings...)
	}
	r.Warnings = append(r.Warnings, e.names.Warnings()...)
	e.report = &r
	return e, nil
}

// Repository returns the underlying repository.
func (e *Engine) Repository() *content.Repository { return e.repo }

// Report returns the load report extended with name collisions.
func (e *Engine) Report() *content.LoadReport { return e.report }

// Names returns the normalized name index.
func (e *Engine) Names() *NameIndex { return e.names }

// Term looks up a term by id.
func (e *Engine) Term(id string) (*content.Term, bool) { return e.repo.Term(id) }

// Terms returns every term in canonical-name order. The slice is shared
// and read-only.
func (e *Engine) Terms() []*content.Term { return e.repo.Terms() }

// Categories returns a copy of the derived categories, largest first.
func (e *Engine) Categories() []Category { return slices.Clone(e.categories) }

// Category looks up a derived category by tag id.
func (e *Engine) Category(id string) (Category, bool) {
	i, ok := e.catByID[id]
	if !ok {
		return Category{}, false
	}
	return e.categories[i], true
}

// Alphabet returns a copy of the 27 browse buckets.
func (e *Engine) Alphabet() []Bucket {
	out := make([]Bucket, len(e.alphabet))
	for i, b := range e.alphabet {
		out[i] = Bucket{Letter: b.Letter, TermIDs: slices.Clone(b.TermIDs)}
	}
	return out
}

// SeeAlso resolves the see_also list of a term.
func (e *Engine) SeeAlso(t *content.Term) []*content.Term { return e.resolver.SeeAlso(t) }

// Prerequisites resolves the prerequisites list of a term.
func (e *Engine) Prerequisites(t *content.Term) []*content.Term {
	return e.resolver.Prerequisites(t)
}

// Resolve maps ids to terms, dropping unknown ids.
func (e *Engine) Resolve(ids []string) []*content.Term { return e.resolver.Resolve(ids) }

// CrossLinks returns the decks and lessons recommended for a term. Unknown
// ids yield empty lists.
func (e *Engine) CrossLinks(termID string) CrossLinks { return e.cross.Links(termID) }

// HasCrossLinks reports whether any content is recommended for a term.
func (e *Engine) HasCrossLinks(termID string) bool { return e.cross.Has(termID) }

// LinkText links term mentions in text, never linking currentTermID.
func (e *Engine) LinkText(text, currentTermID string) []Segment {
	return e.linker.Link(text, currentTermID)
}

// LinkedSection is one linked prose section of a term.
type LinkedSection struct {
	Name     string    `json:"name"`
	Segments []Segment `json:"segments"`
}

// LinkSections links every non-empty prose section of a term, each
// section on its own, with the term itself excluded.
func (e *Engine) LinkSections(termID string) ([]LinkedSection, bool) {
	t, ok := e.repo.Term(termID)
	if !ok {
		return nil, false
	}
	out := make([]LinkedSection, 0, len(content.SectionNames))
	for _, name := range content.SectionNames {
		text := t.Sections.Get(name)
		if text == "" {
			continue
		}
		out = append(out, LinkedSection{Name: name, Segments: e.linker.Link(text, t.ID)})
	}
	return out, true
}

// Stats summarizes the sizes of an engine.
type Stats struct {
	Terms          int `json:"terms"`
	Categories     int `json:"categories"`
	QuestionDecks  int `json:"question_decks"`
	FlashcardDecks int `json:"flashcard_decks"`
	Lessons        int `json:"lessons"`
	IndexKeys      int `json:"index_keys"`
	Collisions     int `json:"collisions"`
	LinkedTerms    int `json:"linked_terms"`
	Warnings       int `json:"warnings"`
}

// Stats returns the engine sizes.
func (e *Engine) Stats() Stats {
	return Stats{
		Terms:          len(e.repo.Terms()),
		Categories:     len(e.categories),
		QuestionDecks:  len(e.repo.QuestionDecks()),
		FlashcardDecks: len(e.repo.FlashcardDecks()),
		Lessons:        len(e.repo.Lessons()),
		IndexKeys:      e.names.Len(),
		Collisions:     len(e.names.Collisions()),
		LinkedTerms:    e.cross.Len(),
		Warnings:       len(e.report.Warnings),
	}
}
