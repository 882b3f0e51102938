package content

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Repository owns the canonical record collections of one corpus and the
// point-lookup maps over them. It is never mutated after NewRepository.
type Repository struct {
	manifest       *Manifest
	terms          []*Term // canonical-name order
	termByID       map[string]*Term
	categoryByID   map[string]CategoryMeta
	deckBySlug     map[string]*Item
	deckKind       map[string]Kind
	lessonByID     map[string]*VisualLesson
	questionDecks  []*QuestionDeck
	flashcardDecks []*FlashcardDeck
	lessons        []*VisualLesson
}

// NewRepository indexes c. Terms are sorted by canonical name using the
// collation rules of the manifest locale, ignoring case; ids break ties.
func NewRepository(c *Corpus) *Repository {
	m := c.Manifest
	if m == nil {
		m = &Manifest{}
		m.applyDefaults()
	}
	r := &Repository{
		manifest:       m,
		terms:          append([]*Term(nil), c.Terms...),
		termByID:       make(map[string]*Term, len(c.Terms)),
		categoryByID:   make(map[string]CategoryMeta, len(m.Categories)),
		deckBySlug:     make(map[string]*Item, len(c.QuestionDecks)+len(c.FlashcardDecks)),
		deckKind:       make(map[string]Kind, len(c.QuestionDecks)+len(c.FlashcardDecks)),
		lessonByID:     make(map[string]*VisualLesson, len(c.Lessons)),
		questionDecks:  c.QuestionDecks,
		flashcardDecks: c.FlashcardDecks,
		lessons:        c.Lessons,
	}

	col := collate.New(language.Make(m.Locale), collate.IgnoreCase)
	sort.SliceStable(r.terms, func(i, j int) bool {
		if d := col.CompareString(r.terms[i].Name(), r.terms[j].Name()); d != 0 {
			return d < 0
		}
		return r.terms[i].ID < r.terms[j].ID
	})

	for _, t := range r.terms {
		r.termByID[t.ID] = t
	}
	for _, cm := range m.Categories {
		r.categoryByID[cm.ID] = cm
	}
	for _, d := range c.QuestionDecks {
		r.deckBySlug[d.Slug] = &d.Item
		r.deckKind[d.Slug] = KindQuestionDeck
	}
	for _, d := range c.FlashcardDecks {
		if _, exists := r.deckBySlug[d.Slug]; exists {
			continue
		}
		r.deckBySlug[d.Slug] = &d.Item
		r.deckKind[d.Slug] = KindFlashcardDeck
	}
	for _, l := range c.Lessons {
		r.lessonByID[l.Slug] = l
	}
	return r
}

// Manifest returns the manifest of the loaded corpus.
func (r *Repository) Manifest() *Manifest { return r.manifest }

// Terms returns every term sorted by canonical name. Callers must not
// modify the returned slice.
func (r *Repository) Terms() []*Term { return r.terms }

// QuestionDecks returns the question decks in load order.
func (r *Repository) QuestionDecks() []*QuestionDeck { return r.questionDecks }

// FlashcardDecks returns the flashcard decks in load order.
func (r *Repository) FlashcardDecks() []*FlashcardDeck { return r.flashcardDecks }

// Lessons returns the visual lessons in load order.
func (r *Repository) Lessons() []*VisualLesson { return r.lessons }

// Term looks up a term by id.
func (r *Repository) Term(id string) (*Term, bool) {
	t, ok := r.termByID[id]
	return t, ok
}

// CategoryMeta returns the metadata declared for a tag.
func (r *Repository) CategoryMeta(tag string) (CategoryMeta, bool) {
	cm, ok := r.categoryByID[tag]
	return cm, ok
}

// Deck looks up a question or flashcard deck by slug.
func (r *Repository) Deck(slug string) (*Item, Kind, bool) {
	d, ok := r.deckBySlug[slug]
	if !ok {
		return nil, 0, false
	}
	return d, r.deckKind[slug], true
}

// Lesson looks up a visual lesson by id.
func (r *Repository) Lesson(id string) (*VisualLesson, bool) {
	l, ok := r.lessonByID[id]
	return l, ok
}

// TermsByPrimaryTag returns the terms whose primary tag is tag, in
// canonical-name order.
func (r *Repository) TermsByPrimaryTag(tag string) []*Term {
	var out []*Term
	for _, t := range r.terms {
		if t.PrimaryTag == tag {
			out = append(out, t)
		}
	}
	return out
}

// TermsByAnyTag returns the terms carrying tag as primary or secondary tag.
func (r *Repository) TermsByAnyTag(tag string) []*Term {
	var out []*Term
	for _, t := range r.terms {
		if t.HasTag(tag) {
			out = append(out, t)
		}
	}
	return out
}
