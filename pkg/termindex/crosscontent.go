package termindex

import (
	"fmt"
	"slices"

	"github.com/coregx/ahocorasick"
	"github.com/hazyhaar/termlink/pkg/content"
)

// Per-term caps on recommended content.
const (
	MaxVisuals        = 5
	MaxQuestionDecks  = 3
	MaxFlashcardDecks = 3
)

// ContentRef points at a deck or lesson recommended for a term.
type ContentRef struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CrossLinks are the decks and lessons recommended for one term.
type CrossLinks struct {
	Visuals        []ContentRef `json:"visuals"`
	QuestionDecks  []ContentRef `json:"question_decks"`
	FlashcardDecks []ContentRef `json:"flashcard_decks"`
}

// Empty reports whether no content is linked.
func (l *CrossLinks) Empty() bool {
	return len(l.Visuals) == 0 && len(l.QuestionDecks) == 0 && len(l.FlashcardDecks) == 0
}

func emptyLinks() CrossLinks {
	return CrossLinks{Visuals: []ContentRef{}, QuestionDecks: []ContentRef{}, FlashcardDecks: []ContentRef{}}
}

// CrossIndex holds the cross-content links of every linked term.
type CrossIndex struct {
	links map[string]*CrossLinks
}

// BuildCrossIndex matches every lesson, then every question deck, then
// every flashcard deck against the name index and attaches each item to
// the terms it matches, up to the per-term caps. Items past a cap are
// dropped, never swapped in.
func BuildCrossIndex(idx *NameIndex, lessons []*content.VisualLesson, questions []*content.QuestionDeck, flashcards []*content.FlashcardDeck) (*CrossIndex, error) {
	tm, err := newTitleMatcher(idx.matchPairs())
	if err != nil {
		return nil, err
	}
	ci := &CrossIndex{links: make(map[string]*CrossLinks)}

	for _, l := range lessons {
		for _, id := range matchItem(idx, tm, &l.Item) {
			ls := ci.get(id)
			ls.Visuals = appendCapped(ls.Visuals, &l.Item, MaxVisuals)
		}
	}
	for _, d := range questions {
		for _, id := range matchItem(idx, tm, &d.Item) {
			ls := ci.get(id)
			ls.QuestionDecks = appendCapped(ls.QuestionDecks, &d.Item, MaxQuestionDecks)
		}
	}
	for _, d := range flashcards {
		for _, id := range matchItem(idx, tm, &d.Item) {
			ls := ci.get(id)
			ls.FlashcardDecks = appendCapped(ls.FlashcardDecks, &d.Item, MaxFlashcardDecks)
		}
	}
	return ci, nil
}

// titleMatcher finds every index key contained in a normalized title.
// Matches overlap, so "anemia" is found inside "irondeficiencyanemia".
type titleMatcher struct {
	ac      *ahocorasick.Automaton
	termIDs []string // by pattern id
}

func newTitleMatcher(pairs []pair) (*titleMatcher, error) {
	tm := &titleMatcher{termIDs: make([]string, len(pairs))}
	if len(pairs) == 0 {
		return tm, nil
	}
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.key
		tm.termIDs[i] = p.termID
	}
	ac, err := ahocorasick.NewBuilder().AddStrings(keys).Build()
	if err != nil {
		return nil, fmt.Errorf("build title matcher: %w", err)
	}
	tm.ac = ac
	return tm, nil
}

// match calls fn with the term id of every key found in title, in match
// order. A term may be reported more than once.
func (tm *titleMatcher) match(title string, fn func(termID string)) {
	if tm.ac == nil || title == "" {
		return
	}
	for _, m := range tm.ac.FindAllOverlapping([]byte(title)) {
		fn(tm.termIDs[m.PatternID])
	}
}

// matchItem returns the distinct term ids an item matches, first by exact
// tag lookup, then by key containment in the normalized title. Title
// containment has no word-boundary check: titles are short and curated.
func matchItem(idx *NameIndex, tm *titleMatcher, it *content.Item) []string {
	var matched []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			matched = append(matched, id)
		}
	}

	for _, tag := range it.Tags {
		if id, ok := idx.Match(tag); ok {
			add(id)
		}
	}
	tm.match(Normalize(it.Title), add)
	return matched
}

func (ci *CrossIndex) get(termID string) *CrossLinks {
	ls, ok := ci.links[termID]
	if !ok {
		l := emptyLinks()
		ls = &l
		ci.links[termID] = ls
	}
	return ls
}

func appendCapped(list []ContentRef, it *content.Item, max int) []ContentRef {
	if len(list) >= max {
		return list
	}
	for _, r := range list {
		if r.Slug == it.Slug {
			return list
		}
	}
	return append(list, ContentRef{Slug: it.Slug, Title: it.Title, Category: it.Category, Count: it.Count})
}

// Links returns a copy of the links of termID. Unknown or unlinked ids
// yield empty lists.
func (ci *CrossIndex) Links(termID string) CrossLinks {
	ls, ok := ci.links[termID]
	if !ok {
		return emptyLinks()
	}
	return CrossLinks{
		Visuals:        slices.Clone(ls.Visuals),
		QuestionDecks:  slices.Clone(ls.QuestionDecks),
		FlashcardDecks: slices.Clone(ls.FlashcardDecks),
	}
}

// Has reports whether termID has any linked content.
func (ci *CrossIndex) Has(termID string) bool {
	ls, ok := ci.links[termID]
	return ok && !ls.Empty()
}

// Len returns the number of terms with at least one link.
func (ci *CrossIndex) Len() int { return len(ci.links) }
