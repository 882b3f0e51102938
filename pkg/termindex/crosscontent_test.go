package termindex

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/hazyhaar/termlink/pkg/content"
)

func deck(slug, title string, tags ...string) content.Item {
	return content.Item{Slug: slug, Title: title, Category: "heme", Tags: tags, Count: 10}
}

func slugs(refs []ContentRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Slug
	}
	return out
}

func mustCross(t *testing.T, idx *NameIndex, lessons []*content.VisualLesson, questions []*content.QuestionDeck, flashcards []*content.FlashcardDeck) *CrossIndex {
	t.Helper()
	ci, err := BuildCrossIndex(idx, lessons, questions, flashcards)
	if err != nil {
		t.Fatalf("BuildCrossIndex: %v", err)
	}
	return ci
}

func TestBuildCrossIndex_TagAndTitle(t *testing.T) {
	idx := BuildNameIndex([]*content.Term{
		term("anemia", "Anemia", "heme"),
		term("ida", "Iron deficiency anemia", "heme"),
		term("gout", "Gout", "rheum"),
	})
	questions := []*content.QuestionDeck{
		{Item: deck("q-blood", "Blood basics", "anemia")},
		{Item: deck("q-ida", "Iron deficiency anemia workup")},
		{Item: deck("q-none", "Cardiac murmurs", "murmur")},
	}
	ci := mustCross(t, idx, nil, questions, nil)

	// Tag pass, no title overlap.
	if got := slugs(ci.Links("anemia").QuestionDecks); len(got) != 2 || got[0] != "q-blood" || got[1] != "q-ida" {
		t.Errorf("anemia decks = %v, want [q-blood q-ida]", got)
	}
	// Title pass reaches the longer key.
	if got := slugs(ci.Links("ida").QuestionDecks); len(got) != 1 || got[0] != "q-ida" {
		t.Errorf("ida decks = %v, want [q-ida]", got)
	}
	if ci.Has("gout") {
		t.Error("gout has links")
	}
	if ci.Len() != 2 {
		t.Errorf("Len = %d, want 2", ci.Len())
	}
}

func TestBuildCrossIndex_Caps(t *testing.T) {
	idx := BuildNameIndex([]*content.Term{term("anemia", "Anemia", "heme")})

	var lessons []*content.VisualLesson
	var questions []*content.QuestionDeck
	var flashcards []*content.FlashcardDeck
	for i := 0; i < 8; i++ {
		lessons = append(lessons, &content.VisualLesson{Item: deck(fmt.Sprintf("l%d", i), "Anemia atlas")})
		questions = append(questions, &content.QuestionDeck{Item: deck(fmt.Sprintf("q%d", i), "", "anemia")})
		flashcards = append(flashcards, &content.FlashcardDeck{Item: deck(fmt.Sprintf("f%d", i), "Anemia cards", "anemia")})
	}
	ls := mustCross(t, idx, lessons, questions, flashcards).Links("anemia")

	if len(ls.Visuals) != MaxVisuals || len(ls.QuestionDecks) != MaxQuestionDecks || len(ls.FlashcardDecks) != MaxFlashcardDecks {
		t.Fatalf("sizes = %d/%d/%d, want %d/%d/%d", len(ls.Visuals), len(ls.QuestionDecks), len(ls.FlashcardDecks),
			MaxVisuals, MaxQuestionDecks, MaxFlashcardDecks)
	}
	// First come, first kept.
	if got := slugs(ls.QuestionDecks); got[0] != "q0" || got[2] != "q2" {
		t.Errorf("question decks = %v", got)
	}
	seen := make(map[string]bool)
	for _, r := range ls.FlashcardDecks {
		if seen[r.Slug] {
			t.Errorf("duplicate %s", r.Slug)
		}
		seen[r.Slug] = true
	}
}

func TestBuildCrossIndex_NoDuplicateWhenTagAndTitleMatch(t *testing.T) {
	idx := BuildNameIndex([]*content.Term{term("gout", "Gout", "rheum", "Podagra")})
	questions := []*content.QuestionDeck{{Item: deck("q-gout", "Gout and podagra", "gout", "podagra")}}
	got := mustCross(t, idx, nil, questions, nil).Links("gout").QuestionDecks
	if len(got) != 1 {
		t.Errorf("decks = %v, want exactly one", slugs(got))
	}
}

func TestCrossIndex_UnknownTerm(t *testing.T) {
	ci := mustCross(t, BuildNameIndex(nil), nil, nil, nil)
	ls := ci.Links("nope")
	if ls.Visuals == nil || ls.QuestionDecks == nil || ls.FlashcardDecks == nil {
		t.Errorf("Links(nope) = %+v, want empty non-nil lists", ls)
	}
	if !ls.Empty() || ci.Has("nope") {
		t.Error("unknown term reported as linked")
	}
}

func TestTitleMatcher_Overlapping(t *testing.T) {
	idx := BuildNameIndex([]*content.Term{
		term("anemia", "Anemia", "heme"),
		term("ida", "Iron deficiency anemia", "heme"),
		term("iron", "Iron", "heme"),
		term("gout", "Gout", "rheum"),
	})
	tm, err := newTitleMatcher(idx.matchPairs())
	if err != nil {
		t.Fatalf("newTitleMatcher: %v", err)
	}

	tests := []struct {
		title string
		want  []string
	}{
		{"Iron deficiency anemia", []string{"anemia", "ida", "iron"}},
		{"Anemia, anemia and more anemia", []string{"anemia"}},
		{"Gouty arthritis", []string{"gout"}},
		{"Cardiac murmurs", nil},
		{"", nil},
	}
	for _, tt := range tests {
		found := make(map[string]bool)
		tm.match(Normalize(tt.title), func(id string) { found[id] = true })
		var got []string
		for id := range found {
			got = append(got, id)
		}
		sort.Strings(got)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("match(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}

	empty, err := newTitleMatcher(nil)
	if err != nil {
		t.Fatalf("newTitleMatcher(nil): %v", err)
	}
	empty.match("anemia", func(id string) { t.Errorf("empty matcher matched %s", id) })
}

func TestCrossIndex_LinksAreCopies(t *testing.T) {
	idx := BuildNameIndex([]*content.Term{term("anemia", "Anemia", "heme")})
	questions := []*content.QuestionDeck{{Item: deck("q-a", "Anemia basics")}}
	ci := mustCross(t, idx, nil, questions, nil)

	ls := ci.Links("anemia")
	ls.QuestionDecks[0].Slug = "changed"
	ls.Visuals = append(ls.Visuals, ContentRef{Slug: "extra"})

	again := ci.Links("anemia")
	if again.QuestionDecks[0].Slug != "q-a" || len(again.Visuals) != 0 {
		t.Errorf("index changed through returned links: %+v", again)
	}
}
