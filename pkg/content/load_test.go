package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testManifest = `id: medlex
version: "2026-10"
locale: en
terms_dir: terms
question_decks: questions.csv
flashcard_decks: flashcards.csv
lessons: lessons.csv
format:
  delimiter: ","
  encoding: utf-8
  tag_separator: "|"
categories:
  - id: nephrology
    name: Nephrology
    accent: "#0ea5e9"
    icon: kidney
`

const testTerms = `- id: hyponatremia
  names: [Hyponatremia]
  aliases: [low sodium]
  abbreviations: [HypoNa, Na]
  primary_tag: nephrology
  tags: [electrolytes]
  sections:
    definition: "Serum **sodium** below 135 mmol/L."
  see_also: [hypernatremia, hyponatremia]
- id: hypernatremia
  names: [Hypernatremia]
  primary_tag: nephrology
  sections:
    definition: "Serum sodium above 145 mmol/L."
    trivia: "not a section"
- names: [No Id]
  primary_tag: nephrology
- id: no-tag
  names: [Orphan]
- id: no-name
  primary_tag: nephrology
- id: hyponatremia
  names: [Duplicate]
  primary_tag: nephrology
- id: bad-shape
  names: "not a list"
  primary_tag: nephrology
`

// writeContent writes a manifest, one term file and the three catalogs
// into a temp directory and returns it.
func writeContent(t *testing.T, terms string, catalogs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "terms"), 0o755)
	os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(testManifest), 0o644)
	os.WriteFile(filepath.Join(dir, "terms", "a.yaml"), []byte(terms), 0o644)
	for _, name := range []string{"questions.csv", "flashcards.csv", "lessons.csv"} {
		data, ok := catalogs[name]
		if !ok {
			data = "slug,title,category,tags,count\n"
		}
		os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644)
	}
	return dir
}

func warningsFor(ws []Warning, record string) []Warning {
	var out []Warning
	for _, w := range ws {
		if w.Record == record {
			out = append(out, w)
		}
	}
	return out
}

func TestLoad_SkipsMalformedTerms(t *testing.T) {
	dir := writeContent(t, testTerms, nil)

	c, report, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if report.Origin != "sources" {
		t.Errorf("Origin = %q, want sources", report.Origin)
	}
	if len(c.Terms) != 2 {
		t.Fatalf("terms = %d, want 2 (valid records only)", len(c.Terms))
	}
	if c.Terms[0].ID != "hyponatremia" || c.Terms[1].ID != "hypernatremia" {
		t.Errorf("terms = %s, %s", c.Terms[0].ID, c.Terms[1].ID)
	}
	// The first hyponatremia wins; the duplicate is reported.
	if c.Terms[0].Name() != "Hyponatremia" {
		t.Errorf("Name = %q, want Hyponatremia", c.Terms[0].Name())
	}

	var missingID, missingTag, missingName, dup, decode bool
	for _, w := range report.Warnings {
		switch {
		case w.Reason == ErrMissingID.Error():
			missingID = true
		case w.Reason == ErrMissingTag.Error() && w.Record == "no-tag":
			missingTag = true
		case w.Reason == ErrMissingName.Error() && w.Record == "no-name":
			missingName = true
		case w.Reason == ErrDuplicateID.Error() && w.Record == "hyponatremia":
			dup = true
		case w.Kind == "term" && w.Record == "" && strings.Contains(w.Reason, "yaml"):
			decode = true
		}
	}
	if !missingID || !missingTag || !missingName || !dup || !decode {
		t.Errorf("missing warnings: id=%v tag=%v name=%v dup=%v decode=%v\n%v",
			missingID, missingTag, missingName, dup, decode, report.Warnings)
	}
}

func TestLoad_SelfReferenceDropped(t *testing.T) {
	dir := writeContent(t, testTerms, nil)
	c, report, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	hypo := c.Terms[0]
	if len(hypo.SeeAlso) != 1 || hypo.SeeAlso[0] != "hypernatremia" {
		t.Errorf("SeeAlso = %v, want [hypernatremia]", hypo.SeeAlso)
	}
	ws := warningsFor(report.Warnings, "hyponatremia")
	found := false
	for _, w := range ws {
		if w.Kind == WarnSelfRef {
			found = true
		}
	}
	if !found {
		t.Errorf("no self_reference warning in %v", ws)
	}
}

func TestLoad_UnknownSectionWarns(t *testing.T) {
	dir := writeContent(t, testTerms, nil)
	_, report, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ws := warningsFor(report.Warnings, "hypernatremia")
	if len(ws) != 1 || ws[0].Kind != WarnSection || !strings.Contains(ws[0].Reason, "trivia") {
		t.Errorf("warnings = %v, want one section warning about trivia", ws)
	}
}

func TestLoad_Catalogs(t *testing.T) {
	dir := writeContent(t, testTerms, map[string]string{
		"questions.csv": "slug,title,category,tags,count\n" +
			"q-sodium,Sodium disorders,nephrology,sodium|electrolytes,40\n" +
			",No slug,nephrology,,3\n" +
			"q-bad,Bad count,nephrology,,many\n" +
			"q-untitled,,nephrology,,3\n",
		"flashcards.csv": "slug,title,category,tags,count\n" +
			"q-sodium,Clashes with a question deck,nephrology,,10\n" +
			"f-kidney, Kidney basics ,nephrology, kidney | | nephron ,25\n",
		"lessons.csv": "slug,title\nl-nephron,The nephron\n",
	})

	c, report, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.QuestionDecks) != 1 {
		t.Fatalf("question decks = %d, want 1", len(c.QuestionDecks))
	}
	q := c.QuestionDecks[0]
	if q.Slug != "q-sodium" || q.Count != 40 || len(q.Tags) != 2 || q.Tags[1] != "electrolytes" {
		t.Errorf("question deck = %+v", q.Item)
	}
	if len(c.FlashcardDecks) != 1 {
		t.Fatalf("flashcard decks = %d, want 1 (slug clash skipped)", len(c.FlashcardDecks))
	}
	f := c.FlashcardDecks[0]
	if f.Title != "Kidney basics" || len(f.Tags) != 2 || f.Tags[0] != "kidney" || f.Tags[1] != "nephron" {
		t.Errorf("flashcard deck = %+v", f.Item)
	}
	if len(c.Lessons) != 1 || c.Lessons[0].Count != 0 {
		t.Errorf("lessons = %+v", c.Lessons)
	}

	var badCount, untitled, clash bool
	for _, w := range report.Warnings {
		switch {
		case w.Record == "q-bad" && w.Reason == ErrBadCount.Error():
			badCount = true
		case w.Record == "q-untitled" && w.Reason == ErrMissingTitle.Error():
			untitled = true
		case w.Record == "q-sodium" && w.Kind == KindFlashcardDeck.String():
			clash = true
		}
	}
	if !badCount || !untitled || !clash {
		t.Errorf("missing catalog warnings: count=%v title=%v clash=%v\n%v", badCount, untitled, clash, report.Warnings)
	}
}

func TestLoad_CatalogEncoding(t *testing.T) {
	dir := writeContent(t, testTerms, nil)
	manifest := strings.Replace(testManifest, "encoding: utf-8", "encoding: windows-1252", 1)
	os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(manifest), 0o644)
	// "Œdème" in windows-1252.
	os.WriteFile(filepath.Join(dir, "lessons.csv"), []byte("slug,title\nedeme,\x8cd\xe8me\n"), 0o644)

	c, _, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Lessons) != 1 || c.Lessons[0].Title != "Œdème" {
		t.Errorf("lessons = %+v, want title Œdème", c.Lessons)
	}
}

func TestLoad_MissingRequiredColumn(t *testing.T) {
	dir := writeContent(t, testTerms, map[string]string{"lessons.csv": "id,name\nx,y\n"})
	if _, _, err := Load(dir); err == nil {
		t.Fatal("expected error for catalog without slug column")
	}
}

func TestLoad_MissingManifest(t *testing.T) {
	if _, _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error without manifest.yaml")
	}
}

func TestLoad_NoTermsDir(t *testing.T) {
	dir := writeContent(t, testTerms, nil)
	os.RemoveAll(filepath.Join(dir, "terms"))
	c, _, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Terms) != 0 {
		t.Errorf("terms = %d, want 0", len(c.Terms))
	}
}

func TestLoad_JSONTermFile(t *testing.T) {
	dir := writeContent(t, "[]", nil)
	os.WriteFile(filepath.Join(dir, "terms", "b.json"),
		[]byte(`[{"id": "anemia", "names": ["Anemia"], "primary_tag": "hematology"}]`), 0o644)
	c, _, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Terms) != 1 || c.Terms[0].ID != "anemia" {
		t.Errorf("terms = %+v", c.Terms)
	}
}

func TestLoadManifest_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	os.WriteFile(path, []byte("id: tiny\n"), 0o644)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Locale != "en" || m.TermsDir != "terms" || m.Format.Delimiter != "," || m.Format.TagSeparator != "|" {
		t.Errorf("defaults not applied: %+v", m)
	}

	os.WriteFile(path, []byte("version: x\n"), 0o644)
	if _, err := LoadManifest(path); err == nil {
		t.Error("expected error for manifest without id")
	}
}

func TestValidateTerm(t *testing.T) {
	tests := []struct {
		term Term
		want error
	}{
		{Term{ID: "a", Names: []string{"A"}, PrimaryTag: "x"}, nil},
		{Term{Names: []string{"A"}, PrimaryTag: "x"}, ErrMissingID},
		{Term{ID: "a", PrimaryTag: "x"}, ErrMissingName},
		{Term{ID: "a", Names: []string{"A"}}, ErrMissingTag},
	}
	for _, tt := range tests {
		if got := validateTerm(&tt.term); !errors.Is(got, tt.want) {
			t.Errorf("validateTerm(%+v) = %v, want %v", tt.term, got, tt.want)
		}
	}
}
