package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Corpus is one immutable snapshot of every record collection.
type Corpus struct {
	Manifest       *Manifest
	Terms          []*Term
	QuestionDecks  []*QuestionDeck
	FlashcardDecks []*FlashcardDeck
	Lessons        []*VisualLesson
	// Warnings raised while the corpus was validated. Kept so a snapshot
	// replays the report of the load that produced it.
	Warnings []Warning
}

// Load reads manifest.yaml from dir, then the snapshot when one exists,
// otherwise every source file the manifest names.
func Load(dir string) (*Corpus, *LoadReport, error) {
	manifest, err := LoadManifest(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, nil, err
	}

	// Snapshot takes priority over sources.
	snapPath := filepath.Join(dir, SnapshotFile)
	if _, err := os.Stat(snapPath); err == nil {
		c, err := LoadSnapshot(snapPath)
		if err != nil {
			return nil, nil, fmt.Errorf("content %s: %w", manifest.ID, err)
		}
		c.Manifest = manifest
		return c, c.report("snapshot"), nil
	}

	c, err := LoadSources(dir, manifest)
	if err != nil {
		return nil, nil, fmt.Errorf("content %s: %w", manifest.ID, err)
	}
	return c, c.report("sources"), nil
}

// LoadSources reads and validates the term YAML files and the deck and
// lesson CSV files named by manifest. Invalid records are skipped and
// recorded as warnings.
func LoadSources(dir string, manifest *Manifest) (*Corpus, error) {
	c := &Corpus{Manifest: manifest}
	r := &LoadReport{}

	termFiles, err := listTermFiles(filepath.Join(dir, manifest.TermsDir))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, path := range termFiles {
		terms, err := loadTermFile(path, r)
		if err != nil {
			return nil, err
		}
		for _, t := range terms {
			if seen[t.ID] {
				r.warn(KindTerm, path, t.ID, ErrDuplicateID)
				continue
			}
			seen[t.ID] = true
			c.Terms = append(c.Terms, t)
		}
	}

	slugs := make(map[string]bool)
	questions, err := loadItemFile(dir, manifest.QuestionDecks, manifest.Format, KindQuestionDeck, r)
	if err != nil {
		return nil, err
	}
	for _, it := range uniqueItems(questions, slugs, manifest.QuestionDecks, KindQuestionDeck, r) {
		c.QuestionDecks = append(c.QuestionDecks, &QuestionDeck{Item: it})
	}

	flashcards, err := loadItemFile(dir, manifest.FlashcardDecks, manifest.Format, KindFlashcardDeck, r)
	if err != nil {
		return nil, err
	}
	for _, it := range uniqueItems(flashcards, slugs, manifest.FlashcardDecks, KindFlashcardDeck, r) {
		c.FlashcardDecks = append(c.FlashcardDecks, &FlashcardDeck{Item: it})
	}

	lessons, err := loadItemFile(dir, manifest.Lessons, manifest.Format, KindVisualLesson, r)
	if err != nil {
		return nil, err
	}
	for _, it := range uniqueItems(lessons, make(map[string]bool), manifest.Lessons, KindVisualLesson, r) {
		c.Lessons = append(c.Lessons, &VisualLesson{Item: it})
	}

	c.Warnings = r.Warnings
	return c, nil
}

func (c *Corpus) report(origin string) *LoadReport {
	return &LoadReport{
		Origin:         origin,
		Terms:          len(c.Terms),
		QuestionDecks:  len(c.QuestionDecks),
		FlashcardDecks: len(c.FlashcardDecks),
		Lessons:        len(c.Lessons),
		Warnings:       append([]Warning(nil), c.Warnings...),
	}
}

// listTermFiles returns the .yaml/.yml/.json files of dir in name order.
// A missing directory yields no files.
func listTermFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read terms dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// loadTermFile decodes a YAML (or JSON) sequence of term records. Each
// element is decoded on its own so one malformed record does not take
// the rest of the file down with it.
func loadTermFile(path string, r *LoadReport) ([]*Term, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read term file: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		r.warn(KindTerm, path, "", fmt.Errorf("parse: %w", err))
		return nil, nil
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		r.warn(KindTerm, path, "", fmt.Errorf("expected a sequence of terms"))
		return nil, nil
	}

	terms := make([]*Term, 0, len(root.Content))
	for _, node := range root.Content {
		source := fmt.Sprintf("%s:%d", path, node.Line)
		var t Term
		if err := node.Decode(&t); err != nil {
			r.warn(KindTerm, source, "", err)
			continue
		}
		cleanTerm(&t)
		if err := validateTerm(&t); err != nil {
			r.warn(KindTerm, source, t.ID, err)
			continue
		}
		for _, key := range unknownSections(node) {
			r.Warnings = append(r.Warnings, Warning{Kind: WarnSection, Source: source, Record: t.ID, Reason: fmt.Sprintf("unknown section %q ignored", key)})
		}
		if dropSelfRefs(&t) {
			r.Warnings = append(r.Warnings, Warning{Kind: WarnSelfRef, Source: source, Record: t.ID, Reason: "term lists itself as a relation, dropped"})
		}
		terms = append(terms, &t)
	}
	return terms, nil
}

func validateTerm(t *Term) error {
	switch {
	case t.ID == "":
		return ErrMissingID
	case len(t.Names) == 0:
		return ErrMissingName
	case t.PrimaryTag == "":
		return ErrMissingTag
	}
	return nil
}

func cleanTerm(t *Term) {
	t.ID = strings.TrimSpace(t.ID)
	t.PrimaryTag = strings.TrimSpace(t.PrimaryTag)
	t.Names = cleanList(t.Names)
	t.Aliases = cleanList(t.Aliases)
	t.Abbreviations = cleanList(t.Abbreviations)
	t.Tags = cleanList(t.Tags)
	t.SeeAlso = cleanList(t.SeeAlso)
	t.Prerequisites = cleanList(t.Prerequisites)
}

// cleanList trims every value and drops the empty ones.
func cleanList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := in[:0]
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// dropSelfRefs removes t.ID from the relation lists and reports whether
// anything was removed.
func dropSelfRefs(t *Term) bool {
	var dropped bool
	filter := func(ids []string) []string {
		out := ids[:0]
		for _, id := range ids {
			if id == t.ID {
				dropped = true
				continue
			}
			out = append(out, id)
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	t.SeeAlso = filter(t.SeeAlso)
	t.Prerequisites = filter(t.Prerequisites)
	return dropped
}

// unknownSections returns the keys of the record's sections mapping that
// are not in SectionNames.
func unknownSections(record *yaml.Node) []string {
	if record.Kind != yaml.MappingNode {
		return nil
	}
	var unknown []string
	for i := 0; i+1 < len(record.Content); i += 2 {
		if record.Content[i].Value != "sections" {
			continue
		}
		sections := record.Content[i+1]
		if sections.Kind != yaml.MappingNode {
			return nil
		}
		for j := 0; j+1 < len(sections.Content); j += 2 {
			key := sections.Content[j].Value
			if !isSectionName(key) {
				unknown = append(unknown, key)
			}
		}
	}
	return unknown
}

func isSectionName(key string) bool {
	for _, n := range SectionNames {
		if n == key {
			return true
		}
	}
	return false
}

// uniqueItems drops items whose slug is already in seen.
func uniqueItems(items []Item, seen map[string]bool, source string, kind Kind, r *LoadReport) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if seen[it.Slug] {
			r.warn(kind, source, it.Slug, ErrDuplicateID)
			continue
		}
		seen[it.Slug] = true
		out = append(out, it)
	}
	return out
}
