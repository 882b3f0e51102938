// CLAUDE:SUMMARY Content manifest YAML schema: corpus identity, data file locations, CSV layout, category metadata.
package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest describes a content directory: its identity, where each record
// collection lives, and how the CSV collections are encoded.
type Manifest struct {
	ID             string         `yaml:"id" json:"id"`
	Version        string         `yaml:"version" json:"version"`
	Locale         string         `yaml:"locale" json:"locale"`
	TermsDir       string         `yaml:"terms_dir" json:"terms_dir"`
	QuestionDecks  string         `yaml:"question_decks" json:"question_decks,omitempty"`
	FlashcardDecks string         `yaml:"flashcard_decks" json:"flashcard_decks,omitempty"`
	Lessons        string         `yaml:"lessons" json:"lessons,omitempty"`
	Format         FormatSpec     `yaml:"format" json:"-"`
	Categories     []CategoryMeta `yaml:"categories" json:"categories,omitempty"`
}

// FormatSpec describes the CSV layout of deck and lesson files.
type FormatSpec struct {
	Delimiter    string `yaml:"delimiter"`
	Encoding     string `yaml:"encoding"`
	TagSeparator string `yaml:"tag_separator"`
}

// LoadManifest reads and parses a manifest.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest %s: missing id", path)
	}
	m.applyDefaults()
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.Locale == "" {
		m.Locale = "en"
	}
	if m.TermsDir == "" {
		m.TermsDir = "terms"
	}
	if m.Format.Delimiter == "" {
		m.Format.Delimiter = ","
	}
	if m.Format.TagSeparator == "" {
		m.Format.TagSeparator = "|"
	}
}

