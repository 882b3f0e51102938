// CLAUDE:SUMMARY Record model for the loaded corpus: terms with prose sections, question/flashcard decks, visual lessons, category metadata.
package content

// Kind identifies one of the closed set of record variants a corpus holds.
type Kind int

const (
	KindTerm Kind = iota
	KindQuestionDeck
	KindFlashcardDeck
	KindVisualLesson
)

func (k Kind) String() string {
	switch k {
	case KindTerm:
		return "term"
	case KindQuestionDeck:
		return "question_deck"
	case KindFlashcardDeck:
		return "flashcard_deck"
	case KindVisualLesson:
		return "visual_lesson"
	default:
		return "unknown"
	}
}

// Sections holds the fixed set of prose sections of a term.
// Each section may carry **emphasis** and <u>underline</u> markup.
type Sections struct {
	Definition   string `yaml:"definition" json:"definition,omitempty"`
	Mechanism    string `yaml:"mechanism" json:"mechanism,omitempty"`
	Presentation string `yaml:"presentation" json:"presentation,omitempty"`
	Diagnosis    string `yaml:"diagnosis" json:"diagnosis,omitempty"`
	Management   string `yaml:"management" json:"management,omitempty"`
	Pearls       string `yaml:"pearls" json:"pearls,omitempty"`
}

// SectionNames lists the section keys in display order.
var SectionNames = []string{"definition", "mechanism", "presentation", "diagnosis", "management", "pearls"}

// Get returns the prose of the named section.
func (s *Sections) Get(name string) string {
	switch name {
	case "definition":
		return s.Definition
	case "mechanism":
		return s.Mechanism
	case "presentation":
		return s.Presentation
	case "diagnosis":
		return s.Diagnosis
	case "management":
		return s.Management
	case "pearls":
		return s.Pearls
	}
	return ""
}

// Term is a glossary entry. Names[0] is the canonical display name.
type Term struct {
	ID            string   `yaml:"id" json:"id"`
	Names         []string `yaml:"names" json:"names"`
	Aliases       []string `yaml:"aliases" json:"aliases,omitempty"`
	Abbreviations []string `yaml:"abbreviations" json:"abbreviations,omitempty"`
	PrimaryTag    string   `yaml:"primary_tag" json:"primary_tag"`
	Tags          []string `yaml:"tags" json:"tags,omitempty"`
	Sections      Sections `yaml:"sections" json:"sections"`
	SeeAlso       []string `yaml:"see_also" json:"see_also,omitempty"`
	Prerequisites []string `yaml:"prerequisites" json:"prerequisites,omitempty"`
}

// Name returns the canonical display name.
func (t *Term) Name() string {
	if len(t.Names) == 0 {
		return ""
	}
	return t.Names[0]
}

// HasTag reports whether tag is the primary tag or one of the secondary tags.
func (t *Term) HasTag(tag string) bool {
	if t.PrimaryTag == tag {
		return true
	}
	for _, s := range t.Tags {
		if s == tag {
			return true
		}
	}
	return false
}

// Item is the shape shared by decks and lessons for matching purposes.
type Item struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	Count    int      `json:"count"`
}

// QuestionDeck is an ordered set of practice questions.
type QuestionDeck struct {
	Item
}

// FlashcardDeck is an ordered set of flashcards.
type FlashcardDeck struct {
	Item
}

// VisualLesson is an illustrated lesson; Slug doubles as its id.
type VisualLesson struct {
	Item
}

// CategoryMeta is the cosmetic metadata attached to a primary tag.
type CategoryMeta struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Accent string `yaml:"accent" json:"accent,omitempty"`
	Icon   string `yaml:"icon" json:"icon,omitempty"`
}
