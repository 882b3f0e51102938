package termindex

import (
	"sort"
	"strings"

	"github.com/hazyhaar/termlink/pkg/content"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Defaults applied when a primary tag has no declared metadata.
const (
	DefaultAccent = "#64748b"
	DefaultIcon   = "book"
)

// Category is derived from the primary tags of the loaded terms.
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Accent string `json:"accent"`
	Icon   string `json:"icon"`
}

// MetaFunc returns the declared metadata of a tag.
type MetaFunc func(tag string) (content.CategoryMeta, bool)

// BuildCategories counts terms per primary tag and merges tag metadata.
// Result is sorted by count descending, then name ascending.
func BuildCategories(terms []*content.Term, meta MetaFunc) []Category {
	counts := make(map[string]int)
	for _, t := range terms {
		counts[t.PrimaryTag]++
	}

	title := cases.Title(language.English)
	out := make([]Category, 0, len(counts))
	for tag, n := range counts {
		c := Category{ID: tag, Count: n, Accent: DefaultAccent, Icon: DefaultIcon}
		var m content.CategoryMeta
		var ok bool
		if meta != nil {
			m, ok = meta(tag)
		}
		c.Name = m.Name
		if c.Name == "" {
			c.Name = title.String(strings.NewReplacer("-", " ", "_", " ").Replace(tag))
		}
		if ok && m.Accent != "" {
			c.Accent = m.Accent
		}
		if ok && m.Icon != "" {
			c.Icon = m.Icon
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
