// CLAUDE:SUMMARY Inline linker: splits prose into plain/emphasis/underline runs and turns first mentions of indexed terms into link runs.
package termindex

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SegmentKind is the type of an output run.
type SegmentKind string

const (
	SegmentText      SegmentKind = "text"
	SegmentEmphasis  SegmentKind = "emphasis"
	SegmentUnderline SegmentKind = "underline"
	SegmentLink      SegmentKind = "link"
)

// Segment is one run of linked output. Link runs carry the target term
// and the markup the mention appeared in (text, emphasis or underline).
type Segment struct {
	Kind   SegmentKind `json:"kind"`
	Text   string      `json:"text"`
	TermID string      `json:"term_id,omitempty"`
	Style  SegmentKind `json:"style,omitempty"`
}

// Link density bounds for one plain run.
const (
	minLinksPerRun  = 5
	maxLinksPerRun  = 10
	runesPerLinkCap = 200
)

// markupRe matches **emphasis** and <u>underline</u>, non-greedy and
// non-nested.
var markupRe = regexp.MustCompile(`\*\*(.+?)\*\*|<u>(.+?)</u>`)

// Linker links term mentions in prose against one name index.
// It is safe for concurrent use.
type Linker struct {
	idx        *NameIndex
	candidates []candidate
}

// NewLinker prepares a linker over idx.
func NewLinker(idx *NameIndex) *Linker {
	return &Linker{idx: idx, candidates: idx.linkCandidates()}
}

// Link splits text into runs. Emphasis and underline spans whose inner
// text names a term become links. Plain runs between spans are scanned
// for term mentions, longest names first: a name links only if its first
// occurrence after the previous link sits on word boundaries. A term is
// linked at most once per text and currentTermID is never linked.
func (l *Linker) Link(text, currentTermID string) []Segment {
	s := &linkState{l: l, current: currentTermID, used: make(map[string]bool)}
	return s.run(text, true)
}

// Format splits text into plain, emphasis and underline runs without
// linking anything.
func Format(text string) []Segment {
	s := &linkState{}
	return s.run(text, false)
}

type linkState struct {
	l       *Linker
	current string
	used    map[string]bool
	out     []Segment
}

func (s *linkState) run(text string, link bool) []Segment {
	pos := 0
	for _, m := range markupRe.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > pos {
			s.plain(text[pos:m[0]], link)
		}
		style, inner := SegmentEmphasis, ""
		if m[2] >= 0 {
			inner = text[m[2]:m[3]]
		} else {
			style, inner = SegmentUnderline, text[m[4]:m[5]]
		}
		s.span(inner, style, link)
		pos = m[1]
	}
	if pos < len(text) {
		s.plain(text[pos:], link)
	}
	if s.out == nil {
		return []Segment{}
	}
	return s.out
}

func (s *linkState) span(inner string, style SegmentKind, link bool) {
	if link {
		if id, ok := s.l.idx.Match(inner); ok && s.allowed(id) {
			s.used[id] = true
			s.out = append(s.out, Segment{Kind: SegmentLink, Text: inner, TermID: id, Style: style})
			return
		}
	}
	s.out = append(s.out, Segment{Kind: style, Text: inner})
}

func (s *linkState) allowed(termID string) bool {
	return termID != s.current && !s.used[termID]
}

// plain auto-links one run. Each candidate is looked up once, in the text
// after the last accepted link, and only its first occurrence counts.
func (s *linkState) plain(run string, link bool) {
	if !link {
		s.out = append(s.out, Segment{Kind: SegmentText, Text: run})
		return
	}

	limit := LinkLimit(utf8.RuneCountInString(run))
	pos, added := 0, 0
	rest := strings.ToLower(run)
	for _, c := range s.l.candidates {
		if added >= limit {
			break
		}
		if !s.allowed(c.termID) || !strings.Contains(rest, c.surface) {
			continue
		}
		start, end, ok := indexLower(run[pos:], c.surface)
		if !ok {
			continue
		}
		start, end = pos+start, pos+end
		if !boundaryBefore(run, start) || !boundaryAfter(run, end) {
			continue
		}
		if start > pos {
			s.out = append(s.out, Segment{Kind: SegmentText, Text: run[pos:start]})
		}
		s.out = append(s.out, Segment{Kind: SegmentLink, Text: run[start:end], TermID: c.termID, Style: SegmentText})
		s.used[c.termID] = true
		added++
		pos = end
		rest = strings.ToLower(run[pos:])
	}
	if pos < len(run) {
		s.out = append(s.out, Segment{Kind: SegmentText, Text: run[pos:]})
	}
}

// LinkLimit is the number of auto-links allowed in a plain run of n runes:
// one per 200 runes, never fewer than 5 nor more than 10.
func LinkLimit(n int) int {
	return min(maxLinksPerRun, max(minLinksPerRun, n/runesPerLinkCap))
}

// indexLower returns the byte span of the first case-insensitive
// occurrence of lower (already lowercase) in text.
func indexLower(text, lower string) (int, int, bool) {
	for i := 0; i < len(text); {
		if n, ok := hasPrefixLower(text[i:], lower); ok {
			return i, i + n, true
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return 0, 0, false
}

// hasPrefixLower reports whether s starts with lower after lowercasing,
// and how many bytes of s the prefix spans.
func hasPrefixLower(s, lower string) (int, bool) {
	n := 0
	for _, want := range lower {
		if n >= len(s) {
			return 0, false
		}
		got, size := utf8.DecodeRuneInString(s[n:])
		if unicode.ToLower(got) != want {
			return 0, false
		}
		n += size
	}
	return n, true
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
