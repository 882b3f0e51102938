package termindex

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/termlink/pkg/content"
)

const (
	// minAbbreviationLen excludes short abbreviations (two-letter tokens
	// collide with ordinary words too often).
	minAbbreviationLen = 3
	// minMatchKeyLen is the shortest normalized key used for title
	// containment and inline auto-linking.
	minMatchKeyLen = 4
)

// Collision records a normalized key claimed by two different terms. The
// later term in processing order keeps the key.
type Collision struct {
	Key    string `json:"key"`
	Loser  string `json:"loser"`
	Winner string `json:"winner"`
}

// NameIndex maps normalized names, aliases and abbreviations to term ids.
// It also remembers the lowercased surface forms behind every key, which
// the inline linker searches for in prose.
type NameIndex struct {
	ids        map[string]string
	surfaces   map[string][]string
	keys       []string // sorted
	collisions []Collision
}

// BuildNameIndex indexes terms in the given order: every name, every alias,
// and every abbreviation longer than two characters. On a key collision
// the last term wins and a Collision is recorded.
func BuildNameIndex(terms []*content.Term) *NameIndex {
	idx := &NameIndex{
		ids:      make(map[string]string),
		surfaces: make(map[string][]string),
	}
	for _, t := range terms {
		for _, n := range t.Names {
			idx.add(n, t.ID)
		}
		for _, a := range t.Aliases {
			idx.add(a, t.ID)
		}
		for _, a := range t.Abbreviations {
			if utf8.RuneCountInString(a) >= minAbbreviationLen {
				idx.add(a, t.ID)
			}
		}
	}

	idx.keys = make([]string, 0, len(idx.ids))
	for k := range idx.ids {
		idx.keys = append(idx.keys, k)
	}
	sort.Strings(idx.keys)
	return idx
}

func (idx *NameIndex) add(display, termID string) {
	key := Normalize(display)
	if key == "" {
		return
	}
	if prev, ok := idx.ids[key]; ok && prev != termID {
		idx.collisions = append(idx.collisions, Collision{Key: key, Loser: prev, Winner: termID})
	}
	idx.ids[key] = termID

	surface := strings.ToLower(strings.TrimSpace(display))
	for _, s := range idx.surfaces[key] {
		if s == surface {
			return
		}
	}
	idx.surfaces[key] = append(idx.surfaces[key], surface)
}

// Lookup returns the term id for an already normalized key.
func (idx *NameIndex) Lookup(key string) (string, bool) {
	id, ok := idx.ids[key]
	return id, ok
}

// Match normalizes s and looks it up.
func (idx *NameIndex) Match(s string) (string, bool) {
	return idx.Lookup(Normalize(s))
}

// Len returns the number of distinct keys.
func (idx *NameIndex) Len() int { return len(idx.ids) }

// Keys returns every key in sorted order. The slice is read-only.
func (idx *NameIndex) Keys() []string { return idx.keys }

// Collisions returns the key collisions seen while building, in
// processing order.
func (idx *NameIndex) Collisions() []Collision { return idx.collisions }

// Warnings converts the collisions to load warnings.
func (idx *NameIndex) Warnings() []content.Warning {
	out := make([]content.Warning, 0, len(idx.collisions))
	for _, c := range idx.collisions {
		out = append(out, content.Warning{
			Kind:   content.WarnCollision,
			Source: "name index",
			Record: c.Key,
			Reason: fmt.Sprintf("key claimed by %s and %s, %s wins", c.Loser, c.Winner, c.Winner),
		})
	}
	return out
}

// pair is one (key, term) entry of the index.
type pair struct {
	key    string
	termID string
}

// matchPairs returns the (key, term) pairs whose key is long enough for
// title containment, in sorted key order.
func (idx *NameIndex) matchPairs() []pair {
	out := make([]pair, 0, len(idx.keys))
	for _, k := range idx.keys {
		if utf8.RuneCountInString(k) >= minMatchKeyLen {
			out = append(out, pair{key: k, termID: idx.ids[k]})
		}
	}
	return out
}

// candidate is a surface form searched for in prose.
type candidate struct {
	surface string
	runes   int
	termID  string
}

// linkCandidates returns the surface forms eligible for auto-linking,
// longest first, ties broken alphabetically.
func (idx *NameIndex) linkCandidates() []candidate {
	var out []candidate
	for _, k := range idx.keys {
		if utf8.RuneCountInString(k) < minMatchKeyLen {
			continue
		}
		id := idx.ids[k]
		for _, s := range idx.surfaces[k] {
			out = append(out, candidate{surface: s, runes: utf8.RuneCountInString(s), termID: id})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].runes != out[j].runes {
			return out[i].runes > out[j].runes
		}
		return out[i].surface < out[j].surface
	})
	return out
}
