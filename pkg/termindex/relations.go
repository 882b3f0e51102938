package termindex

import "github.com/hazyhaar/termlink/pkg/content"

// Resolver maps relation id lists to terms.
type Resolver struct {
	lookup func(id string) (*content.Term, bool)
}

// NewResolver returns a Resolver backed by lookup.
func NewResolver(lookup func(id string) (*content.Term, bool)) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve maps ids to terms in input order. Unknown ids are dropped.
func (r *Resolver) Resolve(ids []string) []*content.Term {
	out := make([]*content.Term, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.lookup(id); ok {
			out = append(out, t)
		}
	}
	return out
}

// SeeAlso resolves t.SeeAlso, never returning t itself.
func (r *Resolver) SeeAlso(t *content.Term) []*content.Term {
	return without(r.Resolve(t.SeeAlso), t.ID)
}

// Prerequisites resolves t.Prerequisites, never returning t itself.
func (r *Resolver) Prerequisites(t *content.Term) []*content.Term {
	return without(r.Resolve(t.Prerequisites), t.ID)
}

func without(terms []*content.Term, id string) []*content.Term {
	out := terms[:0]
	for _, t := range terms {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
