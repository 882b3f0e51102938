package api

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/hazyhaar/termlink/pkg/buildlog"
	"github.com/hazyhaar/termlink/pkg/content"
	"github.com/hazyhaar/termlink/pkg/kit"
	"github.com/hazyhaar/termlink/pkg/termindex"
)

// maxLinkText bounds the prose accepted by the link endpoint.
const maxLinkText = 64 * 1024

var (
	errNotFound   = errors.New("not found")
	errBadRequest = errors.New("bad request")
)

// Shared request/response types used by both HTTP and MCP transports.

type termSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PrimaryTag string `json:"primary_tag"`
}

func summarize(terms []*content.Term) []termSummary {
	out := make([]termSummary, len(terms))
	for i, t := range terms {
		out[i] = termSummary{ID: t.ID, Name: t.Name(), PrimaryTag: t.PrimaryTag}
	}
	return out
}

type termReq struct {
	ID string
}

type termResponse struct {
	Term          *content.Term        `json:"term"`
	SeeAlso       []termSummary        `json:"see_also"`
	Prerequisites []termSummary        `json:"prerequisites"`
	Related       termindex.CrossLinks `json:"related"`
}

type relatedResponse struct {
	TermID   string               `json:"term_id"`
	HasLinks bool                 `json:"has_links"`
	Links    termindex.CrossLinks `json:"links"`
}

type sectionsResponse struct {
	TermID   string                    `json:"term_id"`
	Sections []termindex.LinkedSection `json:"sections"`
}

type listTermsReq struct {
	Tag    string
	AnyTag bool
}

type termsResponse struct {
	Terms []termSummary `json:"terms"`
}

type linkReq struct {
	Text          string `json:"text"`
	CurrentTermID string `json:"current_term_id,omitempty"`
	FormatOnly    bool   `json:"format_only,omitempty"`
}

type linkResponse struct {
	Segments []termindex.Segment `json:"segments"`
}

type categoriesResponse struct {
	Categories []termindex.Category `json:"categories"`
}

type categoryReq struct {
	ID string
}

type categoryResponse struct {
	Category termindex.Category `json:"category"`
	Terms    []termSummary      `json:"terms"`
}

type alphabetResponse struct {
	Buckets []termindex.Bucket `json:"buckets"`
}

type itemReq struct {
	ID string
}

type deckResponse struct {
	Kind string        `json:"kind"`
	Deck *content.Item `json:"deck"`
}

type lessonResponse struct {
	Lesson *content.VisualLesson `json:"lesson"`
}

type buildsReq struct {
	Limit int
}

type buildsResponse struct {
	Current string           `json:"current"`
	Builds  []buildlog.Build `json:"builds"`
}

type buildWarningsResponse struct {
	Build    string            `json:"build"`
	Warnings []content.Warning `json:"warnings"`
}

// endpoints bundles every kit.Endpoint backed by the registry.
type endpoints struct {
	term       kit.Endpoint
	related    kit.Endpoint
	sections   kit.Endpoint
	listTerms  kit.Endpoint
	link       kit.Endpoint
	categories kit.Endpoint
	category   kit.Endpoint
	alphabet   kit.Endpoint
	deck       kit.Endpoint
	lesson     kit.Endpoint
	builds     kit.Endpoint
	warnings   kit.Endpoint
}

func newEndpoints(reg *termindex.Registry, builds *buildlog.Store, mw kit.Middleware) *endpoints {
	wrap := func(e kit.Endpoint) kit.Endpoint {
		if mw == nil {
			return e
		}
		return mw(e)
	}
	return &endpoints{
		term:       wrap(termEndpoint(reg)),
		related:    wrap(relatedEndpoint(reg)),
		sections:   wrap(sectionsEndpoint(reg)),
		listTerms:  wrap(listTermsEndpoint(reg)),
		link:       wrap(linkEndpoint(reg)),
		categories: wrap(categoriesEndpoint(reg)),
		category:   wrap(categoryEndpoint(reg)),
		alphabet:   wrap(alphabetEndpoint(reg)),
		deck:       wrap(deckEndpoint(reg)),
		lesson:     wrap(lessonEndpoint(reg)),
		builds:     wrap(buildsEndpoint(reg, builds)),
		warnings:   wrap(buildWarningsEndpoint(builds)),
	}
}

func termEndpoint(reg *termindex.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*termReq)
		e, err := reg.Engine()
		if err != nil {
			return nil, err
		}
		t, ok := e.Term(req.ID)
		if !ok {
			return nil, fmt.Errorf("term %q: %w", req.ID, errNotFound)
		}
		return termResponse{
			Term:          t,
			SeeAlso:       summarize(e.SeeAlso(t)),
			Prerequisites: summarize(e.Prerequisites(t)),
			Related:       e.CrossLinks(t.ID),
		}, nil
	}
}

// relatedEndpoint never fails on unknown ids: they simply have no links.
func relatedEndpoint(reg *termindex.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*termReq)
		e, err := reg.Engine()
		if err != nil {
			return nil, err
		}
		return relatedResponse{
			TermID:   req.ID,
			HasLinks: e.HasCrossLinks(req.ID),
			Links:    e.CrossLinks(req.ID),
		}, nil
	}
}

func sectionsEndpoint(reg *termindex.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*termReq)
		e, err := reg.Engine()
		if err != nil {
			return nil, err
		}
		sections, ok := e.LinkSections(req.ID)
		if !ok {
			return nil, fmt.Errorf("term %q: %w", req.ID, errNotFound)
		}
		return sectionsResponse{TermID: req.ID, Sections: sections}, nil
	}
}

func listTermsEndpoint(reg *termindex.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*listTermsReq)
		e, err := reg.Engine()
		if err != nil {
			return nil, err
		}
		repo := e.Repository()
		var terms []*content.Term
		switch {
		case req.Tag == "":
			terms = repo.Terms()
		case req.AnyTag:
			terms = repo.TermsByAnyTag(req.Tag)
		default:
			terms = repo.TermsByPrimaryTag(req.Tag)
		}
		return termsResponse{Terms: summarize(terms)}, nil
	}
}

func linkEndpoint(reg *termindex.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*linkReq)
		if len(req.Text) > maxLinkText {
			return nil, fmt.Errorf("text too long (max %d bytes, got %d): %w", maxLinkText, len(req.Text), errBadRequest)
		}
		if !utf8.ValidString(req.Text) {
			return nil, fmt.Errorf("text is not valid UTF-8: %w", errBadRequest)
		}
		if req.FormatOnly {
			return linkResponse{Segments: termindex.Format(req.Text)}, nil
		}
		e, err := reg.Engine()
		if err != nil {
			return nil, err
		}
		return linkResponse{Segments: e.LinkText(req.Text, req.CurrentTermID)}, nil
	}
}

func categoriesEndpoint(reg *termindex.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		e, err := reg.Engine()
		if err != nil {
			return nil, err
		}
		return categoriesResponse{Categories: e.Categories()}, nil
	}
}

func categoryEndpoint(reg *termindex.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*categoryReq)
		e, err := reg.Engine()
		if err != nil {
			return nil, err
		}
		c, ok := e.Category(req.ID)
		if !ok {
			return nil, fmt.Errorf("category %q: %w", req.ID, errNotFound)
		}
		return categoryResponse{Category: c, Terms: summarize(e.Repository().TermsByPrimaryTag(c.ID))}, nil
	}
}

func alphabetEndpoint(reg *termindex.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		e, err := reg.Engine()
		if err != nil {
			return nil, err
		}
		return alphabetResponse{Buckets: e.Alphabet()}, nil
	}
}

func deckEndpoint(reg *termindex.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*itemReq)
		e, err := reg.Engine()
		if err != nil {
			return nil, err
		}
		d, kind, ok := e.Repository().Deck(req.ID)
		if !ok {
			return nil, fmt.Errorf("deck %q: %w", req.ID, errNotFound)
		}
		return deckResponse{Kind: kind.String(), Deck: d}, nil
	}
}

func lessonEndpoint(reg *termindex.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*itemReq)
		e, err := reg.Engine()
		if err != nil {
			return nil, err
		}
		l, ok := e.Repository().Lesson(req.ID)
		if !ok {
			return nil, fmt.Errorf("lesson %q: %w", req.ID, errNotFound)
		}
		return lessonResponse{Lesson: l}, nil
	}
}

func buildsEndpoint(reg *termindex.Registry, store *buildlog.Store) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*buildsReq)
		resp := buildsResponse{Builds: []buildlog.Build{}}
		if e, err := reg.Engine(); err == nil {
			resp.Current = e.ID
		}
		if store == nil {
			return resp, nil
		}
		builds, err := store.ListBuilds(req.Limit)
		if err != nil {
			return nil, err
		}
		if builds != nil {
			resp.Builds = builds
		}
		return resp, nil
	}
}

func buildWarningsEndpoint(store *buildlog.Store) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*itemReq)
		if store == nil {
			return nil, fmt.Errorf("build %q: %w", req.ID, errNotFound)
		}
		ws, err := store.Warnings(req.ID)
		if errors.Is(err, buildlog.ErrUnknownBuild) {
			return nil, fmt.Errorf("build %q: %w", req.ID, errNotFound)
		}
		if err != nil {
			return nil, err
		}
		if ws == nil {
			ws = []content.Warning{}
		}
		return buildWarningsResponse{Build: req.ID, Warnings: ws}, nil
	}
}
