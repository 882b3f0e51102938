package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hazyhaar/termlink/pkg/buildlog"
	"github.com/hazyhaar/termlink/pkg/kit"
	"github.com/hazyhaar/termlink/pkg/termindex"
)

// NewRouter returns an http.Handler with all termlink API routes.
// builds may be nil when the build log is disabled.
func NewRouter(reg *termindex.Registry, builds *buildlog.Store, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	h := &handler{
		ep:  newEndpoints(reg, builds, kit.Chain(kit.Logging(logger, "http"), kit.Recover())),
		reg: reg,
	}

	mux.HandleFunc("GET /v1/terms", h.handleListTerms)
	mux.HandleFunc("GET /v1/terms/{id}", h.handleTerm)
	mux.HandleFunc("GET /v1/terms/{id}/related", h.handleRelated)
	mux.HandleFunc("GET /v1/terms/{id}/sections", h.handleSections)
	mux.HandleFunc("GET /v1/link", methodNotAllowed) // prevent GET on link
	mux.HandleFunc("POST /v1/link", h.handleLink)
	mux.HandleFunc("GET /v1/categories", h.handleCategories)
	mux.HandleFunc("GET /v1/categories/{id}", h.handleCategory)
	mux.HandleFunc("GET /v1/alphabet", h.handleAlphabet)
	mux.HandleFunc("GET /v1/decks/{slug}", h.handleDeck)
	mux.HandleFunc("GET /v1/lessons/{id}", h.handleLesson)
	mux.HandleFunc("GET /v1/builds", h.handleBuilds)
	mux.HandleFunc("GET /v1/builds/{id}/warnings", h.handleBuildWarnings)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return requestID(cors(mux))
}

type handler struct {
	ep  *endpoints
	reg *termindex.Registry
}

// --- terms ---

func (h *handler) handleListTerms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	anyTag, _ := strconv.ParseBool(q.Get("any"))
	h.serve(w, r, h.ep.listTerms, &listTermsReq{Tag: q.Get("tag"), AnyTag: anyTag})
}

func (h *handler) handleTerm(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.ep.term, &termReq{ID: r.PathValue("id")})
}

func (h *handler) handleRelated(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.ep.related, &termReq{ID: r.PathValue("id")})
}

func (h *handler) handleSections(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.ep.sections, &termReq{ID: r.PathValue("id")})
}

// --- link ---

func (h *handler) handleLink(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*maxLinkText)
	var req linkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.serve(w, r, h.ep.link, &req)
}

// --- categories, alphabet ---

func (h *handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.ep.categories, nil)
}

func (h *handler) handleCategory(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.ep.category, &categoryReq{ID: r.PathValue("id")})
}

func (h *handler) handleAlphabet(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.ep.alphabet, nil)
}

// --- decks, lessons ---

func (h *handler) handleDeck(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.ep.deck, &itemReq{ID: r.PathValue("slug")})
}

func (h *handler) handleLesson(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.ep.lesson, &itemReq{ID: r.PathValue("id")})
}

// --- builds ---

func (h *handler) handleBuilds(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	h.serve(w, r, h.ep.builds, &buildsReq{Limit: limit})
}

func (h *handler) handleBuildWarnings(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.ep.warnings, &itemReq{ID: r.PathValue("id")})
}

// --- health ---

type healthResponse struct {
	Status string           `json:"status"`
	Build  string           `json:"build,omitempty"`
	Stats  *termindex.Stats `json:"stats,omitempty"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	e, err := h.reg.Engine()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "loading"})
		return
	}
	st := e.Stats()
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: e.ID, Stats: &st})
}

// --- helpers ---

func (h *handler) serve(w http.ResponseWriter, r *http.Request, ep kit.Endpoint, req any) {
	resp, err := ep(r.Context(), req)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, termindex.ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// requestID tags the request context with the caller's X-Request-ID, or a
// fresh one, and echoes it back.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := kit.WithRequestID(kit.WithTransport(r.Context(), "http"), r.Header.Get("X-Request-ID"))
		w.Header().Set("X-Request-ID", kit.GetRequestID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
