package termindex

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hazyhaar/termlink/pkg/content"
)

// ErrNotLoaded is returned when no engine has been built yet.
var ErrNotLoaded = errors.New("content not loaded")

// BuildHook is called after every successful build, before it is served.
type BuildHook func(*Engine)

// Registry holds the engine currently served for a content directory.
// Reload always builds a complete new engine and swaps it in; a failed
// reload keeps the previous engine.
type Registry struct {
	loadMu sync.Mutex // serializes builds
	mu     sync.RWMutex
	engine *Engine
	dir    string
	logger *slog.Logger
	hooks  []BuildHook
}

// NewRegistry creates an empty registry for the given content directory.
func NewRegistry(dir string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{dir: dir, logger: logger}
}

// OnBuild registers a hook run after each successful build.
func (r *Registry) OnBuild(h BuildHook) {
	r.mu.Lock()
	r.hooks = append(r.hooks, h)
	r.mu.Unlock()
}

// Load reads the content directory and builds a fresh engine.
func (r *Registry) Load() error {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	c, report, err := content.Load(r.dir)
	if err != nil {
		return fmt.Errorf("load content %s: %w", r.dir, err)
	}
	e, err := Build(c, report)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	for _, w := range e.Report().Warnings {
		w.Log(r.logger)
	}

	r.mu.RLock()
	hooks := append([]BuildHook(nil), r.hooks...)
	r.mu.RUnlock()
	for _, h := range hooks {
		h(e)
	}

	r.mu.Lock()
	r.engine = e
	r.mu.Unlock()

	st := e.Stats()
	r.logger.Info("engine built",
		"build", e.ID,
		"origin", report.Origin,
		"terms", st.Terms,
		"index_keys", st.IndexKeys,
		"linked_terms", st.LinkedTerms,
		"warnings", st.Warnings,
	)
	return nil
}

// Reload rebuilds the engine from disk (hot reload).
func (r *Registry) Reload() error {
	return r.Load()
}

// Engine returns the engine currently served.
func (r *Registry) Engine() (*Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.engine == nil {
		return nil, ErrNotLoaded
	}
	return r.engine, nil
}
