package buildlog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/termlink/pkg/content"
	"github.com/hazyhaar/termlink/pkg/termindex"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "builds.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testEngine(t *testing.T) *termindex.Engine {
	t.Helper()
	c := &content.Corpus{
		Manifest: &content.Manifest{ID: "medlex", Version: "2026-10", Locale: "en"},
		Terms: []*content.Term{
			{ID: "cold", Names: []string{"Cold"}, PrimaryTag: "general"},
			{ID: "common-cold", Names: []string{"Common cold"}, Aliases: []string{"cold"}, PrimaryTag: "general"},
		},
	}
	report := &content.LoadReport{
		Origin:   "sources",
		Warnings: []content.Warning{{Kind: "term", Source: "terms/a.yaml:3", Reason: "missing id"}},
	}
	e, err := termindex.Build(c, report)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return e
}

func TestOpen_CreatesTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "builds.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file not created: %v", err)
	}
	builds, err := s.ListBuilds(0)
	if err != nil {
		t.Fatalf("ListBuilds on empty db: %v", err)
	}
	if len(builds) != 0 {
		t.Fatalf("expected 0 builds, got %d", len(builds))
	}

	// Reopening an existing database is fine.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s2.Close()
}

func TestRecordAndList(t *testing.T) {
	s := tempStore(t)
	e := testEngine(t)

	if err := s.Record(e); err != nil {
		t.Fatalf("Record: %v", err)
	}
	builds, err := s.ListBuilds(10)
	if err != nil {
		t.Fatalf("ListBuilds: %v", err)
	}
	if len(builds) != 1 {
		t.Fatalf("expected 1 build, got %d", len(builds))
	}
	b := builds[0]
	if b.ID != e.ID || b.ContentID != "medlex" || b.Version != "2026-10" || b.Origin != "sources" {
		t.Errorf("build = %+v", b)
	}
	if b.Terms != 2 || b.Collisions != 1 || b.Warnings != 2 {
		t.Errorf("sizes = %+v", b)
	}

	ws, err := s.Warnings(e.ID)
	if err != nil {
		t.Fatalf("Warnings: %v", err)
	}
	if len(ws) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(ws))
	}
	if ws[0].Source != "terms/a.yaml:3" || ws[1].Kind != content.WarnCollision || ws[1].Record != "cold" {
		t.Errorf("warnings = %+v", ws)
	}

	// Same build id twice is a primary key violation.
	if err := s.Record(e); err == nil {
		t.Error("expected error recording the same build twice")
	}
}

func TestListBuilds_NewestFirstAndLimit(t *testing.T) {
	s := tempStore(t)
	var ids []string
	for i := 0; i < 3; i++ {
		e := testEngine(t)
		e.BuiltAt = time.Unix(int64(1_000_000+i), 0)
		if err := s.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
		ids = append(ids, e.ID)
	}

	builds, err := s.ListBuilds(2)
	if err != nil {
		t.Fatalf("ListBuilds: %v", err)
	}
	if len(builds) != 2 || builds[0].ID != ids[2] || builds[1].ID != ids[1] {
		t.Errorf("builds = %+v", builds)
	}
}

func TestPrune(t *testing.T) {
	s := tempStore(t)

	old := testEngine(t)
	old.BuiltAt = time.Now().Add(-48 * time.Hour)
	fresh := testEngine(t)
	for _, e := range []*termindex.Engine{old, fresh} {
		if err := s.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	n, err := s.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d builds, want 1", n)
	}
	builds, _ := s.ListBuilds(0)
	if len(builds) != 1 || builds[0].ID != fresh.ID {
		t.Errorf("remaining = %+v", builds)
	}
	if _, err := s.Warnings(old.ID); !errors.Is(err, ErrUnknownBuild) {
		t.Errorf("Warnings(pruned) err = %v, want ErrUnknownBuild", err)
	}
	var kept int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM build_warnings WHERE build_id = ?`, old.ID).Scan(&kept); err != nil {
		t.Fatal(err)
	}
	if kept != 0 {
		t.Errorf("%d warnings of pruned build kept", kept)
	}
}
