package storage

import (
	"path/filepath"
	"testing"

	"github.com/artifactengine/mce/internal/config"
	"github.com/artifactengine/mce/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(config.EngineURL{Driver: "sqlite", Database: filepath.Join(dir, "state.db")}, nil)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesTable(t *testing.T) {
	s := newTestStore(t)
	rows, err := s.Query(nil)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty catalog, got %d rows", len(rows))
	}
}

func TestAddGetDelete(t *testing.T) {
	s := newTestStore(t)

	def := domain.ArtifactDef{
		ObjectID:   "A",
		ObjectName: "inc",
		PythonExpr: "x + 1",
		LRUMaxSize: 2,
		TTLSeconds: 60,
	}
	if err := s.Add(def); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	got, err := s.Get("A")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.PythonExpr != "x + 1" || got.LRUMaxSize != 2 || got.TTLSeconds != 60 {
		t.Fatalf("unexpected row: %+v", got)
	}
	if got.LastUpdatedTime.IsZero() {
		t.Fatal("expected last_updated_time to be set on insert")
	}

	n, err := s.Delete("A")
	if err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row affected, got %d", n)
	}

	if _, err := s.Get("A"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_RefreshesTimestamp(t *testing.T) {
	s := newTestStore(t)
	if err := s.Add(domain.ArtifactDef{ObjectID: "A", PythonExpr: "x"}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	before, err := s.Get("A")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	n, err := s.Update("A", map[string]any{"python_expr": "x + 1"})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row affected, got %d", n)
	}

	after, err := s.Get("A")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if after.PythonExpr != "x + 1" {
		t.Fatalf("expected updated expr, got %q", after.PythonExpr)
	}
	if after.LastUpdatedTime.Before(before.LastUpdatedTime) {
		t.Fatal("expected last_updated_time to not go backwards")
	}
}

func TestUpdate_RejectsUnknownColumn(t *testing.T) {
	s := newTestStore(t)
	if err := s.Add(domain.ArtifactDef{ObjectID: "A"}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if _, err := s.Update("A", map[string]any{"object_id": "B"}); err == nil {
		t.Fatal("expected error updating immutable column")
	}
}

func TestQuery_FiltersByEquality(t *testing.T) {
	s := newTestStore(t)
	if err := s.Add(domain.ArtifactDef{ObjectID: "A", CustomTag: "x"}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := s.Add(domain.ArtifactDef{ObjectID: "B", CustomTag: "y"}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	rows, err := s.Query(map[string]any{"custom_tag": "x"})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(rows) != 1 || rows[0].ObjectID != "A" {
		t.Fatalf("unexpected filtered rows: %+v", rows)
	}
}

func TestQuery_RejectsUnknownColumn(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Query(map[string]any{"nonexistent": 1}); err == nil {
		t.Fatal("expected error for unknown filter column")
	}
}

// No live postgres instance is available in this environment, so the
// postgres query-building path is verified at the SQL-string level instead
// of against a real connection: rebind must turn every `?` into a
// sequentially numbered `$N` placeholder, since pgx/v5's stdlib driver does
// not accept `?`.
func TestRebind_SqliteLeavesPlaceholdersUnchanged(t *testing.T) {
	s := &Store{driver: "sqlite"}
	query := `INSERT INTO t (a, b, c) VALUES (?, ?, ?)`
	if got := s.rebind(query); got != query {
		t.Fatalf("rebind() = %q, want unchanged %q", got, query)
	}
}

func TestRebind_PostgresNumbersPlaceholders(t *testing.T) {
	s := &Store{driver: "postgres"}
	query := `UPDATE mce_calc_object_info SET object_name = ?, remark = ? WHERE object_id = ?`
	want := `UPDATE mce_calc_object_info SET object_name = $1, remark = $2 WHERE object_id = $3`
	if got := s.rebind(query); got != want {
		t.Fatalf("rebind() = %q, want %q", got, want)
	}
}

func TestRebind_PostgresHandlesSelectAndDelete(t *testing.T) {
	s := &Store{driver: "postgres"}
	tests := []struct{ in, want string }{
		{
			in:   `SELECT object_id FROM mce_calc_object_info WHERE object_id = ?`,
			want: `SELECT object_id FROM mce_calc_object_info WHERE object_id = $1`,
		},
		{
			in:   `DELETE FROM mce_calc_object_info WHERE object_id = ?`,
			want: `DELETE FROM mce_calc_object_info WHERE object_id = $1`,
		},
		{
			in:   `SELECT * FROM mce_calc_object_info WHERE a = ? AND b = ? AND c = ?`,
			want: `SELECT * FROM mce_calc_object_info WHERE a = $1 AND b = $2 AND c = $3`,
		},
	}
	for _, tt := range tests {
		if got := s.rebind(tt.in); got != tt.want {
			t.Fatalf("rebind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
