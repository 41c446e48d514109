package db

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/rorycl/roster/roster"
)

// setupTestDB sets up a test database connection.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDB, err := NewConnection("file::memory:?cache=shared", nil)
	if err != nil {
		t.Fatalf("in-memory test database opening error: %v", err)
	}
	testDB.SetLogLevel(slog.LevelWarn)

	t.Cleanup(func() {
		if err := testDB.Close(); err != nil {
			t.Fatalf("unexpected db close error: %v", err)
		}
	})
	return testDB
}

func TestInMemoryRequiresSharedCache(t *testing.T) {
	_, err := NewConnection("file::memory:", nil)
	if err == nil {
		t.Fatal("expected shared cache error")
	}
}

func TestSnapshots(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	first := []roster.Employee{
		{Name: "Maria Silva", Position: "Dev", Salary: 5000},
		{Name: "Maria Costa", Position: "QA", Salary: 4500.25},
	}
	second := []roster.Employee{
		{Name: "Maria Costa", Position: "QA", Salary: 4500.25},
	}

	t1 := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 10, 2, 9, 30, 0, 0, time.UTC)

	id1, err := testDB.SaveSnapshot(ctx, "employees.txt", t1, first)
	if err != nil {
		t.Fatal(err)
	}
	id2, err := testDB.SaveSnapshot(ctx, "employees.txt", t2, second)
	if err != nil {
		t.Fatal(err)
	}
	if id2 <= id1 {
		t.Fatalf("expected increasing ids, got %d then %d", id1, id2)
	}

	snapshots, err := testDB.Snapshots(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []Snapshot{
		{ID: id2, Source: "employees.txt", EmployeeCount: 1, TakenAt: t2},
		{ID: id1, Source: "employees.txt", EmployeeCount: 2, TakenAt: t1},
	}
	if diff := cmp.Diff(want, snapshots, cmpopts.IgnoreFields(Snapshot{}, "TakenAtStr")); diff != "" {
		t.Errorf("snapshots mismatch (-want +got):\n%s", diff)
	}

	got, err := testDB.SnapshotEmployees(ctx, id1)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, got); diff != "" {
		t.Errorf("snapshot employees mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptySnapshot(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	id, err := testDB.SaveSnapshot(ctx, "employees.txt", time.Now(), nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := testDB.SnapshotEmployees(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(got), 0; got != want {
		t.Errorf("got %d want %d", got, want)
	}
}

func TestSnapshotNotFound(t *testing.T) {
	testDB := setupTestDB(t)
	_, err := testDB.SnapshotEmployees(context.Background(), 99)
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("got %v want %v", err, ErrSnapshotNotFound)
	}
}

func TestFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.db")
	ctx := context.Background()

	for i := range 2 {
		fileDB, err := NewConnection(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		fileDB.SetLogLevel(slog.LevelWarn)
		if _, err := fileDB.SaveSnapshot(ctx, "employees.txt", time.Now(), []roster.Employee{{Name: "Ana"}}); err != nil {
			t.Fatal(err)
		}
		snapshots, err := fileDB.Snapshots(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := len(snapshots), i+1; got != want {
			t.Errorf("got %d snapshots want %d", got, want)
		}
		if err := fileDB.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestVerifyArgs(t *testing.T) {
	p := &parameterizedStmt{sqlFile: "x.sql", args: []string{"A", "B"}}
	if err := p.verifyArgs(map[string]any{"A": 1, "B": 2}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.verifyArgs(map[string]any{"A": 1}); err == nil {
		t.Error("expected length error")
	}
	if err := p.verifyArgs(map[string]any{"A": 1, "C": 2}); err == nil {
		t.Error("expected missing argument error")
	}
}
