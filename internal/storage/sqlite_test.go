package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/beatrate/internal/scheduler"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func result(hash, mode, sig string, score float32) scheduler.Result {
	return scheduler.Result{
		Entry: scheduler.Entry{ChartHash: hash, Mode: mode, Signature: sig},
		Score: score,
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreResultsAndLoad(t *testing.T) {
	store := openTestStore(t)

	err := store.StoreResults([]scheduler.Result{
		result("aaa", "standard", "NM@100", 3.25),
		result("aaa", "standard", "HR@100", 4.5),
		result("aaa", "mania", "NM@100", 2),
		result("bbb", "standard", "NM@100", scheduler.Sentinel),
	})
	if err != nil {
		t.Fatalf("StoreResults() failed: %v", err)
	}

	loaded, err := store.LoadResults()
	if err != nil {
		t.Fatalf("LoadResults() failed: %v", err)
	}
	if len(loaded) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(loaded))
	}

	key := scheduler.Entry{ChartHash: "aaa", Mode: "standard", Signature: "HR@100"}
	if loaded[key] != 4.5 {
		t.Errorf("Expected 4.5 for %+v, got %v", key, loaded[key])
	}
	sentinel := scheduler.Entry{ChartHash: "bbb", Mode: "standard", Signature: "NM@100"}
	if loaded[sentinel] != scheduler.Sentinel {
		t.Errorf("Sentinel did not round trip: %v", loaded[sentinel])
	}
}

func TestStoreResultsUpsert(t *testing.T) {
	store := openTestStore(t)

	batch := []scheduler.Result{result("aaa", "standard", "NM@100", 1)}
	for range 3 {
		if err := store.StoreResults(batch); err != nil {
			t.Fatalf("StoreResults() failed: %v", err)
		}
	}
	if err := store.StoreResults([]scheduler.Result{result("aaa", "standard", "NM@100", 7)}); err != nil {
		t.Fatalf("StoreResults() failed: %v", err)
	}

	loaded, err := store.LoadResults()
	if err != nil {
		t.Fatalf("LoadResults() failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Errorf("Upsert duplicated rows: %d", len(loaded))
	}

	score, ok, err := store.Lookup(scheduler.Entry{ChartHash: "aaa", Mode: "standard", Signature: "NM@100"})
	if err != nil || !ok {
		t.Fatalf("Lookup() = %v, %v, %v", score, ok, err)
	}
	if score != 7 {
		t.Errorf("Expected last write to win, got %v", score)
	}

	if _, ok, err := store.Lookup(scheduler.Entry{ChartHash: "zzz"}); ok || err != nil {
		t.Errorf("Lookup() of missing entry = %v, %v", ok, err)
	}
}

func TestStoreResultsEmpty(t *testing.T) {
	store := openTestStore(t)
	if err := store.StoreResults(nil); err != nil {
		t.Errorf("StoreResults(nil) failed: %v", err)
	}
}

func TestChartResults(t *testing.T) {
	store := openTestStore(t)

	err := store.StoreResults([]scheduler.Result{
		result("aaa", "standard", "NM@150", 5),
		result("aaa", "standard", "NM@100", 3),
		result("aaa", "mania", "NM@100", 2),
		result("bbb", "standard", "NM@100", 9),
	})
	if err != nil {
		t.Fatalf("StoreResults() failed: %v", err)
	}

	ratings, err := store.ChartResults("aaa")
	if err != nil {
		t.Fatalf("ChartResults() failed: %v", err)
	}
	if len(ratings) != 3 {
		t.Fatalf("Expected 3 ratings, got %d", len(ratings))
	}

	// Ordered by mode, then score
	want := []string{"mania/NM@100", "standard/NM@100", "standard/NM@150"}
	for i, r := range ratings {
		if got := r.Mode + "/" + r.Signature; got != want[i] {
			t.Errorf("rating %d = %s, want %s", i, got, want[i])
		}
		if r.ComputedAt.IsZero() {
			t.Errorf("rating %d has no computed_at", i)
		}
	}
}

func TestCharts(t *testing.T) {
	store := openTestStore(t)

	err := store.StoreResults([]scheduler.Result{
		result("aaa", "standard", "NM@100", 3),
		result("aaa", "standard", "HR@150", 6),
		result("aaa", "standard", "EZ@50", 1),
		result("bbb", "mania", "HD@100", 4),
	})
	if err != nil {
		t.Fatalf("StoreResults() failed: %v", err)
	}

	summaries, err := store.Charts()
	if err != nil {
		t.Fatalf("Charts() failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(summaries))
	}

	a := summaries[0]
	if a.ChartHash != "aaa" || a.Count != 3 || a.Max != 6 || a.Nomod != 3 {
		t.Errorf("Unexpected summary for aaa: %+v", a)
	}
	if a.LastComputed.IsZero() {
		t.Error("LastComputed not set")
	}

	b := summaries[1]
	if b.Nomod != scheduler.Sentinel {
		t.Errorf("Expected sentinel nomod for chart without NM@100, got %v", b.Nomod)
	}
}

func TestClearChart(t *testing.T) {
	store := openTestStore(t)

	err := store.StoreResults([]scheduler.Result{
		result("aaa", "standard", "NM@100", 3),
		result("aaa", "mania", "NM@100", 2),
		result("bbb", "standard", "NM@100", 9),
	})
	if err != nil {
		t.Fatalf("StoreResults() failed: %v", err)
	}

	n, err := store.ClearChart("aaa")
	if err != nil {
		t.Fatalf("ClearChart() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 deleted ratings, got %d", n)
	}

	loaded, err := store.LoadResults()
	if err != nil {
		t.Fatalf("LoadResults() failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Errorf("Expected 1 remaining rating, got %d", len(loaded))
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := store.StoreResults([]scheduler.Result{result("aaa", "standard", "NM@100", 3)}); err != nil {
		t.Fatalf("StoreResults() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	loaded, err := store.LoadResults()
	if err != nil {
		t.Fatalf("LoadResults() failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Errorf("Expected 1 rating after reopen, got %d", len(loaded))
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := Open("~/.beatrate/test.db")
	if err != nil {
		t.Fatalf("Open() with ~ path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(home, ".beatrate", "test.db")); err != nil {
		t.Errorf("Expected database under home directory: %v", err)
	}
}

func TestStoreErrorsArePrefixed(t *testing.T) {
	store := openTestStore(t)
	store.Close()

	err := store.StoreResults([]scheduler.Result{result("aaa", "standard", "NM@100", 1)})
	if err == nil {
		t.Fatal("Expected error from closed store")
	}
	if !strings.HasPrefix(err.Error(), "storage:") {
		t.Errorf("Error not prefixed: %v", err)
	}
}
