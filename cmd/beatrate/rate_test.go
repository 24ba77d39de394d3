package main

import (
	"path/filepath"
	"testing"

	"github.com/vovakirdan/beatrate/internal/scheduler"
	"github.com/vovakirdan/beatrate/internal/storage"
)

func TestStoredRating(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "ratings.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	entry := scheduler.Entry{Mode: "standard", ChartHash: "abc123", Signature: "HR@150"}
	if _, ok := storedRating(store, entry); ok {
		t.Fatal("empty store should have no rating")
	}

	if err := store.StoreResults([]scheduler.Result{{Entry: entry, Score: 4.25}}); err != nil {
		t.Fatalf("StoreResults failed: %v", err)
	}
	score, ok := storedRating(store, entry)
	if !ok || score != 4.25 {
		t.Errorf("storedRating = %v, %v; want 4.25, true", score, ok)
	}

	other := entry
	other.Signature = "NM@100"
	if _, ok := storedRating(store, other); ok {
		t.Error("a different combination should not be found")
	}
}

func TestStoredRatingWithoutStore(t *testing.T) {
	if _, ok := storedRating(nil, scheduler.Entry{}); ok {
		t.Error("a missing store should report nothing stored")
	}
}
