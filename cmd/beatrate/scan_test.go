package main

import (
	"path/filepath"
	"testing"

	"github.com/vovakirdan/beatrate/internal/combo"
	"github.com/vovakirdan/beatrate/internal/scan"
	"github.com/vovakirdan/beatrate/internal/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "ratings.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return store
}

func TestNewRunnerClosesStoreOnError(t *testing.T) {
	store := openTestStore(t)

	// No combination space
	if _, err := newRunner(store, scan.Config{}); err == nil {
		t.Fatal("expected an error without a combination space")
	}
	if _, err := store.LoadResults(); err == nil {
		t.Error("store should be closed after a failed start")
	}
}

func TestNewRunnerUsesStore(t *testing.T) {
	store := openTestStore(t)
	defer store.Close()

	r, err := newRunner(store, scan.Config{Space: combo.New(nil, 100, 100, 0)})
	if err != nil {
		t.Fatalf("newRunner failed: %v", err)
	}
	r.Tick()
	if !r.Done() {
		t.Error("a runner without tasks should be done after one tick")
	}
	if _, err := store.LoadResults(); err != nil {
		t.Errorf("store should stay open: %v", err)
	}
}
