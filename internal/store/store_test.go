package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s := NewStore(filepath.Join(t.TempDir(), "models.db"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	rec := ModelRecord{
		Owner:     "u1",
		Version:   "v-abc",
		TrainedAt: time.Now().UTC(),
		Params:    []byte(`{"popularity":0.8}`),
	}
	if err := s.SaveModel(rec); err != nil {
		t.Fatalf("SaveModel returned error: %v", err)
	}

	loaded, err := s.LoadModel("u1")
	if err != nil {
		t.Fatalf("LoadModel returned error: %v", err)
	}

	if loaded.Owner != "u1" || loaded.Version != "v-abc" {
		t.Errorf("unexpected record: %+v", loaded)
	}
	if string(loaded.Params) != string(rec.Params) {
		t.Errorf("params mismatch: %s", loaded.Params)
	}
	if loaded.TrainedAt.IsZero() {
		t.Error("TrainedAt not persisted")
	}
}

func TestStore_LoadMissing(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.LoadModel("nobody"); !errors.Is(err, ErrNoModel) {
		t.Errorf("expected ErrNoModel, got %v", err)
	}
}

func TestStore_SaveReplacesOwnerSlot(t *testing.T) {
	s := newTestStore(t)

	first := ModelRecord{Owner: "u1", Version: "v1", Params: []byte("one")}
	second := ModelRecord{Owner: "u1", Version: "v2", Params: []byte("two")}

	if err := s.SaveModel(first); err != nil {
		t.Fatalf("first SaveModel returned error: %v", err)
	}
	if err := s.SaveModel(second); err != nil {
		t.Fatalf("second SaveModel returned error: %v", err)
	}

	loaded, err := s.LoadModel("u1")
	if err != nil {
		t.Fatalf("LoadModel returned error: %v", err)
	}
	if loaded.Version != "v2" || string(loaded.Params) != "two" {
		t.Errorf("expected replaced record, got %+v", loaded)
	}

	infos, err := s.ListModels()
	if err != nil {
		t.Fatalf("ListModels returned error: %v", err)
	}
	if len(infos) != 1 {
		t.Errorf("expected a single slot after replacement, got %d", len(infos))
	}
}

func TestStore_EmptyOwnerDefaults(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveModel(ModelRecord{Version: "v1", Params: []byte("x")}); err != nil {
		t.Fatalf("SaveModel returned error: %v", err)
	}

	loaded, err := s.LoadModel("")
	if err != nil {
		t.Fatalf("LoadModel returned error: %v", err)
	}
	if loaded.Owner != DefaultOwner {
		t.Errorf("expected owner %q, got %q", DefaultOwner, loaded.Owner)
	}
}

func TestStore_ListModelsNewestFirst(t *testing.T) {
	s := newTestStore(t)

	old := ModelRecord{Owner: "old", Version: "v1", TrainedAt: time.Now().UTC().Add(-time.Hour), Params: []byte("a")}
	recent := ModelRecord{Owner: "recent", Version: "v2", TrainedAt: time.Now().UTC(), Params: []byte("bb")}

	if err := s.SaveModel(old); err != nil {
		t.Fatalf("SaveModel returned error: %v", err)
	}
	if err := s.SaveModel(recent); err != nil {
		t.Fatalf("SaveModel returned error: %v", err)
	}

	infos, err := s.ListModels()
	if err != nil {
		t.Fatalf("ListModels returned error: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 models, got %d", len(infos))
	}
	if infos[0].Owner != "recent" {
		t.Errorf("expected newest first, got %+v", infos)
	}
	if infos[1].SizeBytes != 1 {
		t.Errorf("expected params size 1 for old record, got %d", infos[1].SizeBytes)
	}
}

func TestStore_ListModelsSubsecondOrdering(t *testing.T) {
	s := newTestStore(t)

	// 0.5s vs 0.51s within the same second: trimmed fractional seconds would
	// compare "...0.5Z" after "...0.51Z" as text and invert the order.
	base := time.Date(2026, 5, 1, 12, 0, 0, 500000000, time.UTC)
	older := ModelRecord{Owner: "older", Version: "v1", TrainedAt: base, Params: []byte("a")}
	newer := ModelRecord{Owner: "newer", Version: "v2", TrainedAt: base.Add(10 * time.Millisecond), Params: []byte("b")}

	if err := s.SaveModel(older); err != nil {
		t.Fatalf("SaveModel returned error: %v", err)
	}
	if err := s.SaveModel(newer); err != nil {
		t.Fatalf("SaveModel returned error: %v", err)
	}

	infos, err := s.ListModels()
	if err != nil {
		t.Fatalf("ListModels returned error: %v", err)
	}
	if len(infos) != 2 || infos[0].Owner != "newer" {
		t.Errorf("expected sub-second timestamps to order newest first, got %+v", infos)
	}

	loaded, err := s.LoadModel("newer")
	if err != nil {
		t.Fatalf("LoadModel returned error: %v", err)
	}
	if !loaded.TrainedAt.Equal(newer.TrainedAt) {
		t.Errorf("TrainedAt lost precision: %v vs %v", loaded.TrainedAt, newer.TrainedAt)
	}
}

func TestStore_Cleanup(t *testing.T) {
	s := newTestStore(t)

	stale := ModelRecord{Owner: "stale", Version: "v1", TrainedAt: time.Now().UTC().Add(-48 * time.Hour), Params: []byte("x")}
	fresh := ModelRecord{Owner: "fresh", Version: "v2", TrainedAt: time.Now().UTC(), Params: []byte("y")}

	if err := s.SaveModel(stale); err != nil {
		t.Fatalf("SaveModel returned error: %v", err)
	}
	if err := s.SaveModel(fresh); err != nil {
		t.Fatalf("SaveModel returned error: %v", err)
	}

	if err := s.Cleanup(24 * time.Hour); err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}

	if _, err := s.LoadModel("stale"); !errors.Is(err, ErrNoModel) {
		t.Errorf("expected stale model removed, got %v", err)
	}
	if _, err := s.LoadModel("fresh"); err != nil {
		t.Errorf("fresh model should survive cleanup: %v", err)
	}
}

func TestStore_DisabledDegradesGracefully(t *testing.T) {
	// Pointing the database at an unwritable path disables the store.
	s := NewStore(filepath.Join("/proc/nonexistent", "models.db"))
	if err := s.Init(); err == nil {
		t.Fatal("expected Init to fail for unwritable path")
	}

	// Loads behave like an empty store.
	if _, err := s.LoadModel("u1"); !errors.Is(err, ErrNoModel) {
		t.Errorf("expected ErrNoModel from disabled store, got %v", err)
	}

	// Saves fail loudly.
	if err := s.SaveModel(ModelRecord{Owner: "u1", Params: []byte("x")}); err == nil {
		t.Error("expected SaveModel to fail on disabled store")
	}

	infos, err := s.ListModels()
	if err != nil || len(infos) != 0 {
		t.Errorf("expected empty list from disabled store, got %v, %v", infos, err)
	}
}

func TestStore_InitIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.Init(); err != nil {
		t.Errorf("second Init returned error: %v", err)
	}
}

func TestStore_ConcurrentSaves(t *testing.T) {
	s := newTestStore(t)

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func(n int) {
			done <- s.SaveModel(ModelRecord{
				Owner:   "shared",
				Version: "v",
				Params:  []byte{byte(n)},
			})
		}(i)
	}

	for i := 0; i < 10; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent SaveModel returned error: %v", err)
		}
	}

	if _, err := s.LoadModel("shared"); err != nil {
		t.Errorf("LoadModel after concurrent saves returned error: %v", err)
	}
}
