package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-api-probe/internal/domain"
	bolt "go.etcd.io/bbolt"
)

func openTestBolt(t *testing.T, opts Options) *boltStore {
	t.Helper()
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "nested", "probe.db"), normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreRecentNewestFirst(t *testing.T) {
	store := openTestBolt(t, Options{})
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, id := range []string{"first", "second", "third"} {
		err := store.Record(domain.Outcome{
			ID:          id,
			URL:         "http://localhost:8080/test_db",
			Success:     i != 1,
			CompletedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}

	got, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != "third" || got[1].ID != "second" {
		t.Fatalf("unexpected order %#v", got)
	}
	if got[1].Success {
		t.Fatalf("success flag not persisted")
	}

	all, err := store.Recent(0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected all 3 outcomes, got %d err=%v", len(all), err)
	}
}

func TestBoltStorePersistsDecodedData(t *testing.T) {
	store := openTestBolt(t, Options{})
	if err := store.Record(domain.Outcome{ID: "x", Success: true, Data: map[string]any{"ok": true}}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Recent(1)
	if err != nil || len(got) != 1 {
		t.Fatalf("Recent: %v %#v", err, got)
	}
	data, ok := got[0].Data.(map[string]any)
	if !ok || data["ok"] != true {
		t.Fatalf("unexpected data %#v", got[0].Data)
	}
	if got[0].CompletedAt.IsZero() {
		t.Fatalf("expected key time to fall back to now")
	}
}

func TestBoltStoreExpiresOutcomes(t *testing.T) {
	store := openTestBolt(t, Options{OutcomeTTL: time.Minute, CleanupInterval: time.Minute})
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Record(domain.Outcome{ID: "old", CompletedAt: now}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, err := store.Recent(0)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected live outcome, got %d err=%v", len(got), err)
	}

	// Move past TTL and cleanup cadence.
	now = now.Add(2 * time.Minute)
	got, err = store.Recent(0)
	if err != nil {
		t.Fatalf("Recent after expiry: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected outcome to expire, got %#v", got)
	}

	var remaining int
	if err := store.db.View(func(tx *bolt.Tx) error {
		remaining = tx.Bucket([]byte(outcomeBucket)).Stats().KeyN
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected cleanup to delete expired keys, %d left", remaining)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(domain.Outcome{ID: "x"}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	if got, _ := store.Recent(5); got != nil {
		t.Fatalf("noop store should return nothing")
	}
}

func TestNewStoreRejectsUnknownOrPathless(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected unsupported type error")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected missing path error")
	}
}
