package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samvad-hq/samvad-api-probe/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	outcomeBucket = "outcomes"
	keyTimeBytes  = 8
)

// storedOutcome is the persisted form of an outcome plus its expiry.
type storedOutcome struct {
	Outcome   domain.Outcome `json:"outcome"`
	ExpiresAt int64          `json:"expires_at"`
}

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	outcomeTTL      time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(outcomeBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		outcomeTTL:      opts.OutcomeTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record persists the outcome keyed by completion time so cursor order is chronological.
func (b *boltStore) Record(out domain.Outcome) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	completed := out.CompletedAt
	if completed.IsZero() {
		completed = now
	}
	value, err := json.Marshal(storedOutcome{
		Outcome:   out,
		ExpiresAt: now.Add(b.outcomeTTL).Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outcomeBucket))
		if bucket == nil {
			return fmt.Errorf("outcome bucket missing")
		}
		return bucket.Put(outcomeKey(completed, out.ID), value)
	})
}

// Recent walks the bucket backwards, skipping expired entries.
func (b *boltStore) Recent(limit int) ([]domain.Outcome, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return nil, err
	}

	var out []domain.Outcome
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outcomeBucket))
		if bucket == nil {
			return fmt.Errorf("outcome bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			rec, ok := decodeOutcome(v)
			if !ok || !time.Unix(rec.ExpiresAt, 0).After(now) {
				continue
			}
			out = append(out, rec.Outcome)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// maybeCleanupExpired removes expired outcomes on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outcomeBucket))
		if bucket == nil {
			return fmt.Errorf("outcome bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			rec, ok := decodeOutcome(v)
			if !ok || !time.Unix(rec.ExpiresAt, 0).After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func outcomeKey(completed time.Time, id string) []byte {
	key := make([]byte, keyTimeBytes, keyTimeBytes+len(id))
	binary.BigEndian.PutUint64(key, uint64(completed.UnixNano()))
	return append(key, id...)
}

func decodeOutcome(value []byte) (storedOutcome, bool) {
	var rec storedOutcome
	if err := json.Unmarshal(value, &rec); err != nil {
		return storedOutcome{}, false
	}
	if rec.ExpiresAt <= 0 {
		return storedOutcome{}, false
	}
	return rec, true
}
