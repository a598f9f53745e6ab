package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const reportBucket = "reports"

var errBucketMissing = errors.New("report bucket missing")

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	reportTTL       time.Duration
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
		_, err := tx.CreateBucketIfNotExists([]byte(reportBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	now := opts.now
	if now == nil {
		now = time.Now
	}
	store := &boltStore{
		db:              db,
		reportTTL:       opts.ReportTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             now,
	}
	// Expired reports are purged on every open.
	if err := store.maybeCleanupExpired(now()); err != nil {
		db.Close()
		return nil, fmt.Errorf("sweep expired reports: %w", err)
	}
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SaveReport archives payload under <runID>/<groupID>, replacing any previous copy.
func (b *boltStore) SaveReport(runID, groupID string, payload []byte) error {
	if b == nil || b.db == nil {
		return nil
	}
	if strings.TrimSpace(runID) == "" || strings.TrimSpace(groupID) == "" {
		return errors.New("run id and group id are required")
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	rec := Record{
		RunID:     runID,
		GroupID:   groupID,
		Payload:   payload,
		StoredAt:  now.UTC(),
		ExpiresAt: now.Add(b.reportTTL).UTC(),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode report record: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(reportBucket))
		if bucket == nil {
			return errBucketMissing
		}
		return bucket.Put([]byte(reportKey(runID, groupID)), raw)
	})
}

// Report returns one archived report if present and not expired.
func (b *boltStore) Report(runID, groupID string) (Record, bool, error) {
	if b == nil || b.db == nil {
		return Record{}, false, nil
	}

	var (
		rec   Record
		found bool
	)
	now := b.now()
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(reportBucket))
		if bucket == nil {
			return errBucketMissing
		}
		value := bucket.Get([]byte(reportKey(runID, groupID)))
		if value == nil {
			return nil
		}
		r, ok := decodeRecord(value)
		if !ok || !r.ExpiresAt.After(now) {
			return nil
		}
		rec, found = r, true
		return nil
	})
	return rec, found, err
}

// Reports returns every unexpired report of a run in key order.
func (b *boltStore) Reports(runID string) ([]Record, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	prefix := []byte(runID + "/")
	now := b.now()
	var out []Record
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(reportBucket))
		if bucket == nil {
			return errBucketMissing
		}
		cursor := bucket.Cursor()
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			if r, ok := decodeRecord(v); ok && r.ExpiresAt.After(now) {
				out = append(out, r)
			}
		}
		return nil
	})
	return out, err
}

// maybeCleanupExpired removes expired reports at most once per cleanup interval.
// lastCleanup starts at zero, so the first call after open always sweeps.
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
		bucket := tx.Bucket([]byte(reportBucket))
		if bucket == nil {
			return errBucketMissing
		}

		var expired [][]byte
		if err := bucket.ForEach(func(k, v []byte) error {
			if r, ok := decodeRecord(v); !ok || !r.ExpiresAt.After(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func decodeRecord(value []byte) (Record, bool) {
	var r Record
	if err := json.Unmarshal(value, &r); err != nil || r.ExpiresAt.IsZero() {
		return Record{}, false
	}
	return r, true
}
