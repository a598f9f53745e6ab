package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func TestBoltStoreArchivesAndExpiresReports(t *testing.T) {
	opts := Options{
		ReportTTL:       time.Hour,
		CleanupInterval: time.Minute,
	}

	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "nested", "reports.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	clock := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	store.lastCleanup.Store(clock.Unix())

	if _, found, err := store.Report("run-1", "domestic"); err != nil || found {
		t.Fatalf("expected empty archive, found=%v err=%v", found, err)
	}

	if err := store.SaveReport("run-1", "domestic", []byte(`{"embeds":[]}`)); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if err := store.SaveReport("run-1", "overseas", []byte(`{"embeds":[1]}`)); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if err := store.SaveReport("run-10", "overseas", []byte(`{}`)); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	rec, found, err := store.Report("run-1", "domestic")
	if err != nil || !found {
		t.Fatalf("expected archived report, found=%v err=%v", found, err)
	}
	if string(rec.Payload) != `{"embeds":[]}` || !rec.StoredAt.Equal(clock) {
		t.Fatalf("unexpected record %+v", rec)
	}

	all, err := store.Reports("run-1")
	if err != nil {
		t.Fatalf("Reports: %v", err)
	}
	if len(all) != 2 || all[0].GroupID != "domestic" || all[1].GroupID != "overseas" {
		t.Fatalf("unexpected run reports %+v", all)
	}

	// Past the TTL, reads hide the record and the next write sweeps it.
	clock = clock.Add(2 * time.Hour)
	if _, found, _ := store.Report("run-1", "domestic"); found {
		t.Fatalf("expected expired report to be hidden")
	}
	if err := store.SaveReport("run-2", "domestic", []byte(`{}`)); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	all, err = store.Reports("run-1")
	if err != nil || len(all) != 0 {
		t.Fatalf("expected run-1 swept, got %d err=%v", len(all), err)
	}
}

func TestBoltStoreRejectsEmptyKeys(t *testing.T) {
	store, err := NewStore("bbolt", filepath.Join(t.TempDir(), "r.db"), Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()
	if err := store.SaveReport("", "g", nil); err == nil {
		t.Fatalf("expected error for empty run id")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.SaveReport("r", "g", []byte("x")); err != nil {
		t.Fatalf("noop store SaveReport: %v", err)
	}
	if _, found, _ := store.Report("r", "g"); found {
		t.Fatalf("noop store should not find reports")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestBoltStoreSweepsExpiredReportsOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	base := time.Date(2026, time.January, 1, 6, 0, 0, 0, time.UTC)

	for month := 0; month < 5; month++ {
		clock := base.AddDate(0, month, 0)
		store, err := openBolt(path, Options{
			ReportTTL:       24 * time.Hour,
			CleanupInterval: 12 * time.Hour,
			now:             func() time.Time { return clock },
		})
		if err != nil {
			t.Fatalf("openBolt month %d: %v", month, err)
		}
		if err := store.SaveReport(fmt.Sprintf("run-%d", month), "domestic", []byte(`{}`)); err != nil {
			t.Fatalf("SaveReport month %d: %v", month, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("Close month %d: %v", month, err)
		}
	}

	if got := countKeys(t, path); got != 1 {
		t.Fatalf("keys on disk after 5 monthly runs = %d, want 1", got)
	}

	later := base.AddDate(0, 6, 0)
	store, err := openBolt(path, Options{
		ReportTTL:       24 * time.Hour,
		CleanupInterval: 12 * time.Hour,
		now:             func() time.Time { return later },
	})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := countKeys(t, path); got != 0 {
		t.Fatalf("keys on disk after reopen past ttl = %d, want 0", got)
	}
}

func countKeys(t *testing.T, path string) int {
	t.Helper()
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()

	n := 0
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(reportBucket))
		if bucket == nil {
			return errBucketMissing
		}
		return bucket.ForEach(func(_, _ []byte) error {
			n++
			return nil
		})
	})
	if err != nil {
		t.Fatalf("count keys: %v", err)
	}
	return n
}
