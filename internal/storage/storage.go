package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage keeps an audit archive of delivered reports. It is not a
// dedup store: candidate dedup never outlives a run.

// Record is one archived report.
type Record struct {
	RunID     string    `json:"run_id"`
	GroupID   string    `json:"group_id"`
	Payload   []byte    `json:"payload"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store archives rendered report payloads keyed by run and group.
type Store interface {
	Close() error
	SaveReport(runID, groupID string, payload []byte) error
	Report(runID, groupID string) (Record, bool, error)
	Reports(runID string) ([]Record, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ReportTTL       time.Duration
	CleanupInterval time.Duration

	now func() time.Time
}

const (
	defaultReportTTL       = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ReportTTL <= 0 {
		opts.ReportTTL = defaultReportTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

func reportKey(runID, groupID string) string {
	return runID + "/" + groupID
}

type noopStore struct{}

func (noopStore) Close() error                                { return nil }
func (noopStore) SaveReport(string, string, []byte) error     { return nil }
func (noopStore) Report(string, string) (Record, bool, error) { return Record{}, false, nil }
func (noopStore) Reports(string) ([]Record, error)            { return nil, nil }
