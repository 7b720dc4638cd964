// Package store persists acquired price snapshots so the CLI can show
// price history and the pipeline keeps working data across runs. Only
// live records are ever written; placeholder data is never persisted.
package store

import (
	"context"
	"time"

	"github.com/agrimitra/mandi-cli/internal/model"
)

// Snapshot is one recorded acquisition: a batch of normalized records
// from a single source at a single time.
type Snapshot struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	State       string    `json:"state,omitempty"`
	RecordCount int       `json:"record_count"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// HistoryFilter specifies criteria for querying stored price records.
type HistoryFilter struct {
	State     string    `json:"state,omitempty"`
	District  string    `json:"district,omitempty"`
	Commodity string    `json:"commodity,omitempty"`
	Market    string    `json:"market,omitempty"`
	Since     time.Time `json:"since,omitempty"`
	Limit     int       `json:"limit,omitempty"`
	Offset    int       `json:"offset,omitempty"`
}

// Store defines the persistence interface for price snapshots.
type Store interface {
	// SaveSnapshot records an acquisition result and its records.
	SaveSnapshot(ctx context.Context, state string, result *model.AcquisitionResult) (*Snapshot, error)
	// ListSnapshots returns recorded snapshots, newest first.
	ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error)
	// History returns stored records matching the filter, newest first.
	History(ctx context.Context, filter HistoryFilter) ([]model.NormalizedPriceRecord, error)
	// Prune deletes snapshots fetched before the cutoff and returns how
	// many records went with them.
	Prune(ctx context.Context, before time.Time) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
