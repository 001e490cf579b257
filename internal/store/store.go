// Package store persists collection runs and their scored listings behind a
// driver-agnostic interface with SQLite and Postgres backends.
package store

import (
	"context"

	"github.com/mapline/prospect-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Search string          `json:"search,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for collection runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, search string) (*model.CollectionRun, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, stats *model.RunStats) error
	FailRun(ctx context.Context, runID string, cause error) error
	GetRun(ctx context.Context, runID string) (*model.CollectionRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.CollectionRun, error)

	// Listings
	SaveListings(ctx context.Context, runID string, listings []model.ScoredListing) error
	ListListings(ctx context.Context, runID string) ([]model.ScoredListing, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
