package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapline/prospect-cli/internal/model"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_RunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "plumbers in Austin TX")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusCollecting))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCollecting, got.Status)
	assert.Equal(t, "plumbers in Austin TX", got.Search)
	assert.Nil(t, got.Stats)

	stats := &model.RunStats{ListingsFound: 40, Scored: 38, Skipped: 2, HighLeads: 5, APICalls: 2}
	require.NoError(t, s.CompleteRun(ctx, run.ID, stats))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Stats)
	assert.Equal(t, 40, got.Stats.ListingsFound)
	assert.Equal(t, 5, got.Stats.HighLeads)
}

func TestSQLite_FailRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "bakeries in Waco TX")
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, run.ID, eris.New("quota exceeded")))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Contains(t, got.Error, "quota exceeded")
}

func TestSQLite_RunNotFound(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "nope")
	assert.Error(t, err)
	assert.Error(t, s.UpdateRunStatus(ctx, "nope", model.RunStatusComplete))
	assert.Error(t, s.CompleteRun(ctx, "nope", &model.RunStats{}))
	assert.Error(t, s.FailRun(ctx, "nope", eris.New("x")))
}

func TestSQLite_ListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, "plumbers in Austin TX")
	require.NoError(t, err)
	b, err := s.CreateRun(ctx, "bakeries in Waco TX")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, b.ID, &model.RunStats{}))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	queued, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusQueued})
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, a.ID, queued[0].ID)

	bySearch, err := s.ListRuns(ctx, RunFilter{Search: "bakeries in Waco TX"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, b.ID, bySearch[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_SaveAndListListings(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "plumbers in Austin TX")
	require.NoError(t, err)

	listings := []model.ScoredListing{
		{
			Listing: model.Listing{
				Name:        "Acme Plumbing",
				Category:    "Plumber",
				Rating:      floatPtr(4.6),
				ReviewCount: intPtr(150),
				Website:     "https://acmeplumbing.com",
				Phone:       "+15125552671",
				Address:     "123 Main St",
				PlaceID:     "ChIJ-1",
				Source:      "plumbers in Austin TX",
			},
			HasWebsite:           true,
			WebsiteScore:         20,
			RatingScore:          20,
			ReviewScore:          20,
			ContactScore:         15,
			LeadScore:            75,
			LeadType:             model.LeadTypeHigh,
			ClassificationReason: "Website detected (+20); Rating 4.6 (+20); 150 reviews (+20); Phone and address available (+15)",
		},
		{
			Listing:  model.Listing{Name: "Ghost Shop"},
			LeadType: model.LeadTypeLow,
		},
		{
			Listing: model.Listing{
				Name:             "Beloved Diner",
				Rating:           floatPtr(4.8),
				ReviewCount:      intPtr(300),
				Disqualified:     true,
				DisqualifyReason: "established offline presence (rating 4.8, 300 reviews)",
			},
			RatingScore: 20,
			ReviewScore: 25,
			LeadScore:   45,
			LeadType:    model.LeadTypePotential,
		},
	}
	require.NoError(t, s.SaveListings(ctx, run.ID, listings))

	got, err := s.ListListings(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by score descending.
	assert.Equal(t, "Acme Plumbing", got[0].Name)
	require.NotNil(t, got[0].Rating)
	assert.InDelta(t, 4.6, *got[0].Rating, 0.001)
	assert.True(t, got[0].HasWebsite)
	assert.Equal(t, model.LeadTypeHigh, got[0].LeadType)
	assert.Equal(t, 75, got[0].LeadScore)

	assert.Equal(t, "Beloved Diner", got[1].Name)
	assert.True(t, got[1].Disqualified)
	assert.Contains(t, got[1].DisqualifyReason, "established offline presence")

	assert.Equal(t, "Ghost Shop", got[2].Name)
	assert.Nil(t, got[2].Rating)
	assert.Nil(t, got[2].ReviewCount)
}

func TestSQLite_SaveListingsEmpty(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.SaveListings(context.Background(), "any", nil))
}

func TestSQLite_ListListingsEmptyRun(t *testing.T) {
	s := newTestSQLite(t)
	got, err := s.ListListings(context.Background(), "missing-run")
	require.NoError(t, err)
	assert.Empty(t, got)
}
