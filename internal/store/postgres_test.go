package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapline/prospect-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "plumbers in Austin TX", "queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "plumbers in Austin TX")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("collecting", pgxmock.AnyArg(), "missing-run").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "missing-run", model.RunStatusCollecting)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, search, status, stats, error, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "search", "status", "stats", "error", "created_at", "updated_at",
		}).AddRow(
			"run-1", "plumbers in Austin TX", "complete",
			[]byte(`{"listings_found":40,"high_leads":5}`), (*string)(nil), now, now,
		))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Stats)
	assert.Equal(t, 40, run.Stats.ListingsFound)
	assert.Equal(t, 5, run.Stats.HighLeads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, search, status, stats, error, created_at, updated_at FROM runs`).
		WithArgs("missing-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "missing-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET error`).
		WithArgs("quota exceeded", "failed", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.FailRun(context.Background(), "run-1", eris.New("quota exceeded")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveListings_Copy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"listings"}, listingColumns).WillReturnResult(2)

	listings := []model.ScoredListing{
		{Listing: model.Listing{Name: "Acme Plumbing"}, LeadScore: 75, LeadType: model.LeadTypeHigh},
		{Listing: model.Listing{Name: "Ghost Shop"}, LeadType: model.LeadTypeLow},
	}
	require.NoError(t, s.SaveListings(context.Background(), "run-1", listings))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveListings_Empty(t *testing.T) {
	s, _ := newMockPostgresStore(t)
	require.NoError(t, s.SaveListings(context.Background(), "run-1", nil))
}

func TestPostgresStore_ListListings(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rating := 4.6
	reviews := 150
	mock.ExpectQuery(`SELECT\s+name, category, rating, reviews`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"name", "category", "rating", "reviews", "website", "phone", "address",
			"place_id", "source", "disqualified", "disqualify_reason", "has_website",
			"website_score", "rating_score", "review_score", "contact_score",
			"lead_score", "lead_type", "classification_reason",
		}).AddRow(
			"Acme Plumbing", "Plumber", &rating, &reviews, "https://acmeplumbing.com",
			"+15125552671", "123 Main St", "ChIJ-1", "plumbers in Austin TX",
			false, "", true, 20, 20, 20, 15, 75, "HIGH",
			"Website detected (+20); Rating 4.6 (+20); 150 reviews (+20); Phone and address available (+15)",
		))

	got, err := s.ListListings(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme Plumbing", got[0].Name)
	require.NotNil(t, got[0].Rating)
	assert.InDelta(t, 4.6, *got[0].Rating, 0.001)
	assert.Equal(t, model.LeadTypeHigh, got[0].LeadType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailRun_NoError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET error`).
		WithArgs("", "failed", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.FailRun(context.Background(), "run-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
