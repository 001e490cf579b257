package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/mapline/prospect-cli/internal/db"
	"github.com/mapline/prospect-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":        `INSERT INTO runs (id, search, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"update_run_status": `UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
	"complete_run":      `UPDATE runs SET stats = $1, status = $2, updated_at = $3 WHERE id = $4`,
	"fail_run":          `UPDATE runs SET error = $1, status = $2, updated_at = $3 WHERE id = $4`,
	"get_run":           `SELECT id, search, status, stats, error, created_at, updated_at FROM runs WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	search     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	stats      JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS listings (
	id                    TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id                TEXT NOT NULL REFERENCES runs(id),
	name                  TEXT NOT NULL,
	category              TEXT,
	rating                DOUBLE PRECISION,
	reviews               INTEGER,
	website               TEXT,
	phone                 TEXT,
	address               TEXT,
	place_id              TEXT,
	source                TEXT,
	disqualified          BOOLEAN NOT NULL DEFAULT false,
	disqualify_reason     TEXT,
	has_website           BOOLEAN NOT NULL DEFAULT false,
	website_score         INTEGER NOT NULL DEFAULT 0,
	rating_score          INTEGER NOT NULL DEFAULT 0,
	review_score          INTEGER NOT NULL DEFAULT 0,
	contact_score         INTEGER NOT NULL DEFAULT 0,
	lead_score            INTEGER NOT NULL DEFAULT 0,
	lead_type             TEXT NOT NULL,
	classification_reason TEXT,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_search ON runs(search);
CREATE INDEX IF NOT EXISTS idx_listings_run_id ON listings(run_id);
CREATE INDEX IF NOT EXISTS idx_listings_lead_type ON listings(lead_type);
CREATE INDEX IF NOT EXISTS idx_listings_lead_score ON listings(lead_score DESC);
`

// listingColumns is the COPY column order for bulk listing inserts.
var listingColumns = []string{
	"id", "run_id", "name", "category", "rating", "reviews", "website",
	"phone", "address", "place_id", "source", "disqualified",
	"disqualify_reason", "has_website", "website_score", "rating_score",
	"review_score", "contact_score", "lead_score", "lead_type",
	"classification_reason", "created_at",
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, search string) (*model.CollectionRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, search, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, search, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.CollectionRun{
		ID:        id,
		Search:    search,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, stats *model.RunStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal stats")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET stats = $1, status = $2, updated_at = $3 WHERE id = $4`,
		statsJSON, string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET error = $1, status = $2, updated_at = $3 WHERE id = $4`,
		msg, string(model.RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.CollectionRun, error) {
	var r model.CollectionRun
	var stats []byte
	var errMsg *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, search, status, stats, error, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Search, &r.Status, &stats, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: get run: not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if len(stats) > 0 {
		var st model.RunStats
		if err := json.Unmarshal(stats, &st); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal run stats")
		}
		r.Stats = &st
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.CollectionRun, error) {
	query := `SELECT id, search, status, stats, error, created_at, updated_at FROM runs`
	var args []any
	var where []string

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, `status = $1`)
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		where = append(where, placeholderEq("search", len(args)))
	}
	query += buildWhere(where)
	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += placeholderClause(" LIMIT", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += placeholderClause(" OFFSET", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.CollectionRun
	for rows.Next() {
		var r model.CollectionRun
		var stats []byte
		var errMsg *string

		if err := rows.Scan(&r.ID, &r.Search, &r.Status, &stats, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if len(stats) > 0 {
			var st model.RunStats
			if err := json.Unmarshal(stats, &st); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal run stats")
			}
			r.Stats = &st
		}
		if errMsg != nil {
			r.Error = *errMsg
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs")
}

func (s *PostgresStore) SaveListings(ctx context.Context, runID string, listings []model.ScoredListing) error {
	if len(listings) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, []any{
			uuid.New().String(), runID, l.Name, l.Category,
			l.Rating, l.ReviewCount, l.Website, l.Phone, l.Address,
			l.PlaceID, l.Source, l.Disqualified, l.DisqualifyReason,
			l.HasWebsite, l.WebsiteScore, l.RatingScore, l.ReviewScore,
			l.ContactScore, l.LeadScore, string(l.LeadType),
			l.ClassificationReason, now,
		})
	}

	if _, err := db.CopyFrom(ctx, s.pool, "listings", listingColumns, rows); err != nil {
		return eris.Wrapf(err, "postgres: save listings for run %s", runID)
	}
	return nil
}

func (s *PostgresStore) ListListings(ctx context.Context, runID string) ([]model.ScoredListing, error) {
	rows, err := s.pool.Query(ctx, `SELECT
		name, category, rating, reviews, website, phone, address,
		place_id, source, disqualified, disqualify_reason, has_website,
		website_score, rating_score, review_score, contact_score,
		lead_score, lead_type, classification_reason
	FROM listings WHERE run_id = $1 ORDER BY lead_score DESC, name`, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list listings for run %s", runID)
	}
	defer rows.Close()

	var listings []model.ScoredListing
	for rows.Next() {
		var l model.ScoredListing
		var leadType string

		err := rows.Scan(
			&l.Name, &l.Category, &l.Rating, &l.ReviewCount, &l.Website,
			&l.Phone, &l.Address, &l.PlaceID, &l.Source, &l.Disqualified,
			&l.DisqualifyReason, &l.HasWebsite, &l.WebsiteScore,
			&l.RatingScore, &l.ReviewScore, &l.ContactScore,
			&l.LeadScore, &leadType, &l.ClassificationReason,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan listing")
		}
		l.LeadType = model.LeadType(leadType)
		listings = append(listings, l)
	}
	return listings, eris.Wrap(rows.Err(), "postgres: list listings")
}

func placeholderEq(col string, n int) string {
	return col + " = $" + strconv.Itoa(n)
}

func placeholderClause(kw string, n int) string {
	return kw + " $" + strconv.Itoa(n)
}
