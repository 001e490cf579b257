package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/mapline/prospect-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	search     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	stats      TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS listings (
	id                    TEXT PRIMARY KEY,
	run_id                TEXT NOT NULL REFERENCES runs(id),
	name                  TEXT NOT NULL,
	category              TEXT,
	rating                REAL,
	reviews               INTEGER,
	website               TEXT,
	phone                 TEXT,
	address               TEXT,
	place_id              TEXT,
	source                TEXT,
	disqualified          INTEGER NOT NULL DEFAULT 0,
	disqualify_reason     TEXT,
	has_website           INTEGER NOT NULL DEFAULT 0,
	website_score         INTEGER NOT NULL DEFAULT 0,
	rating_score          INTEGER NOT NULL DEFAULT 0,
	review_score          INTEGER NOT NULL DEFAULT 0,
	contact_score         INTEGER NOT NULL DEFAULT 0,
	lead_score            INTEGER NOT NULL DEFAULT 0,
	lead_type             TEXT NOT NULL,
	classification_reason TEXT,
	created_at            DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_search ON runs(search);
CREATE INDEX IF NOT EXISTS idx_listings_run_id ON listings(run_id);
CREATE INDEX IF NOT EXISTS idx_listings_lead_type ON listings(lead_type);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, search string) (*model.CollectionRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, search, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, search, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.CollectionRun{
		ID:        id,
		Search:    search,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, stats *model.RunStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal stats")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET stats = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(statsJSON), string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET error = ?, status = ?, updated_at = ? WHERE id = ?`,
		msg, string(model.RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.CollectionRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, search, status, stats, error, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)

	run, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.CollectionRun, error) {
	query := `SELECT id, search, status, stats, error, created_at, updated_at FROM runs`
	var args []any
	var where []string

	if filter.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, string(filter.Status))
	}
	if filter.Search != "" {
		where = append(where, `search = ?`)
		args = append(args, filter.Search)
	}
	query += buildWhere(where)

	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.CollectionRun
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}

func (s *SQLiteStore) SaveListings(ctx context.Context, runID string, listings []model.ScoredListing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save listings")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO listings (
		id, run_id, name, category, rating, reviews, website, phone, address,
		place_id, source, disqualified, disqualify_reason, has_website,
		website_score, rating_score, review_score, contact_score,
		lead_score, lead_type, classification_reason, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert listing")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	for _, l := range listings {
		_, err := stmt.ExecContext(ctx,
			uuid.New().String(), runID, l.Name, l.Category,
			nullFloat(l.Rating), nullInt(l.ReviewCount),
			l.Website, l.Phone, l.Address, l.PlaceID, l.Source,
			l.Disqualified, l.DisqualifyReason, l.HasWebsite,
			l.WebsiteScore, l.RatingScore, l.ReviewScore, l.ContactScore,
			l.LeadScore, string(l.LeadType), l.ClassificationReason, now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert listing %q", l.Name)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save listings")
}

func (s *SQLiteStore) ListListings(ctx context.Context, runID string) ([]model.ScoredListing, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		name, category, rating, reviews, website, phone, address,
		place_id, source, disqualified, disqualify_reason, has_website,
		website_score, rating_score, review_score, contact_score,
		lead_score, lead_type, classification_reason
	FROM listings WHERE run_id = ? ORDER BY lead_score DESC, name`, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list listings for run %s", runID)
	}
	defer rows.Close() //nolint:errcheck

	var listings []model.ScoredListing
	for rows.Next() {
		l, err := scanListing(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan listing")
		}
		listings = append(listings, *l)
	}
	return listings, eris.Wrap(rows.Err(), "sqlite: list listings")
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %s", kind, id)
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", kind, id)
	}
	return nil
}

func buildWhere(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	out := ` WHERE ` + clauses[0]
	for _, c := range clauses[1:] {
		out += ` AND ` + c
	}
	return out
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// scanRun reads one runs row through the given scan function so QueryRow and
// Query results share the decode path.
func scanRun(scan func(dest ...any) error) (*model.CollectionRun, error) {
	var r model.CollectionRun
	var stats, errMsg sql.NullString

	if err := scan(&r.ID, &r.Search, &r.Status, &stats, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}

	if stats.Valid && stats.String != "" {
		var s model.RunStats
		if err := json.Unmarshal([]byte(stats.String), &s); err != nil {
			return nil, eris.Wrap(err, "unmarshal run stats")
		}
		r.Stats = &s
	}
	if errMsg.Valid {
		r.Error = errMsg.String
	}
	return &r, nil
}

func scanListing(scan func(dest ...any) error) (*model.ScoredListing, error) {
	var l model.ScoredListing
	var rating sql.NullFloat64
	var reviews sql.NullInt64
	var leadType string

	err := scan(
		&l.Name, &l.Category, &rating, &reviews, &l.Website, &l.Phone, &l.Address,
		&l.PlaceID, &l.Source, &l.Disqualified, &l.DisqualifyReason, &l.HasWebsite,
		&l.WebsiteScore, &l.RatingScore, &l.ReviewScore, &l.ContactScore,
		&l.LeadScore, &leadType, &l.ClassificationReason,
	)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		v := rating.Float64
		l.Rating = &v
	}
	if reviews.Valid {
		v := int(reviews.Int64)
		l.ReviewCount = &v
	}
	l.LeadType = model.LeadType(leadType)
	return &l, nil
}
