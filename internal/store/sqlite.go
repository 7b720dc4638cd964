package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/agrimitra/mandi-cli/internal/model"
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
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	state        TEXT NOT NULL DEFAULT '',
	record_count INTEGER NOT NULL,
	fetched_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS price_records (
	id          TEXT PRIMARY KEY,
	snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	commodity   TEXT NOT NULL,
	variety     TEXT NOT NULL DEFAULT '',
	market      TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL DEFAULT '',
	district    TEXT NOT NULL DEFAULT '',
	price       REAL NOT NULL,
	min_price   REAL NOT NULL,
	max_price   REAL NOT NULL,
	unit        TEXT NOT NULL,
	price_date  DATETIME NOT NULL,
	trend       TEXT NOT NULL,
	change      REAL NOT NULL,
	provenance  TEXT NOT NULL,
	fetched_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_fetched_at ON snapshots(fetched_at);
CREATE INDEX IF NOT EXISTS idx_price_records_snapshot_id ON price_records(snapshot_id);
CREATE INDEX IF NOT EXISTS idx_price_records_commodity ON price_records(commodity);
CREATE INDEX IF NOT EXISTS idx_price_records_state ON price_records(state);
CREATE INDEX IF NOT EXISTS idx_price_records_fetched_at ON price_records(fetched_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, state string, result *model.AcquisitionResult) (*Snapshot, error) {
	if result == nil {
		return nil, eris.New("sqlite: nil result")
	}

	snap := &Snapshot{
		ID:          uuid.New().String(),
		Source:      result.Source,
		State:       state,
		RecordCount: len(result.Records),
		FetchedAt:   result.FetchedAt.UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin snapshot tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, source, state, record_count, fetched_at) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.Source, snap.State, snap.RecordCount, snap.FetchedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert snapshot")
	}

	for _, r := range result.Records {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO price_records
			 (id, snapshot_id, commodity, variety, market, state, district,
			  price, min_price, max_price, unit, price_date, trend, change, provenance, fetched_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), snap.ID, r.Commodity, r.Variety, r.Market, r.State, r.District,
			r.Price, r.MinPrice, r.MaxPrice, r.Unit, r.Date.UTC(), string(r.Trend), r.Change,
			string(r.Provenance), r.FetchedAt.UTC(),
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert record for snapshot %s", snap.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit snapshot")
	}
	return snap, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, state, record_count, fetched_at FROM snapshots
		 ORDER BY fetched_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var sn Snapshot
		if err := rows.Scan(&sn.ID, &sn.Source, &sn.State, &sn.RecordCount, &sn.FetchedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		snaps = append(snaps, sn)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: list snapshots iterate")
}

func (s *SQLiteStore) History(ctx context.Context, filter HistoryFilter) ([]model.NormalizedPriceRecord, error) {
	query := `SELECT commodity, variety, market, state, district,
	                 price, min_price, max_price, unit, price_date, trend, change, provenance, fetched_at
	          FROM price_records WHERE 1=1`
	var args []any

	if filter.State != "" {
		query += ` AND state = ?`
		args = append(args, filter.State)
	}
	if filter.District != "" {
		query += ` AND district = ?`
		args = append(args, filter.District)
	}
	if filter.Commodity != "" {
		query += ` AND commodity = ?`
		args = append(args, filter.Commodity)
	}
	if filter.Market != "" {
		query += ` AND market = ?`
		args = append(args, filter.Market)
	}
	if !filter.Since.IsZero() {
		query += ` AND fetched_at >= ?`
		args = append(args, filter.Since.UTC())
	}
	query += ` ORDER BY fetched_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query history")
	}
	defer rows.Close()

	var records []model.NormalizedPriceRecord
	for rows.Next() {
		var r model.NormalizedPriceRecord
		var trend, provenance string
		err := rows.Scan(&r.Commodity, &r.Variety, &r.Market, &r.State, &r.District,
			&r.Price, &r.MinPrice, &r.MaxPrice, &r.Unit, &r.Date, &trend, &r.Change,
			&provenance, &r.FetchedAt)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan history record")
		}
		r.Trend = model.Trend(trend)
		r.Provenance = model.Provenance(provenance)
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: history iterate")
}

func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE fetched_at < ?`,
		before.UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune snapshots")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune rows affected")
	}
	return int(n), nil
}
