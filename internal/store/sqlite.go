package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/cityscope/cityscope-cli/internal/model"
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
CREATE TABLE IF NOT EXISTS snapshots (
	id            TEXT PRIMARY KEY,
	name          TEXT,
	latitude      REAL NOT NULL,
	longitude     REAL NOT NULL,
	overall_score REAL NOT NULL,
	health_status TEXT NOT NULL,
	data_quality  TEXT NOT NULL,
	indices       TEXT NOT NULL,
	taken_at      DATETIME NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_quality ON snapshots(data_quality);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *model.CityHealthSnapshot) error {
	indices, err := json.Marshal(snap.Indices)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal indices")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, latitude, longitude, overall_score, health_status, data_quality, indices, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Location.Name, snap.Location.Latitude, snap.Location.Longitude,
		snap.OverallScore, string(snap.HealthStatus), string(snap.DataQuality),
		string(indices), snap.Timestamp,
	)
	return eris.Wrap(err, "sqlite: insert snapshot")
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (*model.CityHealthSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, latitude, longitude, overall_score, health_status, data_quality, indices, taken_at
		 FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row.Scan)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: snapshot %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get snapshot")
	}
	return snap, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]model.CityHealthSnapshot, error) {
	query := `SELECT id, name, latitude, longitude, overall_score, health_status, data_quality, indices, taken_at
	          FROM snapshots WHERE 1=1`
	var args []any
	if filter.Quality != "" {
		query += " AND data_quality = ?"
		args = append(args, string(filter.Quality))
	}
	if !filter.Since.IsZero() {
		query += " AND taken_at >= ?"
		args = append(args, filter.Since)
	}
	query += " ORDER BY taken_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var out []model.CityHealthSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		out = append(out, *snap)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate snapshots")
}

func (s *SQLiteStore) DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE taken_at < ?`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete snapshots")
	}
	n, err := res.RowsAffected()
	return n, eris.Wrap(err, "sqlite: rows affected")
}

// scanSnapshot decodes one snapshot row via the given scan function, shared
// by the single-row and multi-row paths.
func scanSnapshot(scan func(dest ...any) error) (*model.CityHealthSnapshot, error) {
	var snap model.CityHealthSnapshot
	var health, quality, indicesJSON string
	if err := scan(
		&snap.ID, &snap.Location.Name, &snap.Location.Latitude, &snap.Location.Longitude,
		&snap.OverallScore, &health, &quality, &indicesJSON, &snap.Timestamp,
	); err != nil {
		return nil, err
	}
	snap.HealthStatus = model.HealthStatus(health)
	snap.DataQuality = model.SampleQuality(quality)
	if err := json.Unmarshal([]byte(indicesJSON), &snap.Indices); err != nil {
		return nil, eris.Wrap(err, "decode indices")
	}
	return &snap, nil
}
