package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/cityscope/cityscope-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

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

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id            TEXT PRIMARY KEY,
	name          TEXT,
	latitude      DOUBLE PRECISION NOT NULL,
	longitude     DOUBLE PRECISION NOT NULL,
	overall_score DOUBLE PRECISION NOT NULL,
	health_status TEXT NOT NULL,
	data_quality  TEXT NOT NULL,
	indices       JSONB NOT NULL,
	taken_at      TIMESTAMPTZ NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_quality ON snapshots(data_quality);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap *model.CityHealthSnapshot) error {
	indices, err := json.Marshal(snap.Indices)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal indices")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO snapshots (id, name, latitude, longitude, overall_score, health_status, data_quality, indices, taken_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		snap.ID, snap.Location.Name, snap.Location.Latitude, snap.Location.Longitude,
		snap.OverallScore, string(snap.HealthStatus), string(snap.DataQuality),
		indices, snap.Timestamp,
	)
	return eris.Wrap(err, "postgres: insert snapshot")
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, id string) (*model.CityHealthSnapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, latitude, longitude, overall_score, health_status, data_quality, indices, taken_at
		 FROM snapshots WHERE id = $1`, id)
	snap, err := scanPGSnapshot(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: snapshot %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get snapshot")
	}
	return snap, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]model.CityHealthSnapshot, error) {
	query := `SELECT id, name, latitude, longitude, overall_score, health_status, data_quality, indices, taken_at
	          FROM snapshots WHERE TRUE`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Quality != "" {
		query += " AND data_quality = " + arg(string(filter.Quality))
	}
	if !filter.Since.IsZero() {
		query += " AND taken_at >= " + arg(filter.Since)
	}
	query += " ORDER BY taken_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list snapshots")
	}
	defer rows.Close()

	var out []model.CityHealthSnapshot
	for rows.Next() {
		snap, err := scanPGSnapshot(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan snapshot")
		}
		out = append(out, *snap)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate snapshots")
}

func (s *PostgresStore) DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM snapshots WHERE taken_at < $1`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete snapshots")
	}
	return tag.RowsAffected(), nil
}

func scanPGSnapshot(scan func(dest ...any) error) (*model.CityHealthSnapshot, error) {
	var snap model.CityHealthSnapshot
	var health, quality string
	var indicesJSON []byte
	if err := scan(
		&snap.ID, &snap.Location.Name, &snap.Location.Latitude, &snap.Location.Longitude,
		&snap.OverallScore, &health, &quality, &indicesJSON, &snap.Timestamp,
	); err != nil {
		return nil, err
	}
	snap.HealthStatus = model.HealthStatus(health)
	snap.DataQuality = model.SampleQuality(quality)
	if err := json.Unmarshal(indicesJSON, &snap.Indices); err != nil {
		return nil, eris.Wrap(err, "decode indices")
	}
	return &snap, nil
}
