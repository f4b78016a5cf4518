package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityscope/cityscope-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &PostgresStore{pool: mock}, mock
}

func snapshotColumns() []string {
	return []string{"id", "name", "latitude", "longitude", "overall_score", "health_status", "data_quality", "indices", "taken_at"}
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS snapshots`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveSnapshot(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	snap := sampleSnapshot("snap-pg", time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	indices, err := json.Marshal(snap.Indices)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO snapshots`).
		WithArgs(snap.ID, snap.Location.Name, snap.Location.Latitude, snap.Location.Longitude,
			snap.OverallScore, string(snap.HealthStatus), string(snap.DataQuality),
			indices, snap.Timestamp).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveSnapshot(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetSnapshot(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	snap := sampleSnapshot("snap-pg", time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	indices, err := json.Marshal(snap.Indices)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT (.+) FROM snapshots WHERE id = \$1`).
		WithArgs("snap-pg").
		WillReturnRows(pgxmock.NewRows(snapshotColumns()).AddRow(
			snap.ID, snap.Location.Name, snap.Location.Latitude, snap.Location.Longitude,
			snap.OverallScore, string(snap.HealthStatus), string(snap.DataQuality),
			indices, snap.Timestamp,
		))

	got, err := s.GetSnapshot(context.Background(), "snap-pg")
	require.NoError(t, err)
	assert.Equal(t, "snap-pg", got.ID)
	assert.Equal(t, model.HealthGood, got.HealthStatus)
	assert.InDelta(t, 72.25, got.Indices[model.IndexCRI].TotalScore, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetSnapshotNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM snapshots WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetSnapshot(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListSnapshotsWithFilters(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	snap := sampleSnapshot("snap-pg", time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	indices, err := json.Marshal(snap.Indices)
	require.NoError(t, err)
	since := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM snapshots WHERE TRUE AND data_quality = \$1 AND taken_at >= \$2 ORDER BY taken_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("estimated", since, 10, 5).
		WillReturnRows(pgxmock.NewRows(snapshotColumns()).AddRow(
			snap.ID, snap.Location.Name, snap.Location.Latitude, snap.Location.Longitude,
			snap.OverallScore, string(snap.HealthStatus), string(snap.DataQuality),
			indices, snap.Timestamp,
		))

	out, err := s.ListSnapshots(context.Background(), SnapshotFilter{
		Quality: model.QualityEstimated,
		Since:   since,
		Limit:   10,
		Offset:  5,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "snap-pg", out[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListSnapshotsEmpty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM snapshots WHERE TRUE ORDER BY taken_at DESC`).
		WillReturnRows(pgxmock.NewRows(snapshotColumns()))

	out, err := s.ListSnapshots(context.Background(), SnapshotFilter{})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteSnapshotsBefore(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	cutoff := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM snapshots WHERE taken_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := s.DeleteSnapshotsBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
