// Package store persists city health snapshots so needs aggregation and the
// serve API can work over history instead of refetching providers.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/cityscope/cityscope-cli/internal/model"
)

// SnapshotFilter specifies criteria for listing snapshots.
type SnapshotFilter struct {
	Quality model.SampleQuality `json:"quality,omitempty"`
	Since   time.Time           `json:"since,omitempty"`
	Limit   int                 `json:"limit,omitempty"`
	Offset  int                 `json:"offset,omitempty"`
}

// Store defines the persistence interface for snapshots.
type Store interface {
	SaveSnapshot(ctx context.Context, snap *model.CityHealthSnapshot) error
	GetSnapshot(ctx context.Context, id string) (*model.CityHealthSnapshot, error)
	ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]model.CityHealthSnapshot, error)
	DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		if dsn == "" {
			dsn = "cityscope.db"
		}
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
