package availability

import "context"

// Repository defines the contract for the availability time-series store.
// The poller is the sole writer; all read methods observe committed writes and
// are restartable (each call re-reads current state).
type Repository interface {
	// Insert persists one snapshot. Returns ErrDuplicateSnapshot when the
	// (station, time) key already exists; the existing row is left unchanged.
	Insert(ctx context.Context, snap *Snapshot) error

	// ScanByStation retrieves one station's snapshots filtered by inclusive
	// time bounds, ordered by snapshot time (descending unless opts.Ascending).
	ScanByStation(ctx context.Context, stationID int64, opts ScanOptions) ([]*Snapshot, error)

	// CountByStation returns the number of snapshots stored for a station.
	CountByStation(ctx context.Context, stationID int64) (int64, error)

	// ListAll retrieves every snapshot ordered by station then time.
	ListAll(ctx context.Context) ([]*Snapshot, error)

	// DistinctStations returns the sorted IDs of stations that have at least
	// one snapshot.
	DistinctStations(ctx context.Context) ([]int64, error)

	// Stats computes aggregate statistics over the whole table.
	Stats(ctx context.Context) (*Stats, error)

	// SearchByAvailability retrieves snapshots matching the filter, all
	// conditions ANDed, capped by the filter's limit.
	SearchByAvailability(ctx context.Context, filter AvailabilityFilter) ([]*Snapshot, error)
}
