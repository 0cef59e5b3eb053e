package availability

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL availability repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const snapshotColumns = `number, snapshot_time, bike_stands, available_bike_stands, available_bikes, status, last_update`

// Insert persists one snapshot. The repository detects the collision itself:
// the insert is a no-op on conflict and a zero rows-affected count is reported
// as ErrDuplicateSnapshot, leaving the existing row unchanged.
func (r *PostgresRepository) Insert(ctx context.Context, snap *Snapshot) error {
	query := `
		INSERT INTO availability (` + snapshotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (number, snapshot_time) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query,
		snap.StationID,
		snap.SnapshotTime.UTC(),
		snap.BikeStands,
		snap.AvailableBikeStands,
		snap.AvailableBikes,
		snap.Status,
		snap.LastUpdate,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrDuplicateSnapshot
	}

	return nil
}

// ScanByStation retrieves one station's snapshots within the inclusive bounds.
func (r *PostgresRepository) ScanByStation(ctx context.Context, stationID int64, opts ScanOptions) ([]*Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM availability WHERE number = $1`
	args := []interface{}{stationID}

	if opts.From != nil {
		args = append(args, opts.From.UTC())
		query += fmt.Sprintf(" AND snapshot_time >= $%d", len(args))
	}
	if opts.To != nil {
		args = append(args, opts.To.UTC())
		query += fmt.Sprintf(" AND snapshot_time <= $%d", len(args))
	}

	if opts.Ascending {
		query += " ORDER BY snapshot_time ASC"
	} else {
		query += " ORDER BY snapshot_time DESC"
	}

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return r.scanSnapshots(ctx, query, args...)
}

// CountByStation returns the number of snapshots stored for a station.
func (r *PostgresRepository) CountByStation(ctx context.Context, stationID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM availability WHERE number = $1`, stationID,
	).Scan(&count)
	return count, err
}

// ListAll retrieves every snapshot ordered by station then time.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM availability ORDER BY number, snapshot_time`
	return r.scanSnapshots(ctx, query)
}

// DistinctStations returns the sorted IDs of stations with at least one snapshot.
func (r *PostgresRepository) DistinctStations(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT number FROM availability ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// Stats computes aggregate statistics over all snapshots. AVG ignores NULLs,
// matching the non-null-samples-only mean contract.
func (r *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(DISTINCT number),
			COALESCE(AVG(available_bikes), 0),
			COALESCE(AVG(available_bike_stands), 0)
		FROM availability
	`

	var stats Stats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalRecords,
		&stats.UniqueStations,
		&stats.AvgBikesAvailable,
		&stats.AvgStandsAvailable,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// SearchByAvailability retrieves snapshots matching the filter.
func (r *PostgresRepository) SearchByAvailability(ctx context.Context, filter AvailabilityFilter) ([]*Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM availability WHERE available_bikes >= $1`
	args := []interface{}{filter.MinBikes}

	if filter.MaxBikes != nil {
		args = append(args, *filter.MaxBikes)
		query += fmt.Sprintf(" AND available_bikes <= $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status ILIKE '%%' || $%d || '%%'", len(args))
	}

	query += " ORDER BY number, snapshot_time"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return r.scanSnapshots(ctx, query, args...)
}

// scanSnapshots scans all snapshots from a query result.
func (r *PostgresRepository) scanSnapshots(ctx context.Context, query string, args ...interface{}) ([]*Snapshot, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*Snapshot
	for rows.Next() {
		var snap Snapshot
		err := rows.Scan(
			&snap.StationID,
			&snap.SnapshotTime,
			&snap.BikeStands,
			&snap.AvailableBikeStands,
			&snap.AvailableBikes,
			&snap.Status,
			&snap.LastUpdate,
		)
		if err != nil {
			return nil, err
		}
		snap.SnapshotTime = snap.SnapshotTime.UTC()
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
