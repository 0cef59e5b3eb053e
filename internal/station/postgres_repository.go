package station

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL station repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const stationColumns = `number, contract_name, name, address, lat, lng`

// Upsert inserts a station or overwrites its non-identifying fields.
func (r *PostgresRepository) Upsert(ctx context.Context, s *Station) error {
	query := `
		INSERT INTO stations (number, contract_name, name, address, lat, lng)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (number) DO UPDATE SET
			contract_name = EXCLUDED.contract_name,
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng
	`

	_, err := r.pool.Exec(ctx, query, s.ID, s.ContractName, s.Name, s.Address, s.Lat, s.Lng)
	return err
}

// Get retrieves a station by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Station, error) {
	query := `SELECT ` + stationColumns + ` FROM stations WHERE number = $1`
	return r.scanStation(ctx, query, id)
}

// GetByName retrieves a station by exact display name.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*Station, error) {
	query := `SELECT ` + stationColumns + ` FROM stations WHERE name = $1`
	return r.scanStation(ctx, query, name)
}

// scanStation scans a single station from a query result.
func (r *PostgresRepository) scanStation(ctx context.Context, query string, args ...interface{}) (*Station, error) {
	var s Station

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&s.ID,
		&s.ContractName,
		&s.Name,
		&s.Address,
		&s.Lat,
		&s.Lng,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}

	return &s, nil
}

// List retrieves all stations ordered by ID.
func (r *PostgresRepository) List(ctx context.Context) ([]*Station, error) {
	query := `SELECT ` + stationColumns + ` FROM stations ORDER BY number`
	return r.scanStations(ctx, query)
}

// Search retrieves stations matching the query in name or address.
func (r *PostgresRepository) Search(ctx context.Context, query string) ([]*Station, error) {
	sql := `
		SELECT ` + stationColumns + `
		FROM stations
		WHERE name ILIKE '%' || $1 || '%' OR address ILIKE '%' || $1 || '%'
		ORDER BY number
	`
	return r.scanStations(ctx, sql, query)
}

// SearchNearby retrieves stations within the coordinate box [center ± radius].
func (r *PostgresRepository) SearchNearby(ctx context.Context, lat, lng, radius float64) ([]*Station, error) {
	sql := `
		SELECT ` + stationColumns + `
		FROM stations
		WHERE lat BETWEEN $1 AND $2
		  AND lng BETWEEN $3 AND $4
		ORDER BY number
	`
	return r.scanStations(ctx, sql, lat-radius, lat+radius, lng-radius, lng+radius)
}

// scanStations scans all stations from a query result.
func (r *PostgresRepository) scanStations(ctx context.Context, query string, args ...interface{}) ([]*Station, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []*Station
	for rows.Next() {
		var s Station
		err := rows.Scan(
			&s.ID,
			&s.ContractName,
			&s.Name,
			&s.Address,
			&s.Lat,
			&s.Lng,
		)
		if err != nil {
			return nil, err
		}
		stations = append(stations, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stations, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
