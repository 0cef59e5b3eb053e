package station

import "context"

// Repository defines the contract for station reference data access.
type Repository interface {
	// Upsert inserts a station or, when the ID already exists, overwrites its
	// non-identifying fields. Idempotent; never creates duplicates.
	Upsert(ctx context.Context, s *Station) error

	// Get retrieves a station by ID.
	Get(ctx context.Context, id int64) (*Station, error)

	// GetByName retrieves a station by exact display name.
	GetByName(ctx context.Context, name string) (*Station, error)

	// List retrieves all stations ordered by ID.
	List(ctx context.Context) ([]*Station, error)

	// Search retrieves stations whose name or address contains the query,
	// case-insensitively, ordered by ID.
	Search(ctx context.Context, query string) ([]*Station, error)

	// SearchNearby retrieves stations whose latitude and longitude each fall
	// within [center ± radius], ordered by ID.
	SearchNearby(ctx context.Context, lat, lng, radius float64) ([]*Station, error)
}
