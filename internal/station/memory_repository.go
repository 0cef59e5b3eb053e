package station

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	stations map[int64]*Station
}

// NewInMemoryRepository creates a new in-memory station repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		stations: make(map[int64]*Station),
	}
}

// Upsert inserts or overwrites a station by ID.
func (r *InMemoryRepository) Upsert(_ context.Context, s *Station) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *s
	r.stations[s.ID] = &cpy
	return nil
}

// Get retrieves a station by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stations[id]
	if !ok {
		return nil, ErrStationNotFound
	}

	cpy := *s
	return &cpy, nil
}

// GetByName retrieves a station by exact display name.
func (r *InMemoryRepository) GetByName(_ context.Context, name string) (*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.stations {
		if s.Name == name {
			cpy := *s
			return &cpy, nil
		}
	}
	return nil, ErrStationNotFound
}

// List retrieves all stations ordered by ID.
func (r *InMemoryRepository) List(_ context.Context) ([]*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(*Station) bool { return true }), nil
}

// Search retrieves stations matching the query in name or address.
func (r *InMemoryRepository) Search(_ context.Context, query string) ([]*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	return r.collect(func(s *Station) bool {
		return strings.Contains(strings.ToLower(s.Name), q) ||
			strings.Contains(strings.ToLower(s.Address), q)
	}), nil
}

// SearchNearby retrieves stations within the coordinate box [center ± radius].
func (r *InMemoryRepository) SearchNearby(_ context.Context, lat, lng, radius float64) ([]*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(s *Station) bool {
		return s.InBox(lat, lng, radius)
	}), nil
}

// collect returns copies of all stations matching the predicate, ordered by ID.
// Callers must hold at least a read lock.
func (r *InMemoryRepository) collect(match func(*Station) bool) []*Station {
	var stations []*Station
	for _, s := range r.stations {
		if match(s) {
			cpy := *s
			stations = append(stations, &cpy)
		}
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].ID < stations[j].ID })
	return stations
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
