package availability

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu sync.RWMutex

	// snapshots maps station ID to snapshots keyed by UnixNano of the
	// snapshot time. The nested key carries the composite-key uniqueness.
	snapshots map[int64]map[int64]*Snapshot
}

// NewInMemoryRepository creates a new in-memory availability repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		snapshots: make(map[int64]map[int64]*Snapshot),
	}
}

// Insert persists one snapshot, rejecting duplicate (station, time) keys.
func (r *InMemoryRepository) Insert(_ context.Context, snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byTime, ok := r.snapshots[snap.StationID]
	if !ok {
		byTime = make(map[int64]*Snapshot)
		r.snapshots[snap.StationID] = byTime
	}

	key := snap.SnapshotTime.UTC().UnixNano()
	if _, exists := byTime[key]; exists {
		return ErrDuplicateSnapshot
	}

	cpy := *snap
	cpy.SnapshotTime = snap.SnapshotTime.UTC()
	byTime[key] = &cpy
	return nil
}

// ScanByStation retrieves one station's snapshots within the inclusive bounds.
func (r *InMemoryRepository) ScanByStation(_ context.Context, stationID int64, opts ScanOptions) ([]*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*Snapshot
	for _, snap := range r.snapshots[stationID] {
		if opts.From != nil && snap.SnapshotTime.Before(opts.From.UTC()) {
			continue
		}
		if opts.To != nil && snap.SnapshotTime.After(opts.To.UTC()) {
			continue
		}
		cpy := *snap
		results = append(results, &cpy)
	}

	sort.Slice(results, func(i, j int) bool {
		if opts.Ascending {
			return results[i].SnapshotTime.Before(results[j].SnapshotTime)
		}
		return results[i].SnapshotTime.After(results[j].SnapshotTime)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(results) {
			return nil, nil
		}
		results = results[opts.Offset:]
	}
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}

// CountByStation returns the number of snapshots stored for a station.
func (r *InMemoryRepository) CountByStation(_ context.Context, stationID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.snapshots[stationID])), nil
}

// ListAll retrieves every snapshot ordered by station then time.
func (r *InMemoryRepository) ListAll(_ context.Context) ([]*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*Snapshot
	for _, byTime := range r.snapshots {
		for _, snap := range byTime {
			cpy := *snap
			results = append(results, &cpy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].StationID != results[j].StationID {
			return results[i].StationID < results[j].StationID
		}
		return results[i].SnapshotTime.Before(results[j].SnapshotTime)
	})

	return results, nil
}

// DistinctStations returns the sorted IDs of stations with at least one snapshot.
func (r *InMemoryRepository) DistinctStations(_ context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []int64
	for id, byTime := range r.snapshots {
		if len(byTime) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Stats computes aggregate statistics over all snapshots.
func (r *InMemoryRepository) Stats(_ context.Context) (*Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &Stats{}
	var bikeSum, bikeCount, standSum, standCount int64

	for _, byTime := range r.snapshots {
		if len(byTime) > 0 {
			stats.UniqueStations++
		}
		for _, snap := range byTime {
			stats.TotalRecords++
			if snap.AvailableBikes != nil {
				bikeSum += *snap.AvailableBikes
				bikeCount++
			}
			if snap.AvailableBikeStands != nil {
				standSum += *snap.AvailableBikeStands
				standCount++
			}
		}
	}

	if bikeCount > 0 {
		stats.AvgBikesAvailable = float64(bikeSum) / float64(bikeCount)
	}
	if standCount > 0 {
		stats.AvgStandsAvailable = float64(standSum) / float64(standCount)
	}

	return stats, nil
}

// SearchByAvailability retrieves snapshots matching the filter.
func (r *InMemoryRepository) SearchByAvailability(_ context.Context, filter AvailabilityFilter) ([]*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var status string
	if filter.Status != nil {
		status = strings.ToLower(*filter.Status)
	}

	var results []*Snapshot
	for _, byTime := range r.snapshots {
		for _, snap := range byTime {
			if snap.AvailableBikes == nil || *snap.AvailableBikes < filter.MinBikes {
				continue
			}
			if filter.MaxBikes != nil && *snap.AvailableBikes > *filter.MaxBikes {
				continue
			}
			if status != "" {
				if snap.Status == nil || !strings.Contains(strings.ToLower(*snap.Status), status) {
					continue
				}
			}
			cpy := *snap
			results = append(results, &cpy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].StationID != results[j].StationID {
			return results[i].StationID < results[j].StationID
		}
		return results[i].SnapshotTime.Before(results[j].SnapshotTime)
	})

	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}

	return results, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
