package availability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Default query limits, matching the historical API behaviour.
const (
	DefaultPerPage      = 50
	DefaultHistoryLimit = 100
	DefaultSearchLimit  = 20
)

// historyTimeLayouts are the accepted formats for start_time/end_time bounds.
// Bounds without a zone are interpreted as UTC.
var historyTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Service is the read-only query engine over the availability store.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new availability query service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ListAll returns every stored snapshot.
func (s *Service) ListAll(ctx context.Context) ([]*Snapshot, error) {
	return s.repo.ListAll(ctx)
}

// DistinctStations returns the sorted IDs of stations with recorded snapshots.
func (s *Service) DistinctStations(ctx context.Context) ([]int64, error) {
	return s.repo.DistinctStations(ctx)
}

// PagedHistory returns page `page` of a station's history, newest first.
// An out-of-range page yields empty results, not an error; a station with no
// snapshots at all yields ErrNoData.
func (s *Service) PagedHistory(ctx context.Context, stationID int64, page, perPage int) (*PagedHistory, error) {
	if page < 1 {
		return nil, NewValidationError("page", "must be >= 1")
	}
	if perPage < 1 {
		return nil, NewValidationError("per_page", "must be >= 1")
	}

	total, err := s.repo.CountByStation(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrNoData
	}

	results, err := s.repo.ScanByStation(ctx, stationID, ScanOptions{
		Offset: (page - 1) * perPage,
		Limit:  perPage,
	})
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		totalPages++
	}

	return &PagedHistory{
		StationID:    stationID,
		Page:         page,
		PerPage:      perPage,
		TotalRecords: total,
		TotalPages:   totalPages,
		Results:      results,
	}, nil
}

// History returns a station's snapshots within the inclusive [start, end]
// bounds, newest first, capped by limit. Bounds are optional ISO-8601 strings;
// a malformed bound is rejected with a validation error naming the offending
// field. Zero matching rows yield ErrNoData.
func (s *Service) History(ctx context.Context, stationID int64, start, end string, limit int) (*History, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	opts := ScanOptions{Limit: limit}

	if start != "" {
		from, err := parseHistoryTime(start)
		if err != nil {
			return nil, NewValidationError("start_time", "use ISO format: 2026-02-03T10:00:00")
		}
		opts.From = &from
	}
	if end != "" {
		to, err := parseHistoryTime(end)
		if err != nil {
			return nil, NewValidationError("end_time", "use ISO format: 2026-02-03T10:00:00")
		}
		opts.To = &to
	}

	results, err := s.repo.ScanByStation(ctx, stationID, opts)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoData
	}

	return &History{
		StationID: stationID,
		Start:     start,
		End:       end,
		Limit:     limit,
		Results:   results,
	}, nil
}

// Stats returns aggregate statistics over the whole snapshot table.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// Summary computes a per-station aggregate over all of its snapshots: time
// range, min/max/avg of bikes and stands over non-null samples, and a status
// histogram. A station with zero snapshots yields ErrNoData; a station whose
// samples are all null yields nil min/max/avg for that field, not zero.
func (s *Service) Summary(ctx context.Context, stationID int64) (*Summary, error) {
	snaps, err := s.repo.ScanByStation(ctx, stationID, ScanOptions{Ascending: true})
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, ErrNoData
	}

	summary := &Summary{
		StationID:          stationID,
		TotalSnapshots:     int64(len(snaps)),
		Earliest:           snaps[0].SnapshotTime,
		Latest:             snaps[len(snaps)-1].SnapshotTime,
		StatusDistribution: make(map[string]int64),
	}

	var bikes, stands fieldAccumulator
	for _, snap := range snaps {
		bikes.add(snap.AvailableBikes)
		stands.add(snap.AvailableBikeStands)
		if snap.Status != nil {
			summary.StatusDistribution[*snap.Status]++
		}
	}
	summary.AvailableBikes = bikes.summary()
	summary.AvailableStands = stands.summary()

	return summary, nil
}

// Search returns snapshots matching the availability filter. An empty result
// here is valid, not an error: the filter was well-formed and matched nothing.
func (s *Service) Search(ctx context.Context, filter AvailabilityFilter) ([]*Snapshot, error) {
	if filter.MinBikes < 0 {
		return nil, NewValidationError("min_bikes", "must be >= 0")
	}
	if filter.MaxBikes != nil && *filter.MaxBikes < filter.MinBikes {
		return nil, NewValidationError("max_bikes", "must be >= min_bikes")
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultSearchLimit
	}

	return s.repo.SearchByAvailability(ctx, filter)
}

// fieldAccumulator folds non-null samples of one availability field.
type fieldAccumulator struct {
	min, max, sum int64
	count         int64
}

func (a *fieldAccumulator) add(v *int64) {
	if v == nil {
		return
	}
	if a.count == 0 || *v < a.min {
		a.min = *v
	}
	if a.count == 0 || *v > a.max {
		a.max = *v
	}
	a.sum += *v
	a.count++
}

func (a *fieldAccumulator) summary() FieldSummary {
	if a.count == 0 {
		return FieldSummary{}
	}
	minV, maxV := a.min, a.max
	avg := float64(a.sum) / float64(a.count)
	return FieldSummary{Min: &minV, Max: &maxV, Avg: &avg}
}

// parseHistoryTime parses an ISO-8601 bound, with or without a zone offset.
func parseHistoryTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range historyTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
