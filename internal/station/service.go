package station

import (
	"context"

	"github.com/rs/zerolog"
)

// DefaultSearchPerPage is the page size for paged station search when the
// caller does not supply one.
const DefaultSearchPerPage = 10

// Service provides station reference data queries.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new station service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// List returns all known stations.
func (s *Service) List(ctx context.Context) ([]*Station, error) {
	return s.repo.List(ctx)
}

// GetByName returns the station with the given display name.
// Returns ErrStationNotFound when it does not exist.
func (s *Service) GetByName(ctx context.Context, name string) (*Station, error) {
	return s.repo.GetByName(ctx, name)
}

// Search returns stations whose name or address contains the query,
// case-insensitively. Returns ErrNoStationsFound when nothing matches.
func (s *Service) Search(ctx context.Context, query string) ([]*Station, error) {
	stations, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, ErrNoStationsFound
	}
	return stations, nil
}

// PagedSearch returns one page of the stations matching the query, ordered by
// ID. An out-of-range page yields empty results with the totals intact, and a
// query matching nothing is a valid empty page, not an error. The reference
// table is small, so paging slices the full match set rather than pushing
// offsets into the repository.
func (s *Service) PagedSearch(ctx context.Context, query string, page, perPage int) (*PagedSearch, error) {
	if page < 1 {
		return nil, NewValidationError("page", "must be >= 1")
	}
	if perPage < 1 {
		return nil, NewValidationError("per_page", "must be >= 1")
	}

	matches, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	total := int64(len(matches))
	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}

	var results []*Station
	if offset := (page - 1) * perPage; offset < len(matches) {
		end := offset + perPage
		if end > len(matches) {
			end = len(matches)
		}
		results = matches[offset:end]
	}

	return &PagedSearch{
		Query:   query,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		Results: results,
	}, nil
}

// Nearby returns stations whose coordinates fall within [center ± radius].
// The match is a rectangle in coordinate degrees, not a geodesic circle.
// Returns ErrNoStationsFound when nothing matches.
func (s *Service) Nearby(ctx context.Context, lat, lng, radius float64) ([]*Station, error) {
	stations, err := s.repo.SearchNearby(ctx, lat, lng, radius)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, ErrNoStationsFound
	}

	s.logger.Debug().
		Float64("lat", lat).
		Float64("lng", lng).
		Float64("radius", radius).
		Int("matches", len(stations)).
		Msg("nearby station search")

	return stations, nil
}
