package handler

import (
	"net/http"
	"strconv"

	"github.com/bikepulse/bikepulse/internal/api/models"
	"github.com/bikepulse/bikepulse/internal/api/response"
	"github.com/bikepulse/bikepulse/internal/availability"
	"github.com/bikepulse/bikepulse/internal/station"
)

// DefaultNearbyRadius is the coordinate-degree half-width applied when the
// nearby search omits ?radius. Roughly one kilometre at Dublin's latitude.
const DefaultNearbyRadius = 0.01

// SearchHandler handles station and availability search endpoints.
type SearchHandler struct {
	stations     *station.Service
	availability *availability.Service
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(stations *station.Service, avail *availability.Service) *SearchHandler {
	return &SearchHandler{stations: stations, availability: avail}
}

// SearchStations handles GET /v1/search?query= - case-insensitive substring
// search over station names and addresses.
func (h *SearchHandler) SearchStations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		response.BadRequest(w, r, "invalid query parameter", []models.FieldError{
			{Field: "query", Message: "is required"},
		})
		return
	}

	results, err := h.stations.Search(r.Context(), query)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.StationSearchResponse{
		Query:   query,
		Count:   len(results),
		Results: models.FromStations(results),
	})
}

// PagedStationSearch handles GET /v1/search/stations - the same substring
// search, paged via ?page and ?per_page. An empty match set is a valid 200.
func (h *SearchHandler) PagedStationSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		response.BadRequest(w, r, "invalid query parameter", []models.FieldError{
			{Field: "query", Message: "is required"},
		})
		return
	}

	page, err := intQuery(r, "page", 1)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	perPage, err := intQuery(r, "per_page", station.DefaultSearchPerPage)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	paged, err := h.stations.PagedSearch(r.Context(), query, page, perPage)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.FromPagedSearch(paged))
}

// SearchAvailability handles GET /v1/search/availability - numeric range
// search over snapshots via ?min_bikes, ?max_bikes, ?status and ?limit.
// An empty result set is a valid 200 with count zero.
func (h *SearchHandler) SearchAvailability(w http.ResponseWriter, r *http.Request) {
	filter := availability.AvailabilityFilter{}

	minBikes, err := int64Query(r, "min_bikes", 0)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	filter.MinBikes = minBikes

	if raw := r.URL.Query().Get("max_bikes"); raw != "" {
		maxBikes, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.DomainError(w, r, availability.NewValidationError("max_bikes", "must be an integer"))
			return
		}
		filter.MaxBikes = &maxBikes
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}

	limit, err := intQuery(r, "limit", availability.DefaultSearchLimit)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	filter.Limit = limit

	results, err := h.availability.Search(r.Context(), filter)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.AvailabilitySearchResponse{
		Filters: models.AvailabilityFilters{
			MinBikes: filter.MinBikes,
			MaxBikes: filter.MaxBikes,
			Status:   filter.Status,
		},
		Count:   len(results),
		Results: models.FromSnapshots(results),
	})
}

// Nearby handles GET /v1/search/nearby - bounding-box station search via
// ?lat, ?lng and ?radius. The radius is a coordinate-degree half-width; the
// match area is a rectangle, not a geodesic circle.
func (h *SearchHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	lat, err := requiredFloatQuery(r, "lat")
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	lng, err := requiredFloatQuery(r, "lng")
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	radius := DefaultNearbyRadius
	if raw := r.URL.Query().Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			response.DomainError(w, r, availability.NewValidationError("radius", "must be a number"))
			return
		}
	}

	results, err := h.stations.Nearby(r.Context(), lat, lng, radius)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NearbyResponse{
		Center:  models.Point{Lat: lat, Lng: lng},
		Radius:  radius,
		Count:   len(results),
		Results: models.FromStations(results),
	})
}

// int64Query parses an optional int64 query parameter.
func int64Query(r *http.Request, name string, def int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, availability.NewValidationError(name, "must be an integer")
	}
	return v, nil
}

// requiredFloatQuery parses a required float query parameter.
func requiredFloatQuery(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, availability.NewValidationError(name, "is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, availability.NewValidationError(name, "must be a number")
	}
	return v, nil
}
