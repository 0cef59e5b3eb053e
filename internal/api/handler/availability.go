package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bikepulse/bikepulse/internal/api/models"
	"github.com/bikepulse/bikepulse/internal/api/response"
	"github.com/bikepulse/bikepulse/internal/availability"
)

// AvailabilityHandler handles availability time-series endpoints.
type AvailabilityHandler struct {
	availability *availability.Service
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(svc *availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{availability: svc}
}

// ListAvailability handles GET /v1/availability - all snapshot records.
func (h *AvailabilityHandler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.availability.ListAll(r.Context())
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.FromSnapshots(snaps))
}

// DistinctStations handles GET /v1/availability/stations - station numbers
// with at least one recorded snapshot.
func (h *AvailabilityHandler) DistinctStations(w http.ResponseWriter, r *http.Request) {
	ids, err := h.availability.DistinctStations(r.Context())
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.DistinctStationsResponse{
		TotalStations:  len(ids),
		StationNumbers: ids,
	})
}

// Stats handles GET /v1/availability/stats - collection-wide aggregates.
func (h *AvailabilityHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.availability.Stats(r.Context())
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.FromStats(stats))
}

// PagedHistory handles GET /v1/availability/{stationID} - a station's history,
// newest first, paged via ?page and ?per_page.
func (h *AvailabilityHandler) PagedHistory(w http.ResponseWriter, r *http.Request) {
	stationID, err := stationIDParam(r)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	page, err := intQuery(r, "page", 1)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	perPage, err := intQuery(r, "per_page", availability.DefaultPerPage)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	paged, err := h.availability.PagedHistory(r.Context(), stationID, page, perPage)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.FromPagedHistory(paged))
}

// History handles GET /v1/availability/{stationID}/history - a time-bounded
// slice of a station's history via ?start_time, ?end_time and ?limit.
func (h *AvailabilityHandler) History(w http.ResponseWriter, r *http.Request) {
	stationID, err := stationIDParam(r)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	limit, err := intQuery(r, "limit", availability.DefaultHistoryLimit)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	start := r.URL.Query().Get("start_time")
	end := r.URL.Query().Get("end_time")

	history, err := h.availability.History(r.Context(), stationID, start, end, limit)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.FromHistory(history))
}

// Summary handles GET /v1/availability/{stationID}/summary - per-station
// aggregate statistics.
func (h *AvailabilityHandler) Summary(w http.ResponseWriter, r *http.Request) {
	stationID, err := stationIDParam(r)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}

	summary, err := h.availability.Summary(r.Context(), stationID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.FromSummary(summary))
}

// stationIDParam parses the {stationID} URL parameter.
func stationIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "stationID")
	stationID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, availability.NewValidationError("station_id", "must be an integer")
	}
	return stationID, nil
}

// intQuery parses an optional integer query parameter.
func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, availability.NewValidationError(name, "must be an integer")
	}
	return v, nil
}
