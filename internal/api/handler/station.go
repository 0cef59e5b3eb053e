package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bikepulse/bikepulse/internal/api/models"
	"github.com/bikepulse/bikepulse/internal/api/response"
	"github.com/bikepulse/bikepulse/internal/station"
)

// StationHandler handles station reference endpoints.
type StationHandler struct {
	stations *station.Service
}

// NewStationHandler creates a new StationHandler.
func NewStationHandler(stations *station.Service) *StationHandler {
	return &StationHandler{stations: stations}
}

// ListStations handles GET /v1/stations - all station records.
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.stations.List(r.Context())
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.FromStations(stations))
}

// GetStationByName handles GET /v1/stations/{name} - one station by exact name.
func (h *StationHandler) GetStationByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	st, err := h.stations.GetByName(r.Context(), name)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.FromStation(st))
}
