// Package station provides the bike station reference data domain.
package station

import (
	"errors"
	"fmt"
)

// Predefined errors for station operations.
var (
	// ErrStationNotFound is returned when a station does not exist.
	ErrStationNotFound = errors.New("station not found")

	// ErrNoStationsFound is returned when a search matches no stations.
	ErrNoStationsFound = errors.New("no stations found")
)

// ValidationError reports a malformed query parameter. It is surfaced to the
// caller before any repository access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PagedSearch is one page of a station text search result set. Unlike the
// plain search, an empty result set is valid: zero total, zero pages.
type PagedSearch struct {
	Query   string
	Page    int
	PerPage int
	Total   int64
	Pages   int64
	Results []*Station
}

// Station is a bike station reference record. Created once per station when
// first observed by the poller or pre-seeded out of band; metadata is corrected
// rarely and rows are never deleted in normal operation.
type Station struct {
	// ID is the station number assigned by the feed operator.
	ID int64

	// ContractName is the contract/region label, e.g. "dublin".
	ContractName string

	// Name is the display name of the station.
	Name string

	// Address is the street address.
	Address string

	// Lat and Lng are the station coordinates. Nil when unknown.
	Lat *float64
	Lng *float64
}

// InBox reports whether the station's coordinates each fall within
// [center ± radius]. Radius is a coordinate-degree half-width, not a physical
// distance; stations without coordinates never match.
func (s *Station) InBox(lat, lng, radius float64) bool {
	if s.Lat == nil || s.Lng == nil {
		return false
	}
	return *s.Lat >= lat-radius && *s.Lat <= lat+radius &&
		*s.Lng >= lng-radius && *s.Lng <= lng+radius
}
