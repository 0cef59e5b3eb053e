// Package availability provides the station availability time-series domain.
package availability

import (
	"errors"
	"fmt"
	"time"
)

// Predefined errors for availability operations.
var (
	// ErrDuplicateSnapshot is returned when a snapshot with the same
	// (station, time) key already exists. First write wins; callers on the
	// ingestion path must treat this as non-fatal.
	ErrDuplicateSnapshot = errors.New("duplicate snapshot")

	// ErrNoData is returned when a query matches zero snapshots. Distinct from
	// an out-of-range page of a non-empty result set, which is empty but valid.
	ErrNoData = errors.New("no availability data")
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

// Snapshot is one point-in-time observation of a station's bike and stand
// counts. Keyed by (StationID, SnapshotTime); append-only, never mutated or
// deleted. Any availability field may be nil, meaning unknown.
type Snapshot struct {
	// StationID is the station number this observation belongs to.
	StationID int64

	// SnapshotTime is the UTC time the poller recorded the observation.
	SnapshotTime time.Time

	// BikeStands is the total number of stands at the station.
	BikeStands *int64

	// AvailableBikeStands is the number of free stands.
	AvailableBikeStands *int64

	// AvailableBikes is the number of bikes available for rent.
	AvailableBikes *int64

	// Status is the source-reported station status, e.g. "OPEN" or "CLOSED".
	Status *string

	// LastUpdate is the source-reported last-update time.
	LastUpdate *time.Time
}

// ScanOptions controls a per-station history scan. Time bounds are inclusive;
// a nil bound is unbounded on that side.
type ScanOptions struct {
	From      *time.Time
	To        *time.Time
	Offset    int
	Limit     int
	Ascending bool
}

// AvailabilityFilter selects snapshots by availability and status, combined by
// logical AND.
type AvailabilityFilter struct {
	// MinBikes is the inclusive minimum available-bike count.
	MinBikes int64

	// MaxBikes is the inclusive maximum available-bike count. Nil = unbounded.
	MaxBikes *int64

	// Status is a case-insensitive substring match on the status label.
	// Nil = any status.
	Status *string

	// Limit caps the number of results. Zero or negative means no cap.
	Limit int
}

// Stats are aggregate statistics over the whole snapshot table. Means are
// computed over non-null samples only.
type Stats struct {
	TotalRecords       int64
	UniqueStations     int64
	AvgBikesAvailable  float64
	AvgStandsAvailable float64
}

// FieldSummary holds min/max/avg of one availability field, computed over
// non-null samples. All nil when every sample was null.
type FieldSummary struct {
	Min *int64
	Max *int64
	Avg *float64
}

// Summary is a per-station aggregate over all of its snapshots.
type Summary struct {
	StationID          int64
	TotalSnapshots     int64
	Earliest           time.Time
	Latest             time.Time
	AvailableBikes     FieldSummary
	AvailableStands    FieldSummary
	StatusDistribution map[string]int64
}

// PagedHistory is one page of a station's snapshot history, newest first.
type PagedHistory struct {
	StationID    int64
	Page         int
	PerPage      int
	TotalRecords int64
	TotalPages   int64
	Results      []*Snapshot
}

// History is a time-bounded slice of a station's snapshot history, newest
// first. Start and End echo the raw request bounds.
type History struct {
	StationID int64
	Start     string
	End       string
	Limit     int
	Results   []*Snapshot
}
