package models

import "github.com/bikepulse/bikepulse/internal/availability"

// Snapshot is one availability observation as served by the API.
type Snapshot struct {
	Number              int64      `json:"number"`
	BikeStands          *int64     `json:"bike_stands"`
	AvailableBikeStands *int64     `json:"available_bike_stands"`
	AvailableBikes      *int64     `json:"available_bikes"`
	Status              *string    `json:"status"`
	LastUpdate          *Timestamp `json:"last_update"`
	SnapshotTime        Timestamp  `json:"snapshot_time"`
}

// FromSnapshot converts a domain snapshot to its API representation.
func FromSnapshot(s *availability.Snapshot) Snapshot {
	return Snapshot{
		Number:              s.StationID,
		BikeStands:          s.BikeStands,
		AvailableBikeStands: s.AvailableBikeStands,
		AvailableBikes:      s.AvailableBikes,
		Status:              s.Status,
		LastUpdate:          NewTimestamp(s.LastUpdate),
		SnapshotTime:        Timestamp(s.SnapshotTime),
	}
}

// FromSnapshots converts a slice of domain snapshots.
func FromSnapshots(snaps []*availability.Snapshot) []Snapshot {
	out := make([]Snapshot, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, FromSnapshot(s))
	}
	return out
}

// HistorySnapshot is the reduced record shape used by the time-bounded
// history endpoint.
type HistorySnapshot struct {
	Number              int64     `json:"number"`
	AvailableBikes      *int64    `json:"available_bikes"`
	AvailableBikeStands *int64    `json:"available_bike_stands"`
	Status              *string   `json:"status"`
	SnapshotTime        Timestamp `json:"snapshot_time"`
}

// FromHistorySnapshots converts domain snapshots to the reduced history shape.
func FromHistorySnapshots(snaps []*availability.Snapshot) []HistorySnapshot {
	out := make([]HistorySnapshot, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, HistorySnapshot{
			Number:              s.StationID,
			AvailableBikes:      s.AvailableBikes,
			AvailableBikeStands: s.AvailableBikeStands,
			Status:              s.Status,
			SnapshotTime:        Timestamp(s.SnapshotTime),
		})
	}
	return out
}

// PagedHistoryResponse is one page of a station's snapshot history.
type PagedHistoryResponse struct {
	StationNumber int64      `json:"station_number"`
	Page          int        `json:"page"`
	PerPage       int        `json:"per_page"`
	TotalRecords  int64      `json:"total_records"`
	TotalPages    int64      `json:"total_pages"`
	Results       []Snapshot `json:"results"`
}

// FromPagedHistory converts a domain history page.
func FromPagedHistory(p *availability.PagedHistory) PagedHistoryResponse {
	return PagedHistoryResponse{
		StationNumber: p.StationID,
		Page:          p.Page,
		PerPage:       p.PerPage,
		TotalRecords:  p.TotalRecords,
		TotalPages:    p.TotalPages,
		Results:       FromSnapshots(p.Results),
	}
}

// TimeRange echoes the raw bounds of a history request.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// HistoryResponse is the time-bounded history endpoint body.
type HistoryResponse struct {
	StationNumber int64             `json:"station_number"`
	TimeRange     TimeRange         `json:"time_range"`
	Count         int               `json:"count"`
	Limit         int               `json:"limit"`
	Results       []HistorySnapshot `json:"results"`
}

// FromHistory converts a domain history slice.
func FromHistory(h *availability.History) HistoryResponse {
	results := FromHistorySnapshots(h.Results)
	return HistoryResponse{
		StationNumber: h.StationID,
		TimeRange:     TimeRange{Start: h.Start, End: h.End},
		Count:         len(results),
		Limit:         h.Limit,
		Results:       results,
	}
}

// StatsResponse carries collection-wide aggregate statistics.
type StatsResponse struct {
	TotalRecords       int64   `json:"total_records"`
	UniqueStations     int64   `json:"unique_stations"`
	AvgBikesAvailable  float64 `json:"avg_bikes_available"`
	AvgStandsAvailable float64 `json:"avg_stands_available"`
}

// FromStats converts domain aggregate statistics.
func FromStats(s *availability.Stats) StatsResponse {
	return StatsResponse{
		TotalRecords:       s.TotalRecords,
		UniqueStations:     s.UniqueStations,
		AvgBikesAvailable:  s.AvgBikesAvailable,
		AvgStandsAvailable: s.AvgStandsAvailable,
	}
}

// DistinctStationsResponse lists the station numbers with at least one snapshot.
type DistinctStationsResponse struct {
	TotalStations  int     `json:"total_stations"`
	StationNumbers []int64 `json:"station_numbers"`
}

// FieldSummary holds min/max/avg of one availability field. All fields are
// null when every observed sample was null.
type FieldSummary struct {
	Min *int64   `json:"min"`
	Max *int64   `json:"max"`
	Avg *float64 `json:"avg"`
}

// SummaryTimeRange is the observed span of a station's snapshots.
type SummaryTimeRange struct {
	Earliest Timestamp `json:"earliest"`
	Latest   Timestamp `json:"latest"`
}

// SummaryResponse is the per-station aggregate body.
type SummaryResponse struct {
	StationNumber      int64            `json:"station_number"`
	TotalSnapshots     int64            `json:"total_snapshots"`
	TimeRange          SummaryTimeRange `json:"time_range"`
	AvailableBikes     FieldSummary     `json:"available_bikes"`
	AvailableStands    FieldSummary     `json:"available_stands"`
	StatusDistribution map[string]int64 `json:"status_distribution"`
}

// FromSummary converts a domain per-station summary.
func FromSummary(s *availability.Summary) SummaryResponse {
	return SummaryResponse{
		StationNumber:  s.StationID,
		TotalSnapshots: s.TotalSnapshots,
		TimeRange: SummaryTimeRange{
			Earliest: Timestamp(s.Earliest),
			Latest:   Timestamp(s.Latest),
		},
		AvailableBikes:     fieldSummary(s.AvailableBikes),
		AvailableStands:    fieldSummary(s.AvailableStands),
		StatusDistribution: s.StatusDistribution,
	}
}

func fieldSummary(f availability.FieldSummary) FieldSummary {
	return FieldSummary{Min: f.Min, Max: f.Max, Avg: f.Avg}
}

// AvailabilityFilters echoes the applied availability-search filters.
type AvailabilityFilters struct {
	MinBikes int64   `json:"min_bikes"`
	MaxBikes *int64  `json:"max_bikes"`
	Status   *string `json:"status"`
}

// AvailabilitySearchResponse is the availability-search body. An empty result
// set is a valid response with Count zero.
type AvailabilitySearchResponse struct {
	Filters AvailabilityFilters `json:"filters"`
	Count   int                 `json:"count"`
	Results []Snapshot          `json:"results"`
}
