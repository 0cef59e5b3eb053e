package models

import "github.com/bikepulse/bikepulse/internal/station"

// Station is one station reference record as served by the API.
type Station struct {
	Number       int64    `json:"number"`
	ContractName string   `json:"contract_name"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
}

// FromStation converts a domain station to its API representation.
func FromStation(s *station.Station) Station {
	return Station{
		Number:       s.ID,
		ContractName: s.ContractName,
		Name:         s.Name,
		Address:      s.Address,
		Lat:          s.Lat,
		Lng:          s.Lng,
	}
}

// FromStations converts a slice of domain stations.
func FromStations(stations []*station.Station) []Station {
	out := make([]Station, 0, len(stations))
	for _, s := range stations {
		out = append(out, FromStation(s))
	}
	return out
}

// Point is a coordinate pair, used as the center of a nearby search.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// StationSearchResponse is the text-search response.
type StationSearchResponse struct {
	Query   string    `json:"query"`
	Count   int       `json:"count"`
	Results []Station `json:"results"`
}

// PagedStationSearchResponse is one page of a station text search. An empty
// page is a valid response, with the totals reflecting the full match set.
type PagedStationSearchResponse struct {
	Query   string    `json:"query"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
	Total   int64     `json:"total"`
	Pages   int64     `json:"pages"`
	Results []Station `json:"results"`
}

// FromPagedSearch converts a domain search page to its API representation.
func FromPagedSearch(p *station.PagedSearch) PagedStationSearchResponse {
	return PagedStationSearchResponse{
		Query:   p.Query,
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   p.Total,
		Pages:   p.Pages,
		Results: FromStations(p.Results),
	}
}

// NearbyResponse is the bounding-box search response. The radius is a
// coordinate-degree half-width; the match area is a rectangle, not a circle.
type NearbyResponse struct {
	Center  Point     `json:"center"`
	Radius  float64   `json:"radius"`
	Count   int       `json:"count"`
	Results []Station `json:"results"`
}
