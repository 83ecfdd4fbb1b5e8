package domain

import "time"

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationSample is one reading from the device location provider.
type LocationSample struct {
	Coordinate
	// Heading is the compass bearing of travel in degrees [0, 360).
	Heading   float64
	Timestamp time.Time
}

// RouteResult is a built driving route for one leg of a trip. It is
// derived state: discarded and rebuilt whenever the leg changes.
type RouteResult struct {
	// Points is the decoded polyline, ordered from origin to final
	// destination.
	Points []Coordinate
	// Distance is the total route length in meters.
	Distance float64
	// Duration is the estimated travel time in seconds.
	Duration float64
}
