package model

import (
	"github.com/dhconnelly/rtreego"
)

// Station is a named bike-share dock from the gazetteer.
type Station struct {
	Name string   `json:"name"`
	Geo  GeoPoint `json:"geo"`
}

// StationSpatial wraps a station for R-tree indexing.
type StationSpatial struct {
	Station Station
}

// stationTolerance is the half side of the degenerate rectangle stored per dock.
const stationTolerance = 1e-7

// Bounds implements the rtreego.Spatial interface, using (lon, lat) axes.
func (s *StationSpatial) Bounds() rtreego.Rect {
	return rtreego.Point{s.Station.Geo.Lon, s.Station.Geo.Lat}.ToRect(stationTolerance)
}
