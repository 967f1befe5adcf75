package model

import (
	"fmt"

	"github.com/paulmach/orb"
)

// GeoPoint is a WGS84 coordinate in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoPointFromOrb converts an orb point ([lon, lat]) into a GeoPoint.
func GeoPointFromOrb(p orb.Point) GeoPoint {
	return GeoPoint{Lat: p.Lat(), Lon: p.Lon()}
}

// Point returns the coordinate in GeoJSON axis order.
func (p GeoPoint) Point() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lon)
}

// GeoRoute is the geo-referenced polyline, one point per route pixel.
type GeoRoute []GeoPoint

// LineString returns the route as an orb line string ([lon, lat] points).
func (r GeoRoute) LineString() orb.LineString {
	ls := make(orb.LineString, len(r))
	for i, p := range r {
		ls[i] = p.Point()
	}
	return ls
}

// Bound returns the geographic bounding box of the route.
func (r GeoRoute) Bound() orb.Bound {
	return r.LineString().Bound()
}

// Head returns at most the first n points.
func (r GeoRoute) Head(n int) GeoRoute {
	if n > len(r) {
		n = len(r)
	}
	return r[:n]
}
