package diagnostics

import (
	"fmt"
	"strings"

	"ridetrace/internal/model"
	"ridetrace/internal/service/gazetteer"
	"ridetrace/internal/util"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/stat"
)

// DefaultHead is how many leading points a Summary lists.
const DefaultHead = 5

// Summary is a human-readable digest of one reconstruction.
type Summary struct {
	Start       model.PixelPoint   `json:"start_pixel"`
	End         model.PixelPoint   `json:"end_pixel"`
	Pixels      int                `json:"pixels"`
	FirstPixels []model.PixelPoint `json:"first_pixels"`
	FirstGeo    model.GeoRoute     `json:"first_geo,omitempty"`

	LengthMeters float64        `json:"length_m"`
	Centroid     model.GeoPoint `json:"centroid"`
	Bound        orb.Bound      `json:"bound"`

	// Docks nearest to the geo-referenced start and end of the route.
	NearStart *model.Station `json:"near_start,omitempty"`
	NearEnd   *model.Station `json:"near_end,omitempty"`
}

// Summarize builds a Summary. geo and gaz may be nil. startGeo and endGeo are
// the control points route.Start and route.End were calibrated to; they are
// only read when geo is set.
func Summarize(route *model.Route, geo model.GeoRoute, startGeo, endGeo model.GeoPoint, gaz *gazetteer.Gazetteer, head int) Summary {
	s := Summary{Start: route.Start, End: route.End, Pixels: len(route.Pixels)}
	n := min(head, len(route.Pixels))
	s.FirstPixels = append([]model.PixelPoint(nil), route.Pixels[:n]...)
	if len(geo) == 0 {
		return s
	}

	s.FirstGeo = append(model.GeoRoute(nil), geo.Head(head)...)
	s.LengthMeters = Length(geo)
	s.Centroid = Centroid(geo)
	s.Bound = geo.Bound()
	if gaz != nil {
		if st, ok := gaz.Nearest(startGeo); ok {
			s.NearStart = &st
		}
		if st, ok := gaz.Nearest(endGeo); ok {
			s.NearEnd = &st
		}
	}
	return s
}

// Length is the great-circle length of the route in metres.
func Length(geo model.GeoRoute) float64 {
	coords := make([][2]float64, len(geo))
	for i, p := range geo {
		coords[i] = [2]float64{p.Lat, p.Lon}
	}
	return util.PathLength(coords)
}

// Centroid is the arithmetic mean of the route points.
func Centroid(geo model.GeoRoute) model.GeoPoint {
	if len(geo) == 0 {
		return model.GeoPoint{}
	}
	lats := make([]float64, len(geo))
	lons := make([]float64, len(geo))
	for i, p := range geo {
		lats[i], lons[i] = p.Lat, p.Lon
	}
	return model.GeoPoint{Lat: stat.Mean(lats, nil), Lon: stat.Mean(lons, nil)}
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Start point: %v\n", s.Start)
	fmt.Fprintf(&b, "End point: %v\n", s.End)
	fmt.Fprintf(&b, "Route pixels: %d\n", s.Pixels)
	fmt.Fprintf(&b, "Route coordinates (first %d): %v\n", len(s.FirstPixels), s.FirstPixels)
	if len(s.FirstGeo) > 0 {
		fmt.Fprintf(&b, "GPS coordinates (first %d): %v\n", len(s.FirstGeo), s.FirstGeo)
		fmt.Fprintf(&b, "Length: %.0f m\n", s.LengthMeters)
		fmt.Fprintf(&b, "Centroid: %v\n", s.Centroid)
	}
	if s.NearStart != nil {
		fmt.Fprintf(&b, "Nearest dock to start: %s\n", s.NearStart.Name)
	}
	if s.NearEnd != nil {
		fmt.Fprintf(&b, "Nearest dock to end: %s\n", s.NearEnd.Name)
	}
	return b.String()
}

// ContourReport describes a route contour for which no endpoints were resolved.
func ContourReport(c *model.ContourRegion, head int) string {
	var b strings.Builder
	n := min(head, len(c.Points))
	fmt.Fprintf(&b, "Route contour: %d points, area %.0f px, bounds %v\n", len(c.Points), c.Area, c.Bounds())
	fmt.Fprintf(&b, "Route coordinates (first %d): %v\n", n, c.Points[:n])
	return b.String()
}
