package model

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouteFurthestPoint(t *testing.T) {
	pixels := []PixelPoint{{X: 5, Y: 5}, {X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}
	r, err := NewRoute(pixels, PixelPoint{X: 10, Y: 10})
	require.NoError(t, err)

	// (0,0) is furthest; (10,0) and (0,10) tie below it
	assert.Equal(t, PixelPoint{X: 0, Y: 0}, r.Start)
	assert.Equal(t, PixelPoint{X: 10, Y: 10}, r.End)

	r, err = NewRoute([]PixelPoint{{X: 10, Y: 0}, {X: 0, Y: 10}}, PixelPoint{})
	require.NoError(t, err)
	assert.Equal(t, PixelPoint{X: 10, Y: 0}, r.Start, "first pixel wins a tie")

	_, err = NewRoute(nil, PixelPoint{})
	assert.ErrorIs(t, err, ErrSegmentationFailure)
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("wrap: %w", ErrInvalidImage), "InvalidImage"},
		{&SegmentationError{Class: ClassMarker}, "SegmentationFailure"},
		{ErrEndpointNotFound, "EndpointNotFound"},
		{&LocatorError{Role: "start", Query: "x", Score: 12}, "LocatorUnresolved"},
		{ErrDegenerateCalibration, "DegenerateCalibration"},
		{errors.New("boom"), "Error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err))
	}

	err := &LocatorError{Role: "end", Query: "Pier 40", Score: 71}
	assert.Equal(t, `locator unresolved: end station "Pier 40" (best score 71)`, err.Error())
	assert.Equal(t, "segmentation failure: no marker regions", (&SegmentationError{Class: ClassMarker}).Error())
}

func TestContourBounds(t *testing.T) {
	c := ContourRegion{Points: []PixelPoint{{X: 4, Y: 9}, {X: 1, Y: 3}, {X: 7, Y: 5}}}
	b := c.Bounds()
	assert.Equal(t, PixelPoint{X: 1, Y: 3}, b.Min)
	assert.Equal(t, PixelPoint{X: 7, Y: 9}, b.Max)
	assert.True(t, (&ContourRegion{}).Bounds().Empty())
}

func sampleRide() *Ride {
	return &Ride{
		ID:            "abc",
		ReceiptNumber: "1234567",
		Date:          "OCTOBER 3, 2024",
		StartStation:  "W 21 St & 6 Ave",
		EndStation:    "W 52 St & 6 Ave",
		StartGeo:      GeoPoint{Lat: 40.74238, Lon: -73.99744},
		EndGeo:        GeoPoint{Lat: 40.76269, Lon: -73.98658},
		Charges:       []Charge{{Label: "Ride cost", Amount: "4.79"}},
		Total:         "4.79",
		GeoRoute: GeoRoute{
			{Lat: 40.74238, Lon: -73.99744},
			{Lat: 40.75, Lon: -73.992},
			{Lat: 40.76269, Lon: -73.98658},
		},
		LengthMeters: 2400,
		UpdatedAt:    time.Date(2024, 10, 3, 8, 32, 0, 0, time.UTC),
	}
}

func TestRidePGRoundTrip(t *testing.T) {
	ride := sampleRide()
	pg := ride.ToPG()
	assert.Equal(t, "rides", pg.TableName())
	assert.JSONEq(t, `[{"label":"Ride cost","amount":"4.79"}]`, pg.Charges)

	back := RideFromPG(pg)
	assert.Equal(t, ride.ID, back.ID)
	assert.Equal(t, ride.Charges, back.Charges)
	assert.Equal(t, ride.StartGeo, back.StartGeo)
	require.Len(t, back.GeoRoute, len(ride.GeoRoute))
	for i := range ride.GeoRoute {
		assert.InDelta(t, ride.GeoRoute[i].Lat, back.GeoRoute[i].Lat, 1e-5)
		assert.InDelta(t, ride.GeoRoute[i].Lon, back.GeoRoute[i].Lon, 1e-5)
	}
}

func TestRideFeature(t *testing.T) {
	f := sampleRide().Feature()
	ls, ok := f.Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, ls, 3)
	assert.Equal(t, orb.Point{-73.99744, 40.74238}, ls[0])
	assert.Equal(t, "W 21 St & 6 Ave", f.Properties["start_station"])
	assert.Equal(t, "abc", f.ID)
}

func TestGeoRouteHelpers(t *testing.T) {
	r := sampleRide().GeoRoute
	assert.Len(t, r.Head(2), 2)
	assert.Len(t, r.Head(10), 3)
	b := r.Bound()
	assert.Equal(t, orb.Point{-73.99744, 40.74238}, b.Min)
	assert.Equal(t, "(40.742380, -73.997440)", r[0].String())
	assert.Equal(t, r[1], GeoPointFromOrb(r[1].Point()))
}

func TestStationBounds(t *testing.T) {
	s := &StationSpatial{Station: Station{Name: "x", Geo: GeoPoint{Lat: 40, Lon: -74}}}
	b := s.Bounds()
	assert.InDelta(t, -74, b.PointCoord(0), 1e-6)
	assert.InDelta(t, 40, b.PointCoord(1), 1e-6)
}
