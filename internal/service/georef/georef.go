// Package georef maps route pixels onto geographic coordinates using the
// two control points at the ends of the route.
//
// Each image axis is interpolated independently: x against longitude and y
// against latitude. Two points cannot recover rotation or skew, so curved
// or rotated routes come out distorted.
package georef

import (
	"fmt"

	"ridetrace/internal/model"
)

// Transform is a calibrated per-axis pixel to geographic mapping.
type Transform struct {
	start, end model.ControlPointPair

	// held axes map every pixel to the mean of the two control values
	holdX, holdY bool
}

// Calibrate builds a Transform from the start and end control points. An axis
// with zero pixel displacement is held constant; when both are zero the
// calibration fails with model.ErrDegenerateCalibration.
func Calibrate(start, end model.ControlPointPair) (*Transform, error) {
	t := &Transform{
		start: start,
		end:   end,
		holdX: start.Pixel.X == end.Pixel.X,
		holdY: start.Pixel.Y == end.Pixel.Y,
	}
	if t.holdX && t.holdY {
		return nil, fmt.Errorf("start and end pixel coincide at %v: %w", start.Pixel, model.ErrDegenerateCalibration)
	}
	return t, nil
}

// HeldAxes reports which axes are held constant.
func (t *Transform) HeldAxes() (x, y bool) {
	return t.holdX, t.holdY
}

// Apply maps a pixel to its geographic position.
func (t *Transform) Apply(p model.PixelPoint) model.GeoPoint {
	return model.GeoPoint{
		Lat: interpolate(p.Y, t.start.Pixel.Y, t.end.Pixel.Y, t.start.Geo.Lat, t.end.Geo.Lat, t.holdY),
		Lon: interpolate(p.X, t.start.Pixel.X, t.end.Pixel.X, t.start.Geo.Lon, t.end.Geo.Lon, t.holdX),
	}
}

func interpolate(v, v0, v1 int, g0, g1 float64, hold bool) float64 {
	if hold {
		return (g0 + g1) / 2
	}
	f := float64(v-v0) / float64(v1-v0)
	return g0 + f*(g1-g0)
}

// ApplyAll maps every pixel in order.
func (t *Transform) ApplyAll(pixels []model.PixelPoint) model.GeoRoute {
	out := make(model.GeoRoute, len(pixels))
	for i, p := range pixels {
		out[i] = t.Apply(p)
	}
	return out
}

// Georeference calibrates on the route's own start and end pixels and maps
// every route pixel. The result has one point per route pixel.
func Georeference(route *model.Route, startGeo, endGeo model.GeoPoint) (model.GeoRoute, error) {
	t, err := Calibrate(
		model.ControlPointPair{Pixel: route.Start, Geo: startGeo},
		model.ControlPointPair{Pixel: route.End, Geo: endGeo},
	)
	if err != nil {
		return nil, err
	}
	return t.ApplyAll(route.Pixels), nil
}
