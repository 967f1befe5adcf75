// Package endpoint picks the destination marker and the route contour out of
// the segmented regions and derives the start pixel.
package endpoint

import (
	"fmt"

	"ridetrace/internal/model"

	"github.com/rs/zerolog"
)

// DefaultCircularityMin is the circularity a marker must exceed.
const DefaultCircularityMin = 0.8

// Resolution is the outcome of Resolve. Contour is set whenever a route
// region exists; Route and Marker only once the destination is known.
type Resolution struct {
	Contour *model.ContourRegion
	Marker  *model.ContourRegion
	Route   *model.Route
}

// Resolver classifies regions.
type Resolver struct {
	CircularityMin float64
	Log            zerolog.Logger
}

// New returns a Resolver with the given circularity cut.
func New(circularityMin float64, log zerolog.Logger) *Resolver {
	return &Resolver{CircularityMin: circularityMin, Log: log}
}

// Resolve selects the largest route region and the most circular marker
// region strictly above the circularity cut. Without a qualifying marker it
// returns the route contour together with model.ErrEndpointNotFound.
func (r *Resolver) Resolve(routes, markers []model.ContourRegion) (*Resolution, error) {
	contour := LargestArea(routes)
	if contour == nil {
		return nil, &model.SegmentationError{Class: model.ClassRoute}
	}
	res := &Resolution{Contour: contour}

	marker := r.Destination(markers)
	if marker == nil {
		r.Log.Debug().Int("candidates", len(markers)).Float64("min", r.CircularityMin).Msg("no circular marker")
		return res, fmt.Errorf("no marker above circularity %.2f among %d candidates: %w",
			r.CircularityMin, len(markers), model.ErrEndpointNotFound)
	}
	res.Marker = marker

	route, err := model.NewRoute(contour.Points, marker.Center)
	if err != nil {
		return res, err
	}
	res.Route = route
	r.Log.Debug().
		Stringer("start", route.Start).
		Stringer("end", route.End).
		Float64("circularity", marker.Circularity).
		Int("pixels", len(route.Pixels)).
		Msg("endpoints resolved")
	return res, nil
}

// Destination returns the most circular region strictly above the cut, or
// nil. The first region wins ties.
func (r *Resolver) Destination(markers []model.ContourRegion) *model.ContourRegion {
	var best *model.ContourRegion
	for i := range markers {
		m := &markers[i]
		if m.Circularity <= r.CircularityMin {
			continue
		}
		if best == nil || m.Circularity > best.Circularity {
			best = m
		}
	}
	return best
}

// LargestArea returns the region with the largest area, or nil. The first
// region wins ties.
func LargestArea(regions []model.ContourRegion) *model.ContourRegion {
	var best *model.ContourRegion
	for i := range regions {
		if best == nil || regions[i].Area > best.Area {
			best = &regions[i]
		}
	}
	return best
}
