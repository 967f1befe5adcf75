package model

import (
	"fmt"
	"image"
)

// PixelPoint is an image-space coordinate, origin top-left, y increasing downward.
type PixelPoint = image.Point

// ColorClass names the color family a region was segmented from.
type ColorClass string

const (
	ClassRoute  ColorClass = "route"
	ClassMarker ColorClass = "marker"
)

// ContourRegion is the outer boundary of one connected thresholded region.
type ContourRegion struct {
	Class       ColorClass
	Points      []PixelPoint
	Area        float64
	Perimeter   float64
	Circularity float64

	// Center and Radius describe the minimum enclosing circle.
	Center PixelPoint
	Radius float64
}

// Bounds returns the pixel bounding box of the boundary, inclusive of the max point.
func (c *ContourRegion) Bounds() image.Rectangle {
	if len(c.Points) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: c.Points[0], Max: c.Points[0]}
	for _, p := range c.Points[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}

// Route is the pixel-space route recovered from a map image.
type Route struct {
	Pixels []PixelPoint `json:"pixels"`
	Start  PixelPoint   `json:"start"`
	End    PixelPoint   `json:"end"`
}

// NewRoute builds a Route from the boundary trace and the destination pixel.
// The start pixel is the route pixel furthest from end; the first one wins on ties.
func NewRoute(pixels []PixelPoint, end PixelPoint) (*Route, error) {
	if len(pixels) == 0 {
		return nil, fmt.Errorf("empty route: %w", ErrSegmentationFailure)
	}
	start := pixels[0]
	best := SquaredDistance(start, end)
	for _, p := range pixels[1:] {
		if d := SquaredDistance(p, end); d > best {
			start, best = p, d
		}
	}
	return &Route{Pixels: pixels, Start: start, End: end}, nil
}

// SquaredDistance returns the squared Euclidean distance between two pixels.
func SquaredDistance(a, b PixelPoint) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// ControlPointPair ties a pixel to its known geographic position.
type ControlPointPair struct {
	Pixel PixelPoint
	Geo   GeoPoint
}
