// Package segmenttest draws synthetic map images for tests.
package segmenttest

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
)

var (
	// RouteColor thresholds as route only (H 135).
	RouteColor = color.RGBA{R: 128, G: 0, B: 255, A: 255}
	// MarkerColor thresholds as marker only (H 173).
	MarkerColor = color.RGBA{R: 255, G: 0, B: 60, A: 255}
	// Background is neither.
	Background = color.RGBA{R: 240, G: 240, B: 235, A: 255}
)

// MarkerRadius is the radius of the destination disk drawn by Map. Smaller
// digital disks can fall under the 0.8 circularity cut.
const MarkerRadius = 12

// Canvas returns a w×h image filled with Background.
func Canvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)
	return img
}

// Disk fills every pixel within r of (cx, cy).
func Disk(img *image.RGBA, cx, cy, r int, c color.Color) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r && image.Pt(x, y).In(img.Bounds()) {
				img.Set(x, y, c)
			}
		}
	}
}

// Line stamps a disk of radius r along the segment (x0,y0)-(x1,y1).
func Line(img *image.RGBA, x0, y0, x1, y1, r int, c color.Color) {
	steps := int(math.Max(math.Abs(float64(x1-x0)), math.Abs(float64(y1-y0))))
	if steps == 0 {
		Disk(img, x0, y0, r, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(float64(x0) + t*float64(x1-x0)))
		y := int(math.Round(float64(y0) + t*float64(y1-y0)))
		Disk(img, x, y, r, c)
	}
}

// Map draws a route from start to end with a marker disk at end.
func Map(w, h int, start, end image.Point) *image.RGBA {
	img := Canvas(w, h)
	Line(img, start.X, start.Y, end.X, end.Y, 2, RouteColor)
	Disk(img, end.X, end.Y, MarkerRadius, MarkerColor)
	return img
}

// PNG encodes img.
func PNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
