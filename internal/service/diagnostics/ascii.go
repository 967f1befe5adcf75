// Package diagnostics renders a reconstructed route as text for quick
// inspection. Nothing here mutates its inputs.
package diagnostics

import (
	"strings"

	"ridetrace/internal/model"

	"github.com/fatih/color"
)

// Glyphs used by the ASCII renderer.
const (
	GlyphVertical   = '|'
	GlyphHorizontal = '-'
	GlyphDiagonal   = '\\'
	GlyphStart      = 'S'
	GlyphEnd        = 'E'
)

// ASCII draws the route on a w×h character grid scaled to the route's pixel
// bounding box. Consecutive pixels on one grid column become '|', on one
// grid row '-', and diagonal steps mark both ends with '\'. Start and end
// are drawn last and clamped into the grid.
func ASCII(route *model.Route, w, h int) string {
	if route == nil || len(route.Pixels) == 0 || w < 1 || h < 1 {
		return ""
	}
	canvas := make([][]rune, h)
	for y := range canvas {
		canvas[y] = []rune(strings.Repeat(" ", w))
	}

	minX, minY := route.Pixels[0].X, route.Pixels[0].Y
	maxX, maxY := minX, minY
	for _, p := range route.Pixels[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	sx, sy := 1.0, 1.0
	if maxX != minX {
		sx = float64(w-1) / float64(maxX-minX)
	}
	if maxY != minY {
		sy = float64(h-1) / float64(maxY-minY)
	}
	cell := func(p model.PixelPoint) (int, int) {
		x := int(float64(p.X-minX) * sx)
		y := int(float64(p.Y-minY) * sy)
		return clamp(x, 0, w-1), clamp(y, 0, h-1)
	}

	for i := 0; i+1 < len(route.Pixels); i++ {
		x1, y1 := cell(route.Pixels[i])
		x2, y2 := cell(route.Pixels[i+1])
		switch {
		case x1 == x2:
			for y := min(y1, y2); y <= max(y1, y2); y++ {
				canvas[y][x1] = GlyphVertical
			}
		case y1 == y2:
			for x := min(x1, x2); x <= max(x1, x2); x++ {
				canvas[y1][x] = GlyphHorizontal
			}
		default:
			canvas[y1][x1] = GlyphDiagonal
			canvas[y2][x2] = GlyphDiagonal
		}
	}

	x, y := cell(route.Start)
	canvas[y][x] = GlyphStart
	x, y = cell(route.End)
	canvas[y][x] = GlyphEnd

	rows := make([]string, h)
	for i, r := range canvas {
		rows[i] = string(r)
	}
	return strings.Join(rows, "\n")
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

var (
	startColor = color.New(color.FgGreen, color.Bold)
	endColor   = color.New(color.FgRed, color.Bold)
	pathColor  = color.New(color.FgMagenta)
)

// Colorize paints an ASCII rendering for a terminal. fatih/color drops the
// escapes itself when stdout is not a terminal or NO_COLOR is set.
func Colorize(grid string) string {
	var b strings.Builder
	for _, r := range grid {
		switch r {
		case GlyphStart:
			b.WriteString(startColor.Sprint(string(r)))
		case GlyphEnd:
			b.WriteString(endColor.Sprint(string(r)))
		case GlyphVertical, GlyphHorizontal, GlyphDiagonal:
			b.WriteString(pathColor.Sprint(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
