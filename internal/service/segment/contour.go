package segment

import (
	"math"

	"ridetrace/internal/model"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Moore neighbourhood, clockwise in image space starting west.
var neighbours = [8]model.PixelPoint{
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
}

func neighbourIndex(d model.PixelPoint) int {
	for i, n := range neighbours {
		if n == d {
			return i
		}
	}
	return 0
}

// Contours returns the outer boundary of every 8-connected component of m,
// in raster order of each component's top-left pixel. Boundaries are
// compressed so that only the end points of straight horizontal, vertical
// and diagonal runs are kept.
func Contours(m *Mask) [][]model.PixelPoint {
	labels := make([]int32, m.W*m.H)
	var out [][]model.PixelPoint
	var label int32
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.At(x, y) || labels[y*m.W+x] != 0 {
				continue
			}
			label++
			fill(m, labels, x, y, label)
			out = append(out, Compress(trace(m, model.PixelPoint{X: x, Y: y})))
		}
	}
	return out
}

func fill(m *Mask, labels []int32, x, y int, label int32) {
	stack := []model.PixelPoint{{X: x, Y: y}}
	labels[y*m.W+x] = label
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range neighbours {
			q := p.Add(d)
			if m.At(q.X, q.Y) && labels[q.Y*m.W+q.X] == 0 {
				labels[q.Y*m.W+q.X] = label
				stack = append(stack, q)
			}
		}
	}
}

// trace walks the outer boundary clockwise from start, which must be the
// first set pixel of its component in raster order.
func trace(m *Mask, start model.PixelPoint) []model.PixelPoint {
	contour := []model.PixelPoint{start}
	cur := start
	back := 0 // west of the start pixel is background
	limit := 4*m.W*m.H + 8

	for i := 0; i < limit; i++ {
		next, nextBack, ok := step(m, cur, back)
		if !ok {
			break
		}
		if cur == start && len(contour) > 1 {
			if next == contour[1] {
				break
			}
			contour = append(contour, start)
		}
		if next != start {
			contour = append(contour, next)
		}
		cur, back = next, nextBack
	}
	return contour
}

// step finds the next boundary pixel clockwise from the backtrack direction.
func step(m *Mask, cur model.PixelPoint, back int) (model.PixelPoint, int, bool) {
	for i := 1; i <= 8; i++ {
		d := (back + i) % 8
		n := cur.Add(neighbours[d])
		if m.At(n.X, n.Y) {
			prev := cur.Add(neighbours[(d+7)%8])
			return n, neighbourIndex(prev.Sub(n)), true
		}
	}
	return cur, back, false
}

// Compress drops the interior points of straight runs of a closed chain.
func Compress(pts []model.PixelPoint) []model.PixelPoint {
	n := len(pts)
	if n <= 2 {
		return pts
	}
	out := make([]model.PixelPoint, 0, n)
	for i, p := range pts {
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		if p.Sub(prev) != next.Sub(p) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return pts[:1]
	}
	return out
}

// Measure builds a ContourRegion from a boundary chain, treating it as a
// closed polygon through the pixel centres.
func Measure(class model.ColorClass, pts []model.PixelPoint) model.ContourRegion {
	ring := make(orb.Ring, 0, len(pts)+1)
	for _, p := range pts {
		ring = append(ring, orb.Point{float64(p.X), float64(p.Y)})
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}

	area := math.Abs(planar.Area(ring))
	perimeter := planar.Length(ring)
	circ := 0.0
	if perimeter > 0 {
		circ = 4 * math.Pi * area / (perimeter * perimeter)
	}
	cx, cy, r := EnclosingCircle(pts)
	return model.ContourRegion{
		Class:       class,
		Points:      pts,
		Area:        area,
		Perimeter:   perimeter,
		Circularity: circ,
		Center:      model.PixelPoint{X: int(math.Round(cx)), Y: int(math.Round(cy))},
		Radius:      r,
	}
}
