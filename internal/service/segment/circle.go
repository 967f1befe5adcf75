package segment

import (
	"math"

	"ridetrace/internal/model"
)

type circle struct {
	x, y, r float64
}

const circleEps = 1e-7

func (c circle) contains(x, y float64) bool {
	return math.Hypot(x-c.x, y-c.y) <= c.r+circleEps
}

// EnclosingCircle returns the centre and radius of the minimum enclosing
// circle of pts. Points are visited in the order given, so the result is
// deterministic.
func EnclosingCircle(pts []model.PixelPoint) (x, y, r float64) {
	if len(pts) == 0 {
		return 0, 0, 0
	}
	fx := make([]float64, len(pts))
	fy := make([]float64, len(pts))
	for i, p := range pts {
		fx[i], fy[i] = float64(p.X), float64(p.Y)
	}

	c := circle{x: fx[0], y: fy[0]}
	for i := 1; i < len(pts); i++ {
		if c.contains(fx[i], fy[i]) {
			continue
		}
		c = circle{x: fx[i], y: fy[i]}
		for j := 0; j < i; j++ {
			if c.contains(fx[j], fy[j]) {
				continue
			}
			c = diameterCircle(fx[i], fy[i], fx[j], fy[j])
			for k := 0; k < j; k++ {
				if c.contains(fx[k], fy[k]) {
					continue
				}
				c = circumcircle(fx[i], fy[i], fx[j], fy[j], fx[k], fy[k])
			}
		}
	}
	return c.x, c.y, c.r
}

func diameterCircle(ax, ay, bx, by float64) circle {
	x, y := (ax+bx)/2, (ay+by)/2
	return circle{x: x, y: y, r: math.Hypot(ax-x, ay-y)}
}

func circumcircle(ax, ay, bx, by, cx, cy float64) circle {
	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if d == 0 {
		// collinear: the widest pair spans the circle
		best := diameterCircle(ax, ay, bx, by)
		for _, c := range []circle{diameterCircle(ax, ay, cx, cy), diameterCircle(bx, by, cx, cy)} {
			if c.r > best.r {
				best = c
			}
		}
		return best
	}
	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	x := (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d
	y := (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d
	return circle{x: x, y: y, r: math.Hypot(ax-x, ay-y)}
}
