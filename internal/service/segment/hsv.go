package segment

import (
	"image"
	"image/color"
	"math"

	"ridetrace/internal/config"
)

// ToHSV converts 8-bit RGB to HSV using OpenCV's 8-bit convention:
// hue is halved into [0,180], saturation and value span [0,255].
func ToHSV(r, g, b uint8) config.HSV {
	v := max(r, g, b)
	lo := min(r, g, b)
	if v == 0 {
		return config.HSV{}
	}
	diff := float64(v) - float64(lo)
	s := math.Round(255 * diff / float64(v))
	if diff == 0 {
		return config.HSV{S: uint8(s), V: v}
	}

	rf, gf, bf := float64(r), float64(g), float64(b)
	var h float64
	switch v {
	case r:
		h = 60 * (gf - bf) / diff
	case g:
		h = 120 + 60*(bf-rf)/diff
	default:
		h = 240 + 60*(rf-gf)/diff
	}
	if h < 0 {
		h += 360
	}
	h = math.Round(h / 2)
	if h >= 180 {
		h -= 180
	}
	return config.HSV{H: uint8(h), S: uint8(s), V: v}
}

// Mask is a binary image; true pixels passed the threshold.
type Mask struct {
	W, H int
	bits []bool
}

// NewMask returns an empty w×h mask.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, bits: make([]bool, w*h)}
}

// At reports whether (x, y) is set; out-of-range coordinates are unset.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.bits[y*m.W+x]
}

// Set marks (x, y).
func (m *Mask) Set(x, y int) {
	m.bits[y*m.W+x] = true
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Threshold builds a mask of the pixels of img whose HSV value falls inside rng.
// Mask coordinates are relative to img.Bounds().Min.
func Threshold(img image.Image, rng config.HSVRange) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if rng.Contains(ToHSV(c.R, c.G, c.B)) {
				m.Set(x-b.Min.X, y-b.Min.Y)
			}
		}
	}
	return m
}
