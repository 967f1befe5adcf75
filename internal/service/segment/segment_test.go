package segment

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"ridetrace/internal/config"
	"ridetrace/internal/model"
	"ridetrace/internal/service/segment/segmenttest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	opts, err := OptionsFromConfig(config.Default(), zerologNop())
	require.NoError(t, err)
	return opts
}

func TestToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    config.HSV
	}{
		{"black", 0, 0, 0, config.HSV{}},
		{"white", 255, 255, 255, config.HSV{H: 0, S: 0, V: 255}},
		{"red", 255, 0, 0, config.HSV{H: 0, S: 255, V: 255}},
		{"green", 0, 255, 0, config.HSV{H: 60, S: 255, V: 255}},
		{"blue", 0, 0, 255, config.HSV{H: 120, S: 255, V: 255}},
		{"magenta", 255, 0, 255, config.HSV{H: 150, S: 255, V: 255}},
		{"route purple", 128, 0, 255, config.HSV{H: 135, S: 255, V: 255}},
		{"marker pink", 255, 0, 60, config.HSV{H: 173, S: 255, V: 255}},
		{"half grey", 128, 128, 128, config.HSV{H: 0, S: 0, V: 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHSV(tt.r, tt.g, tt.b))
		})
	}
}

func TestThresholdSeparatesClasses(t *testing.T) {
	opts := testOptions(t)
	img := segmenttest.Canvas(20, 10)
	img.Set(1, 1, segmenttest.RouteColor)
	img.Set(2, 1, segmenttest.RouteColor)
	img.Set(5, 5, segmenttest.MarkerColor)

	route := Threshold(img, opts.Route)
	marker := Threshold(img, opts.Marker)

	assert.Equal(t, 2, route.Count())
	assert.True(t, route.At(1, 1))
	assert.False(t, route.At(5, 5))
	assert.Equal(t, 1, marker.Count())
	assert.True(t, marker.At(5, 5))
	assert.False(t, marker.At(-1, 0))
}

func fillRect(m *Mask, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Set(x, y)
		}
	}
}

func TestContoursRectangle(t *testing.T) {
	m := NewMask(10, 10)
	fillRect(m, image.Rect(2, 3, 6, 7))

	cs := Contours(m)
	require.Len(t, cs, 1)
	assert.Equal(t, []model.PixelPoint{{X: 2, Y: 3}, {X: 5, Y: 3}, {X: 5, Y: 6}, {X: 2, Y: 6}}, cs[0])

	r := Measure(model.ClassRoute, cs[0])
	assert.InDelta(t, 9.0, r.Area, 1e-9)
	assert.InDelta(t, 12.0, r.Perimeter, 1e-9)
	assert.InDelta(t, math.Pi/4, r.Circularity, 1e-9)
	assert.Equal(t, model.PixelPoint{X: 4, Y: 5}, r.Center)
}

func TestContoursDegenerateShapes(t *testing.T) {
	m := NewMask(12, 6)
	m.Set(1, 1)
	for x := 4; x <= 9; x++ {
		m.Set(x, 4)
	}

	cs := Contours(m)
	require.Len(t, cs, 2)
	assert.Equal(t, []model.PixelPoint{{X: 1, Y: 1}}, cs[0])
	assert.Equal(t, []model.PixelPoint{{X: 4, Y: 4}, {X: 9, Y: 4}}, cs[1])

	single := Measure(model.ClassMarker, cs[0])
	assert.Zero(t, single.Area)
	assert.Zero(t, single.Circularity)

	line := Measure(model.ClassRoute, cs[1])
	assert.Zero(t, line.Area)
	assert.InDelta(t, 10.0, line.Perimeter, 1e-9)
}

func TestContoursRasterOrder(t *testing.T) {
	m := NewMask(20, 20)
	fillRect(m, image.Rect(10, 2, 14, 6))
	fillRect(m, image.Rect(1, 8, 4, 11))
	// diagonal neighbours join one component
	m.Set(14, 6)

	cs := Contours(m)
	require.Len(t, cs, 2)
	assert.Equal(t, model.PixelPoint{X: 10, Y: 2}, cs[0][0])
	assert.Equal(t, model.PixelPoint{X: 1, Y: 8}, cs[1][0])
	assert.Contains(t, cs[0], model.PixelPoint{X: 14, Y: 6})
}

func TestEnclosingCircle(t *testing.T) {
	x, y, r := EnclosingCircle([]model.PixelPoint{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 5, Y: 5}})
	assert.InDelta(t, 5.0, x, 1e-9)
	assert.InDelta(t, 5.0, y, 1e-9)
	assert.InDelta(t, math.Sqrt(50), r, 1e-9)

	x, y, r = EnclosingCircle([]model.PixelPoint{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 8, Y: 0}})
	assert.InDelta(t, 4.0, x, 1e-9)
	assert.InDelta(t, 0.0, y, 1e-9)
	assert.InDelta(t, 4.0, r, 1e-9)

	_, _, r = EnclosingCircle(nil)
	assert.Zero(t, r)
}

func TestSegmentStraightLine(t *testing.T) {
	tests := []struct {
		name       string
		start, end image.Point
	}{
		{"horizontal", image.Pt(10, 50), image.Pt(90, 50)},
		{"vertical", image.Pt(30, 10), image.Pt(30, 85)},
		{"diagonal", image.Pt(12, 15), image.Pt(80, 70)},
	}
	const tolerance = 2

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := segmenttest.Canvas(100, 100)
			segmenttest.Line(img, tt.start.X, tt.start.Y, tt.end.X, tt.end.Y, 1, segmenttest.RouteColor)
			segmenttest.Disk(img, 5, 95, 3, segmenttest.MarkerColor)

			res, err := NewNative(testOptions(t)).Segment(context.Background(), img)
			require.NoError(t, err)
			require.Len(t, res.Route, 1)

			b := res.Route[0].Bounds()
			assert.InDelta(t, min(tt.start.X, tt.end.X), b.Min.X, tolerance)
			assert.InDelta(t, max(tt.start.X, tt.end.X), b.Max.X, tolerance)
			assert.InDelta(t, min(tt.start.Y, tt.end.Y), b.Min.Y, tolerance)
			assert.InDelta(t, max(tt.start.Y, tt.end.Y), b.Max.Y, tolerance)
		})
	}
}

func TestSegmentMarkerDisk(t *testing.T) {
	img := segmenttest.Map(120, 100, image.Pt(10, 80), image.Pt(90, 30))

	res, err := NewNative(testOptions(t)).Segment(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, res.Marker, 1)

	m := res.Marker[0]
	assert.InDelta(t, 90, m.Center.X, 1)
	assert.InDelta(t, 30, m.Center.Y, 1)
	assert.InDelta(t, segmenttest.MarkerRadius, m.Radius, 1)
	assert.Greater(t, m.Circularity, 0.8)
	assert.Equal(t, 120, res.Width)
	assert.Equal(t, 100, res.Height)
}

func TestSegmentMissingClass(t *testing.T) {
	img := segmenttest.Canvas(40, 40)
	segmenttest.Line(img, 5, 5, 30, 30, 1, segmenttest.RouteColor)

	res, err := NewNative(testOptions(t)).Segment(context.Background(), img)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrSegmentationFailure))

	var segErr *model.SegmentationError
	require.True(t, errors.As(err, &segErr))
	assert.Equal(t, model.ClassMarker, segErr.Class)
	require.NotNil(t, res)
	assert.Len(t, res.Route, 1)

	_, err = NewNative(testOptions(t)).Segment(context.Background(), segmenttest.Canvas(10, 10))
	require.True(t, errors.As(err, &segErr))
	assert.Equal(t, model.ClassRoute, segErr.Class)
}

func TestSegmentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewNative(testOptions(t)).Segment(ctx, segmenttest.Canvas(10, 10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecode(t *testing.T) {
	img, err := Decode(segmenttest.PNG(segmenttest.Canvas(8, 4)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())

	_, err = Decode([]byte("definitely not an image"))
	assert.ErrorIs(t, err, model.ErrInvalidImage)
	assert.Equal(t, "InvalidImage", model.Kind(err))
}

func TestSegmentBytes(t *testing.T) {
	data := segmenttest.PNG(segmenttest.Map(60, 60, image.Pt(5, 5), image.Pt(45, 45)))
	s, err := New("", testOptions(t))
	require.NoError(t, err)

	res, err := SegmentBytes(context.Background(), s, data)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Route)
	assert.NotEmpty(t, res.Marker)
}

func TestNewBackend(t *testing.T) {
	s, err := New(BackendNative, testOptions(t))
	require.NoError(t, err)
	assert.Equal(t, BackendNative, s.Name())

	_, err = New("nope", testOptions(t))
	assert.Error(t, err)
	assert.Contains(t, Backends(), BackendNative)
}
