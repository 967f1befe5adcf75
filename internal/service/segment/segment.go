// Package segment isolates the route line and the destination marker from a
// rendered map image by HSV thresholding and outer-contour extraction.
package segment

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sort"
	"sync"

	"ridetrace/internal/config"
	"ridetrace/internal/model"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Backend names accepted by New.
const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

// Options holds the color thresholds of both classes.
type Options struct {
	Route  config.HSVRange
	Marker config.HSVRange
	Log    zerolog.Logger
}

// OptionsFromConfig reads the thresholds from c.
func OptionsFromConfig(c config.Config, log zerolog.Logger) (Options, error) {
	route, err := c.RouteRange()
	if err != nil {
		return Options{}, fmt.Errorf("route range: %w", err)
	}
	marker, err := c.MarkerRange()
	if err != nil {
		return Options{}, fmt.Errorf("marker range: %w", err)
	}
	return Options{Route: route, Marker: marker, Log: log}, nil
}

// Result carries the candidate regions of each class, in discovery order.
type Result struct {
	Width, Height int
	Route         []model.ContourRegion
	Marker        []model.ContourRegion
}

// Segmenter extracts contour regions from a decoded image.
type Segmenter interface {
	// Segment returns the regions found. When either class has no region the
	// partial result is returned together with a *model.SegmentationError.
	Segment(ctx context.Context, img image.Image) (*Result, error)
	Name() string
}

// Factory builds a Segmenter.
type Factory func(Options) (Segmenter, error)

var (
	backendsMu sync.RWMutex
	backends   = map[string]Factory{
		BackendNative: func(o Options) (Segmenter, error) { return NewNative(o), nil },
	}
)

// Register makes a backend available to New.
func Register(name string, f Factory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = f
}

// Backends lists the registered backend names.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New returns the named backend; an empty name selects the native one.
func New(name string, opts Options) (Segmenter, error) {
	if name == "" {
		name = BackendNative
	}
	backendsMu.RLock()
	f, ok := backends[name]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown segmenter backend %q (available: %v)", name, Backends())
	}
	return f(opts)
}

// Decode decodes a PNG, JPEG, GIF, BMP, TIFF or WebP image.
func Decode(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidImage, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty %s image", model.ErrInvalidImage, format)
	}
	return img, nil
}

// SegmentBytes decodes data and runs s over it.
func SegmentBytes(ctx context.Context, s Segmenter, data []byte) (*Result, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return s.Segment(ctx, img)
}

func checkResult(res *Result) error {
	if len(res.Route) == 0 {
		return &model.SegmentationError{Class: model.ClassRoute}
	}
	if len(res.Marker) == 0 {
		return &model.SegmentationError{Class: model.ClassMarker}
	}
	return nil
}

// Native is the pure Go backend.
type Native struct {
	opts Options
}

// NewNative returns the pure Go segmenter.
func NewNative(opts Options) *Native {
	return &Native{opts: opts}
}

func (n *Native) Name() string { return BackendNative }

func (n *Native) Segment(ctx context.Context, img image.Image) (*Result, error) {
	b := img.Bounds()
	res := &Result{Width: b.Dx(), Height: b.Dy()}

	for _, class := range []struct {
		name model.ColorClass
		rng  config.HSVRange
		dst  *[]model.ContourRegion
	}{
		{model.ClassRoute, n.opts.Route, &res.Route},
		{model.ClassMarker, n.opts.Marker, &res.Marker},
	} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mask := Threshold(img, class.rng)
		for _, pts := range Contours(mask) {
			*class.dst = append(*class.dst, Measure(class.name, pts))
		}
		n.opts.Log.Debug().
			Str("class", string(class.name)).
			Int("pixels", mask.Count()).
			Int("regions", len(*class.dst)).
			Msg("thresholded")
	}
	return res, checkResult(res)
}
