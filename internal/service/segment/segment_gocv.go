//go:build gocv

package segment

import (
	"context"
	"fmt"
	"image"
	"math"

	"ridetrace/internal/config"
	"ridetrace/internal/model"

	"gocv.io/x/gocv"
)

func init() {
	Register(BackendOpenCV, func(o Options) (Segmenter, error) { return NewOpenCV(o), nil })
}

// OpenCV runs the thresholding and contour search through gocv.
type OpenCV struct {
	opts Options
}

// NewOpenCV returns the gocv-backed segmenter.
func NewOpenCV(opts Options) *OpenCV {
	return &OpenCV{opts: opts}
}

func (o *OpenCV) Name() string { return BackendOpenCV }

func (o *OpenCV) Segment(ctx context.Context, img image.Image) (*Result, error) {
	bgr, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidImage, err)
	}
	defer bgr.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	if err := gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV); err != nil {
		return nil, fmt.Errorf("convert to HSV: %w", err)
	}

	b := img.Bounds()
	res := &Result{Width: b.Dx(), Height: b.Dy()}
	if res.Route, err = o.regions(ctx, hsv, model.ClassRoute, o.opts.Route); err != nil {
		return nil, err
	}
	if res.Marker, err = o.regions(ctx, hsv, model.ClassMarker, o.opts.Marker); err != nil {
		return nil, err
	}
	return res, checkResult(res)
}

func (o *OpenCV) regions(ctx context.Context, hsv gocv.Mat, class model.ColorClass, rng config.HSVRange) ([]model.ContourRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mask := gocv.NewMat()
	defer mask.Close()
	lo := gocv.NewScalar(float64(rng.Low.H), float64(rng.Low.S), float64(rng.Low.V), 0)
	hi := gocv.NewScalar(float64(rng.High.H), float64(rng.High.S), float64(rng.High.V), 0)
	if err := gocv.InRangeWithScalar(hsv, lo, hi, &mask); err != nil {
		return nil, fmt.Errorf("threshold %s: %w", class, err)
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	out := make([]model.ContourRegion, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		area := gocv.ContourArea(pv)
		perimeter := gocv.ArcLength(pv, true)
		x, y, r := gocv.MinEnclosingCircle(pv)
		circ := 0.0
		if perimeter > 0 {
			circ = 4 * math.Pi * area / (perimeter * perimeter)
		}
		out = append(out, model.ContourRegion{
			Class:       class,
			Points:      pv.ToPoints(),
			Area:        area,
			Perimeter:   perimeter,
			Circularity: circ,
			Center:      model.PixelPoint{X: int(math.Round(float64(x))), Y: int(math.Round(float64(y)))},
			Radius:      float64(r),
		})
	}
	o.opts.Log.Debug().Str("class", string(class)).Int("regions", len(out)).Msg("opencv contours")
	return out, nil
}
