package engine

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidViewport is returned for non-positive or non-finite geometry.
var ErrInvalidViewport = errors.New("invalid viewport")

// gridTolerance decides when (end-begin)/step lands on a whole number.
const gridTolerance = 1e-9

// Viewport is the geometry of the drawing pane. Scale is pixels per domain
// unit and (CenterX, CenterY) is the device position of the origin.
type Viewport struct {
	Scale   float64 `json:"scale"`
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Validate checks that the viewport can be used for rescaling.
func (vp Viewport) Validate() error {
	if !(vp.Scale > 0) || math.IsInf(vp.Scale, 0) {
		return fmt.Errorf("%w: scale %g", ErrInvalidViewport, vp.Scale)
	}
	if !(vp.Width > 0) || !(vp.Height > 0) || math.IsInf(vp.Width, 0) || math.IsInf(vp.Height, 0) {
		return fmt.Errorf("%w: pane %gx%g", ErrInvalidViewport, vp.Width, vp.Height)
	}
	if math.IsNaN(vp.CenterX) || math.IsNaN(vp.CenterY) || math.IsInf(vp.CenterX, 0) || math.IsInf(vp.CenterY, 0) {
		return fmt.Errorf("%w: center (%g, %g)", ErrInvalidViewport, vp.CenterX, vp.CenterY)
	}
	return nil
}

// Domain returns the sampling range covering the pane: it starts at the
// left edge, ends at the right edge and steps two pixels at a time.
func (vp Viewport) Domain() Domain {
	begin := -vp.CenterX / vp.Scale
	return Domain{
		Begin: begin,
		End:   begin + vp.Width/vp.Scale,
		Step:  2 / vp.Scale,
	}
}

// ToDevice maps a domain point into this viewport.
func (vp Viewport) ToDevice(x, y float64) (float64, float64) {
	return ToDevice(x, y, vp.Scale, vp.CenterX, vp.CenterY)
}

// ToDomain maps a device point back into the domain.
func (vp Viewport) ToDomain(px, py float64) (float64, float64) {
	return ToDomain(px, py, vp.Scale, vp.CenterX, vp.CenterY)
}

// Matrix returns the domain-to-device transform.
func (vp Viewport) Matrix() Matrix2D {
	return Translate(vp.CenterX, vp.CenterY).Multiply(Scale(vp.Scale, -vp.Scale))
}

// Pane returns the device rectangle of the viewport.
func (vp Viewport) Pane() Rect {
	return Rect{X1: vp.Width, Y1: vp.Height}
}

// ToDevice maps (x, y) to pixel coordinates. The vertical axis is inverted
// because device y grows downward.
func ToDevice(x, y, scale, centerX, centerY float64) (px, py float64) {
	return x*scale + centerX, -y*scale + centerY
}

// ToDomain is the inverse of ToDevice.
func ToDomain(px, py, scale, centerX, centerY float64) (x, y float64) {
	return (px - centerX) / scale, -(py - centerY) / scale
}

// Domain is the sampled range of x.
type Domain struct {
	Begin float64 `json:"begin"`
	End   float64 `json:"end"`
	Step  float64 `json:"step"`
}

// SampleCount returns the number of samples in d.
func (d Domain) SampleCount() int {
	return SampleCount(d.Begin, d.End, d.Step)
}

// At returns the i-th sample point.
func (d Domain) At(i int) float64 {
	return d.Begin + float64(i)*d.Step
}

// Validate checks that the domain can be sampled.
func (d Domain) Validate() error {
	if !(d.Step > 0) || math.IsInf(d.Step, 0) {
		return fmt.Errorf("invalid domain: step %g", d.Step)
	}
	if !(d.Begin < d.End) || math.IsInf(d.Begin, 0) || math.IsInf(d.End, 0) {
		return fmt.Errorf("invalid domain: [%g, %g]", d.Begin, d.End)
	}
	return nil
}

// SampleCount is ceil((end-begin)/step). When end lies on the sampling
// grid the end point itself is sampled too, so [-2, 2] with step 1 has
// five samples. Degenerate input yields zero. Ranges too wide to sample
// report MaxSamples+1 rather than a count that would not fit in an int.
func SampleCount(begin, end, step float64) int {
	if !(step > 0) || !(end >= begin) || math.IsInf(begin, 0) || math.IsInf(end, 0) {
		return 0
	}
	r := (end - begin) / step
	if math.IsNaN(r) {
		return 0
	}
	if r >= MaxSamples {
		return MaxSamples + 1
	}
	n := math.Round(r)
	if math.Abs(r-n) <= gridTolerance*math.Max(1, n) {
		return int(n) + 1
	}
	return int(math.Ceil(r))
}
