package kernels

import (
	"fmt"

	"github.com/nvr-ai/go-entropy/images"
)

// DefaultRadius is the default neighborhood half extent on both axes (11x11 window).
const DefaultRadius = 5

// DefaultExponent squares the proportional entropy before scaling to 8 bits.
const DefaultExponent = 2

// Method selects an entropy filter implementation.
type Method int

const (
	// MethodFast uses a precomputed log table and a sliding histogram.
	MethodFast Method = iota
	// MethodNaive rebuilds the histogram and evaluates log2(p) for every pixel.
	MethodNaive
)

// String returns the flag name of the method.
func (m Method) String() string {
	switch m {
	case MethodFast:
		return "fast"
	case MethodNaive:
		return "naive"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses "fast" or "naive".
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "fast":
		return MethodFast, nil
	case "naive":
		return MethodNaive, nil
	default:
		return 0, fmt.Errorf("unknown entropy method %q", s)
	}
}

// Filter computes an entropy plane from an input plane.
type Filter func(src *images.Plane, opt Options) *images.Plane

// Options configures the entropy filter. The zero value is usable: it selects
// the fast method with a 1x1 window, so callers normally start from
// DefaultOptions.
type Options struct {
	RadiusX int    // Horizontal half extent (window width = 2*RadiusX + 1). Negative means 0.
	RadiusY int    // Vertical half extent (window height = 2*RadiusY + 1). Negative means 0.
	Method  Method // Filter implementation.
	// Exponent is the contrast curve applied to proportional entropy before it
	// is scaled to [0, 255]. Zero means DefaultExponent.
	Exponent float64
}

// DefaultOptions returns an 11x11 window, the fast method and a squared contrast curve.
func DefaultOptions() Options {
	return Options{
		RadiusX:  DefaultRadius,
		RadiusY:  DefaultRadius,
		Method:   MethodFast,
		Exponent: DefaultExponent,
	}
}

// WithRadius returns a copy of o with both radii set to r.
func (o Options) WithRadius(r int) Options {
	o.RadiusX, o.RadiusY = r, r
	return o
}

// Filter returns the implementation selected by Method.
func (o Options) Filter() Filter {
	if o.Method == MethodNaive {
		return Entropy
	}
	return EntropyFast
}

// WindowSize returns the number of samples in an unclipped window.
func (o Options) WindowSize() int {
	rx, ry := max(0, o.RadiusX), max(0, o.RadiusY)
	return (2*rx + 1) * (2*ry + 1)
}

// radii returns the half extents for a w x h plane. A window reaching past
// every border already covers the whole plane, so radii are capped at the
// plane size to keep the window arithmetic from overflowing.
func (o Options) radii(w, h int) (int, int) {
	return min(max(0, o.RadiusX), w), min(max(0, o.RadiusY), h)
}

func (o Options) exponent() float64 {
	if o.Exponent == 0 {
		return DefaultExponent
	}
	return o.Exponent
}

// Apply runs the selected filter on src.
func Apply(src *images.Plane, opt Options) *images.Plane {
	return opt.Filter()(src, opt)
}
