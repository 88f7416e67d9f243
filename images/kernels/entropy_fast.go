package kernels

import (
	"math"

	"github.com/nvr-ai/go-entropy/images"
)

// Log2Table returns a table of n+1 entries with table[i] = log2(i) and
// table[0] = 0, so that empty histogram buckets contribute nothing.
func Log2Table(n int) []float64 {
	n = max(0, n)
	table := make([]float64, n+1)
	for i := 1; i <= n; i++ {
		table[i] = math.Log2(float64(i))
	}
	return table
}

// histogram is a 256 bucket window histogram that also tracks
// S = sum(c_i * log2(c_i)) so entropy can be read without a bucket scan:
//
//	H = -(1/count) * sum(c_i * (log2(c_i) - log2(count)))
//	  = log2(count) - S/count
type histogram struct {
	counts [256]int
	s      float64
	log2   []float64
}

func (h *histogram) reset() {
	h.counts = [256]int{}
	h.s = 0
}

// weight returns c*log2(c).
func (h *histogram) weight(c int) float64 {
	return float64(c) * h.log2[c]
}

func (h *histogram) add(v uint8) {
	c := h.counts[v]
	h.s += h.weight(c+1) - h.weight(c)
	h.counts[v] = c + 1
}

func (h *histogram) remove(v uint8) {
	c := h.counts[v]
	h.s += h.weight(c-1) - h.weight(c)
	h.counts[v] = c - 1
}

// addColumn adds column x of rows [y0, y1).
func (h *histogram) addColumn(src *images.Plane, x, y0, y1 int) {
	for y := y0; y < y1; y++ {
		h.add(src.Row(y)[x])
	}
}

// removeColumn removes column x of rows [y0, y1).
func (h *histogram) removeColumn(src *images.Plane, x, y0, y1 int) {
	for y := y0; y < y1; y++ {
		h.remove(src.Row(y)[x])
	}
}

// proportional returns H/log2(count) for the current window.
func (h *histogram) proportional(count int) float64 {
	if count <= 1 {
		return 0
	}
	limit := h.log2[count]
	return (limit - h.s/float64(count)) / limit
}

// EntropyFast computes the same plane as Entropy without rebuilding the
// histogram per pixel.
//
// Along each row the window slides one column at a time: the column leaving on
// the left is removed and the column entering on the right is added, both
// clamped to the plane. Entropy is evaluated from a precomputed log2 table
// sized to the largest clipped window, so the inner loops do no floating point
// division and no log calls. The histogram is rebuilt at the start of every
// row, which also bounds accumulated rounding error.
//
// Performance: O(W*H*(2*RadiusY+1)) histogram updates per plane, independent
// of RadiusX.
//
// Returns a new plane with the dimensions of src.
func EntropyFast(src *images.Plane, opt Options) *images.Plane {
	w, h := src.Width(), src.Height()
	dst := images.NewPlane(w, h)
	if w == 0 || h == 0 {
		return dst
	}

	rx, ry := opt.radii(w, h)
	exponent := opt.exponent()
	maxWindow := min(2*rx+1, w) * min(2*ry+1, h)
	hist := histogram{log2: Log2Table(maxWindow)}

	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-ry), min(h, y+ry+1)
		rows := y1 - y0
		out := dst.Row(y)

		// Prime the window for x = 0: columns [0, min(w, rx+1)).
		hist.reset()
		for x := 0; x < min(w, rx+1); x++ {
			hist.addColumn(src, x, y0, y1)
		}

		for x := 0; x < w; x++ {
			cols := min(w, x+rx+1) - max(0, x-rx)
			out[x] = scale(hist.proportional(rows*cols), exponent)

			// Next window: remove left, add right.
			if left := x - rx; left >= 0 {
				hist.removeColumn(src, left, y0, y1)
			}
			if right := x + rx + 1; right < w {
				hist.addColumn(src, right, y0, y1)
			}
		}
	}
	return dst
}
