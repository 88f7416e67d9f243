// Package kernels implements neighborhood filters over single channel planes.
package kernels

import (
	"math"

	"github.com/nvr-ai/go-entropy/images"
)

// Entropy computes the local Shannon entropy of every sample of src.
//
// For each pixel the histogram of the clipped window
// [y-RadiusY, y+RadiusY] x [x-RadiusX, x+RadiusX] is rebuilt from scratch and
// its entropy is divided by log2(count), the largest entropy that count samples
// can carry. The result is passed through the contrast curve
// (proportional^Exponent) and scaled to [0, 255]. Windows are clipped at the
// border, never mirrored or wrapped, so edge pixels see fewer samples.
//
// This is the reference implementation; EntropyFast produces the same output
// and should be preferred.
//
// Returns a new plane with the dimensions of src.
func Entropy(src *images.Plane, opt Options) *images.Plane {
	w, h := src.Width(), src.Height()
	dst := images.NewPlane(w, h)
	rx, ry := opt.radii(w, h)
	exponent := opt.exponent()

	var counts [256]int
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-ry), min(h, y+ry+1)
		out := dst.Row(y)

		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-rx), min(w, x+rx+1)

			counts = [256]int{}
			for ky := y0; ky < y1; ky++ {
				for _, v := range src.Row(ky)[x0:x1] {
					counts[v]++
				}
			}

			count := (y1 - y0) * (x1 - x0)
			out[x] = scale(proportionalEntropy(&counts, count), exponent)
		}
	}
	return dst
}

// proportionalEntropy returns H/log2(count) for a histogram holding count
// samples. A single sample carries no information and yields 0.
func proportionalEntropy(counts *[256]int, count int) float64 {
	if count <= 1 {
		return 0
	}
	rcount := 1 / float64(count)

	var entropy float64
	for _, c := range counts {
		if c != 0 {
			p := float64(c) * rcount
			entropy -= p * math.Log2(p)
		}
	}
	return entropy / math.Log2(float64(count))
}

// scale maps proportional entropy in [0, 1] to an 8-bit sample through the
// contrast curve p^exponent.
func scale(proportional, exponent float64) uint8 {
	if proportional <= 0 {
		return 0
	}
	if proportional > 1 {
		proportional = 1
	}

	// Tunable contrast curve, not part of the entropy measure itself.
	var v float64
	if exponent == 2 {
		v = proportional * proportional
	} else {
		v = math.Pow(proportional, exponent)
	}
	return uint8(math.Round(255 * v))
}
