package kernels

import (
	"github.com/nvr-ai/go-entropy/images"
)

// PatternType defines the synthetic content used by tests and benchmarks.
type PatternType int

const (
	// PatternNoise: pseudo-random samples, near maximal entropy everywhere.
	PatternNoise PatternType = iota
	// PatternGradient: smooth horizontal ramp.
	PatternGradient
	// PatternChessboard: two values alternating every 4 pixels.
	PatternChessboard
	// PatternObjects: flat rectangles on a flat background.
	PatternObjects
	// PatternUniform: a single value.
	PatternUniform
)

func (p PatternType) String() string {
	return [...]string{"noise", "gradient", "chessboard", "objects", "uniform"}[p]
}

// generatePlane creates a deterministic plane with the given pattern.
func generatePlane(width, height int, pattern PatternType) *images.Plane {
	p := images.NewPlane(width, height)
	for y := 0; y < height; y++ {
		row := p.Row(y)
		for x := range row {
			switch pattern {
			case PatternNoise:
				seed := uint32(x + y*width)
				row[x] = uint8((seed*1103515245 + 12345) >> 24)
			case PatternGradient:
				row[x] = uint8(x * 255 / max(1, width-1))
			case PatternChessboard:
				if (x/4+y/4)%2 == 0 {
					row[x] = 32
				} else {
					row[x] = 224
				}
			case PatternObjects:
				row[x] = 40
				if x%64 >= 16 && x%64 < 48 && y%48 >= 8 && y%48 < 40 {
					row[x] = uint8(120 + (x/64+y/48)%4*30)
				}
			case PatternUniform:
				row[x] = 77
			}
		}
	}
	return p
}
