package images

// Plane is a single channel, row-major byte buffer of Width*Height samples.
//
// Planes are handed between pipeline stages by pointer; whoever holds the
// pointer owns the buffer. Use Clone when an independent copy is wanted.
type Plane struct {
	width  int
	height int
	pix    []uint8
}

// NewPlane allocates a zeroed plane. Negative dimensions are clamped to zero.
func NewPlane(width, height int) *Plane {
	width, height = max(0, width), max(0, height)
	return &Plane{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height),
	}
}

// Width returns the number of samples per row.
func (p *Plane) Width() int { return p.width }

// Height returns the number of rows.
func (p *Plane) Height() int { return p.height }

// Len returns Width*Height.
func (p *Plane) Len() int { return len(p.pix) }

// Pix exposes the underlying buffer.
func (p *Plane) Pix() []uint8 { return p.pix }

// Row returns row y as a slice of length Width. y is clamped to [0, Height-1],
// so neighborhood code may ask for rows just outside the plane. A plane without
// rows returns an empty slice.
func (p *Plane) Row(y int) []uint8 {
	if p.height == 0 {
		return p.pix[:0:0]
	}
	if y < 0 {
		y = 0
	} else if y >= p.height {
		y = p.height - 1
	}
	start := y * p.width
	end := start + p.width
	return p.pix[start:end:end]
}

// Clone returns a deep copy of the plane.
func (p *Plane) Clone() *Plane {
	c := &Plane{width: p.width, height: p.height, pix: make([]uint8, len(p.pix))}
	copy(c.pix, p.pix)
	return c
}

// SameSize reports whether both planes have identical dimensions.
func (p *Plane) SameSize(o *Plane) bool {
	return p.width == o.width && p.height == o.height
}
