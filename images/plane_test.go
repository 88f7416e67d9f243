package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlaneClampsNegativeDimensions(t *testing.T) {
	p := NewPlane(-3, 4)
	assert.Equal(t, 0, p.Width())
	assert.Equal(t, 4, p.Height())
	assert.Zero(t, p.Len())

	p = NewPlane(5, -1)
	assert.Equal(t, 5, p.Width())
	assert.Equal(t, 0, p.Height())
	assert.Zero(t, p.Len())
}

func TestNewPlaneIsZeroed(t *testing.T) {
	p := NewPlane(6, 3)
	require.Len(t, p.Pix(), 18)
	for _, v := range p.Pix() {
		assert.Zero(t, v)
	}
}

func TestPlaneRowLayout(t *testing.T) {
	p := NewPlane(4, 3)
	for i := range p.Pix() {
		p.Pix()[i] = uint8(i)
	}

	assert.Equal(t, []uint8{0, 1, 2, 3}, p.Row(0))
	assert.Equal(t, []uint8{4, 5, 6, 7}, p.Row(1))
	assert.Equal(t, []uint8{8, 9, 10, 11}, p.Row(2))

	// Rows are views into the plane.
	p.Row(1)[2] = 99
	assert.Equal(t, uint8(99), p.Pix()[6])
}

func TestPlaneRowClampsIndex(t *testing.T) {
	p := NewPlane(2, 3)
	copy(p.Pix(), []uint8{1, 2, 3, 4, 5, 6})

	tests := []struct {
		y    int
		want []uint8
	}{
		{y: -100, want: []uint8{1, 2}},
		{y: -1, want: []uint8{1, 2}},
		{y: 0, want: []uint8{1, 2}},
		{y: 2, want: []uint8{5, 6}},
		{y: 3, want: []uint8{5, 6}},
		{y: 1 << 30, want: []uint8{5, 6}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Row(tt.y), "row %d", tt.y)
	}
}

func TestPlaneRowOnEmptyPlane(t *testing.T) {
	for _, p := range []*Plane{NewPlane(0, 0), NewPlane(3, 0), NewPlane(0, 3)} {
		assert.NotPanics(t, func() {
			assert.Empty(t, p.Row(-1))
			assert.Empty(t, p.Row(0))
			assert.Empty(t, p.Row(5))
		})
	}
}

func TestPlaneRowCannotGrowIntoNextRow(t *testing.T) {
	p := NewPlane(2, 2)
	row := p.Row(0)
	assert.Equal(t, 2, cap(row))
	_ = append(row, 42)
	assert.Equal(t, uint8(0), p.Pix()[2])
}

func TestPlaneClone(t *testing.T) {
	p := NewPlane(3, 2)
	copy(p.Pix(), []uint8{9, 8, 7, 6, 5, 4})

	c := p.Clone()
	assert.True(t, c.SameSize(p))
	assert.Equal(t, p.Pix(), c.Pix())

	c.Pix()[0] = 0
	assert.Equal(t, uint8(9), p.Pix()[0])
}
