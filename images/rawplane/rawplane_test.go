package rawplane

import (
	"bytes"
	"testing"

	"github.com/nvr-ai/go-entropy/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampPlane(width, height, seed int) *images.Plane {
	p := images.NewPlane(width, height)
	for i := range p.Pix() {
		p.Pix()[i] = uint8(i*seed + i/width)
	}
	return p
}

func TestWriteReadSinglePlane(t *testing.T) {
	src := rampPlane(37, 21, 3)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, src))

	planes, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, planes, 1)
	assert.Equal(t, src.Width(), planes[0].Width())
	assert.Equal(t, src.Height(), planes[0].Height())
	assert.Equal(t, src.Pix(), planes[0].Pix())
}

func TestWriteReadThreePlanes(t *testing.T) {
	src := []*images.Plane{rampPlane(16, 9, 1), rampPlane(16, 9, 5), rampPlane(16, 9, 11)}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, src...))

	planes, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, planes, 3)
	for i := range src {
		assert.Equal(t, src[i].Pix(), planes[i].Pix(), "plane %d", i)
	}
}

func TestWriteReadEmptyPlane(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, images.NewPlane(0, 4)))

	planes, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, planes, 1)
	assert.Equal(t, 4, planes[0].Height())
	assert.Zero(t, planes[0].Len())
}

func TestImageRoundTrip(t *testing.T) {
	img := images.NewImage(images.FormatRGB32, 10, 10)
	for i := range img.ARGB {
		img.ARGB[i] = 0xff000000 | uint32(i*40503)&0xffffff
	}

	var buf bytes.Buffer
	require.NoError(t, WriteImage(&buf, img))
	out, err := ReadImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.ARGB, out.ARGB)

	gray := images.NewImage(images.FormatGray8, 3, 2)
	copy(gray.Gray, []uint8{1, 200, 3, 4, 5, 6})
	buf.Reset()
	require.NoError(t, WriteImage(&buf, gray))
	out, err = ReadImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, images.FormatGray8, out.Format)
	assert.Equal(t, gray.Gray, out.Gray)
}

func TestWriteRejectsBadPlaneSets(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf))
	assert.Error(t, Write(&buf, images.NewPlane(1, 1), images.NewPlane(1, 1)))
	assert.ErrorIs(t, Write(&buf, images.NewPlane(2, 2), images.NewPlane(2, 2), images.NewPlane(3, 2)), ErrDimensionMismatch)
}

func TestReadRejectsCorruptInput(t *testing.T) {
	var good bytes.Buffer
	require.NoError(t, Write(&good, rampPlane(8, 8, 7)))
	data := good.Bytes()

	tests := map[string][]byte{
		"empty":       nil,
		"short":       data[:10],
		"bad magic":   append([]byte("XPLN"), data[4:]...),
		"bad version": append(append([]byte{}, data[:4]...), append([]byte{9}, data[5:]...)...),
		"bad count":   append(append([]byte{}, data[:5]...), append([]byte{2}, data[6:]...)...),
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(in))
			assert.ErrorIs(t, err, ErrInvalidHeader)
		})
	}

	_, err := Read(bytes.NewReader(data[:len(data)-3]))
	assert.Error(t, err, "truncated payload")
}

func TestDeltaFilterCompressesSmoothPlanes(t *testing.T) {
	p := images.NewPlane(256, 256)
	for y := 0; y < 256; y++ {
		row := p.Row(y)
		for x := range row {
			row[x] = uint8(x + y)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, p))
	assert.Less(t, buf.Len(), p.Len()/20)
}
