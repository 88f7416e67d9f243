package cvmat

import (
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-entropy/entropy"
	"github.com/nvr-ai/go-entropy/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func colorImage(width, height int) images.Image {
	img := images.NewImage(images.FormatRGB32, width, height)
	for i := range img.ARGB {
		img.ARGB[i] = 0xff000000 | uint32(i*7%256)<<16 | uint32(i*13%256)<<8 | uint32(i*29%256)
	}
	return img
}

func TestMatRoundTrip(t *testing.T) {
	gray := images.NewImage(images.FormatGray8, 5, 3)
	for i := range gray.Gray {
		gray.Gray[i] = uint8(i * 17)
	}
	argb := colorImage(4, 4)
	argb.Format = images.FormatARGB32
	argb.ARGB[0] = 0x10203040

	for _, img := range []images.Image{gray, colorImage(6, 2), argb} {
		t.Run(img.Format.String(), func(t *testing.T) {
			mat, err := ToMat(img)
			require.NoError(t, err)
			defer mat.Close()

			assert.Equal(t, img.Width, mat.Cols())
			assert.Equal(t, img.Height, mat.Rows())

			out, err := FromMat(mat)
			require.NoError(t, err)
			assert.Equal(t, img, out)
		})
	}
}

func TestToMatUsesBGROrder(t *testing.T) {
	img := images.NewImage(images.FormatRGB32, 1, 1)
	img.ARGB[0] = 0xff0a141e

	mat, err := ToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	v := mat.GetVecbAt(0, 0)
	assert.Equal(t, gocv.Vecb{0x1e, 0x14, 0x0a}, v)
}

func TestFromMatErrors(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	_, err := FromMat(empty)
	assert.Error(t, err)

	float := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV32F)
	defer float.Close()
	_, err = FromMat(float)
	assert.ErrorIs(t, err, images.ErrUnsupportedFormat)

	_, err = ToMat(images.NewImage(images.FormatGray8, 0, 0))
	assert.Error(t, err)
}

func TestEntropyThroughMat(t *testing.T) {
	img := colorImage(32, 24)
	mat, err := ToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	fromMat, err := FromMat(mat)
	require.NoError(t, err)
	assert.Equal(t,
		images.ComputeChecksum(entropy.Calculate(img, entropy.DefaultOptions())),
		images.ComputeChecksum(entropy.Calculate(fromMat, entropy.DefaultOptions())))
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.png")
	img := colorImage(20, 10)
	require.NoError(t, WriteFile(path, img))

	out, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, img.ARGB, out.ARGB)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
