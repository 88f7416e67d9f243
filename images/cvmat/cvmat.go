// Package cvmat converts between OpenCV matrices and image buffers so frames
// from gocv (files, cameras, video) can be fed to the entropy pipeline.
//
// 3 channel mats are BGR and 4 channel mats are BGRA, as OpenCV stores them.
package cvmat

import (
	"github.com/nvr-ai/go-entropy/images"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// FromMat copies an 8-bit 1, 3 or 4 channel Mat into an Image.
//
// Arguments:
//   - mat: The source matrix (CV_8UC1, CV_8UC3 or CV_8UC4).
//
// Returns:
//   - images.Image: FormatGray8, FormatRGB32 or FormatARGB32 respectively.
//   - error: An error if the Mat is empty or of an unsupported type.
func FromMat(mat gocv.Mat) (images.Image, error) {
	if mat.Empty() {
		return images.Image{}, errors.New("input mat is empty")
	}
	if !mat.IsContinuous() {
		c := mat.Clone()
		defer c.Close()
		return FromMat(c)
	}

	width, height := mat.Cols(), mat.Rows()
	data, err := mat.DataPtrUint8()
	if err != nil {
		return images.Image{}, errors.Wrap(err, "failed to access mat data")
	}

	switch mat.Type() {
	case gocv.MatTypeCV8UC1:
		img := images.NewImage(images.FormatGray8, width, height)
		copy(img.Gray, data)
		return img, nil
	case gocv.MatTypeCV8UC3:
		img := images.NewImage(images.FormatRGB32, width, height)
		for i := range img.ARGB {
			p := data[i*3 : i*3+3 : i*3+3]
			img.ARGB[i] = 0xff000000 | uint32(p[2])<<16 | uint32(p[1])<<8 | uint32(p[0])
		}
		return img, nil
	case gocv.MatTypeCV8UC4:
		img := images.NewImage(images.FormatARGB32, width, height)
		for i := range img.ARGB {
			p := data[i*4 : i*4+4 : i*4+4]
			img.ARGB[i] = uint32(p[3])<<24 | uint32(p[2])<<16 | uint32(p[1])<<8 | uint32(p[0])
		}
		return img, nil
	default:
		return images.Image{}, errors.Wrapf(images.ErrUnsupportedFormat, "mat type %v", mat.Type())
	}
}

// ToMat copies an Image into a new Mat: CV_8UC1 for FormatGray8, CV_8UC3 (BGR)
// for FormatRGB32 and CV_8UC4 (BGRA) for FormatARGB32. The caller must Close
// the returned Mat.
func ToMat(img images.Image) (gocv.Mat, error) {
	if err := img.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	if img.Empty() {
		return gocv.NewMat(), errors.New("image is empty")
	}

	switch img.Format {
	case images.FormatGray8:
		return matFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC1, img.Gray)
	case images.FormatRGB32:
		buf := make([]byte, len(img.ARGB)*3)
		for i, px := range img.ARGB {
			buf[i*3+0] = uint8(px)
			buf[i*3+1] = uint8(px >> 8)
			buf[i*3+2] = uint8(px >> 16)
		}
		return matFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, buf)
	default:
		buf := make([]byte, len(img.ARGB)*4)
		for i, px := range img.ARGB {
			buf[i*4+0] = uint8(px)
			buf[i*4+1] = uint8(px >> 8)
			buf[i*4+2] = uint8(px >> 16)
			buf[i*4+3] = uint8(px >> 24)
		}
		return matFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC4, buf)
	}
}

// matFromBytes builds a Mat that owns a copy of data; NewMatFromBytes only
// wraps the Go slice.
func matFromBytes(rows, cols int, mt gocv.MatType, data []byte) (gocv.Mat, error) {
	view, err := gocv.NewMatFromBytes(rows, cols, mt, data)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "failed to create mat")
	}
	defer view.Close()
	return view.Clone(), nil
}

// ReadFile decodes an image file with OpenCV. Grayscale files stay single
// channel; deeper bit depths are reduced to 8 bits.
func ReadFile(path string) (images.Image, error) {
	mat := gocv.IMRead(path, gocv.IMReadAnyColor)
	defer mat.Close()
	if mat.Empty() {
		return images.Image{}, errors.Errorf("failed to load image %s", path)
	}
	img, err := FromMat(mat)
	if err != nil {
		return images.Image{}, errors.Wrapf(err, "failed to convert %s", path)
	}
	return img, nil
}

// WriteFile encodes img with OpenCV; the format follows the file extension.
func WriteFile(path string, img images.Image) error {
	mat, err := ToMat(img)
	if err != nil {
		return errors.Wrapf(err, "failed to convert image for %s", path)
	}
	defer mat.Close()

	if ok := gocv.IMWrite(path, mat); !ok {
		return errors.Errorf("failed to save image %s", path)
	}
	return nil
}
