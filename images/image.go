// Package images - Image buffer definitions shared by the entropy pipeline.
package images

import (
	"fmt"
)

// PixelFormat tags the memory layout of an Image.
type PixelFormat int

// PixelFormat constants
const (
	// FormatGray8 stores one byte per pixel in Image.Gray.
	FormatGray8 PixelFormat = iota
	// FormatRGB32 stores packed 0xffRRGGBB pixels in Image.ARGB.
	FormatRGB32
	// FormatARGB32 stores packed 0xAARRGGBB pixels in Image.ARGB.
	FormatARGB32
)

// String returns the name of the pixel format.
func (f PixelFormat) String() string {
	switch f {
	case FormatGray8:
		return "gray8"
	case FormatRGB32:
		return "rgb32"
	case FormatARGB32:
		return "argb32"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// Image represents a decoded image with a pixel format, pixel data, width, and height.
type Image struct {
	// The pixel format of the image.
	Format PixelFormat `json:"format" yaml:"format"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
	// Gray holds Width*Height samples when Format is FormatGray8.
	Gray []uint8 `json:"gray,omitempty" yaml:"gray,omitempty"`
	// ARGB holds Width*Height packed pixels for FormatRGB32 and FormatARGB32.
	ARGB []uint32 `json:"argb,omitempty" yaml:"argb,omitempty"`
}

// NewImage allocates a zeroed image of the given format and dimensions.
// Negative dimensions are clamped to zero.
func NewImage(format PixelFormat, width, height int) Image {
	width, height = max(0, width), max(0, height)
	img := Image{Format: format, Width: width, Height: height}
	if format == FormatGray8 {
		img.Gray = make([]uint8, width*height)
	} else {
		img.ARGB = make([]uint32, width*height)
	}
	return img
}

// IsGrayscale reports whether the image is a single channel image.
func (img Image) IsGrayscale() bool {
	return img.Format == FormatGray8
}

// Empty reports whether the image has zero area.
func (img Image) Empty() bool {
	return img.Width <= 0 || img.Height <= 0
}

// PixelAt returns the packed 0xAARRGGBB value at (x, y). Grayscale samples are
// reported as opaque gray.
func (img Image) PixelAt(x, y int) uint32 {
	i := y*img.Width + x
	if img.Format == FormatGray8 {
		return grayToARGB(img.Gray[i])
	}
	return img.ARGB[i]
}

// Validate checks that the buffer matching Format holds exactly Width*Height
// samples.
func (img Image) Validate() error {
	if img.Width < 0 || img.Height < 0 {
		return fmt.Errorf("invalid dimensions: width=%d, height=%d", img.Width, img.Height)
	}
	want := img.Width * img.Height
	switch img.Format {
	case FormatGray8:
		if len(img.Gray) != want {
			return fmt.Errorf("gray buffer has %d samples, want %d", len(img.Gray), want)
		}
	case FormatRGB32, FormatARGB32:
		if len(img.ARGB) != want {
			return fmt.Errorf("argb buffer has %d pixels, want %d", len(img.ARGB), want)
		}
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, img.Format)
	}
	return nil
}

func grayToARGB(v uint8) uint32 {
	g := uint32(v)
	return 0xff000000 | g<<16 | g<<8 | g
}
