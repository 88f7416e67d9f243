package images

import (
	"image"

	"github.com/nfnt/resize"
)

// Downscale shrinks src so that neither side exceeds maxSide, preserving the
// aspect ratio. Images already within bounds, and maxSide <= 0, are returned
// unchanged.
//
// Entropy cost grows with pixel count times window area, so large photos are
// usually downscaled before filtering.
//
// Arguments:
//   - src: The decoded image.
//   - maxSide: The largest allowed width or height.
//
// Returns:
//   - image.Image: The (possibly) resized image.
func Downscale(src image.Image, maxSide int) image.Image {
	if maxSide <= 0 {
		return src
	}
	b := src.Bounds()
	if b.Dx() <= maxSide && b.Dy() <= maxSide {
		return src
	}
	return resize.Thumbnail(uint(maxSide), uint(maxSide), src, resize.Lanczos3)
}

// DownscaleImage applies Downscale to an Image buffer, keeping grayscale
// buffers grayscale.
func DownscaleImage(img Image, maxSide int) Image {
	if maxSide <= 0 || (img.Width <= maxSide && img.Height <= maxSide) {
		return img
	}
	out := FromImage(Downscale(ToImage(img), maxSide))
	if img.Format == FormatARGB32 && out.Format == FormatRGB32 {
		out.Format = FormatARGB32
	}
	return out
}
