package images

import (
	"fmt"
)

// Decompose splits an image into its channel planes: one plane for FormatGray8
// and three planes (R, G, B) for packed formats. Channel bytes are copied as
// they are stored, without scaling. Alpha is dropped.
func Decompose(img Image) []*Plane {
	if img.IsGrayscale() {
		return []*Plane{ExtractGrayPlane(img)}
	}
	r, g, b := ExtractRGBPlanes(img)
	return []*Plane{r, g, b}
}

// ExtractGrayPlane copies a FormatGray8 image into a new plane. Packed images
// contribute their blue byte, matching a gray pixel stored as (v, v, v).
func ExtractGrayPlane(img Image) *Plane {
	plane := NewPlane(img.Width, img.Height)
	if img.IsGrayscale() {
		copy(plane.pix, img.Gray)
		return plane
	}
	for i, px := range img.ARGB[:plane.Len()] {
		plane.pix[i] = uint8(px)
	}
	return plane
}

// ExtractRGBPlanes copies the red, green and blue bytes of a packed image into
// three new planes.
func ExtractRGBPlanes(img Image) (r, g, b *Plane) {
	r = NewPlane(img.Width, img.Height)
	g = NewPlane(img.Width, img.Height)
	b = NewPlane(img.Width, img.Height)

	for y := 0; y < img.Height; y++ {
		src := img.ARGB[y*img.Width : (y+1)*img.Width]
		pr, pg, pb := r.Row(y), g.Row(y), b.Row(y)
		for x, px := range src {
			pr[x] = uint8(px >> 16)
			pg[x] = uint8(px >> 8)
			pb[x] = uint8(px)
		}
	}
	return r, g, b
}

// RecombineGray wraps a plane as a FormatGray8 image. The plane's buffer is
// moved into the image, not copied; the plane must not be used afterwards.
func RecombineGray(p *Plane) Image {
	img := Image{Format: FormatGray8, Width: p.width, Height: p.height, Gray: p.pix}
	p.pix, p.width, p.height = nil, 0, 0
	return img
}

// RecombineRGB packs three equally sized planes into an opaque image of the
// given packed format. It panics if the planes differ in size.
func RecombineRGB(r, g, b *Plane, format PixelFormat) Image {
	if !r.SameSize(g) || !r.SameSize(b) {
		panic(fmt.Sprintf("images: plane size mismatch: r=%dx%d g=%dx%d b=%dx%d",
			r.width, r.height, g.width, g.height, b.width, b.height))
	}
	if format == FormatGray8 {
		format = FormatRGB32
	}

	img := NewImage(format, r.width, r.height)
	for y := 0; y < r.height; y++ {
		dst := img.ARGB[y*img.Width : (y+1)*img.Width]
		pr, pg, pb := r.Row(y), g.Row(y), b.Row(y)
		for x := range dst {
			dst[x] = 0xff000000 | uint32(pr[x])<<16 | uint32(pg[x])<<8 | uint32(pb[x])
		}
	}
	return img
}

// Recombine dispatches on the number of planes produced by Decompose.
func Recombine(planes []*Plane, format PixelFormat) Image {
	switch len(planes) {
	case 1:
		return RecombineGray(planes[0])
	case 3:
		return RecombineRGB(planes[0], planes[1], planes[2], format)
	default:
		panic(fmt.Sprintf("images: cannot recombine %d planes", len(planes)))
	}
}
