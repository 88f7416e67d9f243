package images

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// FromImage converts a decoded Go image into an Image buffer.
//
// Gray and Gray16 sources become FormatGray8 (Gray16 keeps its high byte).
// Everything else is normalized to non-premultiplied RGBA and packed, tagged
// FormatRGB32 when the source is opaque and FormatARGB32 otherwise.
func FromImage(src image.Image) Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	switch s := src.(type) {
	case *image.Gray:
		img := NewImage(FormatGray8, w, h)
		for y := 0; y < h; y++ {
			off := (y+b.Min.Y-s.Rect.Min.Y)*s.Stride + (b.Min.X - s.Rect.Min.X)
			copy(img.Gray[y*w:(y+1)*w], s.Pix[off:off+w])
		}
		return img
	case *image.Gray16:
		img := NewImage(FormatGray8, w, h)
		for y := 0; y < h; y++ {
			off := (y+b.Min.Y-s.Rect.Min.Y)*s.Stride + (b.Min.X-s.Rect.Min.X)*2
			row := img.Gray[y*w : (y+1)*w]
			for x := range row {
				row[x] = s.Pix[off+x*2]
			}
		}
		return img
	}

	nrgba, ok := src.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Rect, src, b.Min, draw.Src)
		b = nrgba.Rect
	}

	format := FormatRGB32
	if !isOpaque(src) {
		format = FormatARGB32
	}

	img := NewImage(format, w, h)
	for y := 0; y < h; y++ {
		off := (y+b.Min.Y-nrgba.Rect.Min.Y)*nrgba.Stride + (b.Min.X-nrgba.Rect.Min.X)*4
		row := img.ARGB[y*w : (y+1)*w]
		for x := range row {
			p := nrgba.Pix[off+x*4 : off+x*4+4 : off+x*4+4]
			a := uint32(p[3])
			if format == FormatRGB32 {
				a = 0xff
			}
			row[x] = a<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
		}
	}
	return img
}

// ToImage converts an Image buffer into a Go image suitable for encoding:
// *image.Gray for FormatGray8 and *image.NRGBA for packed formats.
func ToImage(img Image) image.Image {
	rect := image.Rect(0, 0, img.Width, img.Height)
	if img.IsGrayscale() {
		g := image.NewGray(rect)
		copy(g.Pix, img.Gray)
		return g
	}

	out := image.NewNRGBA(rect)
	for i, px := range img.ARGB {
		p := out.Pix[i*4 : i*4+4 : i*4+4]
		p[0] = uint8(px >> 16)
		p[1] = uint8(px >> 8)
		p[2] = uint8(px)
		p[3] = uint8(px >> 24)
		if img.Format == FormatRGB32 {
			p[3] = 0xff
		}
	}
	return out
}

func isOpaque(src image.Image) bool {
	if o, ok := src.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	switch src.ColorModel() {
	case color.GrayModel, color.Gray16Model, color.YCbCrModel, color.CMYKModel:
		return true
	}
	return false
}
