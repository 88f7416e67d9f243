package images

import (
	"bufio"
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// DefaultQuality is the lossy encoder quality used when none is given.
const DefaultQuality = 90

// EncodeOptions controls lossy encoders. Zero values select defaults.
type EncodeOptions struct {
	// Quality in [1, 100] for JPEG and lossy WebP.
	Quality int
	// Lossless selects lossless WebP.
	Lossless bool
}

func (o EncodeOptions) quality() int {
	if o.Quality <= 0 || o.Quality > 100 {
		return DefaultQuality
	}
	return o.Quality
}

// Decode decodes an encoded image and reports its format.
//
// Arguments:
//   - r: The encoded image stream.
//
// Returns:
//   - image.Image: The decoded image.
//   - ImageFormat: The detected container format.
//   - error: An error if the data is not a supported image.
func Decode(r io.Reader) (image.Image, ImageFormat, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(16)

	var (
		img    image.Image
		format ImageFormat
		err    error
	)
	switch {
	case bytes.HasPrefix(head, []byte("\x89PNG\r\n\x1a\n")):
		format = FormatPNG
		img, err = png.Decode(br)
	case bytes.HasPrefix(head, []byte("\xff\xd8")):
		format = FormatJPEG
		img, err = jpeg.Decode(br)
	case bytes.HasPrefix(head, []byte("GIF8")):
		format = FormatGIF
		img, err = gif.Decode(br)
	case bytes.HasPrefix(head, []byte("BM")):
		format = FormatBMP
		img, err = bmp.Decode(br)
	case len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WEBP":
		format = FormatWebP
		img, err = webp.Decode(br)
	default:
		return nil, "", ErrUnsupportedFormat
	}
	if err != nil {
		return nil, format, errors.Wrapf(err, "failed to decode %s", format)
	}
	return img, format, nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format ImageFormat, opts EncodeOptions) error {
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: opts.quality()})
	case FormatGIF:
		err = gif.Encode(w, img, nil)
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatWebP:
		err = webp.Encode(w, img, &webp.Options{
			Lossless: opts.Lossless,
			Quality:  float32(opts.quality()),
		})
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "encode %q", format)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", format)
	}
	return nil
}

// DecodeFile reads and decodes the image stored at path.
func DecodeFile(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, errors.Wrap(err, "failed to open image")
	}
	defer f.Close()

	src, _, err := Decode(f)
	if err != nil {
		return Image{}, errors.Wrapf(err, "failed to load image %s", path)
	}
	return FromImage(src), nil
}

// EncodeFile encodes img into path, inferring the format from the extension.
func EncodeFile(path string, img Image, opts EncodeOptions) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, ToImage(img), format, opts); err != nil {
		return errors.Wrapf(err, "failed to save image %s", path)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
