// Package rawplane stores entropy planes losslessly in a compact container.
//
// Layout (little endian):
//
//	magic    [4]byte  "EPLN"
//	version  uint8
//	planes   uint8    1 (gray) or 3 (R, G, B)
//	filter   uint8    0 = none, 1 = horizontal delta
//	reserved uint8
//	width    uint32
//	height   uint32
//	length   uint32   size of the zstd payload
//	payload  []byte   zstd frame of planes*width*height samples, plane after plane
//
// Entropy maps are locally smooth, so the horizontal delta filter followed by
// zstd typically shrinks them far below PNG size.
package rawplane

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/nvr-ai/go-entropy/images"
	"github.com/pkg/errors"
)

const (
	version    = 1
	headerSize = 20

	filterNone  = 0
	filterDelta = 1

	// maxSamples bounds allocations driven by untrusted headers.
	maxSamples = 1 << 30
)

var magic = [4]byte{'E', 'P', 'L', 'N'}

var (
	// ErrInvalidHeader is returned when the stream is not a rawplane container.
	ErrInvalidHeader = errors.New("rawplane: invalid header")
	// ErrDimensionMismatch is returned when planes of different sizes are written together.
	ErrDimensionMismatch = errors.New("rawplane: plane dimensions differ")
)

var encoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(
			nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		)
		if err != nil {
			panic(err)
		}
		return enc
	},
}

var decoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(err)
		}
		return dec
	},
}

// Write encodes one or three equally sized planes to w.
func Write(w io.Writer, planes ...*images.Plane) error {
	if len(planes) != 1 && len(planes) != 3 {
		return errors.Errorf("rawplane: cannot write %d planes", len(planes))
	}
	for _, p := range planes[1:] {
		if !p.SameSize(planes[0]) {
			return ErrDimensionMismatch
		}
	}
	width, height := planes[0].Width(), planes[0].Height()

	raw := make([]byte, 0, len(planes)*width*height)
	for _, p := range planes {
		raw = appendDelta(raw, p)
	}

	var payload []byte
	if len(raw) > 0 {
		enc := encoderPool.Get().(*zstd.Encoder)
		payload = enc.EncodeAll(raw, nil)
		encoderPool.Put(enc)
	}

	var hdr [headerSize]byte
	copy(hdr[0:4], magic[:])
	hdr[4] = version
	hdr[5] = uint8(len(planes))
	hdr[6] = filterDelta
	binary.LittleEndian.PutUint32(hdr[8:], uint32(width))
	binary.LittleEndian.PutUint32(hdr[12:], uint32(height))
	binary.LittleEndian.PutUint32(hdr[16:], uint32(len(payload)))

	if _, err := w.Write(hdr[:]); err != nil {
		return errors.Wrap(err, "rawplane: write header")
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Wrap(err, "rawplane: write payload")
	}
	return nil
}

// Read decodes planes previously written by Write.
func Read(r io.Reader) ([]*images.Plane, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, errors.Wrap(ErrInvalidHeader, err.Error())
	}
	if !bytes.Equal(hdr[0:4], magic[:]) || hdr[4] != version {
		return nil, ErrInvalidHeader
	}

	count := int(hdr[5])
	filter := hdr[6]
	width := int(binary.LittleEndian.Uint32(hdr[8:]))
	height := int(binary.LittleEndian.Uint32(hdr[12:]))
	length := int(binary.LittleEndian.Uint32(hdr[16:]))

	if (count != 1 && count != 3) || filter > filterDelta {
		return nil, ErrInvalidHeader
	}
	if width > maxSamples || height > maxSamples || width*height > maxSamples/count {
		return nil, errors.Wrapf(ErrInvalidHeader, "plane %dx%d too large", width, height)
	}

	if length > maxSamples {
		return nil, errors.Wrapf(ErrInvalidHeader, "payload of %d bytes too large", length)
	}

	payload := make([]byte, length)
	_, err := io.ReadFull(r, payload)
	if err != nil {
		return nil, errors.Wrap(err, "rawplane: read payload")
	}

	raw := payload
	if length > 0 {
		dec := decoderPool.Get().(*zstd.Decoder)
		raw, err = dec.DecodeAll(payload, make([]byte, 0, count*width*height))
		decoderPool.Put(dec)
		if err != nil {
			return nil, errors.Wrap(err, "rawplane: decompress")
		}
	}
	if len(raw) != count*width*height {
		return nil, errors.Errorf("rawplane: payload holds %d samples, want %d", len(raw), count*width*height)
	}

	planes := make([]*images.Plane, count)
	for i := range planes {
		p := images.NewPlane(width, height)
		copy(p.Pix(), raw[i*width*height:])
		if filter == filterDelta {
			undoDelta(p)
		}
		planes[i] = p
	}
	return planes, nil
}

// WriteImage stores the channel planes of img.
func WriteImage(w io.Writer, img images.Image) error {
	return Write(w, images.Decompose(img)...)
}

// ReadImage restores an opaque image from a container: FormatGray8 for one
// plane, FormatRGB32 for three.
func ReadImage(r io.Reader) (images.Image, error) {
	planes, err := Read(r)
	if err != nil {
		return images.Image{}, err
	}
	return images.Recombine(planes, images.FormatRGB32), nil
}

// appendDelta appends each row of p as differences to the left neighbor.
func appendDelta(dst []byte, p *images.Plane) []byte {
	for y := 0; y < p.Height(); y++ {
		var prev uint8
		for _, v := range p.Row(y) {
			dst = append(dst, v-prev)
			prev = v
		}
	}
	return dst
}

func undoDelta(p *images.Plane) {
	for y := 0; y < p.Height(); y++ {
		row := p.Row(y)
		var prev uint8
		for x, d := range row {
			prev += d
			row[x] = prev
		}
	}
}
