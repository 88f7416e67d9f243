package images

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ImageFormat represents supported encoded image formats
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatWebP ImageFormat = "webp"
	FormatPNG  ImageFormat = "png"
	FormatBMP  ImageFormat = "bmp"
	FormatGIF  ImageFormat = "gif"
)

// ErrUnsupportedFormat is returned for pixel or file formats the package cannot handle.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var extensionFormats = map[string]ImageFormat{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".bmp":  FormatBMP,
	".gif":  FormatGIF,
	".webp": FormatWebP,
}

// FormatFromPath infers the encoded format from a file extension.
func FormatFromPath(path string) (ImageFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensionFormats[ext]; ok {
		return f, nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
}

// ParseFormat parses a format name such as "png" or "jpg".
func ParseFormat(name string) (ImageFormat, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}
	if f, ok := extensionFormats[name]; ok {
		return f, nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "format %q", strings.TrimPrefix(name, "."))
}

// IsSupportedPath reports whether path has an extension this package can decode.
func IsSupportedPath(path string) bool {
	_, err := FormatFromPath(path)
	return err == nil
}
