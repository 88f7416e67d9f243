package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nvr-ai/go-entropy/images"
	"github.com/pkg/errors"
)

// ImageFile represents an image file found in a directory.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Format is the encoded format inferred from the extension.
	Format images.ImageFormat
}

// LoadDirectoryImageFiles lists the decodable image files in a directory,
// sorted by name. Subdirectories and other files are skipped.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The image files found.
// - error: Error if the directory cannot be read.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		format, err := images.FormatFromPath(entry.Name())
		if err != nil {
			continue
		}
		files = append(files, ImageFile{
			Path:   filepath.Join(dir, entry.Name()),
			Format: format,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// OutputPath derives the output path for input inside outDir: the base name
// gains suffix and, when ext is non-empty, a new extension.
//
// Example: OutputPath("in/cat.jpg", "out", "-entropy", ".png") = "out/cat-entropy.png".
func OutputPath(input, outDir, suffix, ext string) string {
	base := filepath.Base(input)
	oldExt := filepath.Ext(base)
	if ext == "" {
		ext = oldExt
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := strings.TrimSuffix(base, oldExt) + suffix + ext
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	return filepath.Join(outDir, name)
}
