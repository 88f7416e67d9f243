package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-entropy/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectoryImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "c.webp", "notes.txt", ".hidden.png", "d.bmp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 4)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f.Path))
	}
	assert.Equal(t, []string{"a.JPG", "b.png", "c.webp", "d.bmp"}, names)
	assert.Equal(t, images.FormatJPEG, files[0].Format)
	assert.Equal(t, images.FormatWebP, files[2].Format)
}

func TestLoadDirectoryImageFilesMissingDir(t *testing.T) {
	_, err := LoadDirectoryImageFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, outDir, suffix, ext string
		want                       string
	}{
		{"in/cat.jpg", "out", "-entropy", ".png", filepath.Join("out", "cat-entropy.png")},
		{"in/cat.jpg", "", "-entropy", "", filepath.Join("in", "cat-entropy.jpg")},
		{"dog.bmp", "maps", "", "webp", filepath.Join("maps", "dog.webp")},
		{"raw", "o", ".map", "", filepath.Join("o", "raw.map")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputPath(tt.input, tt.outDir, tt.suffix, tt.ext))
	}
}
