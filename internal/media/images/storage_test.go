package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageRoundTrip(t *testing.T) {
	storage, err := NewCoverStorage(t.TempDir())
	require.NoError(t, err)

	data := []byte("fake jpeg bytes")
	require.NoError(t, storage.Save("book-1", data))

	assert.True(t, storage.Exists("book-1"))
	assert.False(t, storage.Exists("book-2"))

	got, err := storage.Get("book-1")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	hash, err := storage.Hash("book-1")
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	require.NoError(t, storage.Delete("book-1"))
	assert.False(t, storage.Exists("book-1"))

	// Deleting again is not an error
	assert.NoError(t, storage.Delete("book-1"))
}

func TestStorageValidation(t *testing.T) {
	storage, err := NewCoverStorage(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, storage.Save("", []byte("data")))
	assert.Error(t, storage.Save("id", nil))

	_, err = storage.Get("")
	assert.Error(t, err)

	_, err = NewStorage("", "covers", ".jpg")
	assert.Error(t, err)
}

func TestSourceStoragePath(t *testing.T) {
	storage, err := NewSourceStorage(t.TempDir())
	require.NoError(t, err)

	path := storage.Path("book-1")
	assert.True(t, strings.HasSuffix(path, "book-1.epub"))
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(testPNG(t, 200, 300))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	// Small images skip the resize path
	small, err := ComputeBlurHash(testPNG(t, 16, 16))
	require.NoError(t, err)
	assert.NotEmpty(t, small)
}

func TestComputeBlurHashInvalidData(t *testing.T) {
	_, err := ComputeBlurHash([]byte("not an image"))
	assert.Error(t, err)
}
