package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(t.TempDir(), "faces")
	require.NoError(t, err)
	return s
}

func TestStorageSaveGet(t *testing.T) {
	s := setupStorage(t)

	data := []byte("jpeg bytes")
	require.NoError(t, s.Save("Maja_Kowalska", data))

	assert.True(t, s.Exists("Maja_Kowalska"))

	got, err := s.Get("Maja_Kowalska")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStorageGet_Missing(t *testing.T) {
	s := setupStorage(t)

	_, err := s.Get("nobody")
	assert.Error(t, err)
	assert.False(t, s.Exists("nobody"))
}

func TestStorageRename(t *testing.T) {
	s := setupStorage(t)

	require.NoError(t, s.Save("old", []byte("img")))
	require.NoError(t, s.Rename("old", "new"))

	assert.False(t, s.Exists("old"))
	assert.True(t, s.Exists("new"))

	// A missing source is not an error; there may simply be no image.
	assert.NoError(t, s.Rename("nothing", "elsewhere"))

	// Renaming onto itself is a no-op.
	assert.NoError(t, s.Rename("new", "new"))
	assert.True(t, s.Exists("new"))
}

func TestStorageDelete(t *testing.T) {
	s := setupStorage(t)

	require.NoError(t, s.Save("meme_1", []byte("img")))
	require.NoError(t, s.Delete("meme_1"))
	assert.False(t, s.Exists("meme_1"))

	// Already gone is fine.
	assert.NoError(t, s.Delete("meme_1"))
}

func TestStorageHash(t *testing.T) {
	s := setupStorage(t)

	require.NoError(t, s.Save("a", []byte("same")))
	require.NoError(t, s.Save("b", []byte("same")))
	require.NoError(t, s.Save("c", []byte("different")))

	ha, err := s.Hash("a")
	require.NoError(t, err)
	hb, err := s.Hash("b")
	require.NoError(t, err)
	hc, err := s.Hash("c")
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.NotEqual(t, ha, hc)
	assert.Len(t, ha, 64)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(testPNG(t, 200, 150))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	// Tiny images skip the resize path.
	small, err := ComputeBlurHash(testPNG(t, 8, 8))
	require.NoError(t, err)
	assert.NotEmpty(t, small)
}

func TestComputeBlurHash_NotAnImage(t *testing.T) {
	_, err := ComputeBlurHash([]byte("not an image"))
	assert.Error(t, err)
}
