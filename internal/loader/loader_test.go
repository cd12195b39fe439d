package loader

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, data, 0o644))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 255, 0, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 1, color.NRGBA{10, 20, 30, 128})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// tgaBytes is a 2x1 top-to-bottom 24 bpp TGA: red, then blue.
func tgaBytes() []byte {
	header := make([]byte, 18)
	header[2] = 2
	header[12] = 2
	header[14] = 1
	header[16] = 24
	header[17] = 0x20
	return append(header, 0, 0, 255, 255, 0, 0)
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "textures/a.png", pngBytes(t))
	writeFile(t, dir, "b.tga", tgaBytes())

	m := NewManager(0)
	require.NoError(t, m.AddRoot(dir))

	img, err := m.LoadImage(context.Background(), "textures/a.png")
	require.NoError(t, err)
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Equal(t, []byte{255, 0, 0, 0, 255, 0, 0, 0, 255, 10, 20, 30}, img.Pix)

	img, err = m.LoadImage(context.Background(), "b.tga")
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 0, 0, 0, 0, 255}, img.Pix)
}

func TestDecodeUnsupported(t *testing.T) {
	_, _, err := Decode([]byte("hello, world"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, _, err = Decode([]byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestRootPriority(t *testing.T) {
	low, high := t.TempDir(), t.TempDir()
	writeFile(t, low, "x.obj", []byte("low"))
	writeFile(t, high, "x.obj", []byte("high"))
	writeFile(t, low, "only.obj", []byte("only"))

	m := NewManager(0)
	require.NoError(t, m.AddRoot(low))
	require.NoError(t, m.AddRoot(high))
	assert.Equal(t, []string{low, high}, m.Roots())

	text, err := m.LoadText(context.Background(), "x.obj")
	require.NoError(t, err)
	assert.Equal(t, "high", text)

	text, err = m.LoadText(context.Background(), `only.obj`)
	require.NoError(t, err)
	assert.Equal(t, "only", text)

	_, err = m.LoadText(context.Background(), "missing.obj")
	assert.ErrorIs(t, err, ErrNotFound)

	abs := filepath.Join(low, "x.obj")
	text, err = m.LoadText(context.Background(), abs)
	require.NoError(t, err)
	assert.Equal(t, "low", text, "absolute paths skip the roots")
}

func TestAddRootErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.txt", []byte("x"))

	m := NewManager(0)
	assert.Error(t, m.AddRoot(filepath.Join(dir, "nope")))
	assert.Error(t, m.AddRoot(filepath.Join(dir, "file.txt")))
}

func TestLoadTextUTF16(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "u.obj", []byte{0xFF, 0xFE, 'v', 0, ' ', 0, '1', 0})

	m := NewManager(0)
	require.NoError(t, m.AddRoot(dir))
	text, err := m.LoadText(context.Background(), "u.obj")
	require.NoError(t, err)
	assert.Equal(t, "v 1", text)
}

func TestReadCachesAndInvalidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.obj", []byte("one"))

	m := NewManager(0)
	require.NoError(t, m.AddRoot(dir))
	ctx := context.Background()

	data, err := m.Read(ctx, "a.obj")
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	writeFile(t, dir, "a.obj", []byte("two"))
	data, err = m.Read(ctx, "a.obj")
	require.NoError(t, err)
	assert.Equal(t, "one", string(data), "served from cache")
	hits, misses := m.Cache().Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	m.Invalidate("a.obj")
	data, err = m.Read(ctx, "a.obj")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	m.Close()
	assert.Equal(t, 0, m.Cache().Len())
	assert.Empty(t, m.Roots())
}

func TestReadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewManager(0).Read(ctx, "a.obj")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("a", []byte("3"))
	c.Set("c", []byte("4"))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry evicted")
	v, ok := c.Get("c")
	require.True(t, ok)
	assert.Equal(t, "4", string(v))

	c.Delete("b")
	assert.Equal(t, 1, c.Len())
	c.Clear()
	hits, misses := c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}
