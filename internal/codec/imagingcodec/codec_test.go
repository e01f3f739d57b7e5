package imagingcodec

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/phambaophuc/dali/internal/codec"
	"github.com/phambaophuc/dali/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func decode(t *testing.T, c *Codec, data []byte) codec.Image {
	t.Helper()
	img, err := c.Decode(data, false)
	require.NoError(t, err)
	return img
}

func TestDecode_Garbage(t *testing.T) {
	_, err := New().Decode([]byte("definitely not an image"), false)
	require.Error(t, err)
	assert.True(t, codec.IsOpenError(err))
}

func TestOrientation_NoExif(t *testing.T) {
	assert.Equal(t, 0, New().Orientation(encodePNG(t, 2, 2, color.White)))
}

func TestRotate(t *testing.T) {
	c := New()
	tests := []struct {
		angle        codec.Angle
		wantW, wantH int
	}{
		{codec.Angle0, 40, 20},
		{codec.Angle90, 20, 40},
		{codec.Angle180, 40, 20},
		{codec.Angle270, 20, 40},
	}

	for _, tt := range tests {
		img := decode(t, c, encodePNG(t, 40, 20, color.White))
		out, err := c.Rotate(img, tt.angle)
		require.NoError(t, err)
		assert.Equal(t, tt.wantW, out.Width(), "angle %d", tt.angle)
		assert.Equal(t, tt.wantH, out.Height(), "angle %d", tt.angle)
	}
}

func TestRotate_ClockwiseDirection(t *testing.T) {
	c := New()
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(1, 0, color.NRGBA{B: 255, A: 255})
	img := &frame{img: src}

	out, err := c.Rotate(img, codec.Angle90)
	require.NoError(t, err)

	// Clockwise: the left pixel ends up on top.
	got := out.(*frame).img
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, got.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, got.NRGBAAt(0, 1))
}

func TestResize(t *testing.T) {
	c := New()
	img := decode(t, c, encodePNG(t, 100, 50, color.White))

	out, err := c.Resize(img, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 50, out.Width())
	assert.Equal(t, 25, out.Height())

	_, err = c.Resize(out, 0)
	assert.Error(t, err)
}

func TestScaleAlpha(t *testing.T) {
	c := New()
	img := decode(t, c, encodePNG(t, 2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))

	out, err := c.ScaleAlpha(img, 0.5)
	require.NoError(t, err)
	assert.Equal(t, uint8(128), out.(*frame).img.NRGBAAt(1, 1).A)

	out, err = c.ScaleAlpha(out, 10)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), out.(*frame).img.NRGBAAt(1, 1).A)
}

func TestCompositeOver(t *testing.T) {
	c := New()
	base := decode(t, c, encodePNG(t, 10, 10, color.White))
	overlay := decode(t, c, encodePNG(t, 2, 2, color.NRGBA{R: 255, A: 255}))

	out, err := c.CompositeOver(base, overlay, 3, 4)
	require.NoError(t, err)

	pix := out.(*frame).img
	assert.Equal(t, 10, out.Width())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, pix.NRGBAAt(3, 4))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, pix.NRGBAAt(4, 5))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, pix.NRGBAAt(5, 4))
	assert.Equal(t, 2, overlay.Width(), "overlay stays usable")
}

func TestSupports(t *testing.T) {
	c := New()
	for _, format := range models.OutputFormats {
		want := format == models.FormatJPEG || format == models.FormatPNG
		assert.Equal(t, want, c.Supports(format), format)
	}
}

func TestEncode(t *testing.T) {
	c := New()

	t.Run("jpeg", func(t *testing.T) {
		img := decode(t, c, encodePNG(t, 30, 20, color.NRGBA{A: 0}))
		data, err := c.Encode(img, models.FormatJPEG, codec.OptionsFor(models.FormatJPEG, 80))
		require.NoError(t, err)

		decoded, err := jpeg.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 30, 20), decoded.Bounds())
		r, g, b, _ := decoded.At(10, 10).RGBA()
		assert.Greater(t, r>>8, uint32(240), "transparent areas flatten to white")
		assert.Greater(t, g>>8, uint32(240))
		assert.Greater(t, b>>8, uint32(240))
	})

	t.Run("png", func(t *testing.T) {
		img := decode(t, c, encodePNG(t, 30, 20, color.White))
		data, err := c.Encode(img, models.FormatPNG, codec.OptionsFor(models.FormatPNG, 80))
		require.NoError(t, err)

		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 30, cfg.Width)
	})

	t.Run("webp unsupported", func(t *testing.T) {
		img := decode(t, c, encodePNG(t, 3, 3, color.White))
		_, err := c.Encode(img, models.FormatWebP, codec.OptionsFor(models.FormatWebP, 80))
		require.Error(t, err)
		assert.False(t, codec.IsOpenError(err))
	})
}

func TestAutoRotate_AppliesOrientation(t *testing.T) {
	c := New()
	img := &frame{img: image.NewNRGBA(image.Rect(0, 0, 40, 10)), orientation: 6}

	out, err := c.AutoRotate(img)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Width())
	assert.Equal(t, 40, out.Height())

	out, err = c.AutoRotate(out)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Width(), "orientation is applied once")
}

func TestForeignImageRejected(t *testing.T) {
	_, err := New().Resize(foreign{}, 1)
	require.Error(t, err)
}

type foreign struct{}

func (foreign) Width() int  { return 1 }
func (foreign) Height() int { return 1 }
func (foreign) Close()      {}
