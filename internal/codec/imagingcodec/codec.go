// Package imagingcodec is the pure-Go engine built on disintegration/imaging.
// It decodes jpeg, png, gif, bmp, tiff and webp and encodes jpeg and png.
package imagingcodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/dali/internal/codec"
	"github.com/phambaophuc/dali/internal/models"
	_ "golang.org/x/image/webp"
)

var errUnsupportedFormat = errors.New("output format not supported by imaging engine")

type frame struct {
	img         *image.NRGBA
	orientation int
}

func (f *frame) Width() int  { return f.img.Bounds().Dx() }
func (f *frame) Height() int { return f.img.Bounds().Dy() }
func (f *frame) Close()      { f.img = nil }

type Codec struct{}

func New() *Codec {
	return &Codec{}
}

func (c *Codec) Name() string {
	return "imaging"
}

// Supports is true for JPEG and PNG only; the pure-Go stack has no WebP or
// HEIF encoder.
func (c *Codec) Supports(format models.OutputFormat) bool {
	return format == models.FormatJPEG || format == models.FormatPNG
}

// Decode ignores randomAccess; the stdlib decoders always read the whole image.
func (c *Codec) Decode(data []byte, _ bool) (codec.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, codec.OpenError("decode", err)
	}
	return &frame{img: imaging.Clone(img), orientation: codec.ExifOrientation(data)}, nil
}

func (c *Codec) Orientation(data []byte) int {
	return codec.ExifOrientation(data)
}

func (c *Codec) AutoRotate(img codec.Image) (codec.Image, error) {
	f, err := unwrap(img, "autorotate")
	if err != nil {
		return img, err
	}

	switch f.orientation {
	case 2:
		f.img = imaging.FlipH(f.img)
	case 3:
		f.img = imaging.Rotate180(f.img)
	case 4:
		f.img = imaging.FlipV(f.img)
	case 5:
		f.img = imaging.Transpose(f.img)
	case 6:
		f.img = imaging.Rotate270(f.img)
	case 7:
		f.img = imaging.Transverse(f.img)
	case 8:
		f.img = imaging.Rotate90(f.img)
	}
	f.orientation = 1
	return f, nil
}

func (c *Codec) Rotate(img codec.Image, angle codec.Angle) (codec.Image, error) {
	f, err := unwrap(img, "rotate")
	if err != nil {
		return img, err
	}

	// imaging rotates anticlockwise.
	switch angle {
	case codec.Angle0:
	case codec.Angle90:
		f.img = imaging.Rotate270(f.img)
	case codec.Angle180:
		f.img = imaging.Rotate180(f.img)
	case codec.Angle270:
		f.img = imaging.Rotate90(f.img)
	default:
		return img, codec.ProcessingError("rotate", fmt.Errorf("unsupported angle %d", angle))
	}
	return f, nil
}

func (c *Codec) Resize(img codec.Image, scale float64) (codec.Image, error) {
	f, err := unwrap(img, "resize")
	if err != nil {
		return img, err
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return img, codec.ProcessingError("resize", fmt.Errorf("invalid scale %g", scale))
	}

	w := max(1, int(math.Round(float64(f.Width())*scale)))
	h := max(1, int(math.Round(float64(f.Height())*scale)))
	if w == f.Width() && h == f.Height() {
		return f, nil
	}
	f.img = imaging.Resize(f.img, w, h, imaging.Lanczos)
	return f, nil
}

// EnsureAlpha is a no-op: frames are always NRGBA.
func (c *Codec) EnsureAlpha(img codec.Image) (codec.Image, error) {
	return unwrap(img, "alpha")
}

func (c *Codec) ScaleAlpha(img codec.Image, factor float64) (codec.Image, error) {
	f, err := unwrap(img, "alpha")
	if err != nil {
		return img, err
	}
	if factor == 1 {
		return f, nil
	}
	factor = math.Max(0, factor)

	pix := f.img.Pix
	for i := 3; i < len(pix); i += 4 {
		pix[i] = uint8(math.Min(255, math.Round(float64(pix[i])*factor)))
	}
	return f, nil
}

func (c *Codec) CompositeOver(base, overlay codec.Image, x, y int) (codec.Image, error) {
	b, err := unwrap(base, "composite")
	if err != nil {
		return base, err
	}
	o, err := unwrap(overlay, "composite")
	if err != nil {
		return base, err
	}
	b.img = imaging.Overlay(b.img, o.img, image.Pt(x, y), 1.0)
	return b, nil
}

func (c *Codec) Encode(img codec.Image, format models.OutputFormat, opts codec.EncodeOptions) ([]byte, error) {
	f, err := unwrap(img, "encode")
	if err != nil {
		return nil, err
	}

	// The stdlib encoders never write metadata, so StripMetadata always holds.
	buf := &bytes.Buffer{}
	switch format {
	case models.FormatJPEG:
		src := f.img
		if len(opts.Background) > 0 {
			src = flatten(src, opts.Background)
		}
		err = imaging.Encode(buf, src, imaging.JPEG, imaging.JPEGQuality(opts.Quality))
	case models.FormatPNG:
		err = imaging.Encode(buf, f.img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	default:
		return nil, codec.ProcessingError("encode", fmt.Errorf("%w: %s", errUnsupportedFormat, format))
	}
	if err != nil {
		return nil, codec.ProcessingError("encode", err)
	}
	return buf.Bytes(), nil
}

func unwrap(img codec.Image, op string) (*frame, error) {
	f, ok := img.(*frame)
	if !ok || f == nil || f.img == nil {
		return nil, codec.ProcessingError(op, fmt.Errorf("image %T not owned by imaging engine", img))
	}
	return f, nil
}

// flatten composes src over a solid background. A single value is used for
// every channel.
func flatten(src *image.NRGBA, background []float64) *image.NRGBA {
	channel := func(i int) uint8 {
		v := background[0]
		if i < len(background) {
			v = background[i]
		}
		return uint8(math.Max(0, math.Min(255, v)))
	}
	bg := imaging.New(src.Bounds().Dx(), src.Bounds().Dy(), color.NRGBA{R: channel(0), G: channel(1), B: channel(2), A: 255})
	return imaging.Overlay(bg, src, image.Pt(0, 0), 1.0)
}
