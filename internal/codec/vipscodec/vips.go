//go:build vips && cgo

// Package vipscodec is the libvips engine. It is compiled with -tags vips and
// needs libvips on the build host.
package vipscodec

import (
	"errors"
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/phambaophuc/dali/internal/codec"
	"github.com/phambaophuc/dali/internal/models"
	"go.uber.org/zap"
)

const Available = true

type ref struct {
	img *vips.ImageRef
}

func (r *ref) Width() int  { return r.img.Width() }
func (r *ref) Height() int { return r.img.Height() }
func (r *ref) Close() {
	if r.img != nil {
		r.img.Close()
		r.img = nil
	}
}

type Codec struct{}

// Startup initialises libvips and routes its log output through log. Call
// once at process start before any decode.
func Startup(opts Options, log *zap.Logger) {
	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		switch level {
		case vips.LogLevelError, vips.LogLevelCritical:
			log.Error(msg, zap.String("domain", domain))
		case vips.LogLevelWarning:
			log.Warn(msg, zap.String("domain", domain))
		default:
			log.Debug(msg, zap.String("domain", domain))
		}
	}, vips.LogLevelWarning)

	vips.Startup(&vips.Config{
		ConcurrencyLevel: opts.Concurrency,
		MaxCacheMem:      opts.MaxCacheMem,
		MaxCacheSize:     opts.MaxCacheSize,
	})
	log.Info("libvips started", zap.String("version", vips.Version))
}

func Shutdown() {
	vips.Shutdown()
}

func New() (codec.Codec, error) {
	return &Codec{}, nil
}

func (c *Codec) Name() string {
	return "vips"
}

func (c *Codec) Supports(format models.OutputFormat) bool {
	switch format {
	case models.FormatJPEG, models.FormatPNG, models.FormatWebP, models.FormatHEIC:
		return true
	}
	return false
}

// Decode ignores randomAccess: govips always opens buffers with random access.
func (c *Codec) Decode(data []byte, _ bool) (codec.Image, error) {
	img, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, codec.OpenError("decode", err)
	}
	return &ref{img: img}, nil
}

func (c *Codec) Orientation(data []byte) int {
	return codec.ExifOrientation(data)
}

func (c *Codec) AutoRotate(img codec.Image) (codec.Image, error) {
	r, err := unwrap(img, "autorotate")
	if err != nil {
		return img, err
	}
	if err := r.img.AutoRotate(); err != nil {
		return img, codec.ProcessingError("autorotate", err)
	}
	return r, nil
}

func (c *Codec) Rotate(img codec.Image, angle codec.Angle) (codec.Image, error) {
	r, err := unwrap(img, "rotate")
	if err != nil {
		return img, err
	}

	var va vips.Angle
	switch angle {
	case codec.Angle0:
		return r, nil
	case codec.Angle90:
		va = vips.Angle90
	case codec.Angle180:
		va = vips.Angle180
	case codec.Angle270:
		va = vips.Angle270
	default:
		return img, codec.ProcessingError("rotate", fmt.Errorf("unsupported angle %d", angle))
	}
	if err := r.img.Rotate(va); err != nil {
		return img, codec.ProcessingError("rotate", err)
	}
	return r, nil
}

func (c *Codec) Resize(img codec.Image, scale float64) (codec.Image, error) {
	r, err := unwrap(img, "resize")
	if err != nil {
		return img, err
	}
	if scale <= 0 {
		return img, codec.ProcessingError("resize", fmt.Errorf("invalid scale %g", scale))
	}
	if scale == 1 {
		return r, nil
	}
	if err := r.img.Resize(scale, vips.KernelLanczos3); err != nil {
		return img, codec.ProcessingError("resize", err)
	}
	return r, nil
}

func (c *Codec) EnsureAlpha(img codec.Image) (codec.Image, error) {
	r, err := unwrap(img, "alpha")
	if err != nil {
		return img, err
	}
	if r.img.HasAlpha() {
		return r, nil
	}
	if err := r.img.AddAlpha(); err != nil {
		return img, codec.ProcessingError("alpha", err)
	}
	return r, nil
}

// ScaleAlpha multiplies the last band and leaves the colour bands alone.
func (c *Codec) ScaleAlpha(img codec.Image, factor float64) (codec.Image, error) {
	r, err := unwrap(img, "alpha")
	if err != nil {
		return img, err
	}
	if factor == 1 {
		return r, nil
	}

	bands := r.img.Bands()
	mul := make([]float64, bands)
	add := make([]float64, bands)
	for i := range mul {
		mul[i] = 1
	}
	mul[bands-1] = factor
	if err := r.img.Linear(mul, add); err != nil {
		return img, codec.ProcessingError("alpha", err)
	}
	return r, nil
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
	if err := b.img.Composite(o.img, vips.BlendModeOver, x, y); err != nil {
		return base, codec.ProcessingError("composite", err)
	}
	return b, nil
}

func (c *Codec) Encode(img codec.Image, format models.OutputFormat, opts codec.EncodeOptions) ([]byte, error) {
	r, err := unwrap(img, "encode")
	if err != nil {
		return nil, err
	}

	var data []byte
	switch format {
	case models.FormatJPEG:
		if len(opts.Background) > 0 && r.img.HasAlpha() {
			v := uint8(opts.Background[0])
			if err := r.img.Flatten(&vips.Color{R: v, G: v, B: v}); err != nil {
				return nil, codec.ProcessingError("encode", err)
			}
		}
		params := vips.NewJpegExportParams()
		params.Quality = opts.Quality
		params.StripMetadata = opts.StripMetadata
		params.Interlace = opts.Interlace
		params.OptimizeCoding = opts.OptimizeCoding
		params.OptimizeScans = opts.OptimizeScans
		data, _, err = r.img.ExportJpeg(params)
	case models.FormatPNG:
		params := vips.NewPngExportParams()
		params.Quality = opts.Quality
		params.StripMetadata = opts.StripMetadata
		params.Bitdepth = opts.BitDepth
		data, _, err = r.img.ExportPng(params)
	case models.FormatWebP:
		params := vips.NewWebpExportParams()
		params.Quality = opts.Quality
		params.StripMetadata = opts.StripMetadata
		params.ReductionEffort = opts.Effort
		data, _, err = r.img.ExportWebp(params)
	case models.FormatHEIC:
		params := vips.NewHeifExportParams()
		params.Quality = opts.Quality
		data, _, err = r.img.ExportHeif(params)
	default:
		err = errors.New("unknown output format")
	}
	if err != nil {
		return nil, codec.ProcessingError("encode", err)
	}
	return data, nil
}

func unwrap(img codec.Image, op string) (*ref, error) {
	r, ok := img.(*ref)
	if !ok || r == nil || r.img == nil {
		return nil, codec.ProcessingError(op, fmt.Errorf("image %T not owned by vips engine", img))
	}
	return r, nil
}
