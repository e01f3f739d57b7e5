package processor

import (
	"fmt"

	"github.com/phambaophuc/dali/internal/apperror"
	"github.com/phambaophuc/dali/internal/codec"
	"github.com/phambaophuc/dali/internal/models"
	"go.uber.org/zap"
)

// Overlay is a fetched watermark paired with the settings it was requested with.
type Overlay struct {
	Spec models.WatermarkSpec
	Data []byte
}

// Job is everything one composition needs. The buffers belong to the job.
type Job struct {
	Base     []byte
	Overlays []Overlay
	Request  *models.ImageRequest
}

type Output struct {
	Data   []byte
	Format models.OutputFormat
	Width  int
	Height int
}

// ImageProcessor runs the codec steps for one request. It is synchronous and
// CPU-bound; callers run it on the worker pool.
type ImageProcessor struct {
	codec  codec.Codec
	logger *zap.Logger
}

func NewImageProcessor(c codec.Codec, logger *zap.Logger) *ImageProcessor {
	return &ImageProcessor{codec: c, logger: logger}
}

// CheckFormat rejects an output format the codec cannot encode, so the
// request fails before anything is fetched.
func (p *ImageProcessor) CheckFormat(format models.OutputFormat) error {
	if p.codec.Supports(format) {
		return nil
	}
	return apperror.InvalidRequest(fmt.Sprintf("format %s is not supported by the %s engine", format, p.codec.Name()))
}

// Process decodes, orients and resizes the base image, composites every
// overlay in order and encodes the result. Errors are *apperror.Error.
func (p *ImageProcessor) Process(job Job) (*Output, error) {
	req := job.Request
	rotate := p.needsRotation(job.Base, req.Rotation)

	img, err := p.codec.Decode(job.Base, rotate)
	if err != nil {
		return nil, codecFailure(err)
	}
	defer func() { img.Close() }()

	// On error every step leaves img with us, so the deferred Close covers it.
	var out codec.Image
	if rotate {
		if out, err = p.codec.AutoRotate(img); err != nil {
			return nil, codecFailure(err)
		}
		img = out
	}

	if out, err = p.resizeImage(img, req.Size); err != nil {
		return nil, err
	}
	img = out

	if req.Rotation != models.RotationNone {
		p.logger.Debug("Rotating image", zap.String("rotation", string(req.Rotation)))
		if out, err = p.codec.Rotate(img, codec.AngleFor(req.Rotation)); err != nil {
			return nil, codecFailure(err)
		}
		img = out
	}

	// Watermarks are fitted and placed against the base as it is now.
	baseW, baseH := img.Width(), img.Height()
	for _, overlay := range job.Overlays {
		if out, err = p.addWatermark(img, baseW, baseH, overlay); err != nil {
			return nil, err
		}
		img = out
	}

	data, err := p.encodeImage(img, req.Format, req.Quality)
	if err != nil {
		return nil, err
	}

	return &Output{
		Data:   data,
		Format: req.Format,
		Width:  img.Width(),
		Height: img.Height(),
	}, nil
}
