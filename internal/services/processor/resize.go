package processor

import (
	"github.com/phambaophuc/dali/internal/codec"
	"github.com/phambaophuc/dali/internal/geometry"
	"github.com/phambaophuc/dali/internal/models"
	"go.uber.org/zap"
)

func (p *ImageProcessor) resizeImage(img codec.Image, size models.Size) (codec.Image, error) {
	if size.IsEmpty() {
		return img, nil
	}

	origW, origH := img.Width(), img.Height()
	target, err := geometry.FitSize(origW, origH, size)
	if err != nil {
		return img, err
	}

	p.logger.Debug("Resizing image",
		zap.Int("original_width", origW),
		zap.Int("original_height", origH),
		zap.Stringer("desired", size),
		zap.Int("target_width", target.Width),
		zap.Int("target_height", target.Height),
	)

	if target.Width == origW && target.Height == origH {
		return img, nil
	}

	out, err := p.codec.Resize(img, float64(target.Width)/float64(origW))
	if err != nil {
		return img, codecFailure(err)
	}
	return out, nil
}
