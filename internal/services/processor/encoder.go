package processor

import (
	"github.com/phambaophuc/dali/internal/codec"
	"github.com/phambaophuc/dali/internal/models"
	"go.uber.org/zap"
)

func (p *ImageProcessor) encodeImage(img codec.Image, format models.OutputFormat, quality int) ([]byte, error) {
	p.logger.Debug("Encoding image", zap.String("format", string(format)), zap.Int("quality", quality))

	data, err := p.codec.Encode(img, format, codec.OptionsFor(format, quality))
	if err != nil {
		return nil, codecFailure(err)
	}
	return data, nil
}
