package processor

import (
	"github.com/phambaophuc/dali/internal/codec"
	"github.com/phambaophuc/dali/internal/geometry"
	"go.uber.org/zap"
)

// addWatermark composites one overlay onto base. A watermark that shrinks is
// scaled before its alpha is touched, one that grows is scaled after.
func (p *ImageProcessor) addWatermark(base codec.Image, baseW, baseH int, overlay Overlay) (codec.Image, error) {
	spec := overlay.Spec
	p.logger.Debug("Applying watermark", zap.String("reference", spec.Source))

	wm, err := p.codec.Decode(overlay.Data, false)
	if err != nil {
		return base, codecFailure(err)
	}
	defer func() { wm.Close() }()

	wmW, wmH := wm.Width(), wm.Height()
	target, err := geometry.FitWatermark(baseW, baseH, wmW, wmH, spec.SizePercent)
	if err != nil {
		return base, err
	}

	scale := float64(target.Width) / float64(wmW)
	shrink := wmW*wmH > target.Width*target.Height

	var step codec.Image
	if shrink {
		if step, err = p.codec.Resize(wm, scale); err != nil {
			return base, codecFailure(err)
		}
		wm = step
	}

	if step, err = p.codec.EnsureAlpha(wm); err != nil {
		return base, codecFailure(err)
	}
	wm = step
	if step, err = p.codec.ScaleAlpha(wm, spec.Alpha); err != nil {
		return base, codecFailure(err)
	}
	wm = step

	borders := geometry.PlaceWatermark(baseW, baseH, target.Width, target.Height, spec.Position)
	p.logger.Debug("Watermark position",
		zap.Int("top", borders.Top),
		zap.Int("left", borders.Left),
		zap.Int("bottom", borders.Bottom),
		zap.Int("right", borders.Right),
	)

	if !shrink {
		if step, err = p.codec.Resize(wm, scale); err != nil {
			return base, codecFailure(err)
		}
		wm = step
	}

	out, err := p.codec.CompositeOver(base, wm, borders.Left, borders.Top)
	if err != nil {
		return base, codecFailure(err)
	}
	return out, nil
}
