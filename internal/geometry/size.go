// Package geometry computes target sizes and overlay placement. All ratio
// arithmetic is floating point and pixel counts are truncated toward zero.
package geometry

import (
	"fmt"

	"github.com/phambaophuc/dali/internal/apperror"
	"github.com/phambaophuc/dali/internal/models"
)

// Dimensions is a resolved width and height, both at least 1.
type Dimensions struct {
	Width  int
	Height int
}

// scaled returns opposite*desired/original truncated toward zero, never below 1.
func scaled(desired, original, opposite int) int {
	ratio := float32(desired) / float32(original)
	return max(1, int(float32(opposite)*ratio))
}

// FitSize fits the original image into the desired size, preserving the
// aspect ratio and never upscaling.
func FitSize(originalWidth, originalHeight int, desired models.Size) (Dimensions, error) {
	original := Dimensions{Width: originalWidth, Height: originalHeight}

	if desired.IsEmpty() {
		return original, nil
	}
	if (desired.Width != nil && *desired.Width <= 0) || (desired.Height != nil && *desired.Height <= 0) {
		return Dimensions{}, apperror.InvalidSize(fmt.Sprintf("Size %s is not valid.", desired))
	}

	switch {
	case desired.Width != nil && desired.Height != nil:
		w, h := *desired.Width, *desired.Height
		if w > originalWidth && h > originalHeight {
			return original, nil
		}

		ratioHeight := float32(h) / float32(originalHeight)
		ratioWidth := float32(w) / float32(originalWidth)
		if ratioHeight < ratioWidth && ratioHeight <= 1.0 {
			return Dimensions{Width: scaled(h, originalHeight, originalWidth), Height: h}, nil
		}
		return Dimensions{Width: w, Height: scaled(w, originalWidth, originalHeight)}, nil

	case desired.Height != nil:
		h := *desired.Height
		if h > originalHeight {
			return original, nil
		}
		return Dimensions{Width: scaled(h, originalHeight, originalWidth), Height: h}, nil

	default:
		w := *desired.Width
		if w > originalWidth {
			return original, nil
		}
		return Dimensions{Width: w, Height: scaled(w, originalWidth, originalHeight)}, nil
	}
}

// FitWatermark fits a watermark inside sizePercent of the base image (contain).
func FitWatermark(baseWidth, baseHeight, wmWidth, wmHeight int, sizePercent float64) (Dimensions, error) {
	if sizePercent <= 0 || sizePercent > 100 {
		return Dimensions{}, apperror.InvalidSize(fmt.Sprintf("Watermark size %g%% is not valid.", sizePercent))
	}

	desiredWidth := float64(baseWidth) * (sizePercent / 100.0)
	desiredHeight := float64(baseHeight) * (sizePercent / 100.0)

	if float64(wmWidth)/desiredWidth >= float64(wmHeight)/desiredHeight {
		return Dimensions{
			Width:  max(1, int(desiredWidth)),
			Height: max(1, int(float64(wmHeight)*desiredWidth/float64(wmWidth))),
		}, nil
	}
	return Dimensions{
		Width:  max(1, int(float64(wmWidth)*desiredHeight/float64(wmHeight))),
		Height: max(1, int(desiredHeight)),
	}, nil
}
