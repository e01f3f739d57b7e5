package codec

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phambaophuc/dali/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestOptionsFor(t *testing.T) {
	tests := []struct {
		format models.OutputFormat
		want   EncodeOptions
	}{
		{models.FormatJPEG, EncodeOptions{Quality: 80, StripMetadata: true, Interlace: true, OptimizeCoding: true, OptimizeScans: true, Background: []float64{255}}},
		{models.FormatPNG, EncodeOptions{Quality: 80, StripMetadata: true, BitDepth: 8}},
		{models.FormatWebP, EncodeOptions{Quality: 80, StripMetadata: true, Effort: 2}},
		{models.FormatHEIC, EncodeOptions{Quality: 80, StripMetadata: true}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.want, OptionsFor(tt.format, 80))
		})
	}
}

func TestOptionsFor_QualityUnclamped(t *testing.T) {
	assert.Equal(t, 250, OptionsFor(models.FormatJPEG, 250).Quality)
	assert.Equal(t, -3, OptionsFor(models.FormatWebP, -3).Quality)
}

func TestNeedsAutoRotate(t *testing.T) {
	assert.False(t, NeedsAutoRotate(0))
	assert.False(t, NeedsAutoRotate(1))
	for o := 2; o <= 8; o++ {
		assert.True(t, NeedsAutoRotate(o), "orientation %d", o)
	}
}

func TestAngleFor(t *testing.T) {
	assert.Equal(t, Angle270, AngleFor(models.Rotation90))
	assert.Equal(t, Angle180, AngleFor(models.Rotation180))
	assert.Equal(t, Angle90, AngleFor(models.Rotation270))
}

func TestIsOpenError(t *testing.T) {
	assert.True(t, IsOpenError(fmt.Errorf("wrap: %w", OpenError("decode", errors.New("bad header")))))
	assert.False(t, IsOpenError(ProcessingError("resize", errors.New("oom"))))
	assert.False(t, IsOpenError(errors.New("raw")))
}
