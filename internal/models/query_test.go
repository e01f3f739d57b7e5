package models

import (
	"net/url"
	"testing"

	"github.com/phambaophuc/dali/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return values
}

func TestParseImageRequest_Defaults(t *testing.T) {
	req, err := ParseImageRequest(mustQuery(t, "image_address=http://img/a.jpg"), ValidationPolicy{})
	require.NoError(t, err)

	assert.Equal(t, "http://img/a.jpg", req.Source)
	assert.Equal(t, FormatJPEG, req.Format)
	assert.Equal(t, DefaultQuality, req.Quality)
	assert.True(t, req.Size.IsEmpty())
	assert.Equal(t, RotationNone, req.Rotation)
	assert.Empty(t, req.Watermarks)
}

func TestParseImageRequest_AllFields(t *testing.T) {
	raw := "image_address=a.jpg&size[width]=100&size[height]=50&format=Webp&quality=90&rotation=R270" +
		"&watermarks[0][image_address]=wm0.png" +
		"&watermarks[0][position][x][origin]=Right&watermarks[0][position][x][pos]=15" +
		"&watermarks[0][position][y][origin]=Bottom&watermarks[0][position][y][pos]=5" +
		"&watermarks[0][alpha]=0.5&watermarks[0][size]=25" +
		"&watermarks[1][image_address]=wm1.png" +
		"&watermarks[1][position][x][origin]=Center&watermarks[1][position][y][origin]=Center"

	req, err := ParseImageRequest(mustQuery(t, raw), ValidationPolicy{})
	require.NoError(t, err)

	require.NotNil(t, req.Size.Width)
	require.NotNil(t, req.Size.Height)
	assert.Equal(t, 100, *req.Size.Width)
	assert.Equal(t, 50, *req.Size.Height)
	assert.Equal(t, FormatWebP, req.Format)
	assert.Equal(t, 90, req.Quality)
	assert.Equal(t, Rotation270, req.Rotation)

	require.Len(t, req.Watermarks, 2)
	assert.Equal(t, WatermarkSpec{
		Source:      "wm0.png",
		Position:    Point{X: Right(15), Y: Bottom(5)},
		Alpha:       0.5,
		SizePercent: 25,
	}, req.Watermarks[0])
	assert.Equal(t, WatermarkSpec{
		Source:      "wm1.png",
		Position:    Point{X: HCenter(), Y: VCenter()},
		SizePercent: DefaultWatermarkSize,
	}, req.Watermarks[1])
}

func TestParseImageRequest_WatermarkOrderFollowsIndex(t *testing.T) {
	raw := "image_address=a.jpg&watermarks[10][image_address]=c.png&watermarks[2][image_address]=b.png&watermarks[0][image_address]=a.png"

	req, err := ParseImageRequest(mustQuery(t, raw), ValidationPolicy{})
	require.NoError(t, err)

	require.Len(t, req.Watermarks, 3)
	assert.Equal(t, "a.png", req.Watermarks[0].Source)
	assert.Equal(t, "b.png", req.Watermarks[1].Source)
	assert.Equal(t, "c.png", req.Watermarks[2].Source)
	assert.Equal(t, DefaultPoint(), req.Watermarks[0].Position)
}

func TestParseImageRequest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing address", "size[width]=10"},
		{"non numeric width", "image_address=a.jpg&size[width]=abc"},
		{"unknown format", "image_address=a.jpg&format=gif"},
		{"unknown rotation", "image_address=a.jpg&rotation=R45"},
		{"non numeric quality", "image_address=a.jpg&quality=high"},
		{"watermark without address", "image_address=a.jpg&watermarks[0][alpha]=0.5"},
		{"watermark bad index", "image_address=a.jpg&watermarks[x][image_address]=b.png"},
		{"left without pos", "image_address=a.jpg&watermarks[0][image_address]=b.png&watermarks[0][position][x][origin]=Left"},
		{"pos without origin", "image_address=a.jpg&watermarks[0][image_address]=b.png&watermarks[0][position][y][pos]=3"},
		{"bad origin", "image_address=a.jpg&watermarks[0][image_address]=b.png&watermarks[0][position][x][origin]=Top&watermarks[0][position][x][pos]=3"},
		{"unbalanced", "image_address=a.jpg&watermarks[0[image_address]=b.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseImageRequest(mustQuery(t, tt.raw), ValidationPolicy{})
			require.Error(t, err)
			assert.Equal(t, apperror.KindInvalidRequest, apperror.KindOf(err))
		})
	}
}

func TestValidationPolicy(t *testing.T) {
	raw := "image_address=a.jpg&quality=150&watermarks[0][image_address]=b.png&watermarks[0][alpha]=1.7"

	t.Run("off keeps values", func(t *testing.T) {
		req, err := ParseImageRequest(mustQuery(t, raw), ValidationPolicy{Quality: ValidationOff, Alpha: ValidationOff})
		require.NoError(t, err)
		assert.Equal(t, 150, req.Quality)
		assert.Equal(t, 1.7, req.Watermarks[0].Alpha)
	})

	t.Run("clamp", func(t *testing.T) {
		req, err := ParseImageRequest(mustQuery(t, raw), ValidationPolicy{Quality: ValidationClamp, Alpha: ValidationClamp})
		require.NoError(t, err)
		assert.Equal(t, MaxQuality, req.Quality)
		assert.Equal(t, MaxAlpha, req.Watermarks[0].Alpha)
	})

	t.Run("reject quality", func(t *testing.T) {
		_, err := ParseImageRequest(mustQuery(t, raw), ValidationPolicy{Quality: ValidationReject})
		assert.Equal(t, apperror.KindInvalidRequest, apperror.KindOf(err))
	})

	t.Run("reject alpha", func(t *testing.T) {
		_, err := ParseImageRequest(mustQuery(t, raw), ValidationPolicy{Alpha: ValidationReject})
		assert.Equal(t, apperror.KindInvalidRequest, apperror.KindOf(err))
	})
}

func TestRotationClockwiseDegrees(t *testing.T) {
	assert.Equal(t, 270, Rotation90.ClockwiseDegrees())
	assert.Equal(t, 180, Rotation180.ClockwiseDegrees())
	assert.Equal(t, 90, Rotation270.ClockwiseDegrees())
	assert.Equal(t, 0, RotationNone.ClockwiseDegrees())
}
