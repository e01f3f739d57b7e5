package processor

import (
	"testing"

	"github.com/phambaophuc/dali/internal/apperror"
	"github.com/phambaophuc/dali/internal/codec/codectest"
	"github.com/phambaophuc/dali/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func intPtr(v int) *int { return &v }

func newProcessor(c *codectest.Codec) *ImageProcessor {
	return NewImageProcessor(c, zap.NewNop())
}

func TestCheckFormat(t *testing.T) {
	c := codectest.New()
	c.Unsupported[models.FormatHEIC] = true
	p := newProcessor(c)

	assert.NoError(t, p.CheckFormat(models.FormatJPEG))
	err := p.CheckFormat(models.FormatHEIC)
	assert.Equal(t, apperror.KindInvalidRequest, apperror.KindOf(err))
}

func TestProcess_ResizeStreams(t *testing.T) {
	c := codectest.New()
	req := models.NewImageRequest("base")
	req.Size = models.Size{Width: intPtr(100)}

	out, err := newProcessor(c).Process(Job{Base: codectest.Encode("base", 200, 100), Request: req})
	require.NoError(t, err)

	assert.Equal(t, "base:100x50.jpeg", string(out.Data))
	assert.Equal(t, 100, out.Width)
	assert.Equal(t, 50, out.Height)
	assert.Equal(t, []string{
		"decode base random=false",
		"resize base 0.5000",
		"encode base jpeg q=75",
	}, c.Calls())
	assert.True(t, c.AllClosed())
}

func TestProcess_ExplicitRotationAfterResize(t *testing.T) {
	c := codectest.New()
	req := models.NewImageRequest("base")
	req.Rotation = models.Rotation90
	req.Size = models.Size{Width: intPtr(100)}
	req.Format = models.FormatPNG

	out, err := newProcessor(c).Process(Job{Base: codectest.Encode("base", 200, 100), Request: req})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"decode base random=true",
		"autorotate base",
		"resize base 0.5000",
		"rotate base 270",
		"encode base png q=75",
	}, c.Calls())
	assert.Equal(t, 50, out.Width)
	assert.Equal(t, 100, out.Height)
}

func TestProcess_ExifOrientation(t *testing.T) {
	c := codectest.New()
	c.Orientations["base"] = 6

	out, err := newProcessor(c).Process(Job{Base: codectest.Encode("base", 200, 100), Request: models.NewImageRequest("base")})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"decode base random=true",
		"autorotate base",
		"encode base jpeg q=75",
	}, c.Calls())
	assert.Equal(t, 100, out.Width)
	assert.Equal(t, 200, out.Height)
}

func TestProcess_OrientationOneStreams(t *testing.T) {
	c := codectest.New()
	c.Orientations["base"] = 1

	_, err := newProcessor(c).Process(Job{Base: codectest.Encode("base", 20, 10), Request: models.NewImageRequest("base")})
	require.NoError(t, err)
	assert.Equal(t, "decode base random=false", c.Calls()[0])
}

func TestProcess_Watermarks(t *testing.T) {
	c := codectest.New()
	req := models.NewImageRequest("base")

	shrinking := models.NewWatermarkSpec("wm1")
	shrinking.Alpha = 0.5
	shrinking.Position = models.Point{X: models.Right(5), Y: models.Bottom(20)}

	growing := models.NewWatermarkSpec("wm2")
	growing.Alpha = 1
	growing.SizePercent = 50

	job := Job{
		Base: codectest.Encode("base", 100, 100),
		Overlays: []Overlay{
			{Spec: shrinking, Data: codectest.Encode("wm1", 50, 50)},
			{Spec: growing, Data: codectest.Encode("wm2", 5, 5)},
		},
		Request: req,
	}

	_, err := newProcessor(c).Process(job)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"decode base random=false",
		"decode wm1 random=false",
		"resize wm1 0.2000",
		"alpha wm1",
		"scalealpha wm1 0.5",
		"composite wm1 10x10 at 85,70",
		"decode wm2 random=false",
		"alpha wm2",
		"scalealpha wm2 1",
		"resize wm2 10.0000",
		"composite wm2 50x50 at 0,0",
		"encode base jpeg q=75",
	}, c.Calls())
	assert.Equal(t, []string{"wm1", "wm2"}, c.Composited())
	assert.True(t, c.AllClosed())
}

func TestProcess_Errors(t *testing.T) {
	tests := []struct {
		name     string
		job      func() Job
		failOn   string
		wantKind apperror.Kind
	}{
		{
			name:     "undecodable base",
			job:      func() Job { return Job{Base: []byte("garbage"), Request: models.NewImageRequest("base")} },
			wantKind: apperror.KindCodecDecodeFailed,
		},
		{
			name: "undecodable watermark",
			job: func() Job {
				return Job{
					Base:     codectest.Encode("base", 10, 10),
					Overlays: []Overlay{{Spec: models.NewWatermarkSpec("wm"), Data: []byte("garbage")}},
					Request:  models.NewImageRequest("base"),
				}
			},
			wantKind: apperror.KindCodecDecodeFailed,
		},
		{
			name: "invalid size",
			job: func() Job {
				req := models.NewImageRequest("base")
				req.Size = models.Size{Height: intPtr(0)}
				return Job{Base: codectest.Encode("base", 10, 10), Request: req}
			},
			wantKind: apperror.KindInvalidSize,
		},
		{
			name: "invalid watermark size",
			job: func() Job {
				spec := models.NewWatermarkSpec("wm")
				spec.SizePercent = 0
				return Job{
					Base:     codectest.Encode("base", 10, 10),
					Overlays: []Overlay{{Spec: spec, Data: codectest.Encode("wm", 5, 5)}},
					Request:  models.NewImageRequest("base"),
				}
			},
			wantKind: apperror.KindInvalidSize,
		},
		{
			name:     "encode failure",
			job:      func() Job { return Job{Base: codectest.Encode("base", 10, 10), Request: models.NewImageRequest("base")} },
			failOn:   "encode",
			wantKind: apperror.KindCodecProcessingFailed,
		},
		{
			name: "composite failure",
			job: func() Job {
				return Job{
					Base:     codectest.Encode("base", 10, 10),
					Overlays: []Overlay{{Spec: models.NewWatermarkSpec("wm"), Data: codectest.Encode("wm", 5, 5)}},
					Request:  models.NewImageRequest("base"),
				}
			},
			failOn:   "composite",
			wantKind: apperror.KindCodecProcessingFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := codectest.New()
			if tt.failOn != "" {
				c.FailOn[tt.failOn] = true
			}

			out, err := newProcessor(c).Process(tt.job())
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tt.wantKind, apperror.KindOf(err))
			assert.True(t, c.AllClosed(), "images released on failure")
		})
	}
}
