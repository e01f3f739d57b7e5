package models

import (
	"fmt"
	"strings"
)

const DefaultQuality = 75

// Rotation is an explicit anticlockwise rotation. RotationNone means none was requested.
type Rotation string

const (
	RotationNone Rotation = ""
	Rotation90   Rotation = "R90"
	Rotation180  Rotation = "R180"
	Rotation270  Rotation = "R270"
)

func ParseRotation(value string) (Rotation, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "R90":
		return Rotation90, nil
	case "R180":
		return Rotation180, nil
	case "R270":
		return Rotation270, nil
	default:
		return RotationNone, fmt.Errorf("unknown rotation %q", value)
	}
}

// ClockwiseDegrees converts the anticlockwise rotation to the clockwise angle engines expect.
func (r Rotation) ClockwiseDegrees() int {
	switch r {
	case Rotation90:
		return 270
	case Rotation180:
		return 180
	case Rotation270:
		return 90
	default:
		return 0
	}
}

// ImageRequest is parsed once per call and not mutated afterwards.
type ImageRequest struct {
	Source     string          `json:"image_address"`
	Size       Size            `json:"size"`
	Format     OutputFormat    `json:"format"`
	Quality    int             `json:"quality"`
	Watermarks []WatermarkSpec `json:"watermarks,omitempty"`
	Rotation   Rotation        `json:"rotation,omitempty"`
}

// NewImageRequest returns a request for source carrying the documented defaults.
func NewImageRequest(source string) *ImageRequest {
	return &ImageRequest{
		Source:  source,
		Format:  FormatJPEG,
		Quality: DefaultQuality,
	}
}

// NewWatermarkSpec returns a watermark for source carrying the documented defaults.
func NewWatermarkSpec(source string) WatermarkSpec {
	return WatermarkSpec{
		Source:      source,
		Position:    DefaultPoint(),
		SizePercent: DefaultWatermarkSize,
	}
}
