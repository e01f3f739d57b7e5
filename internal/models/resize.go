package models

import (
	"fmt"
	"strings"
)

// Size is the requested target size. A nil dimension means "not constrained".
type Size struct {
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
}

func (s Size) IsEmpty() bool {
	return s.Width == nil && s.Height == nil
}

func (s Size) String() string {
	return fmt.Sprintf("Size{width: %s, height: %s}", optionalInt(s.Width), optionalInt(s.Height))
}

func optionalInt(v *int) string {
	if v == nil {
		return "None"
	}
	return fmt.Sprintf("%d", *v)
}

// OutputFormat selects the encoder.
type OutputFormat string

const (
	FormatJPEG OutputFormat = "jpeg"
	FormatPNG  OutputFormat = "png"
	FormatWebP OutputFormat = "webp"
	FormatHEIC OutputFormat = "heic"
)

// OutputFormats lists every format a request may ask for.
var OutputFormats = []OutputFormat{FormatJPEG, FormatPNG, FormatWebP, FormatHEIC}

// ParseOutputFormat accepts the format names case-insensitively ("Jpeg", "png", ...).
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	case "heic", "heif":
		return FormatHEIC, nil
	default:
		return "", fmt.Errorf("unsupported format %q", value)
	}
}

// ContentType is the response media type for the format.
func (f OutputFormat) ContentType() string {
	return "image/" + string(f)
}
