package codec

import "github.com/phambaophuc/dali/internal/models"

// EncodeOptions are the encoder parameters for one output format.
type EncodeOptions struct {
	Quality        int
	StripMetadata  bool
	Interlace      bool
	OptimizeCoding bool
	OptimizeScans  bool
	// Background flattens transparency for formats without alpha.
	Background []float64
	// Effort is the webp compression effort.
	Effort int
	// BitDepth is the png bit depth.
	BitDepth int
}

// OptionsFor maps an output format to its fixed encoder options. Quality is
// passed through untouched.
func OptionsFor(format models.OutputFormat, quality int) EncodeOptions {
	opts := EncodeOptions{
		Quality:       quality,
		StripMetadata: true,
	}

	switch format {
	case models.FormatJPEG:
		opts.Interlace = true
		opts.OptimizeCoding = true
		opts.OptimizeScans = true
		opts.Background = []float64{255}
	case models.FormatWebP:
		opts.Effort = 2
	case models.FormatPNG:
		opts.BitDepth = 8
	}

	return opts
}
