// Package codec describes the imaging engine the pipeline drives. The pixel
// work itself lives in an external engine (libvips through govips, or the
// pure-Go imaging library); this package only fixes the contract.
package codec

import "github.com/phambaophuc/dali/internal/models"

// Angle is a clockwise rotation in degrees.
type Angle int

const (
	Angle0   Angle = 0
	Angle90  Angle = 90
	Angle180 Angle = 180
	Angle270 Angle = 270
)

// Image is an engine-owned decoded image. Close releases engine memory.
type Image interface {
	Width() int
	Height() int
	Close()
}

// Codec is the imaging engine.
//
// Operations consume the image they are given and return the image the
// caller now owns; engines that mutate in place may return the same value.
// On error the input is still owned by the caller. CompositeOver consumes
// base only; overlay stays with the caller.
//
// Every error is a *Error telling an unreadable input apart from an
// internal processing failure.
type Codec interface {
	Name() string
	// Supports reports whether Encode can write format.
	Supports(format models.OutputFormat) bool
	// Decode opens data. randomAccess is false when the image is only read
	// top to bottom, which lets engines stream it.
	Decode(data []byte, randomAccess bool) (Image, error)
	// Orientation returns the EXIF orientation tag of data, 0 when absent.
	Orientation(data []byte) int
	AutoRotate(img Image) (Image, error)
	Rotate(img Image, angle Angle) (Image, error)
	Resize(img Image, scale float64) (Image, error)
	EnsureAlpha(img Image) (Image, error)
	ScaleAlpha(img Image, factor float64) (Image, error)
	CompositeOver(base, overlay Image, x, y int) (Image, error)
	Encode(img Image, format models.OutputFormat, opts EncodeOptions) ([]byte, error)
}

// AngleFor converts a requested rotation to the engine angle.
func AngleFor(rotation models.Rotation) Angle {
	return Angle(rotation.ClockwiseDegrees())
}

// NeedsAutoRotate reports whether an EXIF orientation asks for normalisation.
func NeedsAutoRotate(orientation int) bool {
	return orientation != 0 && orientation != 1
}
