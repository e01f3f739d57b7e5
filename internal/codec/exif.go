package codec

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"
)

// ExifOrientation reads the EXIF orientation tag. Missing or unreadable
// metadata yields 0.
func ExifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 0
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0
	}
	orientation, err := tag.Int(0)
	if err != nil || orientation < 1 || orientation > 8 {
		return 0
	}
	return orientation
}
