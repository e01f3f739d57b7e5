package processor

import (
	"github.com/phambaophuc/dali/internal/codec"
	"github.com/phambaophuc/dali/internal/models"
)

// needsRotation decides the decode mode: anything that rotates needs random
// access, everything else can stream.
func (p *ImageProcessor) needsRotation(data []byte, rotation models.Rotation) bool {
	if rotation != models.RotationNone {
		return true
	}
	return codec.NeedsAutoRotate(p.codec.Orientation(data))
}
