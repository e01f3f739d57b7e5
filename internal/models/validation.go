package models

import (
	"fmt"

	"github.com/phambaophuc/dali/internal/apperror"
)

// ValidationMode decides what happens to an out-of-range quality or alpha.
type ValidationMode string

const (
	// ValidationOff accepts the value untouched and leaves range handling to the encoder.
	ValidationOff    ValidationMode = "off"
	ValidationClamp  ValidationMode = "clamp"
	ValidationReject ValidationMode = "reject"
)

const (
	MinQuality = 1
	MaxQuality = 100
	MinAlpha   = 0.0
	MaxAlpha   = 1.0
)

type ValidationPolicy struct {
	Quality ValidationMode
	Alpha   ValidationMode
}

// Apply enforces the policy on req before it is handed to the pipeline.
func (p ValidationPolicy) Apply(req *ImageRequest) error {
	switch p.Quality {
	case ValidationClamp:
		req.Quality = min(MaxQuality, max(MinQuality, req.Quality))
	case ValidationReject:
		if req.Quality < MinQuality || req.Quality > MaxQuality {
			return apperror.InvalidRequest(fmt.Sprintf("quality %d is outside [%d, %d]", req.Quality, MinQuality, MaxQuality))
		}
	}

	for i := range req.Watermarks {
		wm := &req.Watermarks[i]
		switch p.Alpha {
		case ValidationClamp:
			wm.Alpha = min(MaxAlpha, max(MinAlpha, wm.Alpha))
		case ValidationReject:
			if wm.Alpha < MinAlpha || wm.Alpha > MaxAlpha {
				return apperror.InvalidRequest(fmt.Sprintf("watermarks[%d][alpha] %g is outside [0, 1]", i, wm.Alpha))
			}
		}
	}

	return nil
}
