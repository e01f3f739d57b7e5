package processor

import (
	"errors"

	"github.com/phambaophuc/dali/internal/apperror"
	"github.com/phambaophuc/dali/internal/codec"
)

// codecFailure classifies a codec error. Errors that already carry a kind
// pass through.
func codecFailure(err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	if codec.IsOpenError(err) {
		return apperror.DecodeFailed(err)
	}
	return apperror.ProcessingFailed(err)
}
