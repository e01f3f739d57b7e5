// Package source fetches images by reference from the configured backend.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/phambaophuc/dali/internal/config"
)

// Limits bound a single fetch. MaxBytes of 0 means unlimited.
type Limits struct {
	MaxBytes int64
}

// FetchedImage is owned by the request that fetched it.
type FetchedImage struct {
	Data    []byte
	Headers http.Header
}

// ImageSource fetches an image by reference. Every error is an *apperror.Error
// of kind InvalidReference, FetchTimeout, UpstreamError, FetchFailed or
// SizeExceeded.
type ImageSource interface {
	Name() string
	Fetch(ctx context.Context, reference string, limits Limits) (*FetchedImage, error)
}

// New builds the backend selected by cfg.Source.Backend.
func New(cfg *config.Config) (ImageSource, error) {
	switch cfg.Source.Backend {
	case "", "http":
		return NewHTTPSource(cfg.Source), nil
	case "s3":
		return NewS3Source(cfg.S3, cfg.Source.Timeout)
	case "supabase":
		return NewSupabaseSource(cfg.Supabase, cfg.Source.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown source backend %q", cfg.Source.Backend)
	}
}

var errTooLarge = errors.New("payload exceeds size limit")

// readLimited reads r until EOF, failing with errTooLarge as soon as more
// than maxBytes have arrived.
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, errTooLarge
	}
	return data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
