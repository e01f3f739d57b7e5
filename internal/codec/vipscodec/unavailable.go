//go:build !vips || !cgo

package vipscodec

import (
	"errors"

	"github.com/phambaophuc/dali/internal/codec"
	"go.uber.org/zap"
)

const Available = false

var ErrUnavailable = errors.New("vips engine not compiled in, rebuild with -tags vips")

func Startup(Options, *zap.Logger) {}

func Shutdown() {}

func New() (codec.Codec, error) {
	return nil, ErrUnavailable
}
