package observability

import (
	"time"

	"github.com/phambaophuc/dali/internal/models"
	"go.uber.org/zap"
)

// ZapObserver writes every event as a debug entry, and drops and size
// violations as warnings.
type ZapObserver struct {
	logger *zap.Logger
}

func NewZapObserver(logger *zap.Logger) *ZapObserver {
	return &ZapObserver{logger: logger.Named("metrics")}
}

func (z *ZapObserver) FetchCompleted(d time.Duration) {
	z.logger.Debug("Fetch completed", zap.Duration("duration", d))
}

func (z *ZapObserver) InputSize(format models.OutputFormat, bytes int) {
	z.logger.Debug("Input size", zap.String("format", string(format)), zap.Int("bytes", bytes))
}

func (z *ZapObserver) OutputSize(format models.OutputFormat, bytes int) {
	z.logger.Debug("Output size", zap.String("format", string(format)), zap.Int("bytes", bytes))
}

func (z *ZapObserver) WatermarkDropped(count int) {
	z.logger.Warn("Watermarks dropped", zap.Int("count", count))
}

func (z *ZapObserver) SizeExceeded() {
	z.logger.Warn("File exceeded max size")
}

func (z *ZapObserver) RequestCompleted(class StatusClass, d time.Duration) {
	z.logger.Debug("Request completed", zap.String("class", string(class)), zap.Duration("duration", d))
}
