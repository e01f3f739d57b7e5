// Package coordinator runs one image request end to end: concurrent
// fetches, composition on the worker pool and result assembly.
package coordinator

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/phambaophuc/dali/internal/apperror"
	"github.com/phambaophuc/dali/internal/models"
	"github.com/phambaophuc/dali/internal/observability"
	"github.com/phambaophuc/dali/internal/services/processor"
	"github.com/phambaophuc/dali/internal/services/source"
	"github.com/phambaophuc/dali/internal/services/worker"
	"github.com/phambaophuc/dali/pkg/utils"
	"go.uber.org/zap"
)

// Result is a finished response body plus the headers carried over from
// the base image.
type Result struct {
	Body        []byte
	ContentType string
	Headers     http.Header
	Format      models.OutputFormat
	Width       int
	Height      int
	InputBytes  int
	Dropped     int
}

type Coordinator struct {
	source    source.ImageSource
	processor *processor.ImageProcessor
	pool      *worker.Pool
	observer  observability.Observer
	limits    source.Limits
	logger    *zap.Logger
}

func New(
	src source.ImageSource,
	proc *processor.ImageProcessor,
	pool *worker.Pool,
	observer observability.Observer,
	limits source.Limits,
	logger *zap.Logger,
) *Coordinator {
	if observer == nil {
		observer = observability.Nop{}
	}
	return &Coordinator{
		source:    src,
		processor: proc,
		pool:      pool,
		observer:  observer,
		limits:    limits,
		logger:    logger,
	}
}

type fetchResult struct {
	image *source.FetchedImage
	err   error
}

// Handle fetches the base image and every watermark, composes them on the
// worker pool and returns the encoded result. A failed base fetch fails the
// request; a failed watermark is dropped. Errors are *apperror.Error.
func (c *Coordinator) Handle(ctx context.Context, req *models.ImageRequest) (*Result, error) {
	if err := c.processor.CheckFormat(req.Format); err != nil {
		return nil, err
	}

	base, marks := c.fetchAll(ctx, req)
	if base.err != nil {
		c.logger.Warn("Failed to fetch base image",
			zap.String("reference", req.Source),
			zap.Error(base.err),
		)
		return nil, fetchError(req.Source, base.err)
	}

	overlays := make([]processor.Overlay, 0, len(marks))
	for i, mark := range marks {
		spec := req.Watermarks[i]
		if mark.err != nil {
			c.logger.Warn("Dropping watermark",
				zap.Int("index", i),
				zap.String("reference", spec.Source),
				zap.Error(mark.err),
			)
			continue
		}
		overlays = append(overlays, processor.Overlay{Spec: spec, Data: mark.image.Data})
	}

	dropped := len(marks) - len(overlays)
	if dropped > 0 {
		c.observer.WatermarkDropped(dropped)
	}

	inputBytes := len(base.image.Data)
	for _, overlay := range overlays {
		inputBytes += len(overlay.Data)
	}
	c.observer.InputSize(req.Format, inputBytes)

	job := processor.Job{Base: base.image.Data, Overlays: overlays, Request: req}
	out, err := worker.Run(ctx, c.pool, func() (*processor.Output, error) {
		return c.processor.Process(job)
	})
	if err != nil {
		if apperror.KindOf(err) == "" {
			c.logger.Error("Composition task failed", zap.Error(err))
			return nil, apperror.WorkerJoinFailed(err)
		}
		return nil, err
	}

	c.observer.OutputSize(out.Format, len(out.Data))
	c.logger.Debug("Image composed",
		zap.String("format", string(out.Format)),
		zap.Int("width", out.Width),
		zap.Int("height", out.Height),
		zap.Int("watermarks", len(overlays)),
		zap.Int("bytes", len(out.Data)),
	)

	return &Result{
		Body:        out.Data,
		ContentType: out.Format.ContentType(),
		Headers:     utils.PassthroughHeaders(base.image.Headers),
		Format:      out.Format,
		Width:       out.Width,
		Height:      out.Height,
		InputBytes:  inputBytes,
		Dropped:     dropped,
	}, nil
}

// fetchAll launches every fetch at once and waits for all of them to
// settle. Watermark results keep request order.
func (c *Coordinator) fetchAll(ctx context.Context, req *models.ImageRequest) (fetchResult, []fetchResult) {
	start := time.Now()

	var (
		wg    sync.WaitGroup
		base  fetchResult
		marks = make([]fetchResult, len(req.Watermarks))
	)

	wg.Add(1 + len(req.Watermarks))
	go func() {
		defer wg.Done()
		base = c.fetch(ctx, req.Source)
	}()
	for i, spec := range req.Watermarks {
		go func(i int, reference string) {
			defer wg.Done()
			marks[i] = c.fetch(ctx, reference)
		}(i, spec.Source)
	}
	wg.Wait()

	c.observer.FetchCompleted(time.Since(start))
	return base, marks
}

func (c *Coordinator) fetch(ctx context.Context, reference string) fetchResult {
	image, err := c.source.Fetch(ctx, reference, c.limits)
	if err != nil && apperror.KindOf(err) == apperror.KindSizeExceeded {
		c.observer.SizeExceeded()
	}
	return fetchResult{image: image, err: err}
}

func fetchError(reference string, err error) error {
	if apperror.KindOf(err) != "" {
		return err
	}
	return apperror.FetchFailed(reference, err)
}
