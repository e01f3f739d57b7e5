package source

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/phambaophuc/dali/internal/apperror"
	"github.com/phambaophuc/dali/internal/config"
	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseSource reads object paths from a Supabase Storage bucket. The
// client buffers whole objects, so the size limit is checked after download.
type SupabaseSource struct {
	download func(bucket, path string) ([]byte, error)
	list     func(bucket string) error
	bucket   string
	timeout  time.Duration
}

func NewSupabaseSource(cfg config.SupabaseConfig, timeout time.Duration) *SupabaseSource {
	client := storage_go.NewClient(strings.TrimRight(cfg.URL, "/")+"/storage/v1", cfg.Key, nil)
	return &SupabaseSource{
		download: func(bucket, path string) ([]byte, error) {
			return client.DownloadFile(bucket, path)
		},
		list: func(bucket string) error {
			_, err := client.ListFiles(bucket, "", storage_go.FileSearchOptions{})
			return err
		},
		bucket:  cfg.Bucket,
		timeout: timeout,
	}
}

func (s *SupabaseSource) Name() string {
	return "supabase"
}

type downloadResult struct {
	data []byte
	err  error
}

func (s *SupabaseSource) Fetch(ctx context.Context, reference string, limits Limits) (*FetchedImage, error) {
	path := strings.TrimLeft(reference, "/")
	if path == "" {
		return nil, apperror.InvalidReference(reference)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// storage-go takes no context; the goroutine finishes on its own after
	// an abandoned fetch.
	done := make(chan downloadResult, 1)
	go func() {
		data, err := s.download(s.bucket, path)
		done <- downloadResult{data: data, err: err}
	}()

	var result downloadResult
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperror.FetchTimeout(reference, ctx.Err())
		}
		return nil, apperror.FetchFailed(reference, ctx.Err())
	case result = <-done:
	}

	if result.err != nil {
		return nil, classifySupabase(reference, result.err)
	}
	if limits.MaxBytes > 0 && int64(len(result.data)) > limits.MaxBytes {
		return nil, apperror.SizeExceeded(reference, limits.MaxBytes)
	}

	return &FetchedImage{Data: result.data, Headers: http.Header{}}, nil
}

func (s *SupabaseSource) Ping(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- s.list(s.bucket) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// storage-go reports failures as plain messages.
func classifySupabase(reference string, err error) error {
	if isTimeout(err) {
		return apperror.FetchTimeout(reference, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"), strings.Contains(msg, "404"):
		return apperror.Upstream(http.StatusNotFound, reference)
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "403"):
		return apperror.Upstream(http.StatusForbidden, reference)
	case strings.Contains(msg, "invalid key"), strings.Contains(msg, "400"):
		return apperror.InvalidReference(reference)
	default:
		return apperror.FetchFailed(reference, err)
	}
}
