package source

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/phambaophuc/dali/internal/apperror"
	"github.com/phambaophuc/dali/internal/config"
)

// HTTPSource fetches absolute http(s) URLs.
type HTTPSource struct {
	client *http.Client
}

func NewHTTPSource(cfg config.SourceConfig) *HTTPSource {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	transport.IdleConnTimeout = cfg.IdleConnTimeout

	return &HTTPSource{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

func (s *HTTPSource) Name() string {
	return "http"
}

func (s *HTTPSource) Fetch(ctx context.Context, reference string, limits Limits) (*FetchedImage, error) {
	u, err := url.Parse(reference)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperror.InvalidReference(reference)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperror.InvalidReference(reference)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, apperror.FetchTimeout(reference, err)
		}
		return nil, apperror.FetchFailed(reference, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, apperror.Upstream(resp.StatusCode, reference)
	default:
		return nil, apperror.FetchFailed(reference, errors.New(resp.Status))
	}

	if limits.MaxBytes > 0 && resp.ContentLength > limits.MaxBytes {
		return nil, apperror.SizeExceeded(reference, limits.MaxBytes)
	}

	data, err := readLimited(resp.Body, limits.MaxBytes)
	if err != nil {
		switch {
		case errors.Is(err, errTooLarge):
			return nil, apperror.SizeExceeded(reference, limits.MaxBytes)
		case isTimeout(err):
			return nil, apperror.FetchTimeout(reference, err)
		default:
			return nil, apperror.FetchFailed(reference, err)
		}
	}

	return &FetchedImage{Data: data, Headers: resp.Header.Clone()}, nil
}
