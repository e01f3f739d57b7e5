// Package observability receives pipeline events. One Observer is built at
// startup and handed to every component that reports.
package observability

import (
	"time"

	"github.com/phambaophuc/dali/internal/models"
)

// StatusClass buckets HTTP responses.
type StatusClass string

const (
	StatusSuccess     StatusClass = "success"
	StatusClientError StatusClass = "client_error"
	StatusServerError StatusClass = "server_error"
)

func ClassOf(status int) StatusClass {
	switch {
	case status >= 500:
		return StatusServerError
	case status >= 400:
		return StatusClientError
	default:
		return StatusSuccess
	}
}

// Observer must be safe for concurrent use and must not block callers for
// long.
type Observer interface {
	// FetchCompleted reports the time taken by all fetches of one request.
	FetchCompleted(d time.Duration)
	// InputSize reports the bytes of the base image plus surviving watermarks.
	InputSize(format models.OutputFormat, bytes int)
	OutputSize(format models.OutputFormat, bytes int)
	WatermarkDropped(count int)
	SizeExceeded()
	RequestCompleted(class StatusClass, d time.Duration)
}

type Nop struct{}

func (Nop) FetchCompleted(time.Duration)                {}
func (Nop) InputSize(models.OutputFormat, int)          {}
func (Nop) OutputSize(models.OutputFormat, int)         {}
func (Nop) WatermarkDropped(int)                        {}
func (Nop) SizeExceeded()                               {}
func (Nop) RequestCompleted(StatusClass, time.Duration) {}

// Multi fans every event out to each observer in order.
type Multi []Observer

func (m Multi) FetchCompleted(d time.Duration) {
	for _, o := range m {
		o.FetchCompleted(d)
	}
}

func (m Multi) InputSize(format models.OutputFormat, bytes int) {
	for _, o := range m {
		o.InputSize(format, bytes)
	}
}

func (m Multi) OutputSize(format models.OutputFormat, bytes int) {
	for _, o := range m {
		o.OutputSize(format, bytes)
	}
}

func (m Multi) WatermarkDropped(count int) {
	for _, o := range m {
		o.WatermarkDropped(count)
	}
}

func (m Multi) SizeExceeded() {
	for _, o := range m {
		o.SizeExceeded()
	}
}

func (m Multi) RequestCompleted(class StatusClass, d time.Duration) {
	for _, o := range m {
		o.RequestCompleted(class, d)
	}
}
