// Package apperror holds the closed set of error kinds that can leave the
// image pipeline, and their mapping onto HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a pipeline failure class.
type Kind string

const (
	KindInvalidRequest        Kind = "invalid_request"
	KindInvalidSize           Kind = "invalid_size"
	KindInvalidReference      Kind = "invalid_reference"
	KindFetchTimeout          Kind = "fetch_timeout"
	KindUpstreamError         Kind = "upstream_error"
	KindFetchFailed           Kind = "fetch_failed"
	KindSizeExceeded          Kind = "size_exceeded"
	KindCodecDecodeFailed     Kind = "codec_decode_failed"
	KindCodecProcessingFailed Kind = "codec_processing_failed"
	KindWorkerJoinFailed      Kind = "worker_join_failed"
)

// Error is the only error type returned across the pipeline boundary.
type Error struct {
	Kind       Kind
	Message    string
	Reference  string
	StatusCode int   // upstream status, KindUpstreamError only
	MaxBytes   int64 // KindSizeExceeded only
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality, so errors.Is(err, &Error{Kind: KindFetchTimeout}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func InvalidRequest(message string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: message}
}

func InvalidSize(message string) *Error {
	return &Error{Kind: KindInvalidSize, Message: message}
}

func InvalidReference(reference string) *Error {
	return &Error{
		Kind:      KindInvalidReference,
		Message:   fmt.Sprintf("The provided resource URI is not valid: '%s'", reference),
		Reference: reference,
	}
}

func FetchTimeout(reference string, err error) *Error {
	return &Error{
		Kind:      KindFetchTimeout,
		Message:   "Downloading the image requested to be processed timed out.",
		Reference: reference,
		Err:       err,
	}
}

func Upstream(statusCode int, reference string) *Error {
	return &Error{
		Kind: KindUpstreamError,
		Message: fmt.Sprintf("Received status code '%d' while attempting to download the image that has to be processed: '%s'",
			statusCode, reference),
		Reference:  reference,
		StatusCode: statusCode,
	}
}

func FetchFailed(reference string, err error) *Error {
	return &Error{
		Kind:      KindFetchFailed,
		Message:   "The download of the image has failed.",
		Reference: reference,
		Err:       err,
	}
}

func SizeExceeded(reference string, maxBytes int64) *Error {
	return &Error{
		Kind: KindSizeExceeded,
		Message: fmt.Sprintf("The image exceeds the allowed size of %d bytes. Please ensure the file size is within the permissible limit or adjust the configuration.",
			maxBytes),
		Reference: reference,
		MaxBytes:  maxBytes,
	}
}

func DecodeFailed(err error) *Error {
	return &Error{
		Kind:    KindCodecDecodeFailed,
		Message: "The image that was requested to be processed cannot be opened.",
		Err:     err,
	}
}

func ProcessingFailed(err error) *Error {
	return &Error{
		Kind:    KindCodecProcessingFailed,
		Message: "Something went wrong on our side.",
		Err:     err,
	}
}

func WorkerJoinFailed(err error) *Error {
	return &Error{
		Kind:    KindWorkerJoinFailed,
		Message: "Something went wrong on our side.",
		Err:     err,
	}
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// HTTPStatus maps err onto the response status. Client-attributable kinds are 4xx.
// Timeouts and upstream 5xx are reported as gateway failures.
func HTTPStatus(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Kind {
	case KindInvalidRequest, KindInvalidSize, KindInvalidReference, KindSizeExceeded, KindCodecDecodeFailed:
		return http.StatusBadRequest
	case KindUpstreamError:
		if appErr.StatusCode >= 400 && appErr.StatusCode < 500 {
			return appErr.StatusCode
		}
		return http.StatusBadGateway
	case KindFetchFailed:
		return http.StatusBadGateway
	case KindFetchTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
