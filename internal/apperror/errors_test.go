package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", InvalidRequest("bad"), http.StatusBadRequest},
		{"invalid size", InvalidSize("bad"), http.StatusBadRequest},
		{"invalid reference", InvalidReference("::"), http.StatusBadRequest},
		{"size exceeded", SizeExceeded("a.jpg", 10), http.StatusBadRequest},
		{"decode failed", DecodeFailed(errors.New("boom")), http.StatusBadRequest},
		{"upstream 404", Upstream(404, "a.jpg"), http.StatusNotFound},
		{"upstream 403", Upstream(403, "a.jpg"), http.StatusForbidden},
		{"upstream 503", Upstream(503, "a.jpg"), http.StatusBadGateway},
		{"fetch failed", FetchFailed("a.jpg", nil), http.StatusBadGateway},
		{"timeout", FetchTimeout("a.jpg", nil), http.StatusGatewayTimeout},
		{"processing", ProcessingFailed(errors.New("boom")), http.StatusInternalServerError},
		{"worker join", WorkerJoinFailed(errors.New("boom")), http.StatusInternalServerError},
		{"foreign error", errors.New("raw"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("fetch base: %w", FetchTimeout("a.jpg", errors.New("deadline")))

	assert.Equal(t, KindFetchTimeout, KindOf(err))
	assert.True(t, errors.Is(err, &Error{Kind: KindFetchTimeout}))
	assert.False(t, errors.Is(err, &Error{Kind: KindFetchFailed}))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(err))
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("raw")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := FetchFailed("a.jpg", errors.New("connection reset"))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "a.jpg", err.Reference)
}
