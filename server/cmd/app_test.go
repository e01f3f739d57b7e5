package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phambaophuc/dali/internal/codec/vipscodec"
	"github.com/phambaophuc/dali/internal/config"
	"github.com/phambaophuc/dali/internal/models"
	"github.com/phambaophuc/dali/internal/services/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(t.TempDir(), "test")
	require.NoError(t, err)
	cfg.Server.Port = "0"
	cfg.Server.ShutdownTimeout = time.Second
	return cfg
}

func TestNewApp_Routes(t *testing.T) {
	app, err := NewApp(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.pool.Stop(context.Background())
		app.close()
	})

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data models.HealthCheck `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Data.Status)
	assert.Equal(t, "not configured", resp.Data.Services["redis"])

	w = httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?format=png", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewApp_ImagingRejectsWebP(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	app, err := NewApp(testConfig(t), zap.New(core))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.pool.Stop(context.Background())
		app.close()
	})

	warnings := logs.FilterMessageSnippet("cannot encode").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, []interface{}{"webp", "heic"}, warnings[0].ContextMap()["formats"])

	w := httptest.NewRecorder()
	target := "/?format=webp&image_address=" + url.QueryEscape(upstream.URL+"/a.png")
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not supported by the imaging engine")
	assert.Zero(t, hits.Load())
}

func TestNewApp_VipsWithoutBuildTag(t *testing.T) {
	if vipscodec.Available {
		t.Skip("built with libvips")
	}
	cfg := testConfig(t)
	cfg.Codec.Engine = "vips"

	_, err := NewApp(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRun_StopsOnContext(t *testing.T) {
	app, err := NewApp(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, app.Run(ctx))
	assert.ErrorIs(t, app.pool.Submit(func() {}), worker.ErrStopped)
}

func TestVersionCmd(t *testing.T) {
	root := NewRoot(context.Background(), "abc123")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "abc123\n", out.String())
}
