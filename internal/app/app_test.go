package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devscout/research-agent/internal/config"
)

// TestNewBuildsAllServices wires the full application from defaults.
func TestNewBuildsAllServices(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Logging.Development = false

	a, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, a)
	defer func() {
		require.NoError(t, a.Close(context.Background()))
	}()

	assert.NotNil(t, a.Logger())
	assert.NotNil(t, a.Controller())
	assert.NotNil(t, a.Handler())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestNewRejectsBadConfig fails fast on an unusable gateway endpoint.
func TestNewRejectsBadConfig(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Backend.Endpoint = ""

	_, err = New(cfg)
	assert.Error(t, err)
}
