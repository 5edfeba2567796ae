package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devscout/research-agent/internal/config"
	"github.com/devscout/research-agent/internal/controller"
	"github.com/devscout/research-agent/internal/event"
	"github.com/devscout/research-agent/internal/metrics"
	"github.com/devscout/research-agent/internal/notify"
	"github.com/devscout/research-agent/internal/progress"
	"github.com/devscout/research-agent/internal/research"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type staticIDs struct{}

func (staticIDs) NewID() (string, error) { return "req-test", nil }

type gatewayFunc func(ctx context.Context, query string) (*research.Result, error)

func (f gatewayFunc) Send(ctx context.Context, query string) (*research.Result, error) {
	return f(ctx, query)
}

func newTestServer(t *testing.T, gw research.Gateway) (*Server, *notify.Recorder) {
	t.Helper()
	metrics.Init()
	sim, err := progress.New(progress.Default(), 5*time.Millisecond, systemClock{})
	require.NoError(t, err)
	ctrl := controller.New(gw, sim, nil, systemClock{}, staticIDs{}, nil)
	notices := notify.New(notify.Config{})
	cfg, err := config.Load("")
	require.NoError(t, err)
	return NewServer(ctrl, notices, cfg, nil), notices
}

func postResearch(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/research", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// TestSubmitResearchSuccess returns the backend result verbatim.
func TestSubmitResearchSuccess(t *testing.T) {
	t.Parallel()

	gw := gatewayFunc(func(_ context.Context, query string) (*research.Result, error) {
		return &research.Result{
			Query:     query,
			Companies: []research.ToolRecord{{Name: "Django", Description: "d", Website: "https://d"}},
			Analysis:  "pick Django",
		}, nil
	})
	srv, _ := newTestServer(t, gw)

	rec := postResearch(t, srv, `{"query":"Python web frameworks"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result research.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Python web frameworks", result.Query)
	require.Len(t, result.Companies, 1)
	assert.Equal(t, "Django", result.Companies[0].Name)
}

// TestSubmitResearchBadJSON rejects undecodable bodies.
func TestSubmitResearchBadJSON(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, gatewayFunc(func(context.Context, string) (*research.Result, error) {
		t.Fatal("gateway must not be called")
		return nil, nil
	}))

	rec := postResearch(t, srv, `{"query": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestSubmitResearchValidationError maps client validation failures onto
// the 422 detail-list shape.
func TestSubmitResearchValidationError(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, gatewayFunc(func(context.Context, string) (*research.Result, error) {
		t.Fatal("gateway must not be called")
		return nil, nil
	}))

	rec := postResearch(t, srv, `{"query":"a"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Detail []struct {
			Loc []string `json:"loc"`
			Msg string   `json:"msg"`
		} `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Detail, 1)
	assert.Equal(t, []string{"body", "query"}, body.Detail[0].Loc)
	assert.Equal(t, "Query must be at least 2 characters long", body.Detail[0].Msg)
}

// TestSubmitResearchErrorMapping covers gateway failure → HTTP status
// mapping.
func TestSubmitResearchErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"network", research.NewNetworkError(nil), http.StatusBadGateway, "network error: no response received"},
		{"api with status", research.NewAPIError(http.StatusServiceUnavailable, "Workflow not initialized"), http.StatusServiceUnavailable, "Workflow not initialized"},
		{"api without usable status", research.NewAPIError(0, "odd"), http.StatusBadGateway, "odd"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv, _ := newTestServer(t, gatewayFunc(func(context.Context, string) (*research.Result, error) {
				return nil, tc.err
			}))
			rec := postResearch(t, srv, `{"query":"Python web frameworks"}`)
			require.Equal(t, tc.wantStatus, rec.Code)

			var body struct {
				Detail string `json:"detail"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantDetail, body.Detail)
		})
	}
}

// TestSubmitResearchServerValidation relays upstream field errors with
// their locations restored.
func TestSubmitResearchServerValidation(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, gatewayFunc(func(context.Context, string) (*research.Result, error) {
		return nil, research.NewServerValidationError([]research.FieldError{
			{Field: "body.query", Message: "too short"},
		})
	}))

	rec := postResearch(t, srv, `{"query":"Python web frameworks"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loc":["body","query"]`)
	assert.Contains(t, rec.Body.String(), `"msg":"too short"`)
}

// TestResearchState exposes the controller snapshot.
func TestResearchState(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, gatewayFunc(func(context.Context, string) (*research.Result, error) {
		return &research.Result{}, nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/research/state", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var state controller.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, research.PhaseIdle, state.Phase)
	assert.False(t, state.Pending)
	assert.Zero(t, state.Progress)
}

// TestListNotifications surfaces recorded notices.
func TestListNotifications(t *testing.T) {
	t.Parallel()

	srv, notices := newTestServer(t, gatewayFunc(func(context.Context, string) (*research.Result, error) {
		return &research.Result{}, nil
	}))
	require.NoError(t, notices.Consume(context.Background(), event.Event{
		RequestID: "req-test",
		TS:        time.Now().UTC(),
		Kind:      event.KindSearchError,
		Message:   "boom",
		Category:  research.CategoryError,
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"boom"`)
}

// TestListExamples returns the configured example queries.
func TestListExamples(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, gatewayFunc(func(context.Context, string) (*research.Result, error) {
		return &research.Result{}, nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/examples", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Python web frameworks")
}

// TestHealthEndpoints cover the liveness and readiness probes.
func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, gatewayFunc(func(context.Context, string) (*research.Result, error) {
		return &research.Result{}, nil
	}))

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

// TestRequestIDHeader asserts every response carries X-Request-ID.
func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, gatewayFunc(func(context.Context, string) (*research.Result, error) {
		return &research.Result{}, nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
