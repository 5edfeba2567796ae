// Package gateway performs the single outbound research call and classifies
// failures into the structured error taxonomy based on response shape.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devscout/research-agent/internal/research"
)

// Config controls the outbound client.
type Config struct {
	// Endpoint is the full URL of the backend research endpoint.
	Endpoint string
	// Timeout bounds the whole round trip; zero means no timeout, matching
	// the backend's unbounded processing window.
	Timeout time.Duration
	// UserAgent overrides the default request User-Agent when set.
	UserAgent string
}

const defaultUserAgent = "research-agent/0.1"

// Client issues exactly one POST per Send invocation. It never retries;
// supersession and cancellation policy live in the controller.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New constructs a Client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("gateway endpoint is required")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

type researchRequest struct {
	Query string `json:"query"`
}

// detailEntry matches one element of a 422 validation payload.
type detailEntry struct {
	Loc []json.RawMessage `json:"loc"`
	Msg string            `json:"msg"`
}

// Send posts the query to the research endpoint and returns the parsed
// result, or a *research.Error classified by what came back:
// a 422 carrying a field-error list becomes server_validation, any other
// non-2xx becomes api, and a transport failure with no response becomes
// network.
func (c *Client) Send(ctx context.Context, query string) (*research.Result, error) {
	body, err := json.Marshal(researchRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("research call transport failure", zap.Error(err))
		return nil, research.NewNetworkError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("research call body read failed", zap.Error(err))
		return nil, research.NewNetworkError(err)
	}
	c.logger.Debug("research call completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var result research.Result
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, research.NewAPIError(resp.StatusCode, "invalid response payload")
		}
		return &result, nil
	}
	return nil, classifyFailure(resp.StatusCode, payload)
}

// classifyFailure maps a non-2xx response to a structured error using only
// the response shape.
func classifyFailure(status int, payload []byte) *research.Error {
	if status == http.StatusUnprocessableEntity {
		var body struct {
			Detail []detailEntry `json:"detail"`
		}
		if err := json.Unmarshal(payload, &body); err == nil && len(body.Detail) > 0 {
			fields := make([]research.FieldError, 0, len(body.Detail))
			for _, d := range body.Detail {
				fields = append(fields, research.FieldError{
					Field:   joinLoc(d.Loc),
					Message: d.Msg,
				})
			}
			return research.NewServerValidationError(fields)
		}
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Detail != "" {
		return research.NewAPIError(status, body.Detail)
	}
	return research.NewAPIError(status, "")
}

// joinLoc flattens a location path such as ["body","query"] into
// "body.query". Non-string segments (FastAPI emits array indices as
// integers) are rendered verbatim.
func joinLoc(loc []json.RawMessage) string {
	parts := make([]string, 0, len(loc))
	for _, raw := range loc {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			parts = append(parts, s)
			continue
		}
		parts = append(parts, strings.TrimSpace(string(raw)))
	}
	return strings.Join(parts, ".")
}
