// Package remote implements ports.Transport over HTTP. Envelopes are
// POSTed to the dispatch endpoint's /v1/dispatch and /v1/notify routes
// through the instrumented platform HTTP client, so outbound calls carry
// tracing, rate limiting, and the circuit breaker.
//
// Application errors ride inside the response envelope; only network
// failures, circuit-breaker rejections, and malformed responses surface as
// transport errors, wrapping domain.ErrTransport.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/platform/httpclient"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 8 << 20 // 8 MB

// Routes on the dispatch endpoint.
const (
	DispatchPath = "/v1/dispatch"
	NotifyPath   = "/v1/notify"
)

// Transport ships envelopes to a remote dispatch endpoint.
type Transport struct {
	client *httpclient.Client
	logger *slog.Logger
}

var _ ports.Transport = (*Transport)(nil)

// New creates a transport backed by the given HTTP client.
func New(client *httpclient.Client, logger *slog.Logger) *Transport {
	return &Transport{client: client, logger: logger}
}

// Dispatch implements ports.Transport.
func (t *Transport) Dispatch(ctx context.Context, env ports.RequestEnvelope) (*ports.ResponseEnvelope, error) {
	return t.post(ctx, DispatchPath, env)
}

// Notify implements ports.Transport.
func (t *Transport) Notify(ctx context.Context, env ports.RequestEnvelope) (*ports.ResponseEnvelope, error) {
	return t.post(ctx, NotifyPath, env)
}

// post sends one envelope and decodes the response envelope. The HTTP
// status mirrors the error kind for plain HTTP observers; the envelope body
// is authoritative, so any status with a decodable envelope is accepted.
func (t *Transport) post(ctx context.Context, path string, env ports.RequestEnvelope) (*ports.ResponseEnvelope, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding %q envelope: %w", env.Type, err)
	}

	url := t.client.BaseURL() + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(ctx, req)
	if err != nil && resp == nil {
		t.logger.ErrorContext(ctx, "dispatch transport failed",
			slog.String("path", path),
			slog.String("type", env.Type),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: POST %s: %v", domain.ErrTransport, path, err)
	}
	defer t.closeBody(ctx, resp)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response from %s: %v", domain.ErrTransport, path, err)
	}

	var out ports.ResponseEnvelope
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: malformed response from %s (status %d): %v",
			domain.ErrTransport, path, resp.StatusCode, err)
	}
	if out.Error == nil && out.Payload == nil {
		return nil, fmt.Errorf("%w: empty response envelope from %s (status %d)",
			domain.ErrTransport, path, resp.StatusCode)
	}

	return &out, nil
}

func (t *Transport) closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		t.logger.WarnContext(ctx, "failed to close response body",
			slog.String("error", err.Error()),
		)
	}
}
