// Package api implements the typed client for the storefront REST contract.
// Every response is a JSON envelope {success, message, data}; every non-2xx
// status becomes a *domain.APIError carrying the envelope's message. That is
// the only error taxonomy entry point for the synchronization layer.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/velora-shop/storefront-go/config"
	"github.com/velora-shop/storefront-go/internal/core/domain"
	"github.com/velora-shop/storefront-go/observability"
)

const (
	headerRequestID = "X-Request-ID"

	// genericFailure is the fallback message when the backend supplies none
	// (transport failures, malformed envelopes).
	genericFailure = "Something went wrong"
)

// Client talks to the storefront backend. The underlying cookie jar carries
// the session cookie across calls, so one Client is one browsing session.
type Client struct {
	rc  *resty.Client
	log *zap.Logger
}

// New creates a storefront API client from configuration. The logger may be
// nil; a no-op logger is substituted.
func New(cfg config.APIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Cookie jar for session continuity - the backend authenticates via a
	// session cookie, the Go analogue of fetch's credentials: "include".
	jar, _ := cookiejar.New(nil)

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetCookieJar(jar).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetDebug(cfg.Debug)

	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
	}

	return &Client{rc: rc, log: logger}
}

// ClearSession replaces the cookie jar, dropping the session cookie. Called
// on logout so the local credential is gone even when the logout request
// itself never reached the backend.
func (c *Client) ClearSession() {
	jar, _ := cookiejar.New(nil)
	c.rc.SetCookieJar(jar)
}

// envelope is the wire wrapper every storefront response uses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do performs one API call: marshal body, send with a fresh request id,
// unwrap the envelope into out. op is the logical operation name used for
// spans and metric labels.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, span := observability.StartSpan(ctx, "api."+op, trace.WithAttributes(
		attribute.String("layer", "api"),
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	))
	defer span.End()

	done := observability.APIRequestStarted(op)

	req := c.rc.R().
		SetContext(ctx).
		SetHeader(headerRequestID, uuid.NewString())
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		done(method, 0)
		observability.RecordError(ctx, err)
		c.log.Debug("API request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	done(method, resp.StatusCode())
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))

	// The body is parsed unconditionally; a non-JSON body simply yields an
	// empty envelope and the generic message below.
	var env envelope
	_ = json.Unmarshal(resp.Body(), &env)

	if resp.IsError() {
		msg := env.Message
		if msg == "" {
			msg = genericFailure
		}
		apiErr := &domain.APIError{StatusCode: resp.StatusCode(), Message: msg}
		observability.RecordError(ctx, apiErr)
		c.log.Debug("API request rejected",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode()),
			zap.String("message", msg),
		)
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}
