// Package api is the data-access boundary of the client: an authenticated
// JSON HTTP client for the GameWish backend, the wire shapes the backend
// actually sends, and the normalizer that folds them into the canonical
// shapes in internal/model.
//
// The client holds no request state. A fresh bearer token is obtained
// from the TokenSource on every call; nothing here assumes or maintains a
// session beyond that.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/gamewish/gamewish/internal/apperror"
	"github.com/gamewish/gamewish/internal/auth"
)

// Client issues authenticated requests against the backend's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     auth.TokenSource
	logger     *slog.Logger
}

// Config holds everything a Client needs. Tokens is required — there are
// no unauthenticated endpoints on this API.
type Config struct {
	BaseURL string
	Tokens  auth.TokenSource
	Timeout time.Duration
}

func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("api: token source is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     cfg.Tokens,
		logger:     logger,
	}, nil
}

// errorResponse is the backend's error envelope. Only message is
// guaranteed; some endpoints omit it entirely.
type errorResponse struct {
	Message string `json:"message"`
}

// do issues one request and decodes the 2xx response body into out (out
// may be nil when the body is irrelevant).
//
// Error contract:
//   - token source failure → ErrUnauthorized
//   - transport failure (no response) → ErrUnreachable
//   - non-2xx status → apperror.FromStatus with the server's message
//
// Each request carries an X-Request-ID so a client log line can be
// matched against the backend's.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.tokens.IDToken(ctx)
	if err != nil {
		return fmt.Errorf("api: obtaining token: %w", apperror.Unauthorized(err.Error()))
	}
	if token == "" {
		return apperror.Unauthorized("no active session")
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("api: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := xid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("requestId", requestID),
			slog.String("error", err.Error()),
		)
		return apperror.Unreachable(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
		slog.String("requestId", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errRes errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errRes)
		return apperror.FromStatus(resp.StatusCode, errRes.Message)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("api: decoding response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
