// Package certificates implements the client for the external certificate
// generation service. The service accepts a JSON list of certificate records
// and renders them asynchronously.
package certificates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
	"github.com/alem-hub/course-schedule/pkg/circuitbreaker"
	"github.com/alem-hub/course-schedule/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// APIKeyHeader carries the shared secret expected by the service.
const APIKeyHeader = "x-api-key"

// ClientConfig contains configuration for the certificate API client.
type ClientConfig struct {
	// URL is the endpoint that accepts certificate batches.
	URL string

	// APIKey is sent in the x-api-key header.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(url, apiKey string) ClientConfig {
	return ClientConfig{
		URL:     url,
		APIKey:  apiKey,
		Timeout: 15 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client posts certificate batches to the generation service.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
	retries    retry.Policy
	breaker    *circuitbreaker.Breaker
}

// NewClient creates a new certificate API client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	logger := config.Logger.With("component", "certificate_client")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
		retries: retry.CertificateAPI(func(attempt int, err error, wait time.Duration) {
			logger.Warn("certificate request failed, retrying",
				"attempt", attempt, "wait", wait, "error", err)
		}),
		breaker: circuitbreaker.CertificateAPI(countsAgainstService, func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		}),
	}
}

// WithRetryPolicy replaces the retry policy.
func (c *Client) WithRetryPolicy(p retry.Policy) *Client {
	c.retries = p
	return c
}

// A rejected request says nothing about the service's health.
func countsAgainstService(err error) bool {
	return !errors.Is(err, shared.ErrCertificateAPIRejected)
}

// Issue posts the certificates as a JSON array. 5xx responses and transport
// errors are retried; 4xx responses fail immediately.
func (c *Client) Issue(ctx context.Context, certs []course.Certificate) error {
	if certs == nil {
		certs = []course.Certificate{}
	}
	body, err := json.Marshal(certs)
	if err != nil {
		return fmt.Errorf("marshal certificates: %w", err)
	}

	err = c.breaker.Do(ctx, func(ctx context.Context) error {
		return c.retries.Do(ctx, func(ctx context.Context) error {
			return c.post(ctx, body)
		})
	})
	switch {
	case err == nil:
		c.logger.InfoContext(ctx, "certificates requested", "count", len(certs))
		return nil
	case shared.IsExternalService(err):
		return err
	default:
		return fmt.Errorf("%w: %v", shared.ErrCertificateAPIUnavailable, err)
	}
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set(APIKeyHeader, c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Retryable(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 500:
		return retry.Retryable(fmt.Errorf("api error: status %d: %s", resp.StatusCode, respBody))
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d: %s", shared.ErrCertificateAPIRejected, resp.StatusCode, respBody)
	}
	return nil
}
