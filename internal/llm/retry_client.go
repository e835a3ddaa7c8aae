package llm

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/user/tripagent/internal/config"
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxAttempts       int           // Maximum number of attempts
	Multiplier        int           // Exponential backoff multiplier
	MaxWaitPerAttempt time.Duration // Maximum wait time per attempt
	MaxTotalWait      time.Duration // Maximum total wait time

	// Transport overrides the default pooled transport (tests use this)
	Transport http.RoundTripper
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		Multiplier:        1,
		MaxWaitPerAttempt: 8 * time.Second,
		MaxTotalWait:      20 * time.Second,
	}
}

// RetryConfigFrom converts the retry section of the configuration,
// falling back to defaults for unset fields
func RetryConfigFrom(cfg config.RetryConfig) *RetryConfig {
	rc := DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		rc.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.Multiplier > 0 {
		rc.Multiplier = cfg.Multiplier
	}
	if cfg.MaxWaitPerAttempt > 0 {
		rc.MaxWaitPerAttempt = cfg.GetMaxWaitPerAttempt()
	}
	if cfg.MaxTotalWait > 0 {
		rc.MaxTotalWait = cfg.GetMaxTotalWait()
	}
	return rc
}

// RetryClient wraps http.Client with retry logic. 429 and 5xx responses and
// transport errors are retried with exponential backoff; other statuses are
// returned to the caller as-is.
type RetryClient struct {
	client *http.Client
	config *RetryConfig
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}
}

// NewRetryClient creates a new retry client
func NewRetryClient(config *RetryConfig) *RetryClient {
	return NewRetryClientWithTimeout(60*time.Second, config)
}

// NewRetryClientWithTimeout creates a retry client with custom timeout
func NewRetryClientWithTimeout(timeout time.Duration, config *RetryConfig) *RetryClient {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}

	var transport http.RoundTripper = config.Transport
	if transport == nil {
		transport = newTransport()
	}

	return &RetryClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		config: config,
	}
}

// Do executes an HTTP request with retry logic
func (rc *RetryClient) Do(req *http.Request) (*http.Response, error) {
	return rc.DoWithContext(req.Context(), req)
}

// DoWithContext executes an HTTP request with retry logic and context
func (rc *RetryClient) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	// The body can only be read once, so buffer it for replays
	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	var lastErr error
	lastStatus := 0
	totalStartTime := time.Now()

	for attempt := 0; attempt < rc.config.MaxAttempts; attempt++ {
		reqClone := req.Clone(ctx)
		if payload != nil {
			reqClone.Body = io.NopCloser(bytes.NewReader(payload))
			reqClone.ContentLength = int64(len(payload))
		}

		resp, err := rc.client.Do(reqClone)
		if err == nil {
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return resp, nil
			}
			lastStatus = resp.StatusCode
			lastErr = nil
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		} else {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}

		if attempt == rc.config.MaxAttempts-1 {
			break
		}

		waitTime := rc.calculateWaitTime(attempt)
		if time.Since(totalStartTime)+waitTime > rc.config.MaxTotalWait {
			break
		}

		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("request failed after retries: %w", lastErr)
	}
	return nil, fmt.Errorf("request failed with status %d after retries", lastStatus)
}

// calculateWaitTime calculates wait time using exponential backoff
func (rc *RetryClient) calculateWaitTime(attempt int) time.Duration {
	// 2^attempt * multiplier seconds
	baseWait := time.Duration(math.Pow(2, float64(attempt))) * time.Duration(rc.config.Multiplier) * time.Second

	if rc.config.MaxWaitPerAttempt > 0 && baseWait > rc.config.MaxWaitPerAttempt {
		baseWait = rc.config.MaxWaitPerAttempt
	}

	return baseWait
}

// SetTimeout updates the client timeout
func (rc *RetryClient) SetTimeout(timeout time.Duration) {
	rc.client.Timeout = timeout
}

// GetTimeout returns the current client timeout
func (rc *RetryClient) GetTimeout() time.Duration {
	return rc.client.Timeout
}

// HTTPClient exposes the underlying client for SDKs that bring their own
// request plumbing
func (rc *RetryClient) HTTPClient() *http.Client {
	return rc.client
}
