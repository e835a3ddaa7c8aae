package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/tripagent/internal/config"
)

func fastRetryConfig(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       attempts,
		Multiplier:        0,
		MaxWaitPerAttempt: time.Millisecond,
		MaxTotalWait:      time.Second,
	}
}

func TestRetryConfigFrom(t *testing.T) {
	rc := RetryConfigFrom(config.RetryConfig{MaxAttempts: 5, MaxTotalWait: 40})
	if rc.MaxAttempts != 5 {
		t.Errorf("Expected MaxAttempts 5, got %d", rc.MaxAttempts)
	}
	if rc.MaxTotalWait != 40*time.Second {
		t.Errorf("Expected MaxTotalWait 40s, got %v", rc.MaxTotalWait)
	}
	if rc.Multiplier != 1 {
		t.Errorf("Expected default Multiplier 1, got %d", rc.Multiplier)
	}
	if rc.MaxWaitPerAttempt != 8*time.Second {
		t.Errorf("Expected default MaxWaitPerAttempt 8s, got %v", rc.MaxWaitPerAttempt)
	}
}

func TestRetryClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != "payload" {
			t.Errorf("Expected body to be replayed, got %q", string(body))
		}
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewRetryClient(fastRetryConfig(3))
	req, _ := http.NewRequest(http.MethodPost, server.URL, strings.NewReader("payload"))

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestRetryClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewRetryClient(fastRetryConfig(3))
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Expected 4xx to be returned as a response, got %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected a single attempt, got %d", got)
	}
}

func TestRetryClient_ExhaustsOnRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewRetryClient(fastRetryConfig(2))
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	_, err := client.Do(req)
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("Expected error to mention status 429, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("Expected 2 attempts, got %d", got)
	}
}

func TestRetryClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := fastRetryConfig(5)
	cfg.Multiplier = 1
	cfg.MaxWaitPerAttempt = time.Second
	cfg.MaxTotalWait = 10 * time.Second
	client := NewRetryClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)

	start := time.Now()
	_, err := client.Do(req)
	if err == nil {
		t.Fatal("Expected context error")
	}
	if time.Since(start) > 900*time.Millisecond {
		t.Errorf("Expected cancellation to cut the backoff short, took %v", time.Since(start))
	}
}

func TestRetryClient_Timeout(t *testing.T) {
	client := NewRetryClientWithTimeout(5*time.Second, nil)
	if client.GetTimeout() != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", client.GetTimeout())
	}
	client.SetTimeout(time.Second)
	if client.HTTPClient().Timeout != time.Second {
		t.Errorf("Expected 1s timeout, got %v", client.HTTPClient().Timeout)
	}
}
