package testing

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func SetJSONHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}

type MockServerOption func(*mockServerConfig)

type mockServerConfig struct {
	validateAuth bool
	authHeader   string
	authValue    string
	queryKey     string
	queryValue   string
}

func WithAuthValidation(header, value string) MockServerOption {
	return func(cfg *mockServerConfig) {
		cfg.validateAuth = true
		cfg.authHeader = header
		cfg.authValue = value
	}
}

// WithQueryKeyValidation checks an API key passed as a query parameter
// (SerpAPI "api_key")
func WithQueryKeyValidation(param, value string) MockServerOption {
	return func(cfg *mockServerConfig) {
		cfg.queryKey = param
		cfg.queryValue = value
	}
}

func NewMockServer(t *testing.T, handler http.HandlerFunc, opts ...MockServerOption) *httptest.Server {
	t.Helper()
	cfg := &mockServerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	wrappedHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.validateAuth {
			if r.Header.Get(cfg.authHeader) != cfg.authValue {
				t.Errorf("Expected %s header '%s', got '%s'", cfg.authHeader, cfg.authValue, r.Header.Get(cfg.authHeader))
			}
		}
		if cfg.queryKey != "" {
			if got := r.URL.Query().Get(cfg.queryKey); got != cfg.queryValue {
				t.Errorf("Expected query %s '%s', got '%s'", cfg.queryKey, cfg.queryValue, got)
			}
		}
		handler(w, r)
	})

	server := httptest.NewServer(wrappedHandler)
	t.Cleanup(server.Close)
	return server
}

func UnauthorizedHandler(errorBody string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(errorBody))
	}
}

func RateLimitHandler(errorBody string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(errorBody))
	}
}

func InternalErrorHandler(errorBody string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(errorBody))
	}
}

// GeminiTextResponse is a generateContent body with a final text answer
func GeminiTextResponse(text string, inputTokens, outputTokens int) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}],"role":"model"},"finishReason":"STOP","index":0}],"usageMetadata":{"promptTokenCount":%d,"candidatesTokenCount":%d,"totalTokenCount":%d}}`, text, inputTokens, outputTokens, inputTokens+outputTokens)
}

// GeminiFunctionCallResponse is a generateContent body requesting one call.
// argsJSON must be a JSON object.
func GeminiFunctionCallResponse(name, argsJSON string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"functionCall":{"name":%q,"args":%s}}],"role":"model"},"finishReason":"STOP","index":0}]}`, name, argsJSON)
}

// OpenAITextResponse is a chat completion body with a final text answer
func OpenAITextResponse(content string) string {
	return fmt.Sprintf(`{"id":"chatcmpl-123","object":"chat.completion","created":1234567890,"model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`, content)
}

// OpenAIToolCallResponse is a chat completion body requesting one call.
// argsJSON is sent as the encoded arguments string.
func OpenAIToolCallResponse(id, name, argsJSON string) string {
	return fmt.Sprintf(`{"id":"chatcmpl-123","object":"chat.completion","created":1234567890,"model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":null,"tool_calls":[{"id":%q,"type":"function","function":{"name":%q,"arguments":%q}}]},"finish_reason":"tool_calls"}]}`, id, name, argsJSON)
}

// JSONHandler always answers 200 with body
func JSONHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		SetJSONHeaders(w)
		w.Write([]byte(body))
	}
}

type RetryHandler struct {
	callCount      int32
	failUntil      int32
	failStatusCode int
	failBody       string
	successHandler http.HandlerFunc
}

func NewRetryHandler(failUntil, failStatusCode int, failBody string, successHandler http.HandlerFunc) *RetryHandler {
	return &RetryHandler{
		failUntil:      int32(failUntil),
		failStatusCode: failStatusCode,
		failBody:       failBody,
		successHandler: successHandler,
	}
}

func (h *RetryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if atomic.AddInt32(&h.callCount, 1) <= h.failUntil {
		w.WriteHeader(h.failStatusCode)
		w.Write([]byte(h.failBody))
		return
	}
	h.successHandler(w, r)
}

func (h *RetryHandler) CallCount() int {
	return int(atomic.LoadInt32(&h.callCount))
}
