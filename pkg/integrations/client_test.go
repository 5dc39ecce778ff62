package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/blockfall/pkg/cache"
	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/httputil"
)

func TestNewClient(t *testing.T) {
	c := cache.NewMemoryCache()
	defer c.Close()

	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(c, "test:", time.Hour, headers)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != c {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "test:", time.Hour, nil)
	if client.cache == nil {
		t.Fatal("nil cache should fall back to NullCache")
	}
	if client.headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, nil)
	client.SetHTTPClient(server.Client())

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var receivedHeader, defaultHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedHeader = r.Header.Get("X-Override")
		defaultHeader = r.Header.Get("X-Default")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, map[string]string{"X-Override": "default", "X-Default": "kept"})
	client.SetHTTPClient(server.Client())

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"X-Override": "overridden"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if receivedHeader != "overridden" {
		t.Errorf("header = %q, want %q", receivedHeader, "overridden")
	}
	if defaultHeader != "kept" {
		t.Errorf("default header = %q, want %q", defaultHeader, "kept")
	}
}

func TestClientPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var in map[string]int
		json.NewDecoder(r.Body).Decode(&in)
		json.NewEncoder(w).Encode(map[string]int{"double": in["n"] * 2})
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, nil)
	client.SetHTTPClient(server.Client())

	var out map[string]int
	if err := client.PostJSON(context.Background(), server.URL, map[string]int{"n": 21}, &out); err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if out["double"] != 42 {
		t.Errorf("PostJSON() = %v", out)
	}
}

func TestClientGet500IsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, nil)
	client.SetHTTPClient(server.Client())

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if !httputil.IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() error = %v, want retryable network error", err)
	}
}

func TestClientCached(t *testing.T) {
	c := cache.NewMemoryCache()
	client := NewClient(c, "test:", time.Hour, nil)

	type testData struct {
		Value string `json:"value"`
	}

	fetchCount := 0
	fetch := func(v *testData) func() error {
		return func() error {
			fetchCount++
			*v = testData{Value: "fetched"}
			return nil
		}
	}

	var first testData
	if err := client.Cached(context.Background(), "key", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	var second testData
	if err := client.Cached(context.Background(), "key", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1", fetchCount)
	}
	if second.Value != "fetched" {
		t.Errorf("cached value = %+v", second)
	}
	if _, hit, _ := c.Get(context.Background(), "test:key"); !hit {
		t.Error("entry should be stored under the namespaced key")
	}

	// refresh bypasses the cache
	var third testData
	if err := client.Cached(context.Background(), "key", true, &third, fetch(&third)); err != nil {
		t.Fatal(err)
	}
	if fetchCount != 2 {
		t.Errorf("fetch count after refresh = %d, want 2", fetchCount)
	}
}

func TestClientCachedRetries(t *testing.T) {
	client := NewClient(nil, "test:", time.Hour, nil)
	client.SetRetry(3, time.Millisecond)

	calls := 0
	var v string
	err := client.Cached(context.Background(), "k", false, &v, func() error {
		calls++
		if calls < 3 {
			return httputil.Retryable(ErrNetwork)
		}
		v = "ok"
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("err=%v calls=%d", err, calls)
	}

	calls = 0
	err = client.Cached(context.Background(), "k2", false, &v, func() error {
		calls++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		header     http.Header
		wantErr    error
		isRetryErr bool
	}{
		{name: "200 OK", code: 200},
		{name: "404 Not Found", code: 404, wantErr: ErrNotFound},
		{name: "401 Unauthorized", code: 401, wantErr: ErrUnauthorized},
		{name: "429 Too Many Requests", code: 429, header: http.Header{"Retry-After": {"30"}}, wantErr: ErrRateLimited},
		{name: "403 rate limit", code: 403, header: http.Header{"X-Ratelimit-Remaining": {"0"}}, wantErr: ErrRateLimited},
		{name: "403 Forbidden", code: 403, wantErr: ErrNetwork},
		{name: "400 Bad Request", code: 400, wantErr: ErrNetwork},
		{name: "500 Internal Server Error", code: 500, wantErr: ErrNetwork, isRetryErr: true},
		{name: "503 Service Unavailable", code: 503, wantErr: ErrNetwork, isRetryErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.code, Header: tt.header}
			if resp.Header == nil {
				resp.Header = http.Header{}
			}
			err := checkStatus(resp)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantErr)
			}
			if got := httputil.IsRetryable(err); got != tt.isRetryErr {
				t.Errorf("retryable = %v, want %v", got, tt.isRetryErr)
			}
		})
	}
}

func TestCheckStatusRetryAfter(t *testing.T) {
	resp := &http.Response{StatusCode: 429, Header: http.Header{"Retry-After": {"42"}}}
	var rl *bferrors.RateLimitedError
	if err := checkStatus(resp); !errors.As(err, &rl) || rl.RetryAfter != 42 {
		t.Errorf("checkStatus() = %v, want RateLimitedError{42}", err)
	}
}

func TestCheckStatusServiceUnavailableWait(t *testing.T) {
	resp := &http.Response{StatusCode: 503, Header: http.Header{"Retry-After": {"7"}}}
	var re *httputil.RetryableError
	if err := checkStatus(resp); !errors.As(err, &re) || re.After != 7*time.Second {
		t.Errorf("checkStatus() = %v, want retryable with 7s wait", err)
	}
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient()
	if client.Timeout != httpTimeout {
		t.Errorf("Timeout = %v, want %v", client.Timeout, httpTimeout)
	}
}
