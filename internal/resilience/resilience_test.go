package resilience

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func fastBackoff(retries int) BackoffConfig {
	return BackoffConfig{MaxRetries: retries, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
}

func getter(url string) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, url, nil)
	}
}

func TestDoRequestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := HTTPClientConfig{Client: srv.Client(), Backoff: fastBackoff(3)}
	resp, err := DoRequest(context.Background(), cfg, NewBreaker("test"), getter(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestDoRequestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := HTTPClientConfig{Client: srv.Client(), Backoff: fastBackoff(3)}
	_, err := DoRequest(context.Background(), cfg, NewBreaker("test"), getter(srv.URL))

	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus match, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single call, got %d", got)
	}
}

func TestDoRequestOpensCircuit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cb := NewBreaker("flaky")
	cfg := HTTPClientConfig{Client: srv.Client(), Backoff: fastBackoff(0)}

	for i := 0; i < 6; i++ {
		_, err := DoRequest(context.Background(), cfg, cb, getter(srv.URL))
		if !errors.Is(err, ErrServerError) {
			t.Fatalf("call %d: expected ErrServerError, got %v", i, err)
		}
	}

	_, err := DoRequest(context.Background(), cfg, cb, getter(srv.URL))
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestDoRequestValidatesConfig(t *testing.T) {
	cb := NewBreaker("cfg")
	if _, err := DoRequest(context.Background(), HTTPClientConfig{}, cb, getter("http://example.invalid")); !errors.Is(err, ErrNoHTTPClient) {
		t.Fatalf("expected ErrNoHTTPClient, got %v", err)
	}
	cfg := HTTPClientConfig{Client: http.DefaultClient}
	if _, err := DoRequest(context.Background(), cfg, cb, getter("http://example.invalid")); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestExecute(t *testing.T) {
	cb := NewBreaker("exec")
	got, err := Execute(cb, func() (string, error) { return "ok", nil })
	if err != nil || got != "ok" {
		t.Fatalf("got %q, %v", got, err)
	}

	boom := errors.New("boom")
	if _, err := Execute(cb, func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
