package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
)

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	var clientErr *ClientError
	if !errors.As(err, &clientErr) || clientErr.Category != CategoryConfig {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestAnalyzeRequiresInput(t *testing.T) {
	c, err := New(Options{BaseURL: "http://localhost:1"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = c.Analyze(context.Background(), AnalyzeRequest{})
	var clientErr *ClientError
	if !errors.As(err, &clientErr) || clientErr.Category != CategoryValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAnalyzeNormalizesServerResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/analyze" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"article_summary": []string{"A", "B"},
			"nationalities":   []string{"France"},
			"organizations":   []string{"CERN"},
			"people":          []string{},
			"language":        []string{"French"},
		})
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, AccessToken: "tok"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := c.Analyze(context.Background(), AnalyzeRequest{Text: "bonjour"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if resp.ArticleSummary != "A B" {
		t.Fatalf("expected joined summary, got %q", resp.ArticleSummary)
	}
	if !reflect.DeepEqual(resp.Nationalities, []string{"French"}) {
		t.Fatalf("expected nationality conversion, got %v", resp.Nationalities)
	}
	if !reflect.DeepEqual(resp.Languages, []string{"French"}) {
		t.Fatalf("expected server language, got %v", resp.Languages)
	}
}

func TestAnalyzeValidationErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "empty text", "category": "validation"})
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, RetryAttempts: 3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	var clientErr *ClientError
	if !errors.As(err, &clientErr) || clientErr.Category != CategoryValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected single attempt for validation failure, got %d", got)
	}
}

func TestAnalyzeRetriesNetworkFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "overloaded", "category": "request"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"article_summary": []string{"ok"},
			"nationalities":   []string{},
			"organizations":   []string{},
			"people":          []string{},
			"language":        []string{"English"},
		})
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, RetryAttempts: 3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := c.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if resp.ArticleSummary != "ok" {
		t.Fatalf("expected success after retries, got %+v", resp)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestLoginAdoptsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/login":
			_ = json.NewEncoder(w).Encode(AuthResponse{
				Message: "login successful",
				User:    AuthUser{ID: "u1", Email: "a@b.c"},
				Session: AuthSession{AccessToken: "issued-token"},
			})
		case "/v1/analyze":
			if r.Header.Get("Authorization") != "Bearer issued-token" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing token", "category": "request"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"article_summary": []string{}, "nationalities": []string{},
				"organizations": []string{}, "people": []string{}, "language": []string{"English"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	auth, err := c.Login(context.Background(), "a@b.c", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if auth.Session.AccessToken != "issued-token" {
		t.Fatalf("expected issued token, got %q", auth.Session.AccessToken)
	}

	if _, err := c.Analyze(context.Background(), AnalyzeRequest{Text: "x"}); err != nil {
		t.Fatalf("Analyze() with adopted token error = %v", err)
	}
}
