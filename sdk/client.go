package sdk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
)

// Error categories surfaced to callers. Only network failures are worth
// retrying; the rest require a changed request or changed configuration.
const (
	CategoryConfig     = "config"
	CategoryValidation = "validation"
	CategoryNetwork    = "network"
	CategoryRequest    = "request"
)

type ClientError struct {
	Category string
	Message  string
	Err      error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *ClientError) Unwrap() error { return e.Err }

const (
	defaultTimeout       = 35 * time.Second
	defaultRetryAttempts = 3
	defaultRetryDelay    = 500 * time.Millisecond
)

type Options struct {
	BaseURL       string
	AccessToken   string
	Timeout       time.Duration
	RetryAttempts uint
	// Detector overrides the built-in heuristic language detector used
	// during normalization.
	Detector LanguageDetector
}

// Client is the typed SDK over the analyzer HTTP API. It normalizes every
// analysis response into a PRDAnalysisResponse before returning it.
type Client struct {
	http          *resty.Client
	retryAttempts uint
	detector      LanguageDetector
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, &ClientError{Category: CategoryConfig, Message: "base URL is required"}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := opts.RetryAttempts
	if attempts == 0 {
		attempts = defaultRetryAttempts
	}
	detector := opts.Detector
	if detector == nil {
		detector = HeuristicDetector{}
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if opts.AccessToken != "" {
		httpClient.SetAuthToken(opts.AccessToken)
	}

	return &Client{
		http:          httpClient,
		retryAttempts: attempts,
		detector:      detector,
	}, nil
}

type AuthUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type AuthSession struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

type AuthResponse struct {
	Message string      `json:"message"`
	User    AuthUser    `json:"user"`
	Session AuthSession `json:"session"`
}

type serverError struct {
	Error    string `json:"error"`
	Category string `json:"category"`
}

// Signup registers a new account and adopts the issued token for
// subsequent calls.
func (c *Client) Signup(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/signup", email, password)
}

// Login exchanges credentials for a session token and adopts it for
// subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*AuthResponse, error) {
	if email == "" || password == "" {
		return nil, &ClientError{Category: CategoryValidation, Message: "email and password are required"}
	}

	var out AuthResponse
	var srvErr serverError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		SetError(&srvErr).
		Post(path)
	if err != nil {
		return nil, &ClientError{Category: CategoryNetwork, Message: "request failed", Err: err}
	}
	if resp.IsError() {
		return nil, errorFromResponse(resp.StatusCode(), srvErr)
	}

	c.http.SetAuthToken(out.Session.AccessToken)
	return &out, nil
}

type AnalyzeRequest struct {
	// Text is pasted article text. Optional when File is set.
	Text string
	// File and Filename carry an uploaded document. Optional when Text
	// is set.
	File     []byte
	Filename string

	IncludeEntities *bool
	IncludeSummary  *bool
}

// Analyze submits the article and returns the normalized response. Network
// failures are retried a bounded number of times; validation and
// configuration failures are not.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*PRDAnalysisResponse, error) {
	if strings.TrimSpace(req.Text) == "" && len(req.File) == 0 {
		return nil, &ClientError{Category: CategoryValidation, Message: "either text or a file is required"}
	}

	var raw RawAnalysis
	err := retry.Do(
		func() error {
			var callErr error
			raw, callErr = c.analyzeOnce(ctx, req)
			return callErr
		},
		retry.Attempts(c.retryAttempts),
		retry.Delay(defaultRetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var clientErr *ClientError
			return errors.As(err, &clientErr) && clientErr.Category == CategoryNetwork
		}),
	)
	if err != nil {
		return nil, err
	}

	normalized := NormalizeWith(raw, req.Text, c.detector)
	return &normalized, nil
}

func (c *Client) analyzeOnce(ctx context.Context, req AnalyzeRequest) (RawAnalysis, error) {
	var raw RawAnalysis
	var srvErr serverError

	r := c.http.R().
		SetContext(ctx).
		SetResult(&raw).
		SetError(&srvErr)

	if len(req.File) > 0 {
		r.SetFileReader("file", req.Filename, bytes.NewReader(req.File))
		if req.Text != "" {
			r.SetFormData(map[string]string{"text": req.Text})
		}
		if req.IncludeEntities != nil {
			r.SetFormData(map[string]string{"include_entities": fmt.Sprintf("%t", *req.IncludeEntities)})
		}
		if req.IncludeSummary != nil {
			r.SetFormData(map[string]string{"include_summary": fmt.Sprintf("%t", *req.IncludeSummary)})
		}
	} else {
		r.SetBody(map[string]any{"text": req.Text})
	}

	resp, err := r.Post("/v1/analyze")
	if err != nil {
		return nil, &ClientError{Category: CategoryNetwork, Message: "request failed", Err: err}
	}
	if resp.IsError() {
		return nil, errorFromResponse(resp.StatusCode(), srvErr)
	}
	return raw, nil
}

func errorFromResponse(status int, srvErr serverError) *ClientError {
	message := srvErr.Error
	if message == "" {
		message = fmt.Sprintf("server returned status %d", status)
	}

	category := CategoryRequest
	switch {
	case srvErr.Category == CategoryValidation || status == 400:
		category = CategoryValidation
	case status == 503 || status == 429:
		category = CategoryNetwork
	}
	return &ClientError{Category: category, Message: message}
}
