package openai

import (
	"errors"
	"strings"
	"testing"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kellemar/text-analyzer/internal/core/domain"
	"github.com/kellemar/text-analyzer/internal/infrastructure/resilience"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(Options{
		APIKey:  "sk-test",
		Model:   "gpt-4o-mini",
		Timeout: time.Second,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestParseValidatedFullReply(t *testing.T) {
	c := newTestClient(t)

	result, err := c.parseValidated(`{
		"article_summary": ["A short summary."],
		"nationalities": ["French", "German"],
		"organizations": ["European Commission"],
		"people": ["Ursula von der Leyen"],
		"language": ["English"]
	}`)
	if err != nil {
		t.Fatalf("parseValidated() error = %v", err)
	}
	if len(result.Nationalities) != 2 {
		t.Fatalf("expected 2 nationalities, got %v", result.Nationalities)
	}
}

func TestParseValidatedToleratesMissingLanguage(t *testing.T) {
	c := newTestClient(t)

	result, err := c.parseValidated(`{
		"article_summary": ["A short summary."],
		"nationalities": [],
		"organizations": [],
		"people": []
	}`)
	if err != nil {
		t.Fatalf("parseValidated() error = %v", err)
	}
	if result.Language == nil || len(result.Language) != 0 {
		t.Fatalf("expected empty language sequence, got %v", result.Language)
	}
}

func TestParseValidatedRejectsMissingRequiredField(t *testing.T) {
	c := newTestClient(t)

	_, err := c.parseValidated(`{
		"article_summary": ["A short summary."],
		"organizations": [],
		"people": []
	}`)
	if !domain.IsKind(err, domain.ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
}

func TestParseValidatedRejectsWrongTypes(t *testing.T) {
	c := newTestClient(t)

	_, err := c.parseValidated(`{
		"article_summary": "not an array",
		"nationalities": [],
		"organizations": [],
		"people": []
	}`)
	if !domain.IsKind(err, domain.ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
}

func TestParseValidatedRejectsNonJSON(t *testing.T) {
	c := newTestClient(t)

	_, err := c.parseValidated("Sure! Here is the JSON you asked for:")
	if !domain.IsKind(err, domain.ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
}

func TestClassifyProviderErrorValidationNotRetryable(t *testing.T) {
	err := domain.WrapError(domain.ErrAnalysisFailed, "validate provider reply", errors.New("missing field"))
	class := classifyProviderError(err)
	if class.Retryable {
		t.Fatalf("validation failures must not be retried")
	}
	if class.RecordFailure {
		t.Fatalf("validation failures must not trip the breaker")
	}
}

func TestClassifyProviderErrorThrottlingRetryable(t *testing.T) {
	var err error = &goopenai.APIError{HTTPStatusCode: 429, Message: "rate limited"}
	class := classifyProviderError(err)
	if !class.Retryable {
		t.Fatalf("429 should be retryable")
	}

	var badRequest error = &goopenai.APIError{HTTPStatusCode: 400, Message: "bad request"}
	if classifyProviderError(badRequest).Retryable {
		t.Fatalf("400 should not be retryable")
	}
}

func TestWrapProviderErrorMapsToAnalysisFailed(t *testing.T) {
	wrapped := wrapProviderError("analyze article", errors.New("connection reset"))
	if !domain.IsKind(wrapped, domain.ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", wrapped)
	}
}

func TestBuildExtractionPromptCarriesRulesAndArticle(t *testing.T) {
	prompt := buildExtractionPrompt("the article body")
	for _, want := range []string{"strict JSON", "1.", "2.", "3.", "4.", "5.", "empty array", "the article body"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Options{Model: "gpt-4o-mini"})
	if err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestExecutorWiringDefaults(t *testing.T) {
	c, err := New(Options{APIKey: "sk-test", Model: "m", Executor: resilience.NewExecutor(resilience.Config{BreakerEnabled: false})})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.executor == nil {
		t.Fatalf("expected executor")
	}
}
