// Package openai implements the analysis provider contract on top of
// the OpenAI chat completions API with a strict JSON-schema response
// format. The reply is validated against the extraction schema before
// it is returned; a reply that fails validation is an analysis
// failure, never a partial result.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kellemar/text-analyzer/internal/core/domain"
	"github.com/kellemar/text-analyzer/internal/infrastructure/resilience"
)

// TokenRecorder receives provider token usage for metrics.
type TokenRecorder func(model string, promptTokens, completionTokens int)

type Client struct {
	api      *goopenai.Client
	model    string
	schema   *jsonschema.Schema
	executor *resilience.Executor
	record   TokenRecorder
}

type Options struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	Executor *resilience.Executor
	Record   TokenRecorder
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Executor == nil {
		opts.Executor = resilience.NewExecutor(resilience.DefaultConfig())
	}

	cfg := goopenai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}

	schema, err := compileAnalysisSchema()
	if err != nil {
		return nil, fmt.Errorf("compile analysis schema: %w", err)
	}

	return &Client{
		api:      goopenai.NewClientWithConfig(cfg),
		model:    opts.Model,
		schema:   schema,
		executor: opts.Executor,
		record:   opts.Record,
	}, nil
}

func (c *Client) Analyze(ctx context.Context, text string) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult

	call := func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
			Model: c.model,
			Messages: []goopenai.ChatCompletionMessage{
				{Role: goopenai.ChatMessageRoleSystem, Content: systemInstruction},
				{Role: goopenai.ChatMessageRoleUser, Content: buildExtractionPrompt(text)},
			},
			ResponseFormat: &goopenai.ChatCompletionResponseFormat{
				Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
				JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
					Name:   "article_analysis",
					Schema: json.RawMessage(analysisSchemaJSON),
				},
			},
		})
		if err != nil {
			return fmt.Errorf("openai chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return domain.WrapError(domain.ErrAnalysisFailed, "analyze article", errors.New("provider returned no choices"))
		}
		if c.record != nil {
			c.record(resp.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		}

		parsed, err := c.parseValidated(resp.Choices[0].Message.Content)
		if err != nil {
			return err
		}
		result = *parsed
		return nil
	}

	if err := c.executor.Execute(ctx, "openai.analyze", call, classifyProviderError); err != nil {
		return nil, wrapProviderError("analyze article", err)
	}
	return &result, nil
}

// parseValidated enforces the extraction schema on the raw reply, then
// decodes it. A missing language key is tolerated and becomes an empty
// sequence; everything else missing is a schema violation.
func (c *Client) parseValidated(content string) (*domain.AnalysisResult, error) {
	var loose any
	if err := json.Unmarshal([]byte(content), &loose); err != nil {
		return nil, domain.WrapError(domain.ErrAnalysisFailed, "parse provider reply", err)
	}
	if err := c.schema.Validate(loose); err != nil {
		return nil, domain.WrapError(domain.ErrAnalysisFailed, "validate provider reply", err)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, domain.WrapError(domain.ErrAnalysisFailed, "decode provider reply", err)
	}
	result.EnsureArrays()
	return &result, nil
}
