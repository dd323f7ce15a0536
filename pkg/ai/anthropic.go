package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/visitnote/visit-summary/internal/infrastructure/metrics"
	"github.com/visitnote/visit-summary/pkg/config"
)

const (
	DefaultModel   = "claude-3-5-sonnet-20241022"
	DefaultBaseURL = "https://api.anthropic.com"
	APIVersion     = "2023-06-01"

	messagesPath   = "/v1/messages"
	requestTimeout = 60 * time.Second
	apiKeyPrefix   = "sk-ant-"
	maxLoggedBody  = 512
)

// Returned instead of a completion when the API key cannot be used
const (
	PlaceholderNotConfigured = "AI summary unavailable: AI is not configured. Set ANTHROPIC_API_KEY to enable visit summaries."
	PlaceholderMalformedKey  = "AI summary unavailable: ANTHROPIC_API_KEY is set but malformed (expected a key starting with sk-ant-)."
)

// ErrEmptyCompletion is the cause of a CompletionError for a 2xx response
// that carried no text
var ErrEmptyCompletion = errors.New("completion response contained no text")

// CredentialStatus describes the configured API key
type CredentialStatus int

const (
	CredentialOK CredentialStatus = iota
	CredentialMissing
	CredentialMalformed
)

func (s CredentialStatus) String() string {
	switch s {
	case CredentialOK:
		return "ok"
	case CredentialMissing:
		return "missing"
	case CredentialMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("CredentialStatus(%d)", int(s))
	}
}

// CompletionError is returned when the completion endpoint could not produce
// a summary. StatusCode is zero for transport failures.
type CompletionError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *CompletionError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Cause != nil:
		return fmt.Sprintf("completion request failed with status %d: %v", e.StatusCode, e.Cause)
	case e.StatusCode != 0:
		return fmt.Sprintf("completion request failed with status %d: %s", e.StatusCode, truncate(e.Body, maxLoggedBody))
	case e.Cause != nil:
		return fmt.Sprintf("completion request failed: %v", e.Cause)
	default:
		return "completion request failed"
	}
}

func (e *CompletionError) Unwrap() error {
	return e.Cause
}

// MessagesRequest is the body of a Messages API call
type MessagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
}

// Message is one conversation turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessagesResponse is the subset of the Messages API response we read
type MessagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Content    []ContentBlock `json:"content"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// ContentBlock is one block of a response
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiErrorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnthropicClient performs single-shot completions against the Messages API
type AnthropicClient struct {
	apiKey  string
	model   string
	client  *resty.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewAnthropicClient creates a client from cfg. Empty model and base URL
// fall back to the defaults.
func NewAnthropicClient(cfg *config.AnthropicConfig, logger *zap.Logger, m *metrics.Metrics) *AnthropicClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	var apiKey, model, baseURL string
	if cfg != nil {
		apiKey = strings.TrimSpace(cfg.APIKey)
		model = cfg.Model
		baseURL = cfg.BaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(requestTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("anthropic-version", APIVersion)

	return &AnthropicClient{
		apiKey:  apiKey,
		model:   model,
		client:  client,
		logger:  logger.Named("anthropic"),
		metrics: m,
	}
}

// CredentialStatus classifies the configured API key
func (c *AnthropicClient) CredentialStatus() CredentialStatus {
	switch {
	case c.apiKey == "":
		return CredentialMissing
	case !strings.HasPrefix(c.apiKey, apiKeyPrefix):
		return CredentialMalformed
	default:
		return CredentialOK
	}
}

// Configured reports whether Complete will reach the network
func (c *AnthropicClient) Configured() bool {
	return c.CredentialStatus() == CredentialOK
}

// Model returns the model name sent with every request
func (c *AnthropicClient) Model() string {
	return c.model
}

// Complete sends prompt as a single user message and returns the text of the
// response. An unusable API key short-circuits to a placeholder without a
// network call.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	switch status := c.CredentialStatus(); status {
	case CredentialMissing:
		c.logger.Warn("ANTHROPIC_API_KEY not configured, returning placeholder summary")
		c.metrics.RecordCompletion(metrics.ResultPlaceholder, 0)
		return PlaceholderNotConfigured, nil
	case CredentialMalformed:
		c.logger.Warn("ANTHROPIC_API_KEY does not look like an Anthropic key, returning placeholder summary")
		c.metrics.RecordCompletion(metrics.ResultPlaceholder, 0)
		return PlaceholderMalformedKey, nil
	}

	start := time.Now()
	text, err := c.send(ctx, prompt, maxTokens)
	latency := time.Since(start)

	if err != nil {
		c.metrics.RecordCompletion(metrics.ResultError, latency)
		return "", err
	}
	c.metrics.RecordCompletion(metrics.ResultSuccess, latency)
	return text, nil
}

func (c *AnthropicClient) send(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body := MessagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []Message{{Role: "user", Content: prompt}},
	}

	c.logger.Debug("Sending completion request",
		zap.String("model", c.model),
		zap.Int("max_tokens", maxTokens),
		zap.Int("prompt_chars", len(prompt)),
	)

	var result MessagesResponse
	var apiErr apiErrorResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post(messagesPath)

	// a status is checked first: resty reports an undecodable error body as err
	if resp != nil && resp.StatusCode() != 0 && !resp.IsSuccess() {
		cerr := &CompletionError{StatusCode: resp.StatusCode(), Body: resp.String()}
		if apiErr.Error.Message != "" {
			cerr.Cause = fmt.Errorf("%s: %s", apiErr.Error.Type, apiErr.Error.Message)
		}
		c.logger.Error("Completion API returned an error",
			zap.Int("status", cerr.StatusCode),
			zap.String("body", truncate(cerr.Body, maxLoggedBody)),
		)
		return "", cerr
	}
	if err != nil {
		c.logger.Error("Completion request failed", zap.Error(err))
		cerr := &CompletionError{Cause: err}
		if resp != nil {
			cerr.StatusCode = resp.StatusCode()
			cerr.Body = resp.String()
		}
		return "", cerr
	}

	if len(result.Content) == 0 || result.Content[0].Text == "" {
		c.logger.Error("Completion API returned no text",
			zap.Int("status", resp.StatusCode()),
			zap.String("stop_reason", result.StopReason),
		)
		return "", &CompletionError{
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
			Cause:      ErrEmptyCompletion,
		}
	}

	c.logger.Info("Completion received",
		zap.String("model", result.Model),
		zap.Int("input_tokens", result.Usage.InputTokens),
		zap.Int("output_tokens", result.Usage.OutputTokens),
	)
	return result.Content[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
