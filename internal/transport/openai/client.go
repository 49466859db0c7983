package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/metrics"
)

// Operation labels for metrics and logs.
const (
	OpEnhance   = "enhance"
	OpRecommend = "recommend"
)

// Sampling parameters per operation.
const (
	enhanceTemperature   = 0.3
	enhanceMaxTokens     = 500
	recommendTemperature = 0.4
	recommendMaxTokens   = 800
	maxSuggestions       = 5
)

// Client is a chat-completion client for query enhancement and component
// recommendations against an OpenAI-compatible API.
type Client struct {
	client   *openai.Client
	model    string
	jsonMode bool
	user     string
	logger   *zap.Logger
}

// Config holds the language-model provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// JSONMode requests response_format=json_object. Only enable for models that support it.
	JSONMode bool
	User     string
	Logger   *zap.Logger
}

// NewClient creates an OpenAI-compatible chat client.
func NewClient(cfg *Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		jsonMode: cfg.JSONMode,
		user:     cfg.User,
		logger:   logger,
	}
}

// Model returns the configured chat model name.
func (c *Client) Model() string { return c.model }

// Enhance rewrites a free-text query and proposes suggestions and filters.
// Every failure wraps domain.ErrEnhancerFailed.
func (c *Client) Enhance(ctx context.Context, req domain.EnhanceRequest) (domain.Enhancement, error) {
	content, err := c.complete(ctx, OpEnhance, enhancePrompt(req), enhanceTemperature, enhanceMaxTokens)
	if err != nil {
		return domain.Enhancement{}, err
	}

	enh, err := parseEnhancement(content)
	if err != nil {
		c.logger.Warn("Unusable enhancement response", zap.Error(err), zap.Int("content_len", len(content)))
		return domain.Enhancement{}, fmt.Errorf("parse enhancement: %w: %w", err, domain.ErrEnhancerFailed)
	}
	return enh, nil
}

// Recommend asks for component profiles matching an engineering requirement.
// Every failure wraps domain.ErrEnhancerFailed.
func (c *Client) Recommend(ctx context.Context, req domain.RecommendRequest) (domain.RecommendationSet, error) {
	content, err := c.complete(ctx, OpRecommend, recommendPrompt(req), recommendTemperature, recommendMaxTokens)
	if err != nil {
		return domain.RecommendationSet{}, err
	}

	set, err := parseRecommendations(content)
	if err != nil {
		c.logger.Warn("Unusable recommendation response", zap.Error(err), zap.Int("content_len", len(content)))
		return domain.RecommendationSet{}, fmt.Errorf("parse recommendations: %w: %w", err, domain.ErrEnhancerFailed)
	}
	return set, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// complete runs one single-message chat completion and returns its content.
func (c *Client) complete(
	ctx context.Context, op, prompt string, temperature float32, maxTokens int,
) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		User:        c.user,
	}
	if c.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(op, "error").Inc()
		return "", parseAPIError(err)
	}
	metrics.LLMRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.LLMTokensTotal.WithLabelValues(op, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensTotal.WithLabelValues(op, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.LLMRequestsTotal.WithLabelValues(op, "empty").Inc()
		return "", fmt.Errorf("empty completion: %w", domain.ErrEnhancerFailed)
	}

	metrics.LLMRequestsTotal.WithLabelValues(op, "success").Inc()
	return resp.Choices[0].Message.Content, nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEnhancerFailed for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrEnhancerFailed

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("llm request aborted: %w: %w", err, wrap)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("llm API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("llm API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("llm API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("llm request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body (OpenAI-compatible gateways).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
