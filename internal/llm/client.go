package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ricirt/problem-interpretation/internal/correlation"
	"github.com/ricirt/problem-interpretation/internal/domain"
	"github.com/ricirt/problem-interpretation/internal/ratelimiter"
)

// Config carries the model settings. APIBase is injected so tests can point
// the client at a local server.
type Config struct {
	Model       string
	APIKey      string
	APIBase     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	RateLimit   int
}

// Hooks lets callers observe every upstream call. Nil hooks are skipped.
type Hooks struct {
	OnRequest func(operation, outcome string, latency time.Duration)
}

// Client talks to any OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg     Config
	http    *resty.Client
	limiter *ratelimiter.OperationLimiters
	hooks   Hooks
	logger  *zap.Logger
}

func NewClient(cfg Config, hooks Hooks, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBase, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		OnBeforeRequest(propagateCorrelationID)
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: ratelimiter.New(cfg.RateLimit),
		hooks:   hooks,
		logger:  logger,
	}
}

func (c *Client) Model() string { return c.cfg.Model }

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// Complete sends a single prompt with an optional system prompt.
func (c *Client) Complete(ctx context.Context, prompt, systemPrompt string, opts ...Option) (*Response, error) {
	return c.chat(ctx, "complete", withSystem(systemPrompt, []Message{{Role: "user", Content: prompt}}), false, opts)
}

// Extract asks for a JSON object and decodes the first choice into out.
// operation names the call for rate limiting and metrics.
func (c *Client) Extract(ctx context.Context, operation string, messages []Message, systemPrompt string, out any) error {
	resp, err := c.chat(ctx, operation, withSystem(systemPrompt, messages), true, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrLLMResponse, operation, err)
	}
	return nil
}

// HealthCheck sends a tiny completion to verify the key and endpoint.
func (c *Client) HealthCheck(ctx context.Context) (bool, string, error) {
	if !c.Configured() {
		return false, "No API key configured", nil
	}
	if _, err := c.Complete(ctx, "Respond with only: ok", "", WithTemperature(0), WithMaxTokens(10)); err != nil {
		return false, "API error: " + err.Error(), nil
	}
	return true, "API connection successful", nil
}

func (c *Client) chat(ctx context.Context, operation string, messages []Message, jsonMode bool, opts []Option) (*Response, error) {
	if !c.Configured() {
		c.observe(operation, "unavailable", 0)
		return nil, domain.ErrLLMUnavailable
	}
	if err := c.limiter.Wait(ctx, operation); err != nil {
		c.observe(operation, "rate_limited", 0)
		return nil, fmt.Errorf("rate limit %s: %w", operation, err)
	}

	req := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}
	if jsonMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	for _, opt := range opts {
		opt(&req)
	}

	start := time.Now()
	var (
		result chatResponse
		apiErr apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	latency := time.Since(start)

	if err != nil {
		c.observe(operation, "error", latency)
		return nil, fmt.Errorf("%w: send %s request: %v", domain.ErrLLMUpstream, operation, err)
	}
	if resp.IsError() {
		c.observe(operation, "error", latency)
		msg := apiErr.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		c.logger.Warn("llm request rejected",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode()),
			zap.String("message", msg),
		)
		return nil, fmt.Errorf("%w: unexpected status %d: %s", domain.ErrLLMUpstream, resp.StatusCode(), msg)
	}
	if len(result.Choices) == 0 {
		c.observe(operation, "error", latency)
		return nil, fmt.Errorf("%w: no choices returned", domain.ErrLLMResponse)
	}

	c.observe(operation, "success", latency)
	c.logger.Debug("llm request completed",
		zap.String("operation", operation),
		zap.String("model", result.Model),
		zap.Duration("latency", latency),
	)

	model := result.Model
	if model == "" {
		model = c.cfg.Model
	}
	return &Response{
		Content: result.Choices[0].Message.Content,
		Model:   model,
		Usage:   result.Usage,
	}, nil
}

// propagateCorrelationID forwards the inbound request's correlation id so
// upstream logs can be joined with ours.
func propagateCorrelationID(_ *resty.Client, r *resty.Request) error {
	if id := correlation.ID(r.Context()); id != "" {
		r.SetHeader(correlation.Header, id)
	}
	return nil
}

func (c *Client) observe(operation, outcome string, latency time.Duration) {
	if c.hooks.OnRequest != nil {
		c.hooks.OnRequest(operation, outcome, latency)
	}
}

func withSystem(systemPrompt string, messages []Message) []Message {
	if systemPrompt == "" {
		return messages
	}
	return append([]Message{{Role: "system", Content: systemPrompt}}, messages...)
}

// stripCodeFence removes a ```json fence some models wrap JSON answers in.
func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

var _ Extractor = (*Client)(nil)
