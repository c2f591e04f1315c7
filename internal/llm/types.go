package llm

import "context"

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage counts tokens consumed by a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Response is the normalised result of a completion.
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   *Usage `json:"usage,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatRequest is the JSON body posted to {api_base}/chat/completions.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// chatResponse maps the subset of the OpenAI-compatible response we use.
type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Extractor decodes a structured answer for a conversation into out.
// Mocking this interface in tests keeps the parser free of HTTP calls.
type Extractor interface {
	Extract(ctx context.Context, operation string, messages []Message, systemPrompt string, out any) error
}

// Option overrides per-call generation settings.
type Option func(*chatRequest)

func WithTemperature(t float64) Option {
	return func(r *chatRequest) { r.Temperature = t }
}

func WithMaxTokens(n int) Option {
	return func(r *chatRequest) { r.MaxTokens = n }
}
