package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrInvalidInput      = errors.New("input must not be empty")
	ErrModelNotFound     = errors.New("model not found")
	ErrEngineUnavailable = errors.New("engine not loaded")
	ErrEngineUnsupported = errors.New("engine type not supported")
	ErrLLMUnavailable    = errors.New("llm client not configured")
	ErrLLMResponse       = errors.New("llm returned an unusable response")
	ErrLLMUpstream       = errors.New("llm request failed")
)
