package extraction

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ricirt/problem-interpretation/internal/domain"
	"github.com/ricirt/problem-interpretation/internal/llm"
)

// Operation names used for rate limiting and metrics.
const (
	OpExtractScenario      = "extract_scenario"
	OpClassifyIntent       = "classify_intent"
	OpExtractClarification = "extract_clarification"
)

// Parser turns free text into extraction models. It only extracts: grounding
// and validation against engine ranges happen later.
type Parser struct {
	llm    llm.Extractor
	logger *zap.Logger
}

func NewParser(extractor llm.Extractor, logger *zap.Logger) *Parser {
	return &Parser{llm: extractor, logger: logger}
}

// ExtractScenario extracts a food safety scenario. conversationContext, when
// set, is prepended so follow-up messages can refer back to it.
func (p *Parser) ExtractScenario(ctx context.Context, input, conversationContext string) (*ExtractedScenario, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, domain.ErrInvalidInput
	}

	content := input
	if c := strings.TrimSpace(conversationContext); c != "" {
		content = fmt.Sprintf("Previous context:\n%s\n\nCurrent input:\n%s", c, input)
	}

	var out ExtractedScenario
	if err := p.extract(ctx, OpExtractScenario, withShape(scenarioPrompt, scenarioShape), content, &out); err != nil {
		return nil, err
	}
	if out.TimeTemperatureSteps == nil {
		out.TimeTemperatureSteps = []ExtractedTimeTemperatureStep{}
	}
	return &out, nil
}

// ClassifyIntent decides whether the user wants a prediction or information.
func (p *Parser) ClassifyIntent(ctx context.Context, input string) (*ExtractedIntent, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, domain.ErrInvalidInput
	}

	out := ExtractedIntent{Confidence: 1}
	if err := p.extract(ctx, OpClassifyIntent, withShape(intentPrompt, intentShape), input, &out); err != nil {
		return nil, err
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %g outside [0, 1]", domain.ErrLLMResponse, out.Confidence)
	}
	return &out, nil
}

// ExtractClarificationResponse reads the user's answer to question, given the
// options that were offered, if any.
func (p *Parser) ExtractClarificationResponse(ctx context.Context, response, question string, options []string) (*ExtractedClarificationResponse, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, domain.ErrInvalidInput
	}

	header := "Original question: " + question
	if len(options) > 0 {
		header += "\nOptions provided: " + strings.Join(options, ", ")
	}

	var out ExtractedClarificationResponse
	content := fmt.Sprintf("%s\n\nUser response: %s", header, response)
	if err := p.extract(ctx, OpExtractClarification, withShape(clarificationPrompt, clarificationShape), content, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Parser) extract(ctx context.Context, operation, systemPrompt, content string, out any) error {
	messages := []llm.Message{{Role: "user", Content: content}}
	if err := p.llm.Extract(ctx, operation, messages, systemPrompt, out); err != nil {
		p.logger.Warn("extraction failed", zap.String("operation", operation), zap.Error(err))
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}
