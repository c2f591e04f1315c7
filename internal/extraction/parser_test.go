package extraction_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ricirt/problem-interpretation/internal/domain"
	"github.com/ricirt/problem-interpretation/internal/extraction"
	"github.com/ricirt/problem-interpretation/internal/llm"
)

// fakeExtractor records the last call and decodes a canned JSON answer.
type fakeExtractor struct {
	answer    string
	err       error
	operation string
	system    string
	messages  []llm.Message
}

func (f *fakeExtractor) Extract(_ context.Context, operation string, messages []llm.Message, systemPrompt string, out any) error {
	f.operation, f.system, f.messages = operation, systemPrompt, messages
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.answer), out)
}

func TestParser_ExtractScenario(t *testing.T) {
	fake := &fakeExtractor{answer: `{
		"food_description": "raw chicken",
		"food_state": "raw",
		"single_step_temperature": {"value_celsius": 25, "description": "warm kitchen"},
		"single_step_duration": {"value_minutes": 180, "description": "about 3 hours"}
	}`}
	p := extraction.NewParser(fake, zap.NewNop())

	s, err := p.ExtractScenario(context.Background(),
		"I left raw chicken on the counter for about 3 hours, maybe 25°C", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.FoodDescription == nil || *s.FoodDescription != "raw chicken" {
		t.Fatalf("unexpected food description %v", s.FoodDescription)
	}
	if s.SingleStepTemperature.ValueCelsius == nil || *s.SingleStepTemperature.ValueCelsius != 25 {
		t.Fatal("expected temperature 25")
	}
	if s.SingleStepDuration.ValueMinutes == nil || *s.SingleStepDuration.ValueMinutes != 180 {
		t.Fatal("expected duration 180")
	}
	if s.PathogenMentioned != nil {
		t.Fatal("expected no pathogen")
	}
	if s.TimeTemperatureSteps == nil {
		t.Fatal("expected an empty, non-nil step list")
	}
	if fake.operation != extraction.OpExtractScenario {
		t.Fatalf("unexpected operation %q", fake.operation)
	}
	if !strings.Contains(fake.system, "Convert all durations to minutes") || !strings.Contains(fake.system, `"single_step_duration"`) {
		t.Fatal("expected the scenario prompt with its JSON shape")
	}
}

func TestParser_ExtractScenarioWithContext(t *testing.T) {
	fake := &fakeExtractor{answer: `{}`}
	p := extraction.NewParser(fake, zap.NewNop())

	if _, err := p.ExtractScenario(context.Background(), "then 2 hours in the fridge", "chicken left out"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Previous context:\nchicken left out\n\nCurrent input:\nthen 2 hours in the fridge"
	if fake.messages[0].Content != want {
		t.Fatalf("unexpected message %q", fake.messages[0].Content)
	}
}

func TestParser_ClassifyIntent(t *testing.T) {
	tests := []struct {
		name       string
		answer     string
		confidence float64
		wantErr    error
	}{
		{"explicit confidence", `{"is_prediction_request": true, "is_information_query": false, "confidence": 0.8}`, 0.8, nil},
		{"default confidence", `{"is_prediction_request": true, "is_information_query": false}`, 1, nil},
		{"confidence out of range", `{"is_prediction_request": true, "is_information_query": false, "confidence": 1.5}`, 0, domain.ErrLLMResponse},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := extraction.NewParser(&fakeExtractor{answer: tc.answer}, zap.NewNop())
			intent, err := p.ClassifyIntent(context.Background(), "Is my chicken still safe to eat?")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !intent.IsPredictionRequest || intent.Confidence != tc.confidence {
				t.Fatalf("unexpected intent %+v", intent)
			}
		})
	}
}

func TestParser_ExtractClarificationResponse(t *testing.T) {
	fake := &fakeExtractor{answer: `{"selected_option": "refrigerated", "wants_to_skip": false}`}
	p := extraction.NewParser(fake, zap.NewNop())

	r, err := p.ExtractClarificationResponse(context.Background(),
		"it was in the fridge", "Where was the food stored?", []string{"refrigerated", "room temperature"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.SelectedOption == nil || *r.SelectedOption != "refrigerated" {
		t.Fatalf("unexpected selection %v", r.SelectedOption)
	}
	want := "Original question: Where was the food stored?\nOptions provided: refrigerated, room temperature\n\nUser response: it was in the fridge"
	if fake.messages[0].Content != want {
		t.Fatalf("unexpected message %q", fake.messages[0].Content)
	}
}

func TestParser_EmptyInput(t *testing.T) {
	fake := &fakeExtractor{answer: `{}`}
	p := extraction.NewParser(fake, zap.NewNop())
	ctx := context.Background()

	if _, err := p.ExtractScenario(ctx, "   ", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("scenario: expected ErrInvalidInput, got %v", err)
	}
	if _, err := p.ClassifyIntent(ctx, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("intent: expected ErrInvalidInput, got %v", err)
	}
	if _, err := p.ExtractClarificationResponse(ctx, "", "q", nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("clarification: expected ErrInvalidInput, got %v", err)
	}
	if fake.operation != "" {
		t.Fatal("expected no llm call for empty input")
	}
}

func TestParser_PropagatesUnavailable(t *testing.T) {
	p := extraction.NewParser(&fakeExtractor{err: domain.ErrLLMUnavailable}, zap.NewNop())
	_, err := p.ClassifyIntent(context.Background(), "hello")
	if !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Fatalf("expected ErrLLMUnavailable, got %v", err)
	}
}
