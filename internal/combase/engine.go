package combase

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ricirt/problem-interpretation/internal/domain"
)

// EngineHooks lets callers observe engine events without this package
// depending on a metrics library. Nil hooks are skipped.
type EngineHooks struct {
	OnModelsLoaded func(count int)
}

// Engine runs predictions against a locally loaded model catalogue.
type Engine struct {
	mu        sync.RWMutex
	registry  *Registry
	loaded    bool
	modelPath string

	hooks  EngineHooks
	logger *zap.Logger
}

func NewEngine(hooks EngineHooks, logger *zap.Logger) *Engine {
	return &Engine{registry: NewRegistry(), hooks: hooks, logger: logger}
}

func (e *Engine) Name() string { return "ComBase Local" }

// LoadModels replaces the current catalogue with the one at path. The engine
// keeps serving the previous catalogue if loading fails.
func (e *Engine) LoadModels(path string) (int, error) {
	reg := NewRegistry()
	count, err := reg.LoadFile(path, e.logger)
	if err != nil {
		return 0, fmt.Errorf("load models: %w", err)
	}

	e.mu.Lock()
	e.registry = reg
	e.loaded = count > 0
	e.modelPath = path
	e.mu.Unlock()

	if e.hooks.OnModelsLoaded != nil {
		e.hooks.OnModelsLoaded(count)
	}
	e.logger.Info("combase models loaded", zap.String("path", path), zap.Int("count", count))
	return count, nil
}

// Available reports whether at least one model is loaded.
func (e *Engine) Available() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded && e.registry.Len() > 0
}

// Registry returns the current catalogue. Callers must treat it as read-only.
func (e *Engine) Registry() *Registry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry
}

// Execute computes a prediction for every step of the payload's profile at
// the step's temperature, using the payload's pH, aw and fourth factor. The
// payload must already be validated.
func (e *Engine) Execute(ctx context.Context, p *domain.ComBaseExecutionPayload) (*domain.ComBaseExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.EngineType == domain.EngineComBaseAPI {
		return nil, fmt.Errorf("%w: %s", domain.ErrEngineUnsupported, p.EngineType)
	}
	if !e.Available() {
		return nil, domain.ErrEngineUnavailable
	}
	if p.Parameters.PH == nil || p.Parameters.WaterActivity == nil {
		return nil, fmt.Errorf("%w: ph and water_activity are required", domain.ErrInvalidPayload)
	}

	sel := p.ModelSelection
	model, ok := e.Registry().Get(sel.Organism, sel.ModelType, sel.Factor4Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s / %s / %s", domain.ErrModelNotFound, sel.Organism, sel.ModelType, sel.Factor4Type)
	}

	calc := NewCalculator(model)
	ph, aw := *p.Parameters.PH, *p.Parameters.WaterActivity
	var factor4 float64
	if p.Parameters.Factor4Value != nil {
		factor4 = *p.Parameters.Factor4Value
	}

	result := &domain.ComBaseExecutionResult{
		EngineType:      domain.EngineComBaseLocal,
		StepPredictions: make([]domain.GrowthPrediction, 0, len(p.TimeTemperatureProfile.Steps)),
		Warnings:        []string{},
	}

	var first *Calculation
	for _, step := range p.TimeTemperatureProfile.Steps {
		c := calc.Calculate(step.TemperatureCelsius, ph, aw, factor4, false)
		if first == nil {
			first = &c
		}
		result.Warnings = append(result.Warnings, c.Warnings...)

		logIncrease := LogIncrease(c.MuMax, step.DurationMinutes/60)
		result.StepPredictions = append(result.StepPredictions, domain.GrowthPrediction{
			StepOrder:          step.StepOrder,
			DurationMinutes:    step.DurationMinutes,
			TemperatureCelsius: step.TemperatureCelsius,
			MuMax:              c.MuMax,
			LogIncrease:        logIncrease,
		})
		result.TotalLogIncrease += logIncrease
	}
	if first == nil {
		return nil, fmt.Errorf("%w: at least one time-temperature step is required", domain.ErrInvalidPayload)
	}

	factor4Type := p.Parameters.Factor4Type
	if factor4Type == "" {
		factor4Type = domain.Factor4None
	}
	result.ModelResult = domain.ComBaseModelResult{
		ModelType:         model.ModelType,
		EngineType:        domain.EngineComBaseLocal,
		MuMax:             first.MuMax,
		DoublingTimeHours: first.DoublingTimeHours,
		Organism:          sel.Organism,
		TemperatureUsed:   first.Temperature,
		PHUsed:            first.PH,
		AwUsed:            first.Aw,
		Factor4TypeUsed:   factor4Type,
		Factor4ValueUsed:  p.Parameters.Factor4Value,
	}
	return result, nil
}

// HealthCheck reports the number of loaded models.
func (e *Engine) HealthCheck(_ context.Context) (bool, string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.loaded {
		return false, "Models not loaded", nil
	}
	return true, fmt.Sprintf("Loaded %d models", e.registry.Len()), nil
}
