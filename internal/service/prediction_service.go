package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ricirt/problem-interpretation/internal/combase"
	"github.com/ricirt/problem-interpretation/internal/domain"
	"github.com/ricirt/problem-interpretation/internal/repository"
)

// Defaults are the conservative values imputed when a payload omits them.
type Defaults struct {
	PH            float64
	WaterActivity float64
}

// PredictionHooks lets the service report outcomes without importing a
// metrics library. Nil hooks are skipped.
type PredictionHooks struct {
	OnSuccess func(organism, modelType string)
	OnFailure func(reason string)
}

// PredictionService validates payloads, runs them through the engine and
// persists the results. HTTP handlers depend on this service, not on the
// engine or the store directly.
type PredictionService struct {
	repo     repository.PredictionRepository
	engine   *combase.Engine
	defaults Defaults
	hooks    PredictionHooks
	logger   *zap.Logger
}

func NewPredictionService(
	repo repository.PredictionRepository,
	engine *combase.Engine,
	defaults Defaults,
	hooks PredictionHooks,
	logger *zap.Logger,
) *PredictionService {
	return &PredictionService{repo: repo, engine: engine, defaults: defaults, hooks: hooks, logger: logger}
}

// Create imputes missing pH and water activity, validates and executes the
// payload, then stores the prediction. Imputed values are reported as
// warnings on the result.
func (s *PredictionService) Create(ctx context.Context, payload domain.ComBaseExecutionPayload) (*domain.Prediction, error) {
	imputed := s.impute(&payload)

	if err := payload.Validate(); err != nil {
		s.fail(failureReason(err))
		return nil, err
	}

	result, err := s.engine.Execute(ctx, &payload)
	if err != nil {
		s.fail(failureReason(err))
		return nil, err
	}
	warnings := make([]string, 0, len(imputed)+len(result.Warnings))
	warnings = append(warnings, imputed...)
	result.Warnings = append(warnings, result.Warnings...)

	p := &domain.Prediction{
		ID:               uuid.New().String(),
		Organism:         payload.ModelSelection.Organism,
		ModelType:        payload.ModelSelection.ModelType,
		Factor4Type:      payload.ModelSelection.Factor4Type,
		TotalLogIncrease: result.TotalLogIncrease,
		Payload:          payload,
		Result:           *result,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.fail("store")
		return nil, fmt.Errorf("persist prediction: %w", err)
	}

	if s.hooks.OnSuccess != nil {
		s.hooks.OnSuccess(string(p.Organism), string(p.ModelType))
	}
	s.logger.Info("prediction created",
		zap.String("id", p.ID),
		zap.String("organism", string(p.Organism)),
		zap.String("model_type", string(p.ModelType)),
		zap.Float64("total_log_increase", p.TotalLogIncrease),
		zap.Int("warnings", len(p.Result.Warnings)),
	)
	return p, nil
}

func (s *PredictionService) impute(p *domain.ComBaseExecutionPayload) []string {
	var warnings []string
	if p.Parameters.PH == nil {
		ph := s.defaults.PH
		p.Parameters.PH = &ph
		warnings = append(warnings, fmt.Sprintf("pH not provided, using default %g", ph))
	}
	if p.Parameters.WaterActivity == nil {
		aw := s.defaults.WaterActivity
		p.Parameters.WaterActivity = &aw
		warnings = append(warnings, fmt.Sprintf("Water activity not provided, using default %g", aw))
	}
	return warnings
}

func (s *PredictionService) fail(reason string) {
	if s.hooks.OnFailure != nil {
		s.hooks.OnFailure(reason)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, domain.ErrModelNotFound):
		return "model_not_found"
	case errors.Is(err, domain.ErrEngineUnavailable):
		return "engine_unavailable"
	case errors.Is(err, domain.ErrEngineUnsupported):
		return "engine_unsupported"
	default:
		return "internal"
	}
}

func (s *PredictionService) GetByID(ctx context.Context, id string) (*domain.Prediction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *PredictionService) List(ctx context.Context, f domain.ListFilter) ([]*domain.Prediction, int, error) {
	f.Normalize()
	return s.repo.List(ctx, f)
}

// ModelSummary is the public view of a catalogue entry.
type ModelSummary struct {
	Key          string              `json:"key"`
	Organism     string              `json:"organism"`
	OrganismName string              `json:"organism_name"`
	ModelType    domain.ModelType    `json:"model_type"`
	Factor4Type  domain.Factor4Type  `json:"factor4_type"`
	Constraints  combase.Constraints `json:"constraints"`
	Defaults     combase.Defaults    `json:"defaults"`
}

// ListModels returns the loaded models, optionally filtered by organism and
// model type. An unloaded engine yields an empty list.
func (s *PredictionService) ListModels(organism *domain.Organism, modelType *domain.ModelType) []ModelSummary {
	reg := s.engine.Registry()
	var models []*combase.Model
	switch {
	case organism != nil:
		models = reg.ForOrganism(*organism)
	case modelType != nil:
		models = reg.ByType(*modelType)
	default:
		models = reg.All()
	}

	out := make([]ModelSummary, 0, len(models))
	for _, m := range models {
		if modelType != nil && m.ModelType != *modelType {
			continue
		}
		out = append(out, ModelSummary{
			Key:          m.Key(),
			Organism:     m.OrganismID,
			OrganismName: m.OrganismName,
			ModelType:    m.ModelType,
			Factor4Type:  m.Factor4Type,
			Constraints:  m.Constraints,
			Defaults:     m.Defaults,
		})
	}
	return out
}

// Organisms lists the organisms that have at least one loaded model.
func (s *PredictionService) Organisms() []domain.Organism {
	return s.engine.Registry().Organisms()
}
