package domain

import (
	"fmt"
	"math"
	"time"
)

// TimeTemperatureStep is one segment of a thermal history.
type TimeTemperatureStep struct {
	TemperatureCelsius float64 `json:"temperature_celsius"`
	DurationMinutes    float64 `json:"duration_minutes"`
	StepOrder          int     `json:"step_order"`
}

// TimeTemperatureProfile is the complete thermal history of a prediction.
type TimeTemperatureProfile struct {
	IsMultiStep          bool                  `json:"is_multi_step"`
	Steps                []TimeTemperatureStep `json:"steps"`
	TotalDurationMinutes float64               `json:"total_duration_minutes"`
}

// Validate enforces sequential 1-indexed steps with positive durations whose
// sum matches TotalDurationMinutes within 0.01 minutes.
func (p *TimeTemperatureProfile) Validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: at least one time-temperature step is required", ErrInvalidPayload)
	}
	if p.TotalDurationMinutes <= 0 {
		return fmt.Errorf("%w: total_duration_minutes must be positive", ErrInvalidPayload)
	}

	var sum float64
	for i, s := range p.Steps {
		if s.StepOrder != i+1 {
			return fmt.Errorf("%w: step orders must be sequential starting from 1", ErrInvalidPayload)
		}
		if s.DurationMinutes <= 0 {
			return fmt.Errorf("%w: step %d duration_minutes must be positive", ErrInvalidPayload, s.StepOrder)
		}
		sum += s.DurationMinutes
	}

	if math.Abs(sum-p.TotalDurationMinutes) > 0.01 {
		return fmt.Errorf("%w: total_duration_minutes (%g) does not match sum of steps (%g)",
			ErrInvalidPayload, p.TotalDurationMinutes, sum)
	}
	if len(p.Steps) > 1 && !p.IsMultiStep {
		return fmt.Errorf("%w: is_multi_step must be true for multiple steps", ErrInvalidPayload)
	}
	return nil
}

// ComBaseParameters are the environmental inputs of a broth-model run.
// PH and WaterActivity are pointers so callers may omit them and have
// conservative defaults imputed.
type ComBaseParameters struct {
	TemperatureCelsius float64     `json:"temperature_celsius"`
	PH                 *float64    `json:"ph,omitempty"`
	WaterActivity      *float64    `json:"water_activity,omitempty"`
	Factor4Type        Factor4Type `json:"factor4_type,omitempty"`
	Factor4Value       *float64    `json:"factor4_value,omitempty"`
}

func (p *ComBaseParameters) Validate() error {
	if p.PH == nil || *p.PH < 0 || *p.PH > 14 {
		return fmt.Errorf("%w: ph must be between 0 and 14", ErrInvalidPayload)
	}
	if p.WaterActivity == nil || *p.WaterActivity < 0 || *p.WaterActivity > 1 {
		return fmt.Errorf("%w: water_activity must be between 0 and 1", ErrInvalidPayload)
	}
	if p.Factor4Type == "" {
		p.Factor4Type = Factor4None
	}
	if !p.Factor4Type.IsValid() {
		return fmt.Errorf("%w: unknown factor4_type %q", ErrInvalidPayload, p.Factor4Type)
	}
	if p.Factor4Type != Factor4None && p.Factor4Value == nil {
		return fmt.Errorf("%w: factor4_value required when factor4_type is %s", ErrInvalidPayload, p.Factor4Type)
	}
	return nil
}

// ComBaseModelSelection identifies a model by organism, type and fourth factor.
type ComBaseModelSelection struct {
	Organism    Organism    `json:"organism"`
	ModelType   ModelType   `json:"model_type"`
	Factor4Type Factor4Type `json:"factor4_type,omitempty"`
}

func (s *ComBaseModelSelection) Validate() error {
	if !s.Organism.IsValid() {
		return fmt.Errorf("%w: unknown organism %q", ErrInvalidPayload, s.Organism)
	}
	if !s.ModelType.IsValid() {
		return fmt.Errorf("%w: unknown model_type %q", ErrInvalidPayload, s.ModelType)
	}
	if s.Factor4Type == "" {
		s.Factor4Type = Factor4None
	}
	if !s.Factor4Type.IsValid() {
		return fmt.Errorf("%w: unknown factor4_type %q", ErrInvalidPayload, s.Factor4Type)
	}
	return nil
}

// ComBaseExecutionPayload is everything the engine needs for one prediction.
type ComBaseExecutionPayload struct {
	EngineType             EngineType             `json:"engine_type,omitempty"`
	ModelType              ModelType              `json:"model_type,omitempty"`
	ModelSelection         ComBaseModelSelection  `json:"model_selection"`
	Parameters             ComBaseParameters      `json:"parameters"`
	TimeTemperatureProfile TimeTemperatureProfile `json:"time_temperature_profile"`
}

// Validate checks the payload, fills defaults and syncs ModelType from the
// model selection, which is the source of truth.
func (p *ComBaseExecutionPayload) Validate() error {
	if p.EngineType == "" {
		p.EngineType = EngineComBaseLocal
	}
	if !p.EngineType.IsValid() {
		return fmt.Errorf("%w: unknown engine_type %q", ErrInvalidPayload, p.EngineType)
	}
	if err := p.ModelSelection.Validate(); err != nil {
		return err
	}
	if err := p.Parameters.Validate(); err != nil {
		return err
	}
	if err := p.TimeTemperatureProfile.Validate(); err != nil {
		return err
	}
	p.ModelType = p.ModelSelection.ModelType
	return nil
}

// GrowthPrediction is the predicted change during a single step.
type GrowthPrediction struct {
	StepOrder          int     `json:"step_order"`
	DurationMinutes    float64 `json:"duration_minutes"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
	MuMax              float64 `json:"mu_max"`
	LogIncrease        float64 `json:"log_increase"`
}

// ComBaseModelResult records the rate calculation and the inputs used.
type ComBaseModelResult struct {
	ModelType         ModelType   `json:"model_type"`
	EngineType        EngineType  `json:"engine_type"`
	MuMax             float64     `json:"mu_max"`
	DoublingTimeHours *float64    `json:"doubling_time_hours"`
	Organism          Organism    `json:"organism"`
	TemperatureUsed   float64     `json:"temperature_used"`
	PHUsed            float64     `json:"ph_used"`
	AwUsed            float64     `json:"aw_used"`
	Factor4TypeUsed   Factor4Type `json:"factor4_type_used"`
	Factor4ValueUsed  *float64    `json:"factor4_value_used"`
}

// ComBaseExecutionResult is the complete engine output for a payload.
type ComBaseExecutionResult struct {
	ModelResult      ComBaseModelResult `json:"model_result"`
	StepPredictions  []GrowthPrediction `json:"step_predictions"`
	TotalLogIncrease float64            `json:"total_log_increase"`
	EngineType       EngineType         `json:"engine_type"`
	Warnings         []string           `json:"warnings"`
}

// Prediction is a persisted engine run.
type Prediction struct {
	ID               string                  `json:"id"`
	Organism         Organism                `json:"organism"`
	ModelType        ModelType               `json:"model_type"`
	Factor4Type      Factor4Type             `json:"factor4_type"`
	TotalLogIncrease float64                 `json:"total_log_increase"`
	Payload          ComBaseExecutionPayload `json:"payload"`
	Result           ComBaseExecutionResult  `json:"result"`
	CreatedAt        time.Time               `json:"created_at"`
}

// ListFilter holds query parameters for paginated prediction listing.
type ListFilter struct {
	Organism *Organism
	Page     int
	Limit    int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	// MaxPage keeps Offset from overflowing int.
	MaxPage = math.MaxInt / MaxPageLimit
)

// Normalize applies pagination defaults and bounds.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
}

// Offset is the number of rows skipped before the current page.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
