package combase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ricirt/problem-interpretation/internal/combase"
	"github.com/ricirt/problem-interpretation/internal/domain"
)

func f64(v float64) *float64 { return &v }

func newLoadedEngine(t *testing.T) *combase.Engine {
	t.Helper()
	e := combase.NewEngine(combase.EngineHooks{}, zap.NewNop())
	if _, err := e.LoadModels(testCatalogue); err != nil {
		t.Fatalf("load models: %v", err)
	}
	return e
}

func listeriaPayload() *domain.ComBaseExecutionPayload {
	return &domain.ComBaseExecutionPayload{
		EngineType: domain.EngineComBaseLocal,
		ModelSelection: domain.ComBaseModelSelection{
			Organism:    domain.OrganismListeriaMonocytogenes,
			ModelType:   domain.ModelGrowth,
			Factor4Type: domain.Factor4None,
		},
		Parameters: domain.ComBaseParameters{
			TemperatureCelsius: 25,
			PH:                 f64(7),
			WaterActivity:      f64(0.99),
			Factor4Type:        domain.Factor4None,
		},
		TimeTemperatureProfile: domain.TimeTemperatureProfile{
			IsMultiStep: true,
			Steps: []domain.TimeTemperatureStep{
				{TemperatureCelsius: 25, DurationMinutes: 120, StepOrder: 1},
				{TemperatureCelsius: 4, DurationMinutes: 240, StepOrder: 2},
			},
			TotalDurationMinutes: 360,
		},
	}
}

func TestEngine_LoadModelsReportsCount(t *testing.T) {
	var reported int
	e := combase.NewEngine(combase.EngineHooks{OnModelsLoaded: func(n int) { reported = n }}, zap.NewNop())

	if e.Available() {
		t.Fatal("expected engine unavailable before loading")
	}
	if e.Name() != "ComBase Local" {
		t.Fatalf("unexpected engine name %q", e.Name())
	}
	n, err := e.LoadModels(testCatalogue)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 || reported != 3 {
		t.Fatalf("expected 3 models reported, got n=%d hook=%d", n, reported)
	}
	if !e.Available() {
		t.Fatal("expected engine available after loading")
	}
}

func TestEngine_ExecuteMultiStep(t *testing.T) {
	e := newLoadedEngine(t)

	res, err := e.Execute(context.Background(), listeriaPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.StepPredictions) != 2 {
		t.Fatalf("expected 2 step predictions, got %d", len(res.StepPredictions))
	}
	approx(t, "step 1 mu", res.StepPredictions[0].MuMax, 0.936839315)
	approx(t, "step 2 mu", res.StepPredictions[1].MuMax, 0.056248073)
	approx(t, "total", res.TotalLogIncrease, 0.911441201)

	mr := res.ModelResult
	if mr.TemperatureUsed != 25 || mr.PHUsed != 7 || mr.AwUsed != 0.99 {
		t.Fatalf("expected model result from the first step, got %+v", mr)
	}
	if mr.DoublingTimeHours == nil {
		t.Fatal("expected a doubling time")
	}
	if mr.EngineType != domain.EngineComBaseLocal || res.EngineType != domain.EngineComBaseLocal {
		t.Fatal("expected combase_local engine type")
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", res.Warnings)
	}
}

func TestEngine_ExecuteThermalInactivation(t *testing.T) {
	e := newLoadedEngine(t)
	p := &domain.ComBaseExecutionPayload{
		ModelSelection: domain.ComBaseModelSelection{
			Organism:    domain.OrganismSalmonella,
			ModelType:   domain.ModelThermalInactivation,
			Factor4Type: domain.Factor4None,
		},
		Parameters: domain.ComBaseParameters{PH: f64(7), WaterActivity: f64(0.99)},
		TimeTemperatureProfile: domain.TimeTemperatureProfile{
			Steps:                []domain.TimeTemperatureStep{{TemperatureCelsius: 60, DurationMinutes: 10, StepOrder: 1}},
			TotalDurationMinutes: 10,
		},
	}

	res, err := e.Execute(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, "log change", res.TotalLogIncrease, -0.045421966)
	if res.ModelResult.DoublingTimeHours != nil {
		t.Fatal("expected no doubling time")
	}
	if res.ModelResult.Factor4TypeUsed != domain.Factor4None {
		t.Fatalf("expected factor4 none, got %s", res.ModelResult.Factor4TypeUsed)
	}
}

func TestEngine_ExecuteCollectsWarnings(t *testing.T) {
	e := newLoadedEngine(t)
	p := listeriaPayload()
	p.TimeTemperatureProfile.Steps[0].TemperatureCelsius = 40

	res, err := e.Execute(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
}

func TestEngine_ExecuteErrors(t *testing.T) {
	tests := []struct {
		name    string
		engine  func(t *testing.T) *combase.Engine
		mutate  func(p *domain.ComBaseExecutionPayload)
		wantErr error
	}{
		{
			name:    "not loaded",
			engine:  func(*testing.T) *combase.Engine { return combase.NewEngine(combase.EngineHooks{}, zap.NewNop()) },
			mutate:  func(*domain.ComBaseExecutionPayload) {},
			wantErr: domain.ErrEngineUnavailable,
		},
		{
			name:    "model missing",
			engine:  newLoadedEngine,
			mutate:  func(p *domain.ComBaseExecutionPayload) { p.ModelSelection.Organism = domain.OrganismYersiniaEnterocolitica },
			wantErr: domain.ErrModelNotFound,
		},
		{
			name:    "remote engine",
			engine:  newLoadedEngine,
			mutate:  func(p *domain.ComBaseExecutionPayload) { p.EngineType = domain.EngineComBaseAPI },
			wantErr: domain.ErrEngineUnsupported,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := listeriaPayload()
			tc.mutate(p)
			_, err := tc.engine(t).Execute(context.Background(), p)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestEngine_HealthCheck(t *testing.T) {
	e := combase.NewEngine(combase.EngineHooks{}, zap.NewNop())
	healthy, msg, err := e.HealthCheck(context.Background())
	if err != nil || healthy || msg != "Models not loaded" {
		t.Fatalf("unexpected health before load: %v %q %v", healthy, msg, err)
	}

	e = newLoadedEngine(t)
	healthy, msg, err = e.HealthCheck(context.Background())
	if err != nil || !healthy || msg != "Loaded 3 models" {
		t.Fatalf("unexpected health after load: %v %q %v", healthy, msg, err)
	}
}

func TestEngine_FailedReloadKeepsCatalogue(t *testing.T) {
	e := newLoadedEngine(t)
	if _, err := e.LoadModels("testdata/missing.csv"); err == nil {
		t.Fatal("expected an error")
	}
	if !e.Available() {
		t.Fatal("expected the previous catalogue to stay loaded")
	}
}
