package combase

import (
	"fmt"

	"github.com/ricirt/problem-interpretation/internal/domain"
)

// Constraints are the parameter ranges a model was fitted on.
type Constraints struct {
	TempMin    float64  `json:"temp_min"`
	TempMax    float64  `json:"temp_max"`
	PHMin      float64  `json:"ph_min"`
	PHMax      float64  `json:"ph_max"`
	AwMin      float64  `json:"aw_min"`
	AwMax      float64  `json:"aw_max"`
	Factor4Min *float64 `json:"factor4_min,omitempty"`
	Factor4Max *float64 `json:"factor4_max,omitempty"`
}

func (c Constraints) TemperatureValid(t float64) bool { return c.TempMin <= t && t <= c.TempMax }
func (c Constraints) PHValid(ph float64) bool { return c.PHMin <= ph && ph <= c.PHMax }
func (c Constraints) AwValid(aw float64) bool { return c.AwMin <= aw && aw <= c.AwMax }

// Factor4Valid reports true when the model has no factor4 range.
func (c Constraints) Factor4Valid(v float64) bool {
	if c.Factor4Min == nil || c.Factor4Max == nil {
		return true
	}
	return *c.Factor4Min <= v && v <= *c.Factor4Max
}

func (c Constraints) ClampTemperature(t float64) float64 { return clamp(t, c.TempMin, c.TempMax) }
func (c Constraints) ClampPH(ph float64) float64 { return clamp(ph, c.PHMin, c.PHMax) }
func (c Constraints) ClampAw(aw float64) float64 { return clamp(aw, c.AwMin, c.AwMax) }

func (c Constraints) ClampFactor4(v float64) float64 {
	if c.Factor4Min == nil || c.Factor4Max == nil {
		return v
	}
	return clamp(v, *c.Factor4Min, *c.Factor4Max)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

// Defaults are the catalogue's suggested inputs for a model.
type Defaults struct {
	Temp     float64  `json:"temp"`
	PH       float64  `json:"ph"`
	Aw       float64  `json:"aw"`
	NaCl     float64  `json:"nacl"`
	Factor4  *float64 `json:"factor4,omitempty"`
	Inoculum float64  `json:"inoculum"`
}

// Model is one broth model from the catalogue.
type Model struct {
	ModelID      int                `json:"model_id"`
	OrganismID   string             `json:"organism_id"`
	OrganismName string             `json:"organism_name"`
	ModelType    domain.ModelType   `json:"model_type"`
	Factor4Type  domain.Factor4Type `json:"factor4_type"`
	YMax         float64            `json:"y_max"`
	H0           float64            `json:"h0"`
	Coefficients []float64          `json:"coefficients"`
	Constraints  Constraints        `json:"constraints"`
	Defaults     Defaults           `json:"defaults"`
	StdErr       float64            `json:"std_err"`
	H0StdErr     float64            `json:"h0_std_err"`
}

// Key identifies the model in a Registry.
func (m *Model) Key() string {
	return modelKey(m.ModelID, m.OrganismID, m.Factor4Type)
}

func modelKey(modelID int, organismID string, f4 domain.Factor4Type) string {
	return fmt.Sprintf("%d_%s_%s", modelID, organismID, f4)
}
