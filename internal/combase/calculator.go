package combase

import (
	"fmt"
	"math"

	"github.com/ricirt/problem-interpretation/internal/domain"
)

const coefficientCount = 15

// Calculation is the output of one rate evaluation together with the inputs
// that were actually used.
type Calculation struct {
	MuMax             float64
	DoublingTimeHours *float64
	LnMu              float64

	Temperature  float64
	PH           float64
	Aw           float64
	Bw           float64
	Factor4Value float64

	ModelType  domain.ModelType
	OrganismID string

	WithinRange bool
	Warnings    []string
}

// Calculator evaluates the broth-model polynomial
//
//	ln μ = b0 + b1·T + b2·pH + b3·bw + b4·T·pH + b5·T·bw + b6·pH·bw
//	     + b7·T² + b8·pH² + b9·bw² + b10·F4 + b11·T·F4 + b12·pH·F4
//	     + b13·bw·F4 + b14·F4²
//
// for a single model.
type Calculator struct {
	model *Model
	b     [coefficientCount]float64
}

// NewCalculator pads missing coefficients with zeros.
func NewCalculator(m *Model) *Calculator {
	c := &Calculator{model: m}
	copy(c.b[:], m.Coefficients)
	return c
}

// Calculate returns μmax and doubling time. Inputs outside the fitted range
// produce warnings; with clampToRange they are also pulled into range.
func (c *Calculator) Calculate(temperature, ph, aw, factor4 float64, clampToRange bool) Calculation {
	cons := c.model.Constraints
	var warnings []string
	within := true

	check := func(label, unit string, v float64, valid bool, lo, hi string, clampFn func(float64) float64) float64 {
		if valid {
			return v
		}
		within = false
		if clampToRange {
			warnings = append(warnings, fmt.Sprintf("%s %g%s clamped to [%s, %s]", label, v, unit, lo, hi))
			return clampFn(v)
		}
		warnings = append(warnings, fmt.Sprintf("%s %g%s outside valid range [%s, %s]", label, v, unit, lo, hi))
		return v
	}

	temperature = check("Temperature", "°C", temperature, cons.TemperatureValid(temperature),
		fmtBound(&cons.TempMin), fmtBound(&cons.TempMax), cons.ClampTemperature)
	ph = check("pH", "", ph, cons.PHValid(ph),
		fmtBound(&cons.PHMin), fmtBound(&cons.PHMax), cons.ClampPH)
	aw = check("Water activity", "", aw, cons.AwValid(aw),
		fmtBound(&cons.AwMin), fmtBound(&cons.AwMax), cons.ClampAw)
	if c.model.Factor4Type != domain.Factor4None {
		factor4 = check("Factor4", "", factor4, cons.Factor4Valid(factor4),
			fmtBound(cons.Factor4Min), fmtBound(cons.Factor4Max), cons.ClampFactor4)
	}

	bw := c.bw(aw)
	lnMu := c.lnMu(temperature, ph, bw, factor4)
	mu := c.mu(lnMu)

	return Calculation{
		MuMax:             mu,
		DoublingTimeHours: c.doublingTime(mu),
		LnMu:              lnMu,
		Temperature:       temperature,
		PH:                ph,
		Aw:                aw,
		Bw:                bw,
		Factor4Value:      factor4,
		ModelType:         c.model.ModelType,
		OrganismID:        c.model.OrganismID,
		WithinRange:       within,
		Warnings:          warnings,
	}
}

func fmtBound(v *float64) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("%g", *v)
}

// bw is aw itself for thermal inactivation and sqrt(1-aw) otherwise.
func (c *Calculator) bw(aw float64) float64 {
	if c.model.ModelType == domain.ModelThermalInactivation {
		return aw
	}
	return math.Sqrt(math.Max(0, 1-aw))
}

func (c *Calculator) lnMu(t, ph, bw, f4 float64) float64 {
	b := c.b
	return b[0] +
		b[1]*t +
		b[2]*ph +
		b[3]*bw +
		b[4]*t*ph +
		b[5]*t*bw +
		b[6]*ph*bw +
		b[7]*t*t +
		b[8]*ph*ph +
		b[9]*bw*bw +
		b[10]*f4 +
		b[11]*t*f4 +
		b[12]*ph*f4 +
		b[13]*bw*f4 +
		b[14]*f4*f4
}

// mu is negative for inactivation and survival models.
func (c *Calculator) mu(lnMu float64) float64 {
	if c.model.ModelType == domain.ModelGrowth {
		return math.Exp(lnMu)
	}
	return -math.Exp(lnMu)
}

func (c *Calculator) doublingTime(mu float64) *float64 {
	if c.model.ModelType != domain.ModelGrowth || mu <= 0 {
		return nil
	}
	d := math.Ln2 / mu
	return &d
}

// LogIncrease converts a rate into log10 change over durationHours. Growth
// rates are natural-log based; inactivation rates are used as is.
func LogIncrease(mu, durationHours float64) float64 {
	if mu <= 0 {
		return mu * durationHours
	}
	return mu * durationHours / math.Ln10
}
