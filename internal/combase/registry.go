package combase

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/ricirt/problem-interpretation/internal/domain"
)

// Catalogue column names. The export is semicolon separated with the
// coefficient list quoted in a single column.
const (
	colModelID        = "ModelID"
	colOrganismID     = "OrganismID"
	colOrg            = "Org"
	colFactor4ID      = "Factor4ID"
	colYMax           = "ymax"
	colH0             = "h0"
	colCoefficients   = "Coefficients"
	colTempMin        = "TempMin"
	colTempMax        = "TempMax"
	colPHMin          = "PHMin"
	colPHMax          = "PHMax"
	colAwMin          = "AwMin"
	colAwMax          = "AwMax"
	colFactor4Min     = "Factor4Min"
	colFactor4Max     = "Factor4Max"
	colDefaultTemp    = "DefaultTemp"
	colDefaultPH      = "DefaultPH"
	colDefaultAw      = "DefaultAw"
	colDefaultNaCl    = "DefaultNaCl"
	colDefaultFactor4 = "DefaultFactor4"
	colDefaultInoc    = "DefaultInoc"
	colStdErr         = "StdErr"
	colH0StdErr       = "H0StdErr"
)

const utf8BOM = "\ufeff"

// Registry indexes loaded models by key, organism and model type.
// It is not safe for concurrent writes; Engine swaps whole registries.
type Registry struct {
	models     map[string]*Model
	order      []string
	byOrganism map[domain.Organism][]*Model
	byType     map[domain.ModelType][]*Model
}

func NewRegistry() *Registry {
	return &Registry{
		models:     make(map[string]*Model),
		byOrganism: make(map[domain.Organism][]*Model),
		byType:     make(map[domain.ModelType][]*Model),
	}
}

// LoadFile reads a catalogue export from disk. See Load.
func (r *Registry) LoadFile(path string, logger *zap.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "open model catalogue %s", path)
	}
	defer f.Close()

	return r.Load(f, logger)
}

// Load parses a catalogue and registers every valid row. Rows without a
// ModelID are skipped silently; rows that fail to parse are logged and
// skipped. It returns the number of models in the registry.
func (r *Registry) Load(rd io.Reader, logger *zap.Logger) (int, error) {
	reader := csv.NewReader(rd)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "read catalogue header")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		columns[strings.TrimSpace(name)] = i
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Warn("skipping malformed catalogue line", zap.Error(err))
				continue
			}
			return len(r.models), errors.Wrap(err, "read catalogue")
		}

		row := catalogueRow{columns: columns, record: record}
		if row.get(colModelID) == "" {
			continue
		}

		m, err := row.parse()
		if err != nil {
			logger.Warn("skipping invalid catalogue row",
				zap.String("org", row.get(colOrg)),
				zap.Error(err),
			)
			continue
		}
		r.register(m)
	}

	return len(r.models), nil
}

func (r *Registry) register(m *Model) {
	key := m.Key()
	if _, exists := r.models[key]; !exists {
		r.order = append(r.order, key)
	} else {
		r.unindex(key)
	}
	r.models[key] = m

	if o, ok := domain.ParseOrganism(m.OrganismID); ok {
		r.byOrganism[o] = append(r.byOrganism[o], m)
	}
	r.byType[m.ModelType] = append(r.byType[m.ModelType], m)
}

// unindex drops a model that is about to be replaced by a later row with the
// same key.
func (r *Registry) unindex(key string) {
	old := r.models[key]
	for o, models := range r.byOrganism {
		r.byOrganism[o] = lo.Without(models, old)
	}
	r.byType[old.ModelType] = lo.Without(r.byType[old.ModelType], old)
}

// Get returns the model for an organism, model type and fourth factor.
func (r *Registry) Get(o domain.Organism, mt domain.ModelType, f4 domain.Factor4Type) (*Model, bool) {
	if f4 == "" {
		f4 = domain.Factor4None
	}
	m, ok := r.models[modelKey(mt.ModelID(), string(o), f4)]
	return m, ok
}

func (r *Registry) ForOrganism(o domain.Organism) []*Model {
	return r.byOrganism[o]
}

func (r *Registry) ByType(mt domain.ModelType) []*Model {
	return r.byType[mt]
}

// Organisms lists organisms that have at least one model, in catalogue code
// order.
func (r *Registry) Organisms() []domain.Organism {
	return lo.Filter(domain.Organisms, func(o domain.Organism, _ int) bool {
		return len(r.byOrganism[o]) > 0
	})
}

// All returns every model in load order.
func (r *Registry) All() []*Model {
	return lo.Map(r.order, func(key string, _ int) *Model {
		return r.models[key]
	})
}

func (r *Registry) Len() int { return len(r.models) }

type catalogueRow struct {
	columns map[string]int
	record  []string
}

func (c catalogueRow) get(name string) string {
	i, ok := c.columns[name]
	if !ok || i >= len(c.record) {
		return ""
	}
	return strings.TrimSpace(c.record[i])
}

func (c catalogueRow) parse() (*Model, error) {
	modelID, err := strconv.Atoi(c.get(colModelID))
	if err != nil {
		return nil, errors.Wrap(err, "ModelID")
	}

	coefficients, err := parseCoefficients(c.get(colCoefficients))
	if err != nil {
		return nil, err
	}

	p := floatParser{row: c}
	m := &Model{
		ModelID:      modelID,
		OrganismID:   c.get(colOrganismID),
		OrganismName: c.get(colOrg),
		ModelType:    domain.ModelTypeFromID(modelID),
		Factor4Type:  domain.ParseFactor4(c.get(colFactor4ID)),
		YMax:         p.float(colYMax, 0),
		H0:           p.float(colH0, 0),
		Coefficients: coefficients,
		Constraints: Constraints{
			TempMin:    p.float(colTempMin, 0),
			TempMax:    p.float(colTempMax, 0),
			PHMin:      p.float(colPHMin, 0),
			PHMax:      p.float(colPHMax, 0),
			AwMin:      p.float(colAwMin, 0),
			AwMax:      p.float(colAwMax, 0),
			Factor4Min: p.optional(colFactor4Min),
			Factor4Max: p.optional(colFactor4Max),
		},
		Defaults: Defaults{
			Temp:     p.float(colDefaultTemp, 20),
			PH:       p.float(colDefaultPH, 7),
			Aw:       p.float(colDefaultAw, 0.997),
			NaCl:     p.float(colDefaultNaCl, 0.5),
			Factor4:  p.optional(colDefaultFactor4),
			Inoculum: p.float(colDefaultInoc, 3),
		},
		StdErr:   p.float(colStdErr, 0.3),
		H0StdErr: p.float(colH0StdErr, 0.5),
	}
	if p.err != nil {
		return nil, p.err
	}
	if m.OrganismID == "" {
		return nil, errors.New("OrganismID is empty")
	}
	return m, nil
}

// floatParser keeps the first parse error so a row can be decoded in one
// expression.
type floatParser struct {
	row catalogueRow
	err error
}

func isNull(v string) bool {
	return v == "" || strings.EqualFold(v, "NULL")
}

func (p *floatParser) float(name string, def float64) float64 {
	v := p.row.get(name)
	if isNull(v) {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		if p.err == nil {
			p.err = errors.Wrap(err, name)
		}
		return def
	}
	return f
}

func (p *floatParser) optional(name string) *float64 {
	if isNull(p.row.get(name)) {
		return nil
	}
	f := p.float(name, 0)
	return &f
}

func parseCoefficients(raw string) ([]float64, error) {
	cleaned := strings.TrimSpace(strings.Trim(raw, `"`))
	if cleaned == "" {
		return nil, errors.New("Coefficients is empty")
	}

	parts := strings.Split(cleaned, ";")
	coefficients := make([]float64, 0, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Coefficients[%d]", i)
		}
		coefficients = append(coefficients, f)
	}
	return coefficients, nil
}
