package combase_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ricirt/problem-interpretation/internal/combase"
	"github.com/ricirt/problem-interpretation/internal/domain"
)

const testCatalogue = "testdata/models.csv"

func loadTestRegistry(t *testing.T) *combase.Registry {
	t.Helper()
	reg := combase.NewRegistry()
	n, err := reg.LoadFile(testCatalogue, zap.NewNop())
	if err != nil {
		t.Fatalf("load catalogue: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 models, got %d", n)
	}
	return reg
}

func TestRegistry_LoadSkipsEmptyAndInvalidRows(t *testing.T) {
	reg := loadTestRegistry(t)

	if reg.Len() != 3 {
		t.Fatalf("expected 3 models, got %d", reg.Len())
	}
	if _, ok := reg.Get(domain.OrganismBacillusCereus, domain.ModelGrowth, domain.Factor4None); ok {
		t.Fatal("expected the malformed bacillus rows to be skipped")
	}
}

func TestRegistry_Get(t *testing.T) {
	reg := loadTestRegistry(t)

	tests := []struct {
		name      string
		organism  domain.Organism
		modelType domain.ModelType
		factor4   domain.Factor4Type
		found     bool
	}{
		{"listeria growth", domain.OrganismListeriaMonocytogenes, domain.ModelGrowth, domain.Factor4None, true},
		{"listeria growth empty factor4", domain.OrganismListeriaMonocytogenes, domain.ModelGrowth, "", true},
		{"listeria growth co2", domain.OrganismListeriaMonocytogenes, domain.ModelGrowth, domain.Factor4CO2, true},
		{"salmonella thermal", domain.OrganismSalmonella, domain.ModelThermalInactivation, domain.Factor4None, true},
		{"salmonella growth", domain.OrganismSalmonella, domain.ModelGrowth, domain.Factor4None, false},
		{"listeria nitrite", domain.OrganismListeriaMonocytogenes, domain.ModelGrowth, domain.Factor4Nitrite, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := reg.Get(tc.organism, tc.modelType, tc.factor4)
			if ok != tc.found {
				t.Fatalf("expected found=%v, got %v", tc.found, ok)
			}
		})
	}
}

func TestRegistry_ParsesDefaultsAndConstraints(t *testing.T) {
	reg := loadTestRegistry(t)

	m, _ := reg.Get(domain.OrganismListeriaMonocytogenes, domain.ModelGrowth, domain.Factor4CO2)
	if len(m.Coefficients) != 15 {
		t.Fatalf("expected 15 coefficients, got %d", len(m.Coefficients))
	}
	if m.Defaults.Temp != 20 || m.Defaults.PH != 7 || m.Defaults.Aw != 0.997 {
		t.Fatalf("expected NULL defaults to be imputed, got %+v", m.Defaults)
	}
	if m.Defaults.NaCl != 0.5 || m.Defaults.Inoculum != 3 {
		t.Fatalf("expected NaCl/inoculum defaults, got %+v", m.Defaults)
	}
	if m.StdErr != 0.3 || m.H0StdErr != 0.5 {
		t.Fatalf("expected error defaults, got %v / %v", m.StdErr, m.H0StdErr)
	}
	if m.Defaults.Factor4 == nil || *m.Defaults.Factor4 != 10 {
		t.Fatalf("expected default factor4 10, got %v", m.Defaults.Factor4)
	}
	if m.Constraints.Factor4Min == nil || *m.Constraints.Factor4Max != 80 {
		t.Fatal("expected factor4 range [0, 80]")
	}
	if m.Key() != "1_lm_co2" {
		t.Fatalf("unexpected key %q", m.Key())
	}

	plain, _ := reg.Get(domain.OrganismListeriaMonocytogenes, domain.ModelGrowth, domain.Factor4None)
	if plain.Constraints.Factor4Min != nil || plain.Defaults.Factor4 != nil {
		t.Fatal("expected NULL factor4 fields to stay unset")
	}
}

func TestRegistry_Indexes(t *testing.T) {
	reg := loadTestRegistry(t)

	if got := len(reg.ForOrganism(domain.OrganismListeriaMonocytogenes)); got != 2 {
		t.Fatalf("expected 2 listeria models, got %d", got)
	}
	if got := len(reg.ByType(domain.ModelThermalInactivation)); got != 1 {
		t.Fatalf("expected 1 thermal model, got %d", got)
	}

	organisms := reg.Organisms()
	if len(organisms) != 2 || organisms[0] != domain.OrganismListeriaMonocytogenes || organisms[1] != domain.OrganismSalmonella {
		t.Fatalf("unexpected organisms %v", organisms)
	}

	all := reg.All()
	if len(all) != 3 || all[0].Key() != "1_lm_none" {
		t.Fatalf("expected models in load order, got %d", len(all))
	}
}

func TestRegistry_LaterRowReplacesDuplicateKey(t *testing.T) {
	csv := strings.Join([]string{
		"ModelID;OrganismID;Org;Factor4ID;ymax;h0;Coefficients;TempMin;TempMax;PHMin;PHMax;AwMin;AwMax",
		`1;ye;Yersinia;NULL;9;1;"-1;0.1";0;30;4;8;0.95;1`,
		`1;ye;Yersinia enterocolitica;NULL;9;1;"-2;0.1";0;30;4;8;0.95;1`,
	}, "\n")

	reg := combase.NewRegistry()
	n, err := reg.Load(strings.NewReader(csv), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 model, got %d", n)
	}
	models := reg.ForOrganism(domain.OrganismYersiniaEnterocolitica)
	if len(models) != 1 || models[0].OrganismName != "Yersinia enterocolitica" {
		t.Fatalf("expected the later row to win, got %+v", models)
	}
}

func TestRegistry_LoadFileMissing(t *testing.T) {
	reg := combase.NewRegistry()
	if _, err := reg.LoadFile("testdata/missing.csv", zap.NewNop()); err == nil {
		t.Fatal("expected an error for a missing catalogue")
	}
}
