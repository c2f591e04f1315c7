package domain

import "strings"

// ModelType is the kind of predictive model. ComBase numbers them 1..3.
type ModelType string

const (
	ModelGrowth              ModelType = "growth"
	ModelThermalInactivation ModelType = "thermal_inactivation"
	ModelNonThermalSurvival  ModelType = "non_thermal_survival"
)

func (m ModelType) IsValid() bool {
	switch m {
	case ModelGrowth, ModelThermalInactivation, ModelNonThermalSurvival:
		return true
	}
	return false
}

// ModelID returns the ComBase ModelID. Unknown types map to growth.
func (m ModelType) ModelID() int {
	switch m {
	case ModelThermalInactivation:
		return 2
	case ModelNonThermalSurvival:
		return 3
	}
	return 1
}

// ModelTypeFromID converts a ComBase ModelID. Unknown IDs map to growth.
func ModelTypeFromID(id int) ModelType {
	switch id {
	case 2:
		return ModelThermalInactivation
	case 3:
		return ModelNonThermalSurvival
	}
	return ModelGrowth
}

// Organism is a ComBase broth-model organism code.
type Organism string

const (
	OrganismAeromonasHydrophila      Organism = "ah"
	OrganismBacillusCereus           Organism = "bc"
	OrganismBacillusLicheniformis    Organism = "bl"
	OrganismBacillusSubtilis         Organism = "bs"
	OrganismBrochothrixThermosphacta Organism = "bt"
	OrganismClostridiumBotulinumNP   Organism = "cbn"
	OrganismClostridiumBotulinumP    Organism = "cbp"
	OrganismClostridiumPerfringens   Organism = "cp"
	OrganismEscherichiaColi          Organism = "ec"
	OrganismListeriaMonocytogenes    Organism = "lm"
	OrganismPseudomonas              Organism = "ps"
	OrganismSalmonella               Organism = "ss"
	OrganismShigellaFlexneri         Organism = "sf"
	OrganismStaphylococcusAureus     Organism = "sa"
	OrganismYersiniaEnterocolitica   Organism = "ye"
)

// Organisms lists every supported code in catalogue order.
var Organisms = []Organism{
	OrganismAeromonasHydrophila,
	OrganismBacillusCereus,
	OrganismBacillusLicheniformis,
	OrganismBacillusSubtilis,
	OrganismBrochothrixThermosphacta,
	OrganismClostridiumBotulinumNP,
	OrganismClostridiumBotulinumP,
	OrganismClostridiumPerfringens,
	OrganismEscherichiaColi,
	OrganismListeriaMonocytogenes,
	OrganismPseudomonas,
	OrganismSalmonella,
	OrganismShigellaFlexneri,
	OrganismStaphylococcusAureus,
	OrganismYersiniaEnterocolitica,
}

func (o Organism) IsValid() bool {
	for _, known := range Organisms {
		if o == known {
			return true
		}
	}
	return false
}

// organismAliases is searched in order; the first alias that contains, or is
// contained in, the normalised input wins.
var organismAliases = []struct {
	alias    string
	organism Organism
}{
	{"listeria", OrganismListeriaMonocytogenes},
	{"listeria_monocytogenes", OrganismListeriaMonocytogenes},
	{"l_monocytogenes", OrganismListeriaMonocytogenes},
	{"l.monocytogenes", OrganismListeriaMonocytogenes},
	{"listeria_innocua", OrganismListeriaMonocytogenes},
	{"salmonella", OrganismSalmonella},
	{"salmonellae", OrganismSalmonella},
	{"salmonella_typhimurium", OrganismSalmonella},
	{"salmonella_enteritidis", OrganismSalmonella},
	{"e_coli", OrganismEscherichiaColi},
	{"e.coli", OrganismEscherichiaColi},
	{"ecoli", OrganismEscherichiaColi},
	{"e._coli", OrganismEscherichiaColi},
	{"escherichia_coli", OrganismEscherichiaColi},
	{"staph", OrganismStaphylococcusAureus},
	{"staphylococcus", OrganismStaphylococcusAureus},
	{"staph_aureus", OrganismStaphylococcusAureus},
	{"s_aureus", OrganismStaphylococcusAureus},
	{"clostridium_botulinum", OrganismClostridiumBotulinumP},
	{"c_botulinum", OrganismClostridiumBotulinumP},
	{"botulinum", OrganismClostridiumBotulinumP},
	{"clostridium_perfringens", OrganismClostridiumPerfringens},
	{"c_perfringens", OrganismClostridiumPerfringens},
	{"perfringens", OrganismClostridiumPerfringens},
	{"bacillus_cereus", OrganismBacillusCereus},
	{"b_cereus", OrganismBacillusCereus},
	{"bacillus", OrganismBacillusCereus},
	{"yersinia", OrganismYersiniaEnterocolitica},
	{"yersinia_enterocolitica", OrganismYersiniaEnterocolitica},
	{"y_enterocolitica", OrganismYersiniaEnterocolitica},
	{"pseudomonas", OrganismPseudomonas},
	{"shigella", OrganismShigellaFlexneri},
	{"aeromonas", OrganismAeromonasHydrophila},
	{"brochothrix", OrganismBrochothrixThermosphacta},
}

// ParseOrganism matches a code or a common name ("E. coli", "listeria") to an
// organism. The second return value is false when nothing matches.
func ParseOrganism(value string) (Organism, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	if normalized == "" {
		return "", false
	}

	if o := Organism(normalized); o.IsValid() {
		return o, true
	}

	for _, a := range organismAliases {
		if strings.Contains(normalized, a.alias) || strings.Contains(a.alias, normalized) {
			return a.organism, true
		}
	}
	return "", false
}

// Factor4Type is the optional fourth environmental factor of a model.
type Factor4Type string

const (
	Factor4None       Factor4Type = "none"
	Factor4CO2        Factor4Type = "co2"
	Factor4Nitrite    Factor4Type = "nitrite"
	Factor4LacticAcid Factor4Type = "lactic_acid"
	Factor4AceticAcid Factor4Type = "acetic_acid"
)

func (f Factor4Type) IsValid() bool {
	switch f {
	case Factor4None, Factor4CO2, Factor4Nitrite, Factor4LacticAcid, Factor4AceticAcid:
		return true
	}
	return false
}

// ParseFactor4 converts a catalogue value. NULL, empty and unknown values map
// to Factor4None.
func ParseFactor4(value string) Factor4Type {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "co2", "carbon_dioxide":
		return Factor4CO2
	case "nitrite":
		return Factor4Nitrite
	case "lactic_acid", "lactic":
		return Factor4LacticAcid
	case "acetic_acid", "acetic":
		return Factor4AceticAcid
	}
	return Factor4None
}

// EngineType selects the engine implementation that runs a payload.
type EngineType string

const (
	EngineComBaseLocal EngineType = "combase_local"
	EngineComBaseAPI   EngineType = "combase_api"
)

func (e EngineType) IsValid() bool {
	return e == EngineComBaseLocal || e == EngineComBaseAPI
}
