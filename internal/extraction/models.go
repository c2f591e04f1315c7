package extraction

// The types below capture what the user said, not engine-ready parameters.
// Every field is optional because descriptions are rarely complete.

type ExtractedTemperature struct {
	ValueCelsius    *float64 `json:"value_celsius"`
	Description     *string  `json:"description"`
	IsRange         bool     `json:"is_range"`
	RangeMinCelsius *float64 `json:"range_min_celsius"`
	RangeMaxCelsius *float64 `json:"range_max_celsius"`
}

type ExtractedDuration struct {
	ValueMinutes    *float64 `json:"value_minutes"`
	Description     *string  `json:"description"`
	IsAmbiguous     bool     `json:"is_ambiguous"`
	RangeMinMinutes *float64 `json:"range_min_minutes"`
	RangeMaxMinutes *float64 `json:"range_max_minutes"`
}

// ExtractedTimeTemperatureStep is one stage of a multi-step history, for
// example transport followed by storage.
type ExtractedTimeTemperatureStep struct {
	Description   *string              `json:"description"`
	Temperature   ExtractedTemperature `json:"temperature"`
	Duration      ExtractedDuration    `json:"duration"`
	SequenceOrder *int                 `json:"sequence_order"`
}

// ExtractedEnvironmentalConditions are inhibitory factors beyond temperature.
type ExtractedEnvironmentalConditions struct {
	PHValue               *float64 `json:"ph_value"`
	PHDescription         *string  `json:"ph_description"`
	WaterActivity         *float64 `json:"water_activity"`
	SaltPercent           *float64 `json:"salt_percent"`
	SaltDescription       *string  `json:"salt_description"`
	CO2Percent            *float64 `json:"co2_percent"`
	NitritePPM            *float64 `json:"nitrite_ppm"`
	LacticAcidPPM         *float64 `json:"lactic_acid_ppm"`
	AceticAcidPPM         *float64 `json:"acetic_acid_ppm"`
	AtmosphereDescription *string  `json:"atmosphere_description"`
}

// ExtractedScenario is the full extraction of a food safety scenario.
type ExtractedScenario struct {
	FoodDescription         *string                          `json:"food_description"`
	FoodState               *string                          `json:"food_state"`
	PathogenMentioned       *string                          `json:"pathogen_mentioned"`
	IsMultiStep             bool                             `json:"is_multi_step"`
	SingleStepTemperature   ExtractedTemperature             `json:"single_step_temperature"`
	SingleStepDuration      ExtractedDuration                `json:"single_step_duration"`
	TimeTemperatureSteps    []ExtractedTimeTemperatureStep   `json:"time_temperature_steps"`
	EnvironmentalConditions ExtractedEnvironmentalConditions `json:"environmental_conditions"`
	ConcernType             *string                          `json:"concern_type"`
	AdditionalContext       *string                          `json:"additional_context"`
}

// ExtractedIntent separates prediction requests from information queries.
type ExtractedIntent struct {
	IsPredictionRequest   bool    `json:"is_prediction_request"`
	IsInformationQuery    bool    `json:"is_information_query"`
	RequiresClarification bool    `json:"requires_clarification"`
	Confidence            float64 `json:"confidence"`
	Reasoning             *string `json:"reasoning"`
}

// ExtractedClarificationResponse is the extraction of an answer to a
// clarification question.
type ExtractedClarificationResponse struct {
	UnderstoodValue *string `json:"understood_value"`
	SelectedOption  *string `json:"selected_option"`
	WantsToSkip     bool    `json:"wants_to_skip"`
	AdditionalInfo  *string `json:"additional_info"`
}
