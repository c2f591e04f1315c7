package extraction

const scenarioPrompt = `You are a food safety expert assistant. Your task is to extract structured information from a user's description of a food safety scenario.

Extract the following information if present:
- Food item description (what food is involved)
- Food state (raw, cooked, frozen, thawed, etc.)
- Pathogen if explicitly mentioned
- Temperature information (explicit values or descriptions like "room temperature")
- Duration information (explicit values or descriptions like "a few hours")
- Environmental conditions (pH, salt content, atmosphere, etc.)
- Whether this is a multi-step scenario (e.g., transport then storage)
- What the user is concerned about (safety, spoilage, shelf life)

Important guidelines:
- Only extract what is explicitly stated or clearly implied
- Do not invent or assume values not mentioned
- If a range is given (e.g., "20-25C"), capture it as a range
- If time/temperature is ambiguous (e.g., "a while"), mark it as ambiguous
- Convert all temperatures to Celsius
- Convert all durations to minutes
- For multi-step scenarios, capture each step in sequence order
`

const intentPrompt = `You are a food safety expert assistant. Classify the user's intent.

A PREDICTION REQUEST is when the user:
- Wants to know if food is safe to eat
- Asks about microbial growth or contamination risk
- Describes a scenario and wants a safety assessment
- Asks about shelf life or how long food can be kept

An INFORMATION QUERY is when the user:
- Asks general questions about food safety
- Wants to know about pathogens or foodborne illness
- Asks about food safety guidelines or regulations
- Wants educational information, not a specific prediction

If the intent is unclear or could be either, mark requires_clarification as true.
`

const clarificationPrompt = `You are a food safety expert assistant. The user is responding to a clarification question.

Extract:
- The specific value or information they provided
- If they selected from given options, which option
- If they want to skip the question and use defaults
- Any additional context they provided
`

// The shapes below are appended to each prompt so any JSON-mode model
// returns fields the decoder understands. Unknown values must be null.

const temperatureShape = `{"value_celsius": number|null, "description": string|null, "is_range": boolean, "range_min_celsius": number|null, "range_max_celsius": number|null}`

const durationShape = `{"value_minutes": number|null, "description": string|null, "is_ambiguous": boolean, "range_min_minutes": number|null, "range_max_minutes": number|null}`

const scenarioShape = `{
  "food_description": string|null,
  "food_state": string|null,
  "pathogen_mentioned": string|null,
  "is_multi_step": boolean,
  "single_step_temperature": ` + temperatureShape + `,
  "single_step_duration": ` + durationShape + `,
  "time_temperature_steps": [{"description": string|null, "temperature": ` + temperatureShape + `, "duration": ` + durationShape + `, "sequence_order": integer|null}],
  "environmental_conditions": {"ph_value": number|null, "ph_description": string|null, "water_activity": number|null, "salt_percent": number|null, "salt_description": string|null, "co2_percent": number|null, "nitrite_ppm": number|null, "lactic_acid_ppm": number|null, "acetic_acid_ppm": number|null, "atmosphere_description": string|null},
  "concern_type": string|null,
  "additional_context": string|null
}`

const intentShape = `{"is_prediction_request": boolean, "is_information_query": boolean, "requires_clarification": boolean, "confidence": number between 0 and 1, "reasoning": string|null}`

const clarificationShape = `{"understood_value": string|null, "selected_option": string|null, "wants_to_skip": boolean, "additional_info": string|null}`

func withShape(prompt, shape string) string {
	return prompt + "\nRespond with a single JSON object of this shape and nothing else:\n" + shape + "\n"
}
