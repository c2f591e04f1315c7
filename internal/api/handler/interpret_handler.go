package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ricirt/problem-interpretation/internal/correlation"
	"github.com/ricirt/problem-interpretation/internal/extraction"
)

// InterpretHandler exposes the semantic parser over HTTP.
type InterpretHandler struct {
	parser *extraction.Parser
	logger *zap.Logger
}

func NewInterpretHandler(parser *extraction.Parser, logger *zap.Logger) *InterpretHandler {
	return &InterpretHandler{parser: parser, logger: logger}
}

type scenarioRequest struct {
	Input   string `json:"input"`
	Context string `json:"context,omitempty"`
}

type intentRequest struct {
	Input string `json:"input"`
}

type clarificationRequest struct {
	Response string   `json:"response"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// Scenario handles POST /api/v1/interpret/scenario
//
// @Summary  Extract a scenario from free text
// @Tags     interpret
// @Accept   json
// @Produce  json
// @Param    body  body      scenarioRequest  true  "User input"
// @Success  200   {object}  extraction.ExtractedScenario
// @Failure  422   {object}  map[string]string
// @Failure  503   {object}  map[string]string
// @Router   /api/v1/interpret/scenario [post]
func (h *InterpretHandler) Scenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	out, err := h.parser.ExtractScenario(r.Context(), req.Input, req.Context)
	if err != nil {
		h.fail(r, err)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// Intent handles POST /api/v1/interpret/intent
//
// @Summary  Classify the intent of a message
// @Tags     interpret
// @Accept   json
// @Produce  json
// @Param    body  body      intentRequest  true  "User input"
// @Success  200   {object}  extraction.ExtractedIntent
// @Failure  422   {object}  map[string]string
// @Failure  503   {object}  map[string]string
// @Router   /api/v1/interpret/intent [post]
func (h *InterpretHandler) Intent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	out, err := h.parser.ClassifyIntent(r.Context(), req.Input)
	if err != nil {
		h.fail(r, err)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// Clarification handles POST /api/v1/interpret/clarification
//
// @Summary  Interpret an answer to a clarification question
// @Tags     interpret
// @Accept   json
// @Produce  json
// @Param    body  body      clarificationRequest  true  "Question and answer"
// @Success  200   {object}  extraction.ExtractedClarificationResponse
// @Failure  422   {object}  map[string]string
// @Failure  503   {object}  map[string]string
// @Router   /api/v1/interpret/clarification [post]
func (h *InterpretHandler) Clarification(w http.ResponseWriter, r *http.Request) {
	var req clarificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	out, err := h.parser.ExtractClarificationResponse(r.Context(), req.Response, req.Question, req.Options)
	if err != nil {
		h.fail(r, err)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *InterpretHandler) fail(r *http.Request, err error) {
	h.logger.Warn("interpretation failed",
		zap.String("path", r.URL.Path),
		zap.String("correlation_id", correlation.ID(r.Context())),
		zap.Error(err),
	)
}
