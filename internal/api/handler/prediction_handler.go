package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ricirt/problem-interpretation/internal/correlation"
	"github.com/ricirt/problem-interpretation/internal/domain"
	"github.com/ricirt/problem-interpretation/internal/service"
)

// PredictionHandler serves prediction and model catalogue endpoints.
type PredictionHandler struct {
	svc    *service.PredictionService
	logger *zap.Logger
}

func NewPredictionHandler(svc *service.PredictionService, logger *zap.Logger) *PredictionHandler {
	return &PredictionHandler{svc: svc, logger: logger}
}

type createPredictionResponse struct {
	ID        string                        `json:"id"`
	CreatedAt time.Time                     `json:"created_at"`
	Result    domain.ComBaseExecutionResult `json:"result"`
}

// Create handles POST /api/v1/predictions
//
// @Summary  Run a prediction
// @Tags     predictions
// @Accept   json
// @Produce  json
// @Param    body  body      domain.ComBaseExecutionPayload  true  "Execution payload"
// @Success  201   {object}  createPredictionResponse
// @Failure  404   {object}  map[string]string
// @Failure  422   {object}  map[string]string
// @Failure  503   {object}  map[string]string
// @Router   /api/v1/predictions [post]
func (h *PredictionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload domain.ComBaseExecutionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := h.svc.Create(r.Context(), payload)
	if err != nil {
		h.logger.Warn("create prediction failed",
			zap.String("correlation_id", correlation.ID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, createPredictionResponse{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		Result:    p.Result,
	})
}

// GetByID handles GET /api/v1/predictions/{id}
//
// @Summary  Get a prediction by ID
// @Tags     predictions
// @Produce  json
// @Param    id   path      string  true  "Prediction UUID"
// @Success  200  {object}  domain.Prediction
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/predictions/{id} [get]
func (h *PredictionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// List handles GET /api/v1/predictions
//
// @Summary  List predictions with pagination
// @Tags     predictions
// @Produce  json
// @Param    organism  query     string  false  "Filter by organism code or name"
// @Param    page      query     int     false  "Page number (default 1)"
// @Param    limit     query     int     false  "Items per page (default 20, max 100)"
// @Success  200       {object}  map[string]any
// @Failure  422       {object}  map[string]string
// @Router   /api/v1/predictions [get]
func (h *PredictionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseListFilter(r)
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "unknown organism "+strconv.Quote(r.URL.Query().Get("organism")))
		return
	}

	predictions, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list predictions failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list predictions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  predictions,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

// Models handles GET /api/v1/models
//
// @Summary  List loaded ComBase models
// @Tags     models
// @Produce  json
// @Param    organism    query     string  false  "Filter by organism code or name"
// @Param    model_type  query     string  false  "growth, thermal_inactivation or non_thermal_survival"
// @Success  200         {object}  map[string]any
// @Failure  422         {object}  map[string]string
// @Router   /api/v1/models [get]
func (h *PredictionHandler) Models(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	organism, ok := parseOrganism(q.Get("organism"))
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "unknown organism "+strconv.Quote(q.Get("organism")))
		return
	}

	var modelType *domain.ModelType
	if v := q.Get("model_type"); v != "" {
		mt := domain.ModelType(v)
		if !mt.IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "unknown model_type "+strconv.Quote(v))
			return
		}
		modelType = &mt
	}

	models := h.svc.ListModels(organism, modelType)
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  models,
		"total": len(models),
	})
}

// Organisms handles GET /api/v1/organisms
//
// @Summary  List organisms with loaded models
// @Tags     models
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/organisms [get]
func (h *PredictionHandler) Organisms(w http.ResponseWriter, _ *http.Request) {
	organisms := h.svc.Organisms()
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  organisms,
		"total": len(organisms),
	})
}

func parseListFilter(r *http.Request) (domain.ListFilter, bool) {
	q := r.URL.Query()
	filter := domain.ListFilter{Page: 1, Limit: domain.DefaultPageLimit}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		filter.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		filter.Limit = l
	}
	filter.Normalize()

	organism, ok := parseOrganism(q.Get("organism"))
	filter.Organism = organism
	return filter, ok
}

// parseOrganism accepts a ComBase code or a common name. Empty means no filter.
func parseOrganism(v string) (*domain.Organism, bool) {
	if v == "" {
		return nil, true
	}
	o, ok := domain.ParseOrganism(v)
	if !ok {
		return nil, false
	}
	return &o, true
}
