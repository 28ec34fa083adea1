package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"campuswell/internal/model"
	"campuswell/internal/service"
	"campuswell/internal/transport/rest/middleware"
)

// AssessmentHandler handles questionnaire endpoints
type AssessmentHandler struct {
	assessmentSvc *service.AssessmentService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessmentSvc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentSvc: assessmentSvc}
}

// SubmitAssessmentRequest is the request body for a questionnaire submission
type SubmitAssessmentRequest struct {
	Responses map[int]int `json:"responses"`
}

// ListDefinitions handles GET /v1/questionnaires
func (h *AssessmentHandler) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	defs, err := h.assessmentSvc.Definitions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questionnaires": defs})
}

// GetDefinition handles GET /v1/questionnaires/{kind}
func (h *AssessmentHandler) GetDefinition(w http.ResponseWriter, r *http.Request) {
	kind := model.QuestionnaireKind(mux.Vars(r)["kind"])

	def, err := h.assessmentSvc.Definition(r.Context(), kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if def == nil {
		writeError(w, http.StatusNotFound, "questionnaire not found")
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// Submit handles POST /v1/questionnaires/{kind}/submit
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	kind := model.QuestionnaireKind(mux.Vars(r)["kind"])
	subjectID := middleware.GetSubjectID(r.Context())

	var req SubmitAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assessment, profile, err := h.assessmentSvc.Submit(r.Context(), subjectID, kind, req.Responses)
	if err != nil {
		var verr *model.ValidationError
		var cerr *model.ConfigError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error": verr.Reason,
				"field": verr.Field,
			})
		case errors.As(err, &cerr):
			writeError(w, http.StatusInternalServerError, "assessment configuration error")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	resp := map[string]interface{}{"assessment": assessment}
	if profile != nil {
		resp["riskTier"] = profile.Tier
	}
	writeJSON(w, http.StatusCreated, resp)
}

// History handles GET /v1/questionnaires/{kind}/history
func (h *AssessmentHandler) History(w http.ResponseWriter, r *http.Request) {
	kind := model.QuestionnaireKind(mux.Vars(r)["kind"])
	subjectID := middleware.GetSubjectID(r.Context())

	history, err := h.assessmentSvc.History(r.Context(), subjectID, kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"assessments": history})
}

// Latest handles GET /v1/questionnaires/{kind}/latest
func (h *AssessmentHandler) Latest(w http.ResponseWriter, r *http.Request) {
	kind := model.QuestionnaireKind(mux.Vars(r)["kind"])
	subjectID := middleware.GetSubjectID(r.Context())

	latest, err := h.assessmentSvc.Latest(r.Context(), subjectID, kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if latest == nil {
		writeError(w, http.StatusNotFound, "no assessment on file")
		return
	}
	writeJSON(w, http.StatusOK, latest)
}
