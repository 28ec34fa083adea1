package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"campuswell/internal/model"
	"campuswell/internal/service"
	"campuswell/internal/transport/rest/middleware"
)

// SurveyHandler handles mood survey and dashboard endpoints
type SurveyHandler struct {
	wellnessSvc *service.WellnessService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(wellnessSvc *service.WellnessService) *SurveyHandler {
	return &SurveyHandler{wellnessSvc: wellnessSvc}
}

// SubmitSurveyRequest is the request body for a mood survey
type SubmitSurveyRequest struct {
	MoodRating  int     `json:"moodRating"`
	StressLevel float64 `json:"stressLevel"`
	FocusLevel  int     `json:"focusLevel"`
	Notes       string  `json:"notes,omitempty"`
}

// Submit handles POST /v1/mood-survey
func (h *SurveyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	subjectID := middleware.GetSubjectID(r.Context())

	var req SubmitSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	survey, err := h.wellnessSvc.SubmitSurvey(r.Context(), subjectID, req.MoodRating, req.StressLevel, req.FocusLevel, req.Notes)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error": verr.Reason,
				"field": verr.Field,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, survey)
}

// Dashboard handles GET /v1/dashboard
func (h *SurveyHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	subjectID := middleware.GetSubjectID(r.Context())

	data, err := h.wellnessSvc.Dashboard(r.Context(), subjectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, data)
}
