package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"campuswell/internal/model"
	"campuswell/internal/repository"
	"campuswell/internal/service"
	"campuswell/internal/store"
)

// StudentHandler handles mentor and admin roster endpoints
type StudentHandler struct {
	students repository.StudentRepo
	risk     store.RiskStore
	riskSvc  *service.RiskService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(students repository.StudentRepo, risk store.RiskStore, riskSvc *service.RiskService) *StudentHandler {
	return &StudentHandler{
		students: students,
		risk:     risk,
		riskSvc:  riskSvc,
	}
}

// StudentView is a roster entry combined with its current risk tier
type StudentView struct {
	*model.Student
	Tier    model.Tier     `json:"tier"`
	Factors []model.Factor `json:"contributingFactors,omitempty"`
}

// List handles GET /v1/students
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]StudentView, 0, len(students))
	for _, s := range students {
		view := StudentView{Student: s, Tier: model.TierLow}
		profile, err := h.risk.Get(r.Context(), s.SubjectID)
		if err == nil && profile != nil {
			view.Tier = profile.Tier
			view.Factors = profile.ContributingFactors
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"students": views})
}

// GetRisk handles GET /v1/students/{subjectId}/risk
func (h *StudentHandler) GetRisk(w http.ResponseWriter, r *http.Request) {
	subjectID := mux.Vars(r)["subjectId"]

	profile, err := h.risk.Get(r.Context(), subjectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "no risk profile computed yet")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GetSignals handles GET /v1/students/{subjectId}/signals
func (h *StudentHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	subjectID := mux.Vars(r)["subjectId"]

	signals, err := h.riskSvc.GatherSignals(r.Context(), subjectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, signals)
}

// UpdateAcademicRequest is the request body for an academic record update
type UpdateAcademicRequest struct {
	AttendancePct *float64        `json:"attendancePct,omitempty"`
	BacklogCount  *int            `json:"backlogCount,omitempty"`
	GPA           *float64        `json:"gpa,omitempty"`
	FeeStatus     model.FeeStatus `json:"feeStatus,omitempty"`
}

// UpdateAcademic handles PUT /v1/students/{subjectId}/academic
func (h *StudentHandler) UpdateAcademic(w http.ResponseWriter, r *http.Request) {
	subjectID := mux.Vars(r)["subjectId"]

	var req UpdateAcademicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FeeStatus != "" && req.FeeStatus != model.FeePaid && req.FeeStatus != model.FeePending && req.FeeStatus != model.FeeOverdue {
		writeError(w, http.StatusBadRequest, "invalid fee status")
		return
	}

	err := h.students.UpdateAcademic(r.Context(), subjectID, repository.AcademicUpdate{
		AttendancePct: req.AttendancePct,
		BacklogCount:  req.BacklogCount,
		GPA:           req.GPA,
		FeeStatus:     req.FeeStatus,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Academic changes feed the classifier, so recompute right away
	_, profile, err := h.riskSvc.Recompute(r.Context(), subjectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// AssignMentorRequest is the request body for a mentor assignment
type AssignMentorRequest struct {
	MentorID string `json:"mentorId"`
}

// AssignMentor handles PUT /v1/students/{subjectId}/mentor
func (h *StudentHandler) AssignMentor(w http.ResponseWriter, r *http.Request) {
	subjectID := mux.Vars(r)["subjectId"]

	var req AssignMentorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MentorID == "" {
		writeError(w, http.StatusBadRequest, "mentorId is required")
		return
	}

	if err := h.students.AssignMentor(r.Context(), subjectID, req.MentorID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}
