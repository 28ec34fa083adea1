package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"campuswell/internal/model"
	"campuswell/internal/service"
	"campuswell/internal/store"
)

// AlertHandler handles alert dispatch, retry and receipt endpoints
type AlertHandler struct {
	alertSvc *service.AlertService
	alerts   store.AlertStore
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alertSvc *service.AlertService, alerts store.AlertStore) *AlertHandler {
	return &AlertHandler{
		alertSvc: alertSvc,
		alerts:   alerts,
	}
}

// DispatchRequest is the request body for a manual alert dispatch
type DispatchRequest struct {
	AlertType string            `json:"alertType"`
	SubjectID string            `json:"subjectId"`
	Channel   model.ChannelType `json:"channel"`
}

// Dispatch handles POST /v1/alerts
func (h *AlertHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AlertType == "" || req.SubjectID == "" {
		writeError(w, http.StatusBadRequest, "alertType and subjectId are required")
		return
	}

	record, err := h.alertSvc.Dispatch(r.Context(), req.AlertType, req.SubjectID, req.Channel)
	if err != nil {
		// A duplicate is success-with-no-op, not a failure
		if errors.Is(err, service.ErrDuplicateAlert) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"status": "already_handled",
				"alert":  record,
			})
			return
		}
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// Retry handles POST /v1/alerts/{alertKey}/retry
func (h *AlertHandler) Retry(w http.ResponseWriter, r *http.Request) {
	alertKey := mux.Vars(r)["alertKey"]

	record, err := h.alertSvc.Retry(r.Context(), alertKey)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlertNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotRetryable), errors.Is(err, service.ErrRetryExhausted):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Receipt handles POST /v1/alerts/{alertKey}/receipt, the delivery-receipt
// callback from the notification gateway.
func (h *AlertHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	alertKey := mux.Vars(r)["alertKey"]

	record, err := h.alertSvc.ConfirmDelivery(r.Context(), alertKey)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlertNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotConfirmable):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// ListBySubject handles GET /v1/students/{subjectId}/alerts
func (h *AlertHandler) ListBySubject(w http.ResponseWriter, r *http.Request) {
	subjectID := mux.Vars(r)["subjectId"]

	records, err := h.alerts.ListBySubject(r.Context(), subjectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": records})
}

// Audit handles GET /v1/alerts/{alertKey}/audit
func (h *AlertHandler) Audit(w http.ResponseWriter, r *http.Request) {
	alertKey := mux.Vars(r)["alertKey"]

	entries, err := h.alerts.Audit(r.Context(), alertKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"audit": entries})
}
