package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuswell/internal/config"
	"campuswell/internal/model"
	"campuswell/internal/service"
	"campuswell/internal/store"
)

type fakeChannel struct {
	failures int
}

func (c *fakeChannel) Deliver(ctx context.Context, record *model.AlertRecord) error {
	if c.failures > 0 {
		c.failures--
		return errors.New("gateway unreachable")
	}
	return nil
}

func newAlertRouter(ch service.Channel) (*mux.Router, store.AlertStore) {
	alerts := store.NewAlertStore(store.NewMemoryKV())
	svc := service.NewAlertService(config.DefaultRiskConfig(), alerts, map[model.ChannelType]service.Channel{
		model.ChannelSMS:   ch,
		model.ChannelEmail: ch,
	})
	h := NewAlertHandler(svc, alerts)

	r := mux.NewRouter()
	r.HandleFunc("/v1/alerts", h.Dispatch).Methods("POST")
	r.HandleFunc("/v1/alerts/{alertKey}/retry", h.Retry).Methods("POST")
	r.HandleFunc("/v1/alerts/{alertKey}/receipt", h.Receipt).Methods("POST")
	r.HandleFunc("/v1/alerts/{alertKey}/audit", h.Audit).Methods("GET")
	r.HandleFunc("/v1/students/{subjectId}/alerts", h.ListBySubject).Methods("GET")
	return r, alerts
}

func dispatchBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"alertType": model.AlertTypeRiskHigh,
		"subjectId": "s1",
		"channel":   string(model.ChannelEmail),
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestDispatchEndpoint(t *testing.T) {
	router, _ := newAlertRouter(&fakeChannel{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/alerts", dispatchBody(t)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var record model.AlertRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "s1:risk_high", record.AlertKey)
	assert.Equal(t, model.AlertSent, record.Status)
}

func TestDispatchEndpointDuplicateIsOK(t *testing.T) {
	router, _ := newAlertRouter(&fakeChannel{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/alerts", dispatchBody(t)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/alerts", dispatchBody(t)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string            `json:"status"`
		Alert  model.AlertRecord `json:"alert"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "already_handled", resp.Status)
	assert.Equal(t, "s1:risk_high", resp.Alert.AlertKey)
}

func TestDispatchEndpointValidation(t *testing.T) {
	router, _ := newAlertRouter(&fakeChannel{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/alerts", bytes.NewBufferString(`{"subjectId":"s1"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, _ := json.Marshal(map[string]string{
		"alertType": model.AlertTypeRiskHigh,
		"subjectId": "s1",
		"channel":   "carrier-pigeon",
	})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/alerts", bytes.NewBuffer(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRetryEndpoint(t *testing.T) {
	router, _ := newAlertRouter(&fakeChannel{failures: 1})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/alerts", dispatchBody(t)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var record model.AlertRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	require.Equal(t, model.AlertFailed, record.Status)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/alerts/s1:risk_high/retry", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, model.AlertSent, record.Status)
	assert.Equal(t, 1, record.RetryCount)

	// Sent records cannot be retried
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/alerts/s1:risk_high/retry", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/alerts/s9:risk_high/retry", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReceiptEndpoint(t *testing.T) {
	router, _ := newAlertRouter(&fakeChannel{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/alerts", dispatchBody(t)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/alerts/s1:risk_high/receipt", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var record model.AlertRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, model.AlertDelivered, record.Status)

	// A second receipt finds a delivered record
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/alerts/s1:risk_high/receipt", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuditAndListEndpoints(t *testing.T) {
	router, _ := newAlertRouter(&fakeChannel{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/alerts", dispatchBody(t)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/alerts/s1:risk_high/audit", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var auditResp struct {
		Audit []model.AlertAuditEntry `json:"audit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auditResp))
	require.Len(t, auditResp.Audit, 2)
	assert.Equal(t, model.AlertPending, auditResp.Audit[0].To)
	assert.Equal(t, model.AlertSent, auditResp.Audit[1].To)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/students/s1/alerts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Alerts []*model.AlertRecord `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Alerts, 1)
	assert.Equal(t, "s1:risk_high", listResp.Alerts[0].AlertKey)
}
