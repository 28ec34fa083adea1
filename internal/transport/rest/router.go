package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"campuswell/internal/model"
	"campuswell/internal/repository"
	"campuswell/internal/service"
	"campuswell/internal/store"
	"campuswell/internal/transport/rest/handler"
	"campuswell/internal/transport/rest/middleware"
	"campuswell/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService   *service.AuthService
	AssessmentSvc *service.AssessmentService
	WellnessSvc   *service.WellnessService
	RiskSvc       *service.RiskService
	AlertSvc      *service.AlertService
	AnalyticsSvc  *service.AnalyticsService
	StudentRepo   repository.StudentRepo
	RiskStore     store.RiskStore
	AlertStore    store.AlertStore
	WSHub         *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	assessmentHandler := handler.NewAssessmentHandler(c.AssessmentSvc)
	surveyHandler := handler.NewSurveyHandler(c.WellnessSvc)
	studentHandler := handler.NewStudentHandler(c.StudentRepo, c.RiskStore, c.RiskSvc)
	alertHandler := handler.NewAlertHandler(c.AlertSvc, c.AlertStore)
	analyticsHandler := handler.NewAnalyticsHandler(c.AnalyticsSvc)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Delivery receipts arrive from the notify gateway, not from users
	v1.HandleFunc("/alerts/{alertKey}/receipt", alertHandler.Receipt).Methods("POST", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/mentors", wsHandler.MentorWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Authenticated routes (any role)
	authed := v1.NewRoute().Subrouter()
	authed.Use(authMW.RequireAuth)

	authed.HandleFunc("/auth/profile", authHandler.Profile).Methods("GET", "OPTIONS")
	authed.HandleFunc("/dashboard", surveyHandler.Dashboard).Methods("GET", "OPTIONS")
	authed.HandleFunc("/mood-survey", surveyHandler.Submit).Methods("POST", "OPTIONS")
	authed.HandleFunc("/questionnaires", assessmentHandler.ListDefinitions).Methods("GET", "OPTIONS")
	authed.HandleFunc("/questionnaires/{kind}", assessmentHandler.GetDefinition).Methods("GET", "OPTIONS")
	authed.HandleFunc("/questionnaires/{kind}/submit", assessmentHandler.Submit).Methods("POST", "OPTIONS")
	authed.HandleFunc("/questionnaires/{kind}/history", assessmentHandler.History).Methods("GET", "OPTIONS")
	authed.HandleFunc("/questionnaires/{kind}/latest", assessmentHandler.Latest).Methods("GET", "OPTIONS")

	// Mentor routes (mentor or admin)
	mentorRoutes := v1.NewRoute().Subrouter()
	mentorRoutes.Use(authMW.RequireAuth, authMW.RequireRole(model.RoleMentor))

	mentorRoutes.HandleFunc("/students", studentHandler.List).Methods("GET", "OPTIONS")
	mentorRoutes.HandleFunc("/students/{subjectId}/risk", studentHandler.GetRisk).Methods("GET", "OPTIONS")
	mentorRoutes.HandleFunc("/students/{subjectId}/signals", studentHandler.GetSignals).Methods("GET", "OPTIONS")
	mentorRoutes.HandleFunc("/students/{subjectId}/alerts", alertHandler.ListBySubject).Methods("GET", "OPTIONS")
	mentorRoutes.HandleFunc("/alerts", alertHandler.Dispatch).Methods("POST", "OPTIONS")
	mentorRoutes.HandleFunc("/alerts/{alertKey}/retry", alertHandler.Retry).Methods("POST", "OPTIONS")
	mentorRoutes.HandleFunc("/alerts/{alertKey}/audit", alertHandler.Audit).Methods("GET", "OPTIONS")

	// Admin routes
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAuth, authMW.RequireRole(model.RoleAdmin))

	adminRoutes.HandleFunc("/admin/analytics", analyticsHandler.Overview).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/students/{subjectId}/academic", studentHandler.UpdateAcademic).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/students/{subjectId}/mentor", studentHandler.AssignMentor).Methods("PUT", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
