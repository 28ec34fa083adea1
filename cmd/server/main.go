package main

import (
	"campuswell/config"
	riskcfg "campuswell/internal/config"
	"campuswell/internal/model"
	"campuswell/internal/repository"
	"campuswell/internal/service"
	"campuswell/internal/store"
	"campuswell/internal/transport/rest"
	"campuswell/internal/transport/ws"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// Load risk thresholds and severity band tables
	rc, err := riskcfg.LoadRiskConfig()
	if err != nil {
		log.Fatal("Failed to load risk config:", err)
	}
	log.Printf("Risk config loaded (%d instruments)", len(rc.Bands))

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	redisAddr := cfg.RedisAddr
	// Remove redis:// prefix if present
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	questionnaireRepo := repository.NewQuestionnaireRepo(db)
	studentRepo := repository.NewStudentRepo(db)
	userRepo := repository.NewUserRepo(db)

	// Initialize key-value stores
	kv := store.NewRedisKV(rdb)
	assessmentStore := store.NewAssessmentStore(kv)
	riskStore := store.NewRiskStore(kv)
	alertStore := store.NewAlertStore(kv)
	wellnessStore := store.NewWellnessStore(kv)
	analyticsCache := store.NewAnalyticsCache(rdb)

	// Initialize delivery channels
	notify := service.NewNotifyClient(cfg)
	channels := map[model.ChannelType]service.Channel{
		model.ChannelSMS:          service.NewSMSChannel(notify),
		model.ChannelEmail:        service.NewEmailChannel(notify),
		model.ChannelMentorAssign: service.NewMentorAssignChannel(studentRepo, os.Getenv("FALLBACK_MENTOR_ID")),
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	scorer := service.NewScoringService(rc)
	riskSvc := service.NewRiskService(rc, studentRepo, wellnessStore, assessmentStore, riskStore)
	alertSvc := service.NewAlertService(rc, alertStore, channels)
	assessmentSvc := service.NewAssessmentService(questionnaireRepo, scorer, assessmentStore, wellnessStore, riskSvc, alertSvc)
	wellnessSvc := service.NewWellnessService(wellnessStore, riskStore, riskSvc, alertSvc)
	analyticsSvc := service.NewAnalyticsService(riskStore, wellnessStore, studentRepo, analyticsCache)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	alertSvc.SetBroadcaster(wsHub)
	riskSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:   authSvc,
		AssessmentSvc: assessmentSvc,
		WellnessSvc:   wellnessSvc,
		RiskSvc:       riskSvc,
		AlertSvc:      alertSvc,
		AnalyticsSvc:  analyticsSvc,
		StudentRepo:   studentRepo,
		RiskStore:     riskStore,
		AlertStore:    alertStore,
		WSHub:         wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/signup")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/mood-survey")
		log.Println("  GET  /v1/dashboard")
		log.Println("  GET/POST /v1/questionnaires/{kind}/...")
		log.Println("  GET  /v1/students")
		log.Println("  POST /v1/alerts")
		log.Println("  GET  /v1/admin/analytics")
		log.Println("  WS   /v1/ws/mentors")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
