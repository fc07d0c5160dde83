package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fdg312/cut-sprint/internal/activities"
	"github.com/fdg312/cut-sprint/internal/ai"
	"github.com/fdg312/cut-sprint/internal/analysis"
	"github.com/fdg312/cut-sprint/internal/auth"
	"github.com/fdg312/cut-sprint/internal/blob"
	"github.com/fdg312/cut-sprint/internal/budgets"
	"github.com/fdg312/cut-sprint/internal/config"
	"github.com/fdg312/cut-sprint/internal/meals"
	"github.com/fdg312/cut-sprint/internal/nutrition"
	"github.com/fdg312/cut-sprint/internal/profiles"
	"github.com/fdg312/cut-sprint/internal/reports"
	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/fdg312/cut-sprint/internal/storage/memory"
	"github.com/fdg312/cut-sprint/internal/storage/postgres"
	"github.com/fdg312/cut-sprint/internal/weights"
)

// Server представляет HTTP сервер
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Storage
	blobStore      blob.Store
	authMiddleware *auth.Middleware

	// сервисы с часами, чтобы тесты могли их зафиксировать
	engine     *budgets.Engine
	reports    *reports.Service
	gate       *analysis.Gate
	weights    *weights.Service
	meals      *meals.Service
	activities *activities.Service
}

// New создаёт новый HTTP сервер
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorage()
	s.initBlobStore()

	s.routes()
	return s
}

// newWithStorage is used by tests to inject a prepared storage.
func newWithStorage(cfg *config.Config, st storage.Storage) *Server {
	s := &Server{
		config:    cfg,
		mux:       http.NewServeMux(),
		storage:   st,
		blobStore: blob.NewLocalStore(),
	}
	s.routes()
	return s
}

// initStorage инициализирует storage (Memory или Postgres)
func (s *Server) initStorage() {
	if s.config.DatabaseURL == "" {
		log.Println("INFO storage: using in-memory storage")
		s.storage = memory.New()
		return
	}

	log.Println("INFO storage: connecting to PostgreSQL...")
	pgStorage, err := postgres.New(context.Background(), s.config.DatabaseURL)
	if err != nil {
		log.Printf("WARN storage: postgres connection failed: %v", err)
		log.Println("WARN storage: fallback to in-memory storage")
		s.storage = memory.New()
		return
	}
	log.Println("INFO storage: PostgreSQL connected")
	s.storage = pgStorage
}

func (s *Server) initBlobStore() {
	store, mode, err := blob.NewBlobStore(s.config.Blob, log.Default())
	if err != nil {
		log.Fatalf("blob store initialization failed: %v", err)
	}
	log.Printf("INFO blob: effective mode=%s", mode)
	s.blobStore = store
}

// routes регистрирует маршруты
func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	// Auth (public)
	authService := auth.NewService(s.config)
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)
	s.mux.HandleFunc("POST /v1/auth/dev", authHandler.HandleDevAuth)

	calc := nutrition.NewCalculator(s.config.Nutrition)
	products := s.storage.GetProductsStorage()

	// Profile
	profileHandler := profiles.NewHandler(profiles.NewService(s.storage, calc))
	s.mux.HandleFunc("GET /v1/profile", profileHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/profile", profileHandler.HandleUpdate)

	// Nutrition targets, scaling, product catalog
	nutritionHandler := nutrition.NewHandler(nutrition.NewService(s.storage, products, calc))
	s.mux.HandleFunc("GET /v1/nutrition/targets", nutritionHandler.HandleGetTargets)
	s.mux.HandleFunc("POST /v1/nutrition/scale", nutritionHandler.HandleScale)
	s.mux.HandleFunc("GET /v1/products", nutritionHandler.HandleSearchProducts)
	s.mux.HandleFunc("POST /v1/products", nutritionHandler.HandleCreateProduct)
	s.mux.HandleFunc("GET /v1/products/{id}", nutritionHandler.HandleGetProduct)

	// Weights
	s.weights = weights.NewService(s.storage.GetWeightsStorage())
	weightHandler := weights.NewHandler(s.weights)
	s.mux.HandleFunc("POST /v1/weights", weightHandler.HandleAdd)
	s.mux.HandleFunc("GET /v1/weights", weightHandler.HandleList)
	s.mux.HandleFunc("DELETE /v1/weights/{id}", weightHandler.HandleDelete)
	s.mux.HandleFunc("GET /v1/weights/trend", weightHandler.HandleTrend)
	s.mux.HandleFunc("GET /v1/weights/moving-average", weightHandler.HandleMovingAverage)
	s.mux.HandleFunc("GET /v1/weights/stats", weightHandler.HandleStats)
	s.mux.HandleFunc("GET /v1/weights/predictions", weightHandler.HandlePredictions)
	s.mux.HandleFunc("GET /v1/weights/change", weightHandler.HandleChange)
	s.mux.HandleFunc("GET /v1/weights/reminder", weightHandler.HandleReminder)

	// Meals
	s.meals = meals.NewService(s.storage.GetMealsStorage(), products, s.storage, calc)
	mealHandler := meals.NewHandler(s.meals)
	s.mux.HandleFunc("POST /v1/meals", mealHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/meals", mealHandler.HandleList)
	s.mux.HandleFunc("DELETE /v1/meals/{id}", mealHandler.HandleDelete)
	s.mux.HandleFunc("GET /v1/meals/summary/daily", mealHandler.HandleDailySummary)
	s.mux.HandleFunc("GET /v1/meals/summary/weekly", mealHandler.HandleWeeklySummary)
	s.mux.HandleFunc("GET /v1/meals/trends", mealHandler.HandleTrends)
	s.mux.HandleFunc("GET /v1/meals/suggestions", mealHandler.HandleSuggestions)
	s.mux.HandleFunc("POST /v1/meals/duplicate-yesterday", mealHandler.HandleDuplicateYesterday)

	// Weekly budgets
	s.engine = budgets.NewEngine(
		s.storage,
		s.storage.GetBudgetsStorage(),
		s.storage.GetMealsStorage(),
		s.storage.GetWeightsStorage(),
		calc,
	)
	budgetHandler := budgets.NewHandler(s.engine)
	s.mux.HandleFunc("GET /v1/budgets", budgetHandler.HandleList)
	s.mux.HandleFunc("GET /v1/budgets/current", budgetHandler.HandleCurrent)
	s.mux.HandleFunc("GET /v1/budgets/daily", budgetHandler.HandleDaily)
	s.mux.HandleFunc("GET /v1/budgets/compensation", budgetHandler.HandleCompensation)
	s.mux.HandleFunc("GET /v1/budgets/progress", budgetHandler.HandleProgress)
	s.mux.HandleFunc("GET /v1/budgets/suggestions", budgetHandler.HandleSuggestions)
	s.mux.HandleFunc("GET /v1/budgets/status", budgetHandler.HandleStatus)
	s.mux.HandleFunc("PATCH /v1/budgets/{id}", budgetHandler.HandleUpdate)

	// Activities: журнал тренировок и расход калорий
	s.activities = activities.NewService(
		s.storage.GetActivitiesStorage(),
		s.storage.GetWeightsStorage(),
		s.storage,
		s.engine,
	)
	activityHandler := activities.NewHandler(s.activities)
	s.mux.HandleFunc("POST /v1/activities", activityHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/activities", activityHandler.HandleList)
	s.mux.HandleFunc("GET /v1/activities/daily-calories", activityHandler.HandleDailyCalories)
	s.mux.HandleFunc("GET /v1/activities/weekly-calories", activityHandler.HandleWeeklyCalories)
	s.mux.HandleFunc("GET /v1/activities/stats", activityHandler.HandleStats)
	s.mux.HandleFunc("GET /v1/activities/suggestions", activityHandler.HandleSuggestions)
	s.mux.HandleFunc("GET /v1/activities/presets", activityHandler.HandlePresets)
	s.mux.HandleFunc("POST /v1/activities/calculate-calories", activityHandler.HandleCalculate)
	s.mux.HandleFunc("GET /v1/activities/{id}", activityHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/activities/{id}", activityHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /v1/activities/{id}", activityHandler.HandleDelete)

	// AI meal analysis
	s.gate = analysis.NewGate(s.storage.GetAIUsageStorage(), s.config.AI.DailyLimit)
	analyzer := analysis.NewAnalyzer(ai.NewProvider(s.config.AI), analysis.NewEstimator(nil, nil), s.config.AI)
	analysisService := analysis.NewService(s.gate, analyzer, s.storage.GetMealAnalysesStorage(), s.config.AI.DefaultRegion)
	analysisHandler := analysis.NewHandler(analysisService)
	s.mux.HandleFunc("POST /v1/analysis/meal", analysisHandler.HandleAnalyzeMeal)
	s.mux.HandleFunc("GET /v1/analysis/usage", analysisHandler.HandleUsage)
	s.mux.HandleFunc("GET /v1/analysis/history", analysisHandler.HandleHistory)

	// Weekly reports (PDF/CSV через blob store)
	generator := reports.NewGenerator(s.engine, s.storage.GetMealsStorage(), s.storage.GetWeightsStorage())
	s.reports = reports.NewService(s.storage.GetReportsStorage(), generator, s.blobStore, s.config.Blob.S3.PresignTTLSeconds)
	reportHandler := reports.NewHandlers(s.reports)
	s.mux.HandleFunc("POST /v1/reports", reportHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/reports", reportHandler.HandleList)
	s.mux.HandleFunc("GET /v1/reports/{id}/download", reportHandler.HandleDownload)
	s.mux.HandleFunc("DELETE /v1/reports/{id}", reportHandler.HandleDelete)
}

// setClock pins every time-dependent service (tests).
func (s *Server) setClock(now func() time.Time) {
	s.engine.SetClock(now)
	s.reports.SetClock(now)
	s.gate.SetClock(now)
	s.weights.SetClock(now)
	s.meals.SetClock(now)
	s.activities.SetClock(now)
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Handler builds the middleware chain (outermost first): CORS → Rate Limit → Auth → Router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = s.authMiddleware.Wrap(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Start запускает HTTP сервер
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("INFO server: listening on http://localhost%s", addr)
	log.Printf("INFO server: health check http://localhost%s/healthz", addr)

	return srv.ListenAndServe()
}

// Close закрывает storage и освобождает ресурсы
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
