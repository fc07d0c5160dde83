package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"

	AIModeMock       = "mock"
	AIModeOpenAI     = "openai"
	AIModeOpenRouter = "openrouter"

	AuthModeNone = "none"
	AuthModeDev  = "dev"
)

type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PublicBaseURL     string
	PresignTTLSeconds int
	PreferPublicURL   bool
}

// MissingRequired lists the env keys an S3 store cannot start without.
// PublicBaseURL is only needed when PreferPublicURL is set.
func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 6)
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "S3_REGION")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	if c.PreferPublicURL && strings.TrimSpace(c.PublicBaseURL) == "" {
		missing = append(missing, "S3_PUBLIC_BASE_URL")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

func (c S3Config) isEmpty() bool {
	return strings.TrimSpace(c.Endpoint) == "" &&
		strings.TrimSpace(c.Region) == "" &&
		strings.TrimSpace(c.Bucket) == "" &&
		strings.TrimSpace(c.AccessKeyID) == "" &&
		strings.TrimSpace(c.SecretAccessKey) == "" &&
		strings.TrimSpace(c.PublicBaseURL) == ""
}

// Diagnostics classifies the S3 config for the blob factory logs.
func (c S3Config) Diagnostics() (level string, code string, msg string) {
	if c.isEmpty() {
		return "INFO", "s3_not_configured", "not configured (all empty)"
	}

	missing := c.MissingRequired()
	if len(missing) > 0 {
		return "WARN", "s3_partial_config", fmt.Sprintf("partial config, missing=%v", missing)
	}

	return "INFO", "s3_ready", "ready"
}

// DiagnosticsSummary returns a one-line summary without secrets.
func (c S3Config) DiagnosticsSummary() string {
	return fmt.Sprintf("endpoint=%s region=%s bucket=%s public_base_url=%s presign_ttl=%ds prefer_public_url=%t access_key_id=%s secret_access_key=%s",
		NonEmptyOrDash(c.Endpoint),
		NonEmptyOrDash(c.Region),
		NonEmptyOrDash(c.Bucket),
		NonEmptyOrDash(c.PublicBaseURL),
		c.PresignTTLSeconds,
		c.PreferPublicURL,
		SetOrNot(c.AccessKeyID),
		SetOrNot(c.SecretAccessKey),
	)
}

type BlobConfig struct {
	Mode string // local|s3|auto
	S3   S3Config
}

// NutritionConfig holds the product-level constants of the calculator.
type NutritionConfig struct {
	ProteinGPerKg       float64
	OtherGenderConstant float64
	MinCalories         int // 0 disables the floor
	WeekendBonusKcal    int
	WeekendBonusDays    int
}

// AIConfig configures the meal analysis upstream and the daily quota.
type AIConfig struct {
	Mode          string // mock | openai | openrouter
	BaseURL       string
	APIKey        string
	Model         string
	Temperature   float64
	MaxTokens     int
	Timeout       time.Duration
	DailyLimit    int
	DefaultRegion string
	AppName       string
	AppURL        string
}

// Config содержит конфигурацию приложения
type Config struct {
	Env  string // local | staging | production
	Port int

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string
	DatabaseURLPooled string
	DatabaseURLDirect string // for migrations / DDL

	RunMigrationsOnStartup bool

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	Blob BlobConfig

	// Auth
	AuthMode      string // none | dev
	AuthRequired  bool
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	AI        AIConfig
	Nutrition NutritionConfig
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	port := envInt("PORT", 8080)

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	// ---------- Blob / S3 ----------
	s3PresignTTL := envInt("S3_PRESIGN_TTL_SECONDS", 900)
	if s3PresignTTL <= 0 {
		s3PresignTTL = 900
	}
	blobCfg := BlobConfig{
		Mode: parseBlobMode("BLOB_MODE", BlobModeLocal),
		S3: S3Config{
			Endpoint:          strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
			Region:            strings.TrimSpace(os.Getenv("S3_REGION")),
			Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
			AccessKeyID:       strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
			SecretAccessKey:   strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
			PublicBaseURL:     strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
			PresignTTLSeconds: s3PresignTTL,
			PreferPublicURL:   parseBoolEnv("S3_PREFER_PUBLIC_URL"),
		},
	}

	// ---------- Auth ----------
	authMode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if authMode == "" {
		authMode = AuthModeNone
	}
	if authMode != AuthModeNone && authMode != AuthModeDev {
		log.Printf("WARNING: unknown AUTH_MODE=%q, fallback to none", authMode)
		authMode = AuthModeNone
	}
	authRequired := authMode != AuthModeNone && parseBoolEnv("AUTH_REQUIRED")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "change_me"
	}
	if jwtSecret == "change_me" && env != "local" {
		log.Println("WARNING: JWT_SECRET is set to 'change_me' in non-local environment!")
	}
	jwtIssuer := strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	if jwtIssuer == "" {
		jwtIssuer = "cut-sprint"
	}
	jwtTTLMinutes := envInt("JWT_TTL_MINUTES", 10080)
	if jwtTTLMinutes <= 0 {
		jwtTTLMinutes = 10080
	}

	return &Config{
		Env:               env,
		Port:              port,
		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,

		RunMigrationsOnStartup: parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP"),

		CORSAllowedOrigins:   parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env),
		CORSAllowCredentials: parseBoolEnv("CORS_ALLOW_CREDENTIALS"),

		RateLimitRPS:   envInt("RATE_LIMIT_RPS", 0),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 0),

		Blob: blobCfg,

		AuthMode:      authMode,
		AuthRequired:  authRequired,
		JWTSecret:     jwtSecret,
		JWTIssuer:     jwtIssuer,
		JWTTTLMinutes: jwtTTLMinutes,

		AI:        loadAIConfig(),
		Nutrition: loadNutritionConfig(),
	}
}

func loadAIConfig() AIConfig {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("AI_MODE")))
	if mode == "" {
		mode = AIModeMock
	}
	if mode != AIModeMock && mode != AIModeOpenAI && mode != AIModeOpenRouter {
		log.Printf("WARNING: unknown AI_MODE=%q, fallback to mock", mode)
		mode = AIModeMock
	}

	apiKey := strings.TrimSpace(os.Getenv("AI_API_KEY"))
	baseURL := strings.TrimSpace(os.Getenv("AI_BASE_URL"))
	model := strings.TrimSpace(os.Getenv("AI_MODEL"))
	switch mode {
	case AIModeOpenAI:
		if apiKey == "" {
			apiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		}
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		if model == "" {
			model = "gpt-4o-mini"
		}
	case AIModeOpenRouter:
		if apiKey == "" {
			apiKey = strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY"))
		}
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
		if model == "" {
			model = "openai/gpt-4o-mini"
		}
	}

	// Without a key the analyzer degrades to the local estimator; cmd/api refuses
	// to start that way only in production.
	if mode != AIModeMock && apiKey == "" {
		log.Printf("WARNING: AI_MODE=%s without API key, every analysis will use the fallback estimator", mode)
	}

	temperature := envFloat("AI_TEMPERATURE", 0.1)
	if temperature < 0 {
		temperature = 0
	}
	if temperature > 2 {
		temperature = 2
	}

	maxTokens := envInt("AI_MAX_OUTPUT_TOKENS", 500)
	if maxTokens <= 0 {
		maxTokens = 500
	}

	timeoutSeconds := envInt("AI_TIMEOUT_SECONDS", 15)
	if timeoutSeconds <= 0 {
		timeoutSeconds = 15
	}

	dailyLimit := envInt("AI_DAILY_LIMIT", 10)
	if dailyLimit <= 0 {
		dailyLimit = 10
	}

	region := strings.TrimSpace(os.Getenv("AI_DEFAULT_REGION"))
	if region == "" {
		region = "Poland"
	}

	appName := strings.TrimSpace(os.Getenv("AI_APP_NAME"))
	if appName == "" {
		appName = "Cut Sprint"
	}

	return AIConfig{
		Mode:          mode,
		BaseURL:       baseURL,
		APIKey:        apiKey,
		Model:         model,
		Temperature:   temperature,
		MaxTokens:     maxTokens,
		Timeout:       time.Duration(timeoutSeconds) * time.Second,
		DailyLimit:    dailyLimit,
		DefaultRegion: region,
		AppName:       appName,
		AppURL:        strings.TrimSpace(os.Getenv("AI_APP_URL")),
	}
}

func loadNutritionConfig() NutritionConfig {
	cfg := DefaultNutritionConfig()

	if v := envFloat("NUTRITION_PROTEIN_G_PER_KG", cfg.ProteinGPerKg); v > 0 {
		cfg.ProteinGPerKg = v
	}
	cfg.OtherGenderConstant = envFloat("NUTRITION_OTHER_GENDER_CONSTANT", cfg.OtherGenderConstant)
	if v := envInt("NUTRITION_MIN_CALORIES", 0); v > 0 {
		cfg.MinCalories = v
	}
	if v := envInt("BUDGET_WEEKEND_BONUS_KCAL", cfg.WeekendBonusKcal); v >= 0 {
		cfg.WeekendBonusKcal = v
	}
	if v := envInt("BUDGET_WEEKEND_BONUS_DAYS", cfg.WeekendBonusDays); v >= 0 && v <= 7 {
		cfg.WeekendBonusDays = v
	}

	return cfg
}

// DefaultNutritionConfig returns the calculator constants used when no env override is set.
func DefaultNutritionConfig() NutritionConfig {
	return NutritionConfig{
		ProteinGPerKg:       2.2,
		OtherGenderConstant: -161,
		MinCalories:         0,
		WeekendBonusKcal:    800,
		WeekendBonusDays:    2,
	}
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:5173"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func parseBlobMode(key string, defaultVal string) string {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if mode == "" {
		return defaultVal
	}
	switch mode {
	case BlobModeLocal, BlobModeS3, BlobModeAuto:
		return mode
	default:
		log.Printf("WARNING: unknown %s=%q, fallback to %s", key, mode, defaultVal)
		return defaultVal
	}
}

func envInt(key string, defaultVal int) int {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func envFloat(key string, defaultVal float64) float64 {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return defaultVal
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

// SetOrNot masks a secret for logs.
func SetOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func NonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}
