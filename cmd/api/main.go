package main

import (
	"fmt"
	"log"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/cut-sprint/internal/config"
	"github.com/fdg312/cut-sprint/internal/dbmigrate"
	"github.com/fdg312/cut-sprint/internal/httpserver"
)

func main() {
	cfg := config.Load()

	printStartupBanner(cfg)

	if cfg.RunMigrationsOnStartup {
		dbURL, source, _, err := dbmigrate.SelectDatabaseURL(cfg, true)
		if err != nil {
			log.Fatalf("FATAL startup migrations: %v", err)
		}

		log.Printf("startup migrations: command=up using=%s", source)
		if err := dbmigrate.Run("up", dbURL, ""); err != nil {
			log.Fatalf("FATAL startup migrations failed: %v", err)
		}
		log.Printf("startup migrations: completed")
	}

	if err := validateProductionConfig(cfg); err != nil {
		log.Fatalf("FATAL %v", err)
	}

	server := httpserver.New(cfg)
	defer server.Close()

	log.Fatal(server.Start())
}

// printStartupBanner logs the resolved configuration. Secrets are masked ("set" / "not set").
func printStartupBanner(cfg *config.Config) {
	log.Println("========== Cut Sprint API ==========")
	log.Printf("  env              = %s", cfg.Env)
	log.Printf("  port             = %d", cfg.Port)

	log.Println("---- database ----")
	log.Printf("  runtime_url      = %s", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled))
	log.Printf("  pooled           = %s", config.SetOrNot(cfg.DatabaseURLPooled))
	log.Printf("  direct           = %s", config.SetOrNot(cfg.DatabaseURLDirect))
	log.Printf("  migrations_on_startup = %t", cfg.RunMigrationsOnStartup)

	log.Println("---- auth ----")
	log.Printf("  auth_mode        = %s", cfg.AuthMode)
	log.Printf("  auth_required    = %t", cfg.AuthRequired)
	log.Printf("  jwt_secret       = %s", secretStatus(cfg.JWTSecret, "change_me"))
	log.Printf("  jwt_issuer       = %s", config.NonEmptyOrDash(cfg.JWTIssuer))

	log.Println("---- http ----")
	log.Printf("  cors_origins     = %s", config.NonEmptyOrDash(strings.Join(cfg.CORSAllowedOrigins, ",")))
	log.Printf("  rate_limit_rps   = %d (burst=%d)", cfg.RateLimitRPS, cfg.RateLimitBurst)

	log.Println("---- blob ----")
	log.Printf("  blob_mode        = %s", cfg.Blob.Mode)
	if cfg.Blob.Mode != config.BlobModeLocal {
		log.Printf("  s3: %s", cfg.Blob.S3.DiagnosticsSummary())
	}

	log.Println("---- nutrition ----")
	log.Printf("  protein_g_per_kg = %.1f", cfg.Nutrition.ProteinGPerKg)
	log.Printf("  weekend_bonus    = %d kcal x %d days", cfg.Nutrition.WeekendBonusKcal, cfg.Nutrition.WeekendBonusDays)

	log.Println("---- ai ----")
	log.Printf("  ai_mode          = %s", cfg.AI.Mode)
	log.Printf("  ai_daily_limit   = %d", cfg.AI.DailyLimit)
	if cfg.AI.Mode != config.AIModeMock {
		log.Printf("  ai_model         = %s", config.NonEmptyOrDash(cfg.AI.Model))
		log.Printf("  ai_api_key       = %s", config.SetOrNot(cfg.AI.APIKey))
	}

	log.Println("====================================")
}

// validateProductionConfig checks settings that only matter outside local env.
func validateProductionConfig(cfg *config.Config) error {
	isProd := cfg.Env == "production" || cfg.Env == "staging"

	if cfg.Blob.Mode == config.BlobModeS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			return fmt.Errorf("blob: BLOB_MODE=s3 but S3 config is incomplete, missing: %s", strings.Join(missing, ", "))
		}
	}

	// локально без ключа анализатор уходит в fallback, в проде это ошибка конфигурации
	if isProd && cfg.AI.Mode != config.AIModeMock && strings.TrimSpace(cfg.AI.APIKey) == "" {
		return fmt.Errorf("ai: AI_MODE=%s requires AI_API_KEY", cfg.AI.Mode)
	}

	if isProd && cfg.AuthRequired && cfg.JWTSecret == "change_me" {
		return fmt.Errorf("auth: JWT_SECRET must not be 'change_me' in %s with AUTH_REQUIRED=1", cfg.Env)
	}

	if isProd && cfg.DatabaseURL == "" {
		return fmt.Errorf("db: no DATABASE_URL configured in %s", cfg.Env)
	}
	return nil
}

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "not set"
	}
	if v == insecureDefault {
		return fmt.Sprintf("set (DEFAULT, insecure '%s')", insecureDefault)
	}
	return "set (custom)"
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set (will use in-memory storage)"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}
