package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")
	t.Setenv("AI_MODE", "")
	t.Setenv("AUTH_MODE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_URL_POOLED", "")
	t.Setenv("DATABASE_URL_DIRECT", "")

	cfg := Load()

	if cfg.Env != "local" {
		t.Fatalf("expected env=local, got %q", cfg.Env)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.AI.Mode != AIModeMock {
		t.Fatalf("expected ai mode mock, got %q", cfg.AI.Mode)
	}
	if cfg.AI.DailyLimit != 10 {
		t.Fatalf("expected daily limit 10, got %d", cfg.AI.DailyLimit)
	}
	if cfg.AI.Temperature != 0.1 || cfg.AI.MaxTokens != 500 {
		t.Fatalf("expected temperature 0.1 and max tokens 500, got %v/%d", cfg.AI.Temperature, cfg.AI.MaxTokens)
	}
	if cfg.AI.Timeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %v", cfg.AI.Timeout)
	}
	if cfg.Nutrition.ProteinGPerKg != 2.2 {
		t.Fatalf("expected protein 2.2 g/kg, got %v", cfg.Nutrition.ProteinGPerKg)
	}
	if cfg.Nutrition.WeekendBonusKcal != 800 || cfg.Nutrition.WeekendBonusDays != 2 {
		t.Fatalf("unexpected weekend bonus config: %+v", cfg.Nutrition)
	}
	if cfg.AuthMode != AuthModeNone || cfg.AuthRequired {
		t.Fatalf("expected auth disabled, got mode=%s required=%t", cfg.AuthMode, cfg.AuthRequired)
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		t.Fatal("expected localhost CORS origins in local env")
	}
}

func TestLoadDatabaseURLPriority(t *testing.T) {
	t.Setenv("DATABASE_URL_POOLED", "postgres://pooled")
	t.Setenv("DATABASE_URL", "postgres://url")
	t.Setenv("DATABASE_URL_DIRECT", "postgres://direct")

	cfg := Load()
	if cfg.DatabaseURL != "postgres://pooled" {
		t.Fatalf("expected pooled URL to win, got %q", cfg.DatabaseURL)
	}

	t.Setenv("DATABASE_URL_POOLED", "")
	cfg = Load()
	if cfg.DatabaseURL != "postgres://url" {
		t.Fatalf("expected DATABASE_URL to win, got %q", cfg.DatabaseURL)
	}
}

func TestLoadOpenRouterDefaults(t *testing.T) {
	t.Setenv("AI_MODE", "openrouter")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("AI_BASE_URL", "")
	t.Setenv("AI_MODEL", "")
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	cfg := Load()
	if cfg.AI.BaseURL != "https://openrouter.ai/api/v1" {
		t.Fatalf("unexpected base url %q", cfg.AI.BaseURL)
	}
	if cfg.AI.Model != "openai/gpt-4o-mini" {
		t.Fatalf("unexpected model %q", cfg.AI.Model)
	}
	if cfg.AI.APIKey != "or-key" {
		t.Fatalf("expected OPENROUTER_API_KEY fallback, got %q", cfg.AI.APIKey)
	}
}

func TestLoadUnknownModesFallBack(t *testing.T) {
	t.Setenv("AI_MODE", "gigachat")
	t.Setenv("AUTH_MODE", "siwa")
	t.Setenv("BLOB_MODE", "gcs")

	cfg := Load()
	if cfg.AI.Mode != AIModeMock {
		t.Fatalf("expected ai fallback to mock, got %q", cfg.AI.Mode)
	}
	if cfg.AuthMode != AuthModeNone {
		t.Fatalf("expected auth fallback to none, got %q", cfg.AuthMode)
	}
	if cfg.Blob.Mode != BlobModeLocal {
		t.Fatalf("expected blob fallback to local, got %q", cfg.Blob.Mode)
	}
}

func TestNutritionOverrides(t *testing.T) {
	t.Setenv("NUTRITION_PROTEIN_G_PER_KG", "2.0")
	t.Setenv("NUTRITION_MIN_CALORIES", "1200")
	t.Setenv("BUDGET_WEEKEND_BONUS_DAYS", "3")

	cfg := Load()
	if cfg.Nutrition.ProteinGPerKg != 2.0 {
		t.Fatalf("expected protein 2.0, got %v", cfg.Nutrition.ProteinGPerKg)
	}
	if cfg.Nutrition.MinCalories != 1200 {
		t.Fatalf("expected min calories 1200, got %d", cfg.Nutrition.MinCalories)
	}
	if cfg.Nutrition.WeekendBonusDays != 3 {
		t.Fatalf("expected 3 bonus days, got %d", cfg.Nutrition.WeekendBonusDays)
	}
}

func TestS3ConfigMissingRequired(t *testing.T) {
	c := S3Config{Endpoint: "https://storage.example.net", Bucket: "reports"}
	missing := c.MissingRequired()
	if len(missing) != 3 {
		t.Fatalf("expected 3 missing keys, got %v", missing)
	}

	c.PreferPublicURL = true
	if len(c.MissingRequired()) != 4 {
		t.Fatalf("expected public base url to be required when preferred, got %v", c.MissingRequired())
	}

	level, code, _ := S3Config{}.Diagnostics()
	if level != "INFO" || code != "s3_not_configured" {
		t.Fatalf("unexpected diagnostics for empty config: %s %s", level, code)
	}
}
