package dbmigrate

import (
	"fmt"

	"github.com/fdg312/cut-sprint/internal/config"
)

// EmbeddedMigrationsDir is the root of migrations.FS.
const EmbeddedMigrationsDir = "."

type urlCandidate struct {
	value   string
	source  string
	warning string
}

// SelectDatabaseURL выбирает URL базы для DDL.
// Приоритет: DATABASE_URL_DIRECT > DATABASE_URL > DATABASE_URL_POOLED (с предупреждением).
// При requireDirect принимается только DATABASE_URL_DIRECT.
func SelectDatabaseURL(cfg *config.Config, requireDirect bool) (dbURL string, source string, warning string, err error) {
	if requireDirect {
		if cfg.DatabaseURLDirect == "" {
			return "", "", "", fmt.Errorf("DATABASE_URL_DIRECT is required for DDL/migrations")
		}
		return cfg.DatabaseURLDirect, "DATABASE_URL_DIRECT", "", nil
	}

	candidates := []urlCandidate{
		{value: cfg.DatabaseURLDirect, source: "DATABASE_URL_DIRECT"},
		{value: cfg.DatabaseURLRaw, source: "DATABASE_URL"},
		{
			value:   cfg.DatabaseURLPooled,
			source:  "DATABASE_URL_POOLED",
			warning: "using pooled connection for DDL is not recommended; set DATABASE_URL_DIRECT",
		},
	}
	for _, c := range candidates {
		if c.value != "" {
			return c.value, c.source, c.warning, nil
		}
	}

	return "", "", "", fmt.Errorf("no database URL configured (set DATABASE_URL_DIRECT or DATABASE_URL)")
}
