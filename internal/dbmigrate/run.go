package dbmigrate

import (
	"database/sql"
	"fmt"

	"github.com/fdg312/cut-sprint/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Commands lists the goose commands exposed by cmd/migrate and cutctl.
var Commands = []string{"up", "down", "status"}

// Run применяет goose-команду к базе. Пустой migrationsDir означает
// встроенные миграции из пакета migrations.
func Run(command string, dbURL string, migrationsDir string) error {
	if !ValidCommand(command) {
		return fmt.Errorf("unknown migrate command %q (expected up, down or status)", command)
	}
	if dbURL == "" {
		return fmt.Errorf("database URL is empty")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if migrationsDir == "" {
		goose.SetBaseFS(migrations.FS)
		defer goose.SetBaseFS(nil)
		migrationsDir = EmbeddedMigrationsDir
	}

	if err := goose.Run(command, db, migrationsDir); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	return nil
}

func ValidCommand(command string) bool {
	for _, c := range Commands {
		if c == command {
			return true
		}
	}
	return false
}
