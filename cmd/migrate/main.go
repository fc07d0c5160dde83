package main

import (
	"log"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/cut-sprint/internal/config"
	"github.com/fdg312/cut-sprint/internal/dbmigrate"
)

func main() {
	usage := strings.Join(dbmigrate.Commands, "|")
	if len(os.Args) < 2 {
		log.Fatalf("usage: go run ./cmd/migrate [%s] [migrations-dir]", usage)
	}

	command := os.Args[1]
	if !dbmigrate.ValidCommand(command) {
		log.Fatalf("unsupported command %q (allowed: %s)", command, usage)
	}

	// без аргумента используются встроенные миграции
	dir := ""
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	cfg := config.Load()
	dbURL, source, warning, err := dbmigrate.SelectDatabaseURL(cfg, false)
	if err != nil {
		log.Fatal(err)
	}

	if warning != "" {
		log.Printf("WARN migrate: %s", warning)
	}
	log.Printf("migrate: command=%s using=%s", command, source)

	if err := dbmigrate.Run(command, dbURL, dir); err != nil {
		log.Fatal(err)
	}

	log.Printf("migrate: %s completed successfully", command)
}
