package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/fdg312/cut-sprint/internal/config"
	"github.com/fdg312/cut-sprint/internal/dbmigrate"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:       "migrate " + strings.Join(dbmigrate.Commands, "|"),
		Short:     "Apply, roll back or inspect database migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: dbmigrate.Commands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]
			if !dbmigrate.ValidCommand(command) {
				return fmt.Errorf("unsupported command %q (allowed: %s)", command, strings.Join(dbmigrate.Commands, ", "))
			}

			dbURL, source, warning, err := dbmigrate.SelectDatabaseURL(config.Load(), false)
			if err != nil {
				return err
			}
			if warning != "" {
				log.Printf("WARN migrate: %s", warning)
			}
			log.Printf("migrate: command=%s using=%s", command, source)

			if err := dbmigrate.Run(command, dbURL, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate: %s completed successfully\n", command)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Migrations directory (defaults to the embedded set)")
	return cmd
}
