package main

import (
	"github.com/fdg312/cut-sprint/internal/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cutctl",
		Short:         "cutctl computes cut-sprint targets, budgets and trends from your terminal",
		Long:          "cutctl runs the nutrition calculator, weekly budget projection, portion scaling, workout burn and weight trend math without the API server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// константы калькулятора берутся из того же окружения, что и у API
	nutritionCfg := config.Load().Nutrition

	root.AddCommand(
		newTargetsCmd(nutritionCfg),
		newWeeklyCmd(nutritionCfg),
		newScaleCmd(),
		newTrendCmd(),
		newBurnCmd(),
		newMigrateCmd(),
	)
	return root
}
