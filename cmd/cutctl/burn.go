package main

import (
	"fmt"

	"github.com/fdg312/cut-sprint/internal/activities"
	"github.com/spf13/cobra"
)

func newBurnCmd() *cobra.Command {
	var req activities.CalculateRequest

	cmd := &cobra.Command{
		Use:   "burn",
		Short: "Estimate calories burned by a workout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := req.Validate(); err != nil {
				return err
			}
			kcal := activities.CaloriesBurned(req.Type, req.DurationMinutes, req.UserWeightKg)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d min at %g kg: %d kcal\n", req.Type, req.DurationMinutes, req.UserWeightKg, kcal)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Type, "type", "walking", "running|cycling|swimming|strength|flexibility|mixed|walking")
	cmd.Flags().IntVar(&req.DurationMinutes, "minutes", 30, "Duration in minutes (1-480)")
	cmd.Flags().Float64Var(&req.UserWeightKg, "weight", activities.ReferenceWeightKg, "Body weight in kg (30-300)")
	return cmd
}
