package main

import (
	"fmt"

	"github.com/fdg312/cut-sprint/internal/nutrition"
	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/spf13/cobra"
)

func newScaleCmd() *cobra.Command {
	var (
		grams   float64
		product storage.Product
	)

	cmd := &cobra.Command{
		Use:   "scale",
		Short: "Scale per-100g nutrition values to a portion",
		RunE: func(cmd *cobra.Command, args []string) error {
			if grams <= 0 {
				return fmt.Errorf("--grams must be > 0")
			}
			if product.CaloriesPer100g < 0 || product.ProteinPer100g < 0 || product.FatPer100g < 0 || product.CarbsPer100g < 0 {
				return fmt.Errorf("per-100g values must not be negative")
			}

			info := nutrition.ScaleNutrition(product, grams)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%gg: %d kcal  P %gg  F %gg  C %gg  fiber %gg  sodium %gmg\n",
				grams, info.Calories, info.ProteinG, info.FatG, info.CarbsG, info.FiberG, info.SodiumMg)
			return nil
		},
	}

	cmd.Flags().Float64Var(&grams, "grams", 100, "Portion size in grams")
	cmd.Flags().Float64Var(&product.CaloriesPer100g, "kcal", 0, "Calories per 100g")
	cmd.Flags().Float64Var(&product.ProteinPer100g, "protein", 0, "Protein per 100g")
	cmd.Flags().Float64Var(&product.FatPer100g, "fat", 0, "Fat per 100g")
	cmd.Flags().Float64Var(&product.CarbsPer100g, "carbs", 0, "Carbs per 100g")
	cmd.Flags().Float64Var(&product.FiberPer100g, "fiber", 0, "Fiber per 100g")
	cmd.Flags().Float64Var(&product.SodiumPer100g, "sodium", 0, "Sodium per 100g (mg)")
	return cmd
}
