package main

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/fdg312/cut-sprint/internal/config"
	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/nutrition"
	"github.com/spf13/cobra"
)

func newTargetsCmd(cfg config.NutritionConfig) *cobra.Command {
	var flags profileFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Show BMR, TDEE and daily/weekly calorie and macro targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.profile()
			if err != nil {
				return err
			}
			calc := nutrition.NewCalculator(cfg)

			bmr, err := calc.BMR(p)
			if err != nil {
				return err
			}
			tdee, err := calc.TDEE(p)
			if err != nil {
				return err
			}
			daily, err := calc.DailyTarget(p)
			if err != nil {
				return err
			}
			weekly := calc.WeeklyFromDaily(daily, calc.WeekendBonus(p))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(nutrition.TargetsResponse{
					BMR:    int(math.Round(bmr)),
					TDEE:   int(math.Round(tdee)),
					Daily:  daily,
					Weekly: weekly,
				})
			}

			fmt.Fprintf(out, "BMR:    %d kcal\n", int(math.Round(bmr)))
			fmt.Fprintf(out, "TDEE:   %d kcal\n", int(math.Round(tdee)))
			fmt.Fprintf(out, "Daily:  %d kcal  P %dg  F %dg  C %dg\n", daily.Calories, daily.ProteinG, daily.FatG, daily.CarbsG)
			fmt.Fprintf(out, "Weekly: %d kcal  P %dg  F %dg  C %dg  (weekend bonus %d kcal/day)\n",
				weekly.Calories, weekly.ProteinG, weekly.FatG, weekly.CarbsG, weekly.WeekendBonusCalories)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newWeeklyCmd(cfg config.NutritionConfig) *cobra.Command {
	var flags profileFlags
	var dateStr string

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Project the weekly budget onto the days of a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.profile()
			if err != nil {
				return err
			}
			day, err := dates.ParseOr(dateStr, time.Now())
			if err != nil {
				return fmt.Errorf("invalid --date %q, use YYYY-MM-DD", dateStr)
			}

			calc := nutrition.NewCalculator(cfg)
			weekly, err := calc.WeeklyTarget(p)
			if err != nil {
				return err
			}

			start := dates.WeekStart(day)
			base := int(math.Round(float64(weekly.Calories) / 7))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Week %s .. %s, budget %d kcal\n", dates.Format(start), dates.Format(dates.WeekEnd(start)), weekly.Calories)
			fmt.Fprintln(out, "DATE\tDAY\tTARGET\tWEEKEND")
			for i := 0; i < 7; i++ {
				d := start.AddDate(0, 0, i)
				target := base
				weekend := nutrition.IsWeekend(p, d)
				if weekend {
					target += weekly.WeekendBonusCalories
				}
				fmt.Fprintf(out, "%s\t%s\t%d\t%t\n", dates.Format(d), d.Weekday().String()[:3], target, weekend)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&dateStr, "date", "", "Any date of the week (YYYY-MM-DD), defaults to today")
	return cmd
}
