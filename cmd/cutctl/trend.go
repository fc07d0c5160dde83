package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/trends"
	"github.com/spf13/cobra"
)

func newTrendCmd() *cobra.Command {
	var weeks int

	cmd := &cobra.Command{
		Use:   "trend DATE=KG [DATE=KG...]",
		Short: "Classify a weight series and predict the next weeks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := parsePoints(args)
			if err != nil {
				return err
			}
			if weeks < 0 || weeks > 12 {
				return fmt.Errorf("--weeks must be in 0..12")
			}

			series := make([]float64, len(points))
			for i, p := range points {
				series[i] = p.Value
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Trend: %s\n", trends.ClassifyTrend(series, trends.AbsoluteThreshold(trends.WeightTrendKg)))
			if change := trends.WeightChange(points, points[0].Date, points[len(points)-1].Date); change != nil {
				fmt.Fprintf(out, "Change: %+g kg (%+g%%)\n", change.Change, change.ChangePercent)
			}

			for _, s := range trends.PairwiseTrend(points) {
				fmt.Fprintf(out, "%s\t%g\t%+g\t%s\n", dates.Format(s.Date), s.Value, s.Change, s.Movement)
			}
			for _, p := range trends.Predict(points, weeks) {
				fmt.Fprintf(out, "predict %s\t%g\t%s\n", dates.Format(p.Date), p.PredictedValue, p.Confidence)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&weeks, "weeks", 4, "Weeks to predict (0..12)")
	return cmd
}

// parsePoints разбирает аргументы вида 2026-02-09=80.4 и сортирует их по дате.
func parsePoints(args []string) ([]trends.Point, error) {
	points := make([]trends.Point, 0, len(args))
	for _, arg := range args {
		dateStr, valueStr, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid sample %q, expected DATE=KG", arg)
		}
		date, err := dates.Parse(dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid date in %q: %w", arg, err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
		if err != nil || value <= 0 {
			return nil, fmt.Errorf("invalid weight in %q", arg)
		}
		points = append(points, trends.Point{Date: date, Value: value})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points, nil
}
