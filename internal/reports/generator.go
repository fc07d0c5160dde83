package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/fdg312/cut-sprint/internal/budgets"
	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/fdg312/cut-sprint/internal/trends"
	"github.com/jung-kurt/gofpdf"
)

// ProgressSource is satisfied by *budgets.Engine.
type ProgressSource interface {
	WeeklyProgress(ctx context.Context, userID string, start *time.Time) (*budgets.WeeklyProgress, error)
}

// Generator generates PDF/CSV reports
type Generator struct {
	progress ProgressSource
	meals    storage.MealsStorage
	weights  storage.WeightsStorage
}

func NewGenerator(progress ProgressSource, meals storage.MealsStorage, weights storage.WeightsStorage) *Generator {
	return &Generator{progress: progress, meals: meals, weights: weights}
}

// Collect собирает бюджет, приёмы пищи и взвешивания недели weekStart (понедельник).
func (g *Generator) Collect(ctx context.Context, userID string, weekStart time.Time) (*WeekData, error) {
	progress, err := g.progress.WeeklyProgress(ctx, userID, &weekStart)
	if err != nil {
		return nil, err
	}
	weekEnd := dates.WeekEnd(weekStart)

	meals, err := g.meals.ListMeals(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	samples, err := g.weights.ListWeights(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list weights: %w", err)
	}

	data := &WeekData{
		WeekStart:      weekStart,
		WeekEnd:        weekEnd,
		TargetCalories: progress.TargetCalories,
		ActualCalories: progress.ActualCalories,
		Deficit:        progress.Deficit,
		ProgressPct:    progress.ProgressPercentage,
		WeightStart:    progress.WeightStart,
		WeightEnd:      progress.WeightEnd,
		WeightLoss:     progress.WeightLoss,
		TargetLoss:     progress.TargetLoss,
		Days:           make([]DayRow, 7),
	}
	for i := range data.Days {
		data.Days[i].Date = weekStart.AddDate(0, 0, i)
	}

	for _, m := range meals {
		i := dates.DaysBetween(weekStart, m.Date)
		if i < 0 || i > 6 {
			continue
		}
		row := &data.Days[i]
		row.MealCount++
		row.Calories += m.TotalCalories
		row.ProteinG = trends.Round2(row.ProteinG + m.TotalProtein)
		row.FatG = trends.Round2(row.FatG + m.TotalFat)
		row.CarbsG = trends.Round2(row.CarbsG + m.TotalCarbs)
	}
	// samples отсортированы по дате: последнее взвешивание дня побеждает
	for _, s := range samples {
		i := dates.DaysBetween(weekStart, s.Date)
		if i < 0 || i > 6 {
			continue
		}
		v := s.ValueKg
		data.Days[i].WeightKg = &v
	}

	return data, nil
}

// Render returns the report bytes in the requested format.
func (g *Generator) Render(data *WeekData, format string) ([]byte, error) {
	switch format {
	case FormatPDF:
		return renderPDF(data)
	case FormatCSV:
		return renderCSV(data)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

var csvHeader = []string{"date", "meals", "calories", "protein_g", "fat_g", "carbs_g", "weight_kg"}

func renderCSV(data *WeekData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, d := range data.Days {
		row := []string{
			dates.Format(d.Date),
			strconv.Itoa(d.MealCount),
			strconv.Itoa(d.Calories),
			formatFloat(d.ProteinG),
			formatFloat(d.FatG),
			formatFloat(d.CarbsG),
			formatWeight(d.WeightKg),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	total := []string{"total", "", strconv.Itoa(data.ActualCalories), "", "", "", ""}
	if err := w.Write(total); err != nil {
		return nil, err
	}
	target := []string{"target", "", strconv.Itoa(data.TargetCalories), "", "", "", ""}
	if err := w.Write(target); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderPDF uses the core Helvetica font, so every label is ASCII.
func renderPDF(data *WeekData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Cut Sprint weekly report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Cut Sprint weekly report")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Week: %s - %s", dates.Format(data.WeekStart), dates.Format(data.WeekEnd)))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		fmt.Sprintf("Target calories: %d kcal", data.TargetCalories),
		fmt.Sprintf("Eaten: %d kcal (%d%%)", data.ActualCalories, data.ProgressPct),
		fmt.Sprintf("Remaining: %d kcal", data.Deficit),
		fmt.Sprintf("Weight: %s -> %s kg", formatFloat(data.WeightStart), formatFloat(data.WeightEnd)),
		fmt.Sprintf("Weight loss: %s kg (target %s kg)", formatFloat(data.WeightLoss), formatFloat(data.TargetLoss)),
	}
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Days")
	pdf.Ln(8)
	drawDaysTable(pdf, data.Days)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawDaysTable(pdf *gofpdf.Fpdf, days []DayRow) {
	widths := []float64{28, 16, 22, 22, 22, 22, 22}
	header := []string{"Date", "Meals", "Kcal", "Protein", "Fat", "Carbs", "Weight"}

	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range header {
		ln := 0
		if i == len(header)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 6, h, "1", ln, "C", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, d := range days {
		cells := []string{
			dates.Format(d.Date),
			strconv.Itoa(d.MealCount),
			strconv.Itoa(d.Calories),
			formatFloat(d.ProteinG),
			formatFloat(d.FatG),
			formatFloat(d.CarbsG),
			formatWeight(d.WeightKg),
		}
		for i, c := range cells {
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			if c == "" {
				c = "-"
			}
			pdf.CellFormat(widths[i], 6, c, "1", ln, "C", false, 0, "")
		}
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatWeight(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
