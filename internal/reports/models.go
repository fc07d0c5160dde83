package reports

import (
	"time"

	"github.com/google/uuid"
)

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"

	StatusReady  = "ready"
	StatusFailed = "failed"
)

// CreateReportRequest тело POST /v1/reports.
// week_start пустой = текущая неделя; любая дата выравнивается на понедельник.
type CreateReportRequest struct {
	WeekStart string `json:"week_start"`
	Format    string `json:"format"`
}

// ReportDTO is the response representation of a report
type ReportDTO struct {
	ID          uuid.UUID `json:"id"`
	Format      string    `json:"format"`
	WeekStart   string    `json:"week_start"`
	WeekEnd     string    `json:"week_end"`
	DownloadURL string    `json:"download_url"`
	SizeBytes   int64     `json:"size_bytes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReportsResponse is the list response
type ReportsResponse struct {
	Reports []ReportDTO `json:"reports"`
}

// DayRow одна строка таблицы отчёта
type DayRow struct {
	Date      time.Time
	MealCount int
	Calories  int
	ProteinG  float64
	FatG      float64
	CarbsG    float64
	WeightKg  *float64
}

// WeekData всё, что попадает в отчёт за неделю
type WeekData struct {
	WeekStart      time.Time
	WeekEnd        time.Time
	TargetCalories int
	ActualCalories int
	Deficit        int
	ProgressPct    int
	WeightStart    float64
	WeightEnd      float64
	WeightLoss     float64
	TargetLoss     float64
	Days           []DayRow
}

func contentTypeFor(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/pdf"
}
