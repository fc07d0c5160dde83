package reports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fdg312/cut-sprint/internal/blob"
	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrInvalidFormat  = errors.New("invalid format")
	ErrInvalidDate    = errors.New("invalid date format")
	ErrFutureWeek     = errors.New("week_start is in the future")
	ErrReportNotFound = errors.New("report not found")
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service handles reports business logic
type Service struct {
	reports    storage.ReportsStorage
	generator  *Generator
	blobStore  blob.Store
	presignTTL int
	now        func() time.Time
}

func NewService(reports storage.ReportsStorage, generator *Generator, blobStore blob.Store, presignTTL int) *Service {
	return &Service{
		reports:    reports,
		generator:  generator,
		blobStore:  blobStore,
		presignTTL: presignTTL,
		now:        time.Now,
	}
}

// SetClock overrides the wall clock (tests).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateReport рендерит отчёт за неделю, кладёт файл в blob store и сохраняет метаданные.
func (s *Service) CreateReport(ctx context.Context, userID string, req CreateReportRequest) (*storage.ReportMeta, error) {
	if req.Format != FormatPDF && req.Format != FormatCSV {
		return nil, ErrInvalidFormat
	}

	currentWeek := dates.WeekStart(s.now())
	day, err := dates.ParseOr(req.WeekStart, currentWeek)
	if err != nil {
		return nil, ErrInvalidDate
	}
	weekStart := dates.WeekStart(day)
	if weekStart.After(currentWeek) {
		return nil, ErrFutureWeek
	}

	data, err := s.generator.Collect(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	payload, err := s.generator.Render(data, req.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	id := uuid.New()
	objectKey := fmt.Sprintf("reports/%s/%s_%s.%s", userID, dates.Format(weekStart), id.String(), req.Format)
	size, err := s.blobStore.PutObject(ctx, objectKey, payload, contentTypeFor(req.Format))
	if err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	meta := &storage.ReportMeta{
		ID:        id,
		UserID:    userID,
		Format:    req.Format,
		WeekStart: weekStart,
		ObjectKey: objectKey,
		SizeBytes: size,
		Status:    StatusReady,
	}
	if err := s.reports.CreateReport(ctx, meta); err != nil {
		if delErr := s.blobStore.DeleteObject(ctx, objectKey); delErr != nil {
			log.Printf("WARN reports: orphaned object %s: %v", objectKey, delErr)
		}
		return nil, fmt.Errorf("failed to save report metadata: %w", err)
	}

	log.Printf("INFO reports: created %s report %s for user %s week %s", req.Format, id, userID, dates.Format(weekStart))
	return meta, nil
}

// GetReport returns ErrReportNotFound for reports of other users.
func (s *Service) GetReport(ctx context.Context, userID string, id uuid.UUID) (*storage.ReportMeta, error) {
	meta, err := s.reports.GetReport(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if meta.UserID != userID {
		return nil, ErrReportNotFound
	}
	return meta, nil
}

func (s *Service) ListReports(ctx context.Context, userID string, limit, offset int) ([]storage.ReportMeta, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.reports.ListReports(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return list, nil
}

func (s *Service) DeleteReport(ctx context.Context, userID string, id uuid.UUID) error {
	meta, err := s.GetReport(ctx, userID, id)
	if err != nil {
		return err
	}

	// удаление метаданных важнее, чем удаление файла
	if err := s.blobStore.DeleteObject(ctx, meta.ObjectKey); err != nil {
		log.Printf("WARN reports: failed to delete object %s: %v", meta.ObjectKey, err)
	}

	if err := s.reports.DeleteReport(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrReportNotFound
		}
		return fmt.Errorf("failed to delete report metadata: %w", err)
	}
	return nil
}

// Download отдаёт либо ссылку (S3 presign), либо сами байты (local).
type Download struct {
	RedirectURL string
	Data        []byte
	ContentType string
	Filename    string
}

func (s *Service) Download(ctx context.Context, userID string, id uuid.UUID) (*Download, error) {
	meta, err := s.GetReport(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	d := &Download{
		ContentType: contentTypeFor(meta.Format),
		Filename:    fmt.Sprintf("cut-sprint_%s.%s", dates.Format(meta.WeekStart), meta.Format),
	}

	url, err := s.blobStore.PresignGet(ctx, meta.ObjectKey, s.presignTTL)
	if err == nil {
		d.RedirectURL = url
		return d, nil
	}
	if !errors.Is(err, blob.ErrPresignUnsupported) {
		return nil, fmt.Errorf("failed to presign report: %w", err)
	}

	data, err := s.blobStore.GetObject(ctx, meta.ObjectKey)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	d.Data = data
	return d, nil
}

func toDTO(meta storage.ReportMeta, baseURL string) ReportDTO {
	return ReportDTO{
		ID:          meta.ID,
		Format:      meta.Format,
		WeekStart:   dates.Format(meta.WeekStart),
		WeekEnd:     dates.Format(dates.WeekEnd(meta.WeekStart)),
		DownloadURL: fmt.Sprintf("%s/v1/reports/%s/download", baseURL, meta.ID),
		SizeBytes:   meta.SizeBytes,
		Status:      meta.Status,
		CreatedAt:   meta.CreatedAt,
	}
}
