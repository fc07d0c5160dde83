package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/fdg312/cut-sprint/internal/storage"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Service связывает квоту, анализатор и историю анализов.
type Service struct {
	gate          *Gate
	analyzer      *Analyzer
	analyses      storage.MealAnalysesStorage
	defaultRegion string
}

func NewService(gate *Gate, analyzer *Analyzer, analyses storage.MealAnalysesStorage, defaultRegion string) *Service {
	return &Service{
		gate:          gate,
		analyzer:      analyzer,
		analyses:      analyses,
		defaultRegion: defaultRegion,
	}
}

// AnalyzeMeal reserves a quota slot, analyzes the text and stores the result.
// A quota refusal is returned as *QuotaExceededError before any upstream call.
func (s *Service) AnalyzeMeal(ctx context.Context, userID string, req AnalyzeRequest) (*AnalysisResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if _, err := s.gate.CheckAndReserve(ctx, userID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Text)
	region := strings.TrimSpace(req.Region)
	if region == "" {
		region = s.defaultRegion
	}

	result := s.analyzer.Analyze(ctx, text, region)

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}
	record := &storage.MealAnalysis{
		UserID:     userID,
		InputText:  text,
		Region:     region,
		ResultType: result.Type,
		Result:     payload,
		Source:     result.Source,
	}
	if err := s.analyses.SaveAnalysis(ctx, record); err != nil {
		log.Printf("WARN analysis: failed to save analysis for user %s: %v", userID, err)
	}

	return &result, nil
}

func (s *Service) Usage(ctx context.Context, userID string) (*UsageResponse, error) {
	return s.gate.Usage(ctx, userID)
}

// History returns the newest analyses first.
func (s *Service) History(ctx context.Context, userID string, limit int) (*HistoryResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := s.analyses.ListAnalyses(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	resp := &HistoryResponse{Analyses: make([]HistoryEntry, 0, len(rows))}
	for _, a := range rows {
		resp.Analyses = append(resp.Analyses, analysisToEntry(a))
	}
	return resp, nil
}
