package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"formulahub-backend/application/ports"
	"formulahub-backend/domain/catalog"
	"formulahub-backend/domain/trending"
)

// ScoredFormula pairs a formula with its trending score. The score is
// internal; response shaping in the handlers drops it.
type ScoredFormula struct {
	Formula catalog.Formula
	Score   float64
}

// TrendingService produces the ranked trending listing. It assembles the
// candidate snapshot and window events from storage and hands both to
// the pure ranking engine.
type TrendingService struct {
	formulas ports.FormulaRepository
	events   ports.EventStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewTrendingService creates a new trending service
func NewTrendingService(formulas ports.FormulaRepository, events ports.EventStore, logger *zap.Logger) *TrendingService {
	return &TrendingService{
		formulas: formulas,
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetTrending returns the requested page of formulas ranked by trending
// score, optionally restricted to categories. Reads only; safe to run
// concurrently with event recording.
func (s *TrendingService) GetTrending(ctx context.Context, categoryIDs []int64, page, pageSize int) ([]ScoredFormula, error) {
	now := s.now()

	var (
		formulas []catalog.Formula
		err      error
	)
	if len(categoryIDs) == 0 {
		formulas, err = s.formulas.List(ctx)
	} else {
		formulas, err = s.formulas.ListByCategories(ctx, categoryIDs)
	}
	if err != nil {
		return nil, err
	}

	candidates := make([]trending.Candidate, 0, len(formulas))
	ids := make([]string, 0, len(formulas))
	byID := make(map[string]catalog.Formula, len(formulas))
	for _, f := range formulas {
		candidates = append(candidates, trending.Candidate{
			ID:          f.ID,
			TotalEvents: f.TotalCopies,
			LastEventAt: f.LastCopiedAt,
			CreatedAt:   f.CreatedAt,
		})
		ids = append(ids, f.ID)
		byID[f.ID] = f
	}

	var events map[string][]time.Time
	if len(ids) > 0 {
		events, err = s.events.EventsSince(ctx, catalog.EventKindCopy, ids, trending.LookbackStart(now))
		if err != nil {
			return nil, err
		}
	}

	ranked, err := trending.Rank(candidates, events, now, page, pageSize)
	if err != nil {
		return nil, err
	}

	out := make([]ScoredFormula, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, ScoredFormula{Formula: byID[r.ID], Score: r.Score})
	}
	return out, nil
}
