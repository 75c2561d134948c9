package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"formulahub-backend/application/ports"
	"formulahub-backend/domain/catalog"
)

// MetricsService records interaction events. A rejected duplicate is a
// normal outcome: the caller learns it via the recorded flag and still
// finishes its own work (cookie issuance in particular) either way.
type MetricsService struct {
	events ports.EventStore
	logger *zap.Logger
	now    func() time.Time
}

// NewMetricsService creates a new metrics service
func NewMetricsService(events ports.EventStore, logger *zap.Logger) *MetricsService {
	return &MetricsService{
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RecordCopy records a formula copy for a session. The returned flag is
// false when the event was dropped by the rate limiter.
func (s *MetricsService) RecordCopy(ctx context.Context, formulaID, sessionID string) (bool, error) {
	recorded, err := s.events.RecordEvent(ctx, catalog.EventKindCopy, formulaID, sessionID, s.now())
	if err != nil {
		return false, err
	}
	if !recorded {
		s.logger.Debug("Copy event rate limited",
			zap.String("formulaID", formulaID),
		)
	}
	return recorded, nil
}

// RecordClick records a card click for a session, on the same
// rate-limited path as copies.
func (s *MetricsService) RecordClick(ctx context.Context, cardID, sessionID string) (bool, error) {
	recorded, err := s.events.RecordEvent(ctx, catalog.EventKindClick, cardID, sessionID, s.now())
	if err != nil {
		return false, err
	}
	if !recorded {
		s.logger.Debug("Click event rate limited",
			zap.String("cardID", cardID),
		)
	}
	return recorded, nil
}
