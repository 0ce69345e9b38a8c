package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/plenary-api/internal/models"
)

type stateRecordLoader interface {
	LoadAll(ctx context.Context) ([]models.StoredRecord, error)
}

// StateService holds the current projection and refreshes it on every
// change-feed notification. A failed refresh keeps the previous state in
// place: a partial or corrupt log is recovered by fixing the bad input, not
// by discarding history.
type StateService struct {
	repo    stateRecordLoader
	logger  *zap.Logger
	metrics *MetricsService

	mu    sync.RWMutex
	state models.State
}

// NewStateService constructs the service with the empty-log default state.
func NewStateService(repo stateRecordLoader, metrics *MetricsService, logger *zap.Logger) *StateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		state:   Project(nil),
	}
}

// Current returns the latest projected state.
func (s *StateService) Current() models.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Refresh reloads the log, quarantines invalid records and swaps in a new
// projection.
func (s *StateService) Refresh(ctx context.Context) {
	stored, err := s.repo.LoadAll(ctx)
	if err != nil {
		s.logger.Error("state refresh failed, keeping previous projection", zap.Error(err))
		return
	}

	records := make([]models.Record, 0, len(stored))
	quarantined := 0
	for _, row := range stored {
		rec, err := models.DecodeRecord(row.Payload)
		if err != nil {
			quarantined++
			s.logger.Warn("quarantined corrupt record",
				zap.String("id", row.ID),
				zap.String("kind", string(row.Kind)),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	state := s.project(records)
	if state == nil {
		return
	}

	s.mu.Lock()
	s.state = *state
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordProjectionRefresh(len(records), quarantined)
	}
}

// project shields the caller from a panicking projection; nil means "keep
// the previous state".
func (s *StateService) project(records []models.Record) (state *models.State) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("projection panicked, keeping previous state", zap.Any("panic", r))
			state = nil
		}
	}()
	projected := Project(records)
	return &projected
}
