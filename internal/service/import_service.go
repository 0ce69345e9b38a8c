package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/plenary-api/internal/models"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

type importRecordStore interface {
	Append(ctx context.Context, rec models.Record) error
}

type sheetFetcher interface {
	FetchRows(ctx context.Context, sheetURL, sheetName string) ([][]string, error)
}

// ImportSummary reports what a proposal import did.
type ImportSummary struct {
	Fetched  int `json:"fetched"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportService pulls proposals from the configured spreadsheet. Rows whose
// title matches an already registered proposal are skipped, so re-running an
// import is safe.
type ImportService struct {
	repo   importRecordStore
	state  *StateService
	roster sheetFetcher
	logger *zap.Logger

	// seq serialises imports: a fetch started before a newer one finished
	// must not write its stale rows.
	mu  sync.Mutex
	seq uint64
}

func NewImportService(repo importRecordStore, state *StateService, roster sheetFetcher, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{repo: repo, state: state, roster: roster, logger: logger}
}

// Run fetches the configured sheet and registers one proposal per row.
func (s *ImportService) Run(ctx context.Context) (*ImportSummary, error) {
	state := s.state.Current()
	cfg := state.ImportConfig
	if cfg == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "proposal import source is not configured")
	}

	s.mu.Lock()
	s.seq++
	mySeq := s.seq
	s.mu.Unlock()

	rows, err := s.roster.FetchRows(ctx, cfg.SheetURL, cfg.SheetName)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != mySeq {
		s.logger.Warn("discarding stale proposal import", zap.Uint64("seq", mySeq))
		return nil, appErrors.Clone(appErrors.ErrConflict, "a newer import superseded this one")
	}

	titleIdx := columnIndex(cfg.Columns.Title)
	axisIdx := columnIndex(cfg.Columns.Axis)
	if titleIdx < 0 || axisIdx < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "import column mapping is invalid")
	}

	existing := make(map[string]bool, len(state.Proposals))
	for _, p := range state.Proposals {
		existing[importKey(p.Title, p.Axis)] = true
	}

	summary := &ImportSummary{Fetched: len(rows)}
	now := time.Now().UTC()
	for i, row := range rows {
		title := cell(row, titleIdx)
		axis := cell(row, axisIdx)
		if title == "" {
			summary.Skipped++
			continue
		}
		key := importKey(title, axis)
		if existing[key] {
			summary.Skipped++
			continue
		}
		existing[key] = true

		p := models.Proposal{
			Meta: models.Meta{
				ID:   uuid.NewString(),
				Kind: models.KindProposal,
				// Offset keeps imported rows in sheet order under the
				// projection's chronological sort.
				RecordedAt: now.Add(time.Duration(i) * time.Millisecond),
			},
			Title:        title,
			Axis:         axis,
			Scope:        cell(row, columnIndex(cfg.Columns.Scope)),
			Region:       cell(row, columnIndex(cfg.Columns.Region)),
			Municipality: cell(row, columnIndex(cfg.Columns.Municipality)),
			Description:  cell(row, columnIndex(cfg.Columns.Description)),
			CreatedAt:    now,
			Status:       models.ProposalPending,
		}
		p.CreatedAt = p.RecordedAt

		if err := s.repo.Append(ctx, &p); err != nil {
			return summary, err
		}
		summary.Imported++
	}

	return summary, nil
}

func importKey(title, axis string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "\x00" + strings.ToLower(strings.TrimSpace(axis))
}
