package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/plenary-api/internal/models"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

type proposalRecordStore interface {
	Append(ctx context.Context, rec models.Record) error
	UpdateByID(ctx context.Context, rec models.Record) error
	DeleteByID(ctx context.Context, id string) error
}

// ProposalService manages registered proposals. Editing a proposal never
// touches its tally: outcomes belong to the round that produced them.
type ProposalService struct {
	repo      proposalRecordStore
	state     *StateService
	validator *validator.Validate
	logger    *zap.Logger
}

func NewProposalService(repo proposalRecordStore, state *StateService, validate *validator.Validate, logger *zap.Logger) *ProposalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProposalService{repo: repo, state: state, validator: validate, logger: logger}
}

// List returns all registered proposals sorted by axis then title.
func (s *ProposalService) List(ctx context.Context) []models.Proposal {
	state := s.state.Current()
	out := make([]models.Proposal, len(state.Proposals))
	copy(out, state.Proposals)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := strings.ToLower(out[i].Axis), strings.ToLower(out[j].Axis)
		if ai != aj {
			return ai < aj
		}
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out
}

// Get returns one proposal by id.
func (s *ProposalService) Get(ctx context.Context, id string) (*models.Proposal, error) {
	state := s.state.Current()
	p := state.FindProposal(id)
	if p == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found")
	}
	out := *p
	return &out, nil
}

// Create registers a new proposal in PENDING state.
func (s *ProposalService) Create(ctx context.Context, req *models.ProposalRequest) (*models.Proposal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid proposal")
	}

	now := time.Now().UTC()
	p := models.Proposal{
		Meta: models.Meta{
			ID:         uuid.NewString(),
			Kind:       models.KindProposal,
			RecordedAt: now,
		},
		Title:        strings.TrimSpace(req.Title),
		Axis:         strings.TrimSpace(req.Axis),
		Scope:        strings.TrimSpace(req.Scope),
		Region:       strings.TrimSpace(req.Region),
		Municipality: strings.TrimSpace(req.Municipality),
		Description:  strings.TrimSpace(req.Description),
		CreatedAt:    now,
		Status:       models.ProposalPending,
	}

	if err := s.repo.Append(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update rewrites the descriptive fields of a proposal, preserving its
// status, tally and classification.
func (s *ProposalService) Update(ctx context.Context, id string, req *models.ProposalRequest) (*models.Proposal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid proposal")
	}

	state := s.state.Current()
	existing := state.FindProposal(id)
	if existing == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found")
	}

	updated := *existing
	updated.Title = strings.TrimSpace(req.Title)
	updated.Axis = strings.TrimSpace(req.Axis)
	updated.Scope = strings.TrimSpace(req.Scope)
	updated.Region = strings.TrimSpace(req.Region)
	updated.Municipality = strings.TrimSpace(req.Municipality)
	updated.Description = strings.TrimSpace(req.Description)

	if err := s.repo.UpdateByID(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a registered proposal. The active pointer keeps its cached
// text, so an in-flight voting screen does not go blank.
func (s *ProposalService) Delete(ctx context.Context, id string) error {
	state := s.state.Current()
	if state.FindProposal(id) == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "proposal not found")
	}
	if state.Status == models.StatusStarted && state.ActivePointer != nil && state.ActivePointer.ProposalID == id {
		return appErrors.Clone(appErrors.ErrVotingInProgress, "cannot delete the proposal currently being voted")
	}
	return s.repo.DeleteByID(ctx, id)
}
