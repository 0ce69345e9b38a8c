package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/plenary-api/internal/models"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

type voteRecordStore interface {
	Append(ctx context.Context, rec models.Record) error
	HasVote(ctx context.Context, voterID, proposalID string) (bool, error)
}

// VoteService enforces the vote-eligibility rules and constructs ballots.
// Rejections always carry a specific reason so voters never see a generic
// failure.
type VoteService struct {
	repo      voteRecordStore
	state     *StateService
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewVoteService constructs the service.
func NewVoteService(repo voteRecordStore, state *StateService, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *VoteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoteService{repo: repo, state: state, validator: validate, metrics: metrics, logger: logger}
}

// Cast validates eligibility in order and appends the ballot. The checks
// run in a fixed sequence: session, open round, idempotence, axis gating.
func (s *VoteService) Cast(ctx context.Context, claims *models.SessionClaims, req models.CastVoteRequest) (*models.CastVoteResponse, error) {
	if claims == nil || claims.VoterID() == "" {
		return nil, s.reject(appErrors.ErrUnauthorized)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ballot payload")
	}

	state := s.state.Current()
	if state.ActiveProposal == nil {
		return nil, s.reject(appErrors.ErrNoActiveProposal)
	}
	if state.Status != models.StatusStarted {
		return nil, s.reject(appErrors.ErrVotingClosed)
	}

	// At-most-one ballot per (voter, proposal). Checked against storage so
	// the rule sees this process's own appends even mid-refresh.
	voted, err := s.repo.HasVote(ctx, claims.VoterID(), state.ActiveProposal.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing ballot")
	}
	if voted {
		return nil, s.reject(appErrors.ErrAlreadyVoted)
	}

	if !Eligible(state.Phase, claims.Axis, state.ActiveProposal.Axis) {
		return nil, s.reject(appErrors.ErrNotEligible)
	}

	deviceToken := strings.TrimSpace(req.DeviceToken)
	if deviceToken == "" {
		deviceToken = uuid.NewString()
	}

	now := time.Now().UTC()
	vote := models.Vote{
		Meta: models.Meta{
			ID:         uuid.NewString(),
			Kind:       models.KindVote,
			RecordedAt: now,
		},
		VoterID:     claims.VoterID(),
		ProposalID:  state.ActiveProposal.ID,
		Choice:      req.Choice,
		DeviceToken: deviceToken,
	}

	if err := s.repo.Append(ctx, vote); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist ballot")
	}

	if s.metrics != nil {
		s.metrics.RecordVoteCast(vote.Choice)
	}
	s.logger.Info("ballot cast",
		zap.String("proposal_id", vote.ProposalID),
		zap.String("choice", string(vote.Choice)))

	return &models.CastVoteResponse{VoteID: vote.ID, Choice: vote.Choice, DeviceToken: deviceToken}, nil
}

func (s *VoteService) reject(err *appErrors.Error) error {
	if s.metrics != nil {
		s.metrics.RecordVoteRejected(err.Code)
	}
	return err
}

// Eligible decides whether a voter with the given axis may vote on a
// proposal with the given axis under the current phase. The final plenary
// is open to everyone; axis rounds require both axes present and equal
// after trimming and case folding. Missing axis data never grants access.
func Eligible(phase models.Phase, voterAxis, proposalAxis string) bool {
	if phase == models.PhaseFinal {
		return true
	}
	va := strings.ToLower(strings.TrimSpace(voterAxis))
	pa := strings.ToLower(strings.TrimSpace(proposalAxis))
	return va != "" && pa != "" && va == pa
}
