package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/plenary-api/internal/models"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

type lifecycleRecordStore interface {
	Append(ctx context.Context, rec models.Record) error
	UpdateByID(ctx context.Context, rec models.Record) error
	VotesForProposal(ctx context.Context, proposalID string) ([]models.Vote, error)
	VoteIDsForProposal(ctx context.Context, proposalID string) ([]string, error)
	DeleteManyByIDs(ctx context.Context, ids []string) error
}

// LifecycleService drives the voting-round state machine:
// NOT_STARTED -> STARTED -> CLOSED, with the reset sentinels routing back to
// NOT_STARTED. End-of-round tallying and the per-proposal ballot reset live
// here too.
type LifecycleService struct {
	repo   lifecycleRecordStore
	state  *StateService
	logger *zap.Logger
}

// NewLifecycleService constructs the service.
func NewLifecycleService(repo lifecycleRecordStore, state *StateService, logger *zap.Logger) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{repo: repo, state: state, logger: logger}
}

// Start opens a voting round. Only valid from the not-started state. When a
// proposal is selected, it is marked as in-voting; losing that update is
// recoverable (the close path rewrites the proposal anyway).
func (s *LifecycleService) Start(ctx context.Context) error {
	state := s.state.Current()
	switch state.Status {
	case models.StatusStarted:
		return appErrors.ErrVotingInProgress
	case models.StatusClosed:
		return appErrors.Clone(appErrors.ErrConflict, "round is closed; create a new voting first")
	}

	now := time.Now().UTC()
	phase := state.Phase
	control := models.ControlEvent{
		Meta:      models.Meta{ID: uuid.NewString(), Kind: models.KindControl, RecordedAt: now},
		Status:    models.StatusStarted,
		StartedAt: &now,
		Phase:     &phase,
	}
	if err := s.repo.Append(ctx, control); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open round")
	}

	if state.ActiveProposal != nil {
		proposal := *state.ActiveProposal
		proposal.Status = models.ProposalInVoting
		if err := s.repo.UpdateByID(ctx, proposal); err != nil {
			s.logger.Warn("failed to mark proposal in voting", zap.String("proposal_id", proposal.ID), zap.Error(err))
		}
	}

	s.logger.Info("voting round started", zap.String("phase", string(phase)))
	return nil
}

// End closes the round: tallies the active proposal's ballots, writes the
// outcome onto the proposal, then appends the closing control record. The
// two writes are not atomic; projection tolerates either half on reload.
func (s *LifecycleService) End(ctx context.Context) error {
	state := s.state.Current()
	if state.Status != models.StatusStarted {
		return appErrors.Clone(appErrors.ErrConflict, "no voting round in progress")
	}

	now := time.Now().UTC()

	if state.ActiveProposal != nil {
		votes, err := s.repo.VotesForProposal(ctx, state.ActiveProposal.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ballots")
		}

		tally := models.CountVotes(votes)
		result := tally.Result()

		duration := 0
		if state.StartedAt != nil {
			duration = int(math.Round(now.Sub(*state.StartedAt).Seconds()))
		}

		proposal := *state.ActiveProposal
		proposal.Status = models.ProposalVoted
		proposal.YesVotes = tally.Yes
		proposal.NoVotes = tally.No
		proposal.AbstainVotes = tally.Abstain
		proposal.TotalVotes = tally.Total
		proposal.VotedAt = &now
		proposal.Result = &result
		proposal.DurationSeconds = duration

		if err := s.repo.UpdateByID(ctx, proposal); err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Code == appErrors.ErrNotFound.Code {
				s.logger.Warn("active proposal vanished before tally write", zap.String("proposal_id", proposal.ID))
			} else {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record tally")
			}
		}
	}

	control := models.ControlEvent{
		Meta:      models.Meta{ID: uuid.NewString(), Kind: models.KindControl, RecordedAt: now},
		Status:    models.StatusClosed,
		StartedAt: state.StartedAt,
		EndedAt:   &now,
	}
	if err := s.repo.Append(ctx, control); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close round")
	}

	s.logger.Info("voting round closed")
	return nil
}

// NewVoting resets the display back to not-started without touching vote or
// proposal history. Refused while a round is running so an active tally is
// never silently discarded.
func (s *LifecycleService) NewVoting(ctx context.Context) error {
	state := s.state.Current()
	if state.Status == models.StatusStarted {
		return appErrors.ErrVotingInProgress
	}

	now := time.Now().UTC()
	reset := models.ControlEvent{
		Meta:   models.Meta{ID: uuid.NewString(), Kind: models.KindControl, RecordedAt: now},
		Status: models.StatusReset,
	}
	if err := s.repo.Append(ctx, reset); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset voting")
	}

	created := models.ControlEvent{
		Meta:   models.Meta{ID: uuid.NewString(), Kind: models.KindControl, RecordedAt: now.Add(time.Millisecond)},
		Status: models.StatusNewVotingCreated,
	}
	if err := s.repo.Append(ctx, created); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create new voting")
	}

	s.logger.Info("new voting created")
	return nil
}

// IsSelectable reports whether a proposal may still be put up for voting.
func IsSelectable(p models.Proposal) bool {
	return p.Status != models.ProposalVoted
}

// SelectProposal points the voting screen at a registered proposal and
// caches its display text.
func (s *LifecycleService) SelectProposal(ctx context.Context, proposalID string) error {
	state := s.state.Current()
	proposal := state.FindProposal(proposalID)
	if proposal == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "proposal not found")
	}
	if !IsSelectable(*proposal) {
		return appErrors.ErrProposalFinalized
	}

	pointer := models.ActiveProposal{
		Meta:       models.Meta{ID: uuid.NewString(), Kind: models.KindActiveProposal, RecordedAt: time.Now().UTC()},
		ProposalID: proposal.ID,
		Title:      proposal.Title,
		Axis:       proposal.Axis,
		BodyText:   proposal.Description,
	}
	if err := s.repo.Append(ctx, pointer); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to select proposal")
	}

	s.logger.Info("proposal selected", zap.String("proposal_id", proposal.ID))
	return nil
}

// ChangePhase switches between axis rounds and the final plenary. The
// control record carries the current status and round times forward so only
// the phase changes under projection.
func (s *LifecycleService) ChangePhase(ctx context.Context, phase models.Phase) error {
	state := s.state.Current()

	control := models.ControlEvent{
		Meta:      models.Meta{ID: uuid.NewString(), Kind: models.KindControl, RecordedAt: time.Now().UTC()},
		Status:    state.Status,
		StartedAt: state.StartedAt,
		EndedAt:   state.EndedAt,
		Phase:     &phase,
	}
	if err := s.repo.Append(ctx, control); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change phase")
	}

	s.logger.Info("phase changed", zap.String("phase", string(phase)))
	return nil
}

// ResetProposalVotes deletes one proposal's ballots and zeroes its tally,
// returning it to the pending state. This is the only path that removes
// vote records.
func (s *LifecycleService) ResetProposalVotes(ctx context.Context, proposalID string) error {
	state := s.state.Current()
	proposal := state.FindProposal(proposalID)
	if proposal == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "proposal not found")
	}
	if state.Status == models.StatusStarted && state.ActiveProposal != nil && state.ActiveProposal.ID == proposalID {
		return appErrors.ErrVotingInProgress
	}

	ids, err := s.repo.VoteIDsForProposal(ctx, proposalID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ballots")
	}
	if err := s.repo.DeleteManyByIDs(ctx, ids); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete ballots")
	}

	cleared := *proposal
	cleared.Status = models.ProposalPending
	cleared.YesVotes = 0
	cleared.NoVotes = 0
	cleared.AbstainVotes = 0
	cleared.TotalVotes = 0
	cleared.VotedAt = nil
	cleared.Result = nil
	cleared.DurationSeconds = 0

	if err := s.repo.UpdateByID(ctx, cleared); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear tally")
	}

	s.logger.Info("proposal ballots reset", zap.String("proposal_id", proposalID), zap.Int("deleted", len(ids)))
	return nil
}
