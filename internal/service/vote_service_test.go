package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/plenary-api/internal/models"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

type voteStoreStub struct {
	appended []models.Record
	hasVote  bool
	hasErr   error
}

func (s *voteStoreStub) Append(ctx context.Context, rec models.Record) error {
	s.appended = append(s.appended, rec)
	return nil
}

func (s *voteStoreStub) HasVote(ctx context.Context, voterID, proposalID string) (bool, error) {
	return s.hasVote, s.hasErr
}

func voterClaims(name, axis string) *models.SessionClaims {
	return &models.SessionClaims{Role: models.RoleVoter, DisplayName: name, Axis: axis}
}

// startedVotingState projects a running round on a health-axis proposal.
func startedVotingState(t *testing.T, phase models.Phase) *StateService {
	t.Helper()
	started := projBase
	ph := phase
	open := controlAt("c1", models.StatusStarted, projBase.Add(time.Minute), &ph)
	open.StartedAt = &started
	return newStateServiceWith(t,
		proposalAt("p1", "Water access", "Health", projBase),
		pointerAt("a1", "p1", "Water access", projBase.Add(30*time.Second)),
		open,
	)
}

func TestVoteCastHappyPath(t *testing.T) {
	store := &voteStoreStub{}
	svc := NewVoteService(store, startedVotingState(t, models.PhaseAxes), nil, nil, nil)

	res, err := svc.Cast(context.Background(), voterClaims("Alice", "Health"), models.CastVoteRequest{Choice: models.ChoiceYes})
	require.NoError(t, err)
	require.Len(t, store.appended, 1)

	vote := store.appended[0].(models.Vote)
	assert.Equal(t, "Alice", vote.VoterID)
	assert.Equal(t, "p1", vote.ProposalID)
	assert.Equal(t, models.ChoiceYes, vote.Choice)
	assert.NotEmpty(t, vote.DeviceToken, "a device token is minted when the client sends none")
	assert.Equal(t, vote.ID, res.VoteID)
	assert.Equal(t, vote.DeviceToken, res.DeviceToken)
}

func TestVoteCastEchoesDeviceToken(t *testing.T) {
	store := &voteStoreStub{}
	svc := NewVoteService(store, startedVotingState(t, models.PhaseAxes), nil, nil, nil)

	res, err := svc.Cast(context.Background(), voterClaims("Alice", "health"), models.CastVoteRequest{
		Choice:      models.ChoiceNo,
		DeviceToken: "device-42",
	})
	require.NoError(t, err)
	assert.Equal(t, "device-42", res.DeviceToken)
}

func TestVoteCastRequiresSession(t *testing.T) {
	svc := NewVoteService(&voteStoreStub{}, startedVotingState(t, models.PhaseAxes), nil, nil, nil)

	_, err := svc.Cast(context.Background(), nil, models.CastVoteRequest{Choice: models.ChoiceYes})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestVoteCastRejectsInvalidChoice(t *testing.T) {
	svc := NewVoteService(&voteStoreStub{}, startedVotingState(t, models.PhaseAxes), nil, nil, nil)

	_, err := svc.Cast(context.Background(), voterClaims("Alice", "Health"), models.CastVoteRequest{Choice: "MAYBE"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestVoteCastNoActiveProposal(t *testing.T) {
	started := projBase
	open := controlAt("c1", models.StatusStarted, projBase, nil)
	open.StartedAt = &started
	svc := NewVoteService(&voteStoreStub{}, newStateServiceWith(t, open), nil, nil, nil)

	_, err := svc.Cast(context.Background(), voterClaims("Alice", "Health"), models.CastVoteRequest{Choice: models.ChoiceYes})
	assert.ErrorIs(t, err, appErrors.ErrNoActiveProposal)
}

func TestVoteCastClosedRound(t *testing.T) {
	state := newStateServiceWith(t,
		proposalAt("p1", "Water access", "Health", projBase),
		pointerAt("a1", "p1", "Water access", projBase.Add(time.Second)),
		controlAt("c1", models.StatusClosed, projBase.Add(time.Minute), nil),
	)
	svc := NewVoteService(&voteStoreStub{}, state, nil, nil, nil)

	_, err := svc.Cast(context.Background(), voterClaims("Alice", "Health"), models.CastVoteRequest{Choice: models.ChoiceYes})
	assert.ErrorIs(t, err, appErrors.ErrVotingClosed)
}

func TestVoteCastAlreadyVoted(t *testing.T) {
	store := &voteStoreStub{hasVote: true}
	svc := NewVoteService(store, startedVotingState(t, models.PhaseAxes), nil, nil, nil)

	_, err := svc.Cast(context.Background(), voterClaims("Alice", "Health"), models.CastVoteRequest{Choice: models.ChoiceYes})
	assert.ErrorIs(t, err, appErrors.ErrAlreadyVoted)
	assert.Empty(t, store.appended)
}

func TestVoteCastHasVoteFailure(t *testing.T) {
	store := &voteStoreStub{hasErr: errors.New("db down")}
	svc := NewVoteService(store, startedVotingState(t, models.PhaseAxes), nil, nil, nil)

	_, err := svc.Cast(context.Background(), voterClaims("Alice", "Health"), models.CastVoteRequest{Choice: models.ChoiceYes})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestVoteCastAxisGating(t *testing.T) {
	store := &voteStoreStub{}
	svc := NewVoteService(store, startedVotingState(t, models.PhaseAxes), nil, nil, nil)

	_, err := svc.Cast(context.Background(), voterClaims("Bob", "Education"), models.CastVoteRequest{Choice: models.ChoiceYes})
	assert.ErrorIs(t, err, appErrors.ErrNotEligible)
	assert.Empty(t, store.appended)
}

func TestVoteCastFinalPhaseOpenToAll(t *testing.T) {
	store := &voteStoreStub{}
	svc := NewVoteService(store, startedVotingState(t, models.PhaseFinal), nil, nil, nil)

	_, err := svc.Cast(context.Background(), voterClaims("Bob", "Education"), models.CastVoteRequest{Choice: models.ChoiceAbstain})
	require.NoError(t, err)
	assert.Len(t, store.appended, 1)
}

func TestEligible(t *testing.T) {
	cases := []struct {
		name         string
		phase        models.Phase
		voterAxis    string
		proposalAxis string
		want         bool
	}{
		{"final open to all", models.PhaseFinal, "", "Health", true},
		{"axes exact match", models.PhaseAxes, "Health", "Health", true},
		{"axes case insensitive", models.PhaseAxes, "health", "HEALTH", true},
		{"axes trims whitespace", models.PhaseAxes, " Health ", "Health", true},
		{"axes mismatch", models.PhaseAxes, "Education", "Health", false},
		{"axes empty voter axis", models.PhaseAxes, "", "Health", false},
		{"axes empty proposal axis", models.PhaseAxes, "Health", "", false},
		{"axes both empty", models.PhaseAxes, "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Eligible(tc.phase, tc.voterAxis, tc.proposalAxis))
		})
	}
}
