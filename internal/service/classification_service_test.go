package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/plenary-api/internal/models"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

type classificationStoreStub struct {
	appended []models.Record
	updated  []models.Record
	deleted  []string
}

func (s *classificationStoreStub) Append(ctx context.Context, rec models.Record) error {
	s.appended = append(s.appended, rec)
	return nil
}

func (s *classificationStoreStub) UpdateByID(ctx context.Context, rec models.Record) error {
	s.updated = append(s.updated, rec)
	return nil
}

func (s *classificationStoreStub) DeleteByID(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func rule(id string, min, max float64, label string, action models.ClassificationAction, at time.Time) models.ClassificationRule {
	return models.ClassificationRule{
		Meta:       models.Meta{ID: id, Kind: models.KindClassificationRule, RecordedAt: at},
		MinPercent: min,
		MaxPercent: max,
		Label:      label,
		Action:     action,
		Color:      "#00aa00",
	}
}

func votedProposal(id string, yes, no, abstain int, at time.Time) models.Proposal {
	p := proposalAt(id, "Proposal "+id, "Health", at)
	p.Status = models.ProposalVoted
	p.YesVotes = yes
	p.NoVotes = no
	p.AbstainVotes = abstain
	p.TotalVotes = yes + no + abstain
	return p
}

func TestClassificationApplyPromotes(t *testing.T) {
	store := &classificationStoreStub{}
	state := newStateServiceWith(t,
		votedProposal("p1", 8, 2, 0, projBase), // 80% yes
		rule("r1", 70, 100, "Strong support", models.ActionPromoteToFinal, projBase),
	)
	svc := NewClassificationService(store, state, nil, nil)

	summary, err := svc.Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Examined)
	assert.Equal(t, 1, summary.Updated)

	require.Len(t, store.updated, 1)
	p := store.updated[0].(models.Proposal)
	assert.Equal(t, "Strong support", p.ClassificationLabel)
	assert.True(t, p.Promoted)
}

func TestClassificationApplyFirstmatch(t *testing.T) {
	store := &classificationStoreStub{}
	// Overlapping ranges: the first stored rule wins.
	state := newStateServiceWith(t,
		votedProposal("p1", 5, 5, 0, projBase), // 50% yes
		rule("r1", 40, 60, "Divided", models.ActionNone, projBase),
		rule("r2", 0, 100, "Catch all", models.ActionPromoteToFinal, projBase.Add(time.Second)),
	)
	svc := NewClassificationService(store, state, nil, nil)

	_, err := svc.Apply(context.Background())
	require.NoError(t, err)

	require.Len(t, store.updated, 1)
	p := store.updated[0].(models.Proposal)
	assert.Equal(t, "Divided", p.ClassificationLabel)
	assert.False(t, p.Promoted)
}

func TestClassificationApplyInclusiveBounds(t *testing.T) {
	store := &classificationStoreStub{}
	state := newStateServiceWith(t,
		votedProposal("p1", 7, 3, 0, projBase), // exactly 70%
		rule("r1", 70, 100, "Approved band", models.ActionNone, projBase),
	)
	svc := NewClassificationService(store, state, nil, nil)

	summary, err := svc.Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
}

func TestClassificationApplySkipsUnvotedAndEmpty(t *testing.T) {
	store := &classificationStoreStub{}
	pending := proposalAt("p1", "Pending", "Health", projBase)
	empty := votedProposal("p2", 0, 0, 0, projBase)
	state := newStateServiceWith(t,
		pending,
		empty,
		rule("r1", 0, 100, "Catch all", models.ActionNone, projBase),
	)
	svc := NewClassificationService(store, state, nil, nil)

	summary, err := svc.Apply(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Examined)
	assert.Empty(t, store.updated)
}

func TestClassificationApplyIdempotent(t *testing.T) {
	store := &classificationStoreStub{}
	already := votedProposal("p1", 8, 2, 0, projBase)
	already.ClassificationLabel = "Strong support"
	already.ClassificationColor = "#00aa00"
	already.Promoted = true
	state := newStateServiceWith(t,
		already,
		rule("r1", 70, 100, "Strong support", models.ActionPromoteToFinal, projBase),
	)
	svc := NewClassificationService(store, state, nil, nil)

	summary, err := svc.Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Examined)
	assert.Zero(t, summary.Updated, "a second run with unchanged inputs must not write")
	assert.Empty(t, store.updated)
}

func TestClassificationApplyClearsStalePromotion(t *testing.T) {
	store := &classificationStoreStub{}
	stale := votedProposal("p1", 3, 7, 0, projBase) // 30% yes
	stale.Promoted = true
	stale.ClassificationLabel = "Strong support"
	state := newStateServiceWith(t,
		stale,
		rule("r1", 0, 50, "Rejected band", models.ActionNone, projBase),
	)
	svc := NewClassificationService(store, state, nil, nil)

	_, err := svc.Apply(context.Background())
	require.NoError(t, err)

	require.Len(t, store.updated, 1)
	p := store.updated[0].(models.Proposal)
	assert.False(t, p.Promoted, "a non-promoting match clears a prior promotion")
	assert.Equal(t, "Rejected band", p.ClassificationLabel)
}

func TestClassificationCreateRuleValidation(t *testing.T) {
	svc := NewClassificationService(&classificationStoreStub{}, newStateServiceWith(t), nil, nil)

	_, err := svc.CreateRule(context.Background(), models.ClassificationRuleRequest{
		MinPercent: 80,
		MaxPercent: 20,
		Label:      "Backwards",
		Action:     models.ActionNone,
		Color:      "#fff",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassificationUpdateRuleKeepsIdentity(t *testing.T) {
	store := &classificationStoreStub{}
	state := newStateServiceWith(t, rule("r1", 0, 50, "Old", models.ActionNone, projBase))
	svc := NewClassificationService(store, state, nil, nil)

	updated, err := svc.UpdateRule(context.Background(), "r1", models.ClassificationRuleRequest{
		MinPercent: 0,
		MaxPercent: 40,
		Label:      "New",
		Action:     models.ActionNone,
		Color:      "#ff0000",
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", updated.ID)
	assert.Equal(t, "New", updated.Label)
	require.Len(t, store.updated, 1)
}
