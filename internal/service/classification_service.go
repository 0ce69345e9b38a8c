package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/plenary-api/internal/models"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

type classificationRecordStore interface {
	Append(ctx context.Context, rec models.Record) error
	UpdateByID(ctx context.Context, rec models.Record) error
	DeleteByID(ctx context.Context, id string) error
}

// ClassificationService manages percentage rules and applies them to the
// voted proposal set on demand.
type ClassificationService struct {
	repo      classificationRecordStore
	state     *StateService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassificationService constructs the service.
func NewClassificationService(repo classificationRecordStore, state *StateService, validate *validator.Validate, logger *zap.Logger) *ClassificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassificationService{repo: repo, state: state, validator: validate, logger: logger}
}

// ApplySummary reports what a classification run touched.
type ApplySummary struct {
	Examined int `json:"examined"`
	Updated  int `json:"updated"`
}

// Apply classifies every voted proposal with at least one ballot. Rules are
// evaluated in stored order and the first whose inclusive range contains
// the yes-percentage wins; a matched rule that does not promote clears any
// prior promotion. Writes are skipped when nothing changes, so repeated
// runs with unchanged inputs are no-ops.
func (s *ClassificationService) Apply(ctx context.Context) (*ApplySummary, error) {
	state := s.state.Current()
	summary := &ApplySummary{}

	for _, proposal := range state.Proposals {
		if proposal.Status != models.ProposalVoted || proposal.TotalVotes == 0 {
			continue
		}
		summary.Examined++

		yesPercent := float64(proposal.YesVotes) / float64(proposal.TotalVotes) * 100
		rule := matchRule(state.Rules, yesPercent)
		if rule == nil {
			continue
		}

		promoted := rule.Action == models.ActionPromoteToFinal
		if proposal.ClassificationLabel == rule.Label &&
			proposal.ClassificationColor == rule.Color &&
			proposal.Promoted == promoted {
			continue
		}

		updated := proposal
		updated.ClassificationLabel = rule.Label
		updated.ClassificationColor = rule.Color
		updated.Promoted = promoted

		if err := s.repo.UpdateByID(ctx, updated); err != nil {
			s.logger.Warn("failed to classify proposal", zap.String("proposal_id", proposal.ID), zap.Error(err))
			continue
		}
		summary.Updated++
	}

	s.logger.Info("classification applied", zap.Int("examined", summary.Examined), zap.Int("updated", summary.Updated))
	return summary, nil
}

// matchRule returns the first rule whose inclusive range contains the
// percentage. Order matters: ranges may overlap and the engine must not
// assume otherwise.
func matchRule(rules []models.ClassificationRule, yesPercent float64) *models.ClassificationRule {
	for i := range rules {
		if rules[i].MinPercent <= yesPercent && yesPercent <= rules[i].MaxPercent {
			return &rules[i]
		}
	}
	return nil
}

// ListRules returns the rule set in stored (evaluation) order.
func (s *ClassificationService) ListRules() []models.ClassificationRule {
	return s.state.Current().Rules
}

// CreateRule appends a new classification rule.
func (s *ClassificationService) CreateRule(ctx context.Context, req models.ClassificationRuleRequest) (*models.ClassificationRule, error) {
	if err := s.validateRule(req); err != nil {
		return nil, err
	}
	rule := models.ClassificationRule{
		Meta:       models.Meta{ID: uuid.NewString(), Kind: models.KindClassificationRule, RecordedAt: time.Now().UTC()},
		MinPercent: req.MinPercent,
		MaxPercent: req.MaxPercent,
		Label:      req.Label,
		Action:     req.Action,
		Color:      req.Color,
	}
	if err := s.repo.Append(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save rule")
	}
	return &rule, nil
}

// UpdateRule replaces an existing rule's fields, keeping its position in
// the evaluation order.
func (s *ClassificationService) UpdateRule(ctx context.Context, id string, req models.ClassificationRuleRequest) (*models.ClassificationRule, error) {
	if err := s.validateRule(req); err != nil {
		return nil, err
	}
	var existing *models.ClassificationRule
	for _, r := range s.state.Current().Rules {
		if r.ID == id {
			rule := r
			existing = &rule
			break
		}
	}
	if existing == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "classification rule not found")
	}

	existing.MinPercent = req.MinPercent
	existing.MaxPercent = req.MaxPercent
	existing.Label = req.Label
	existing.Action = req.Action
	existing.Color = req.Color

	if err := s.repo.UpdateByID(ctx, *existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update rule")
	}
	return existing, nil
}

// DeleteRule removes a rule.
func (s *ClassificationService) DeleteRule(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

func (s *ClassificationService) validateRule(req models.ClassificationRuleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rule payload")
	}
	if req.MinPercent > req.MaxPercent {
		return appErrors.Clone(appErrors.ErrValidation, "min_percent must not exceed max_percent")
	}
	return nil
}
