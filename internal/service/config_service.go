package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/plenary-api/internal/models"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

type configRecordStore interface {
	Append(ctx context.Context, rec models.Record) error
}

// ConfigService saves the external source configurations. Saves append a
// fresh record each time; the projection keeps the latest one, so history
// stays in the log.
type ConfigService struct {
	repo      configRecordStore
	state     *StateService
	validator *validator.Validate
}

func NewConfigService(repo configRecordStore, state *StateService, validate *validator.Validate) *ConfigService {
	if validate == nil {
		validate = validator.New()
	}
	return &ConfigService{repo: repo, state: state, validator: validate}
}

// RosterConfig returns the effective roster source, nil if never configured.
func (s *ConfigService) RosterConfig(ctx context.Context) *models.RosterConfig {
	state := s.state.Current()
	if state.RosterConfig == nil {
		return nil
	}
	out := *state.RosterConfig
	return &out
}

// SaveRosterConfig appends a new roster source record.
func (s *ConfigService) SaveRosterConfig(ctx context.Context, req *models.RosterConfigRequest) (*models.RosterConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster source")
	}

	cfg := models.RosterConfig{
		Meta: models.Meta{
			ID:         uuid.NewString(),
			Kind:       models.KindRosterConfig,
			RecordedAt: time.Now().UTC(),
		},
		SheetURL:  strings.TrimSpace(req.SheetURL),
		SheetName: strings.TrimSpace(req.SheetName),
		Columns:   req.Columns,
	}
	if err := s.repo.Append(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ImportConfig returns the effective proposal import source, nil if never
// configured.
func (s *ConfigService) ImportConfig(ctx context.Context) *models.ProposalImportConfig {
	state := s.state.Current()
	if state.ImportConfig == nil {
		return nil
	}
	out := *state.ImportConfig
	return &out
}

// SaveImportConfig appends a new proposal import source record.
func (s *ConfigService) SaveImportConfig(ctx context.Context, req *models.ImportConfigRequest) (*models.ProposalImportConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import source")
	}

	cfg := models.ProposalImportConfig{
		Meta: models.Meta{
			ID:         uuid.NewString(),
			Kind:       models.KindProposalImportConfig,
			RecordedAt: time.Now().UTC(),
		},
		SheetURL:  strings.TrimSpace(req.SheetURL),
		SheetName: strings.TrimSpace(req.SheetName),
		Columns:   req.Columns,
	}
	if err := s.repo.Append(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
