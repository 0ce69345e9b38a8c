package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/plenary-api/internal/models"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

type accountRecordStore interface {
	Append(ctx context.Context, rec models.Record) error
	UpdateByID(ctx context.Context, rec models.Record) error
	DeleteByID(ctx context.Context, id string) error
}

// AdminAccountView is an admin account with the secret hash stripped.
type AdminAccountView struct {
	ID          string                   `json:"id"`
	Username    string                   `json:"username"`
	Permissions *models.AdminPermissions `json:"permissions,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

// AccountService provisions voter and admin accounts. Voter secrets are
// stored verbatim so they stay comparable with the plaintext roster; admin
// secrets are bcrypt hashed.
type AccountService struct {
	repo      accountRecordStore
	state     *StateService
	validator *validator.Validate
}

func NewAccountService(repo accountRecordStore, state *StateService, validate *validator.Validate) *AccountService {
	if validate == nil {
		validate = validator.New()
	}
	return &AccountService{repo: repo, state: state, validator: validate}
}

// ListVoters returns provisioned voter accounts.
func (s *AccountService) ListVoters(ctx context.Context) []models.VoterAccount {
	state := s.state.Current()
	out := make([]models.VoterAccount, len(state.VoterAccounts))
	copy(out, state.VoterAccounts)
	return out
}

// CreateVoter provisions a voter. Secrets are the login key, so duplicates
// are rejected.
func (s *AccountService) CreateVoter(ctx context.Context, req *models.VoterAccountRequest) (*models.VoterAccount, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid voter account")
	}

	secret := strings.TrimSpace(req.Secret)
	state := s.state.Current()
	for _, acc := range state.VoterAccounts {
		if acc.Secret == secret {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a voter with this secret already exists")
		}
	}

	acc := models.VoterAccount{
		Meta: models.Meta{
			ID:         uuid.NewString(),
			Kind:       models.KindVoterAccount,
			RecordedAt: time.Now().UTC(),
		},
		DisplayName:    strings.TrimSpace(req.DisplayName),
		Secret:         secret,
		Segment:        strings.TrimSpace(req.Segment),
		Representative: strings.TrimSpace(req.Representative),
		Axis:           strings.TrimSpace(req.Axis),
	}
	if err := s.repo.Append(ctx, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// UpdateVoter rewrites a provisioned voter account.
func (s *AccountService) UpdateVoter(ctx context.Context, id string, req *models.VoterAccountRequest) (*models.VoterAccount, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid voter account")
	}

	state := s.state.Current()
	var existing *models.VoterAccount
	for i := range state.VoterAccounts {
		if state.VoterAccounts[i].ID == id {
			existing = &state.VoterAccounts[i]
			break
		}
	}
	if existing == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "voter account not found")
	}

	secret := strings.TrimSpace(req.Secret)
	for _, acc := range state.VoterAccounts {
		if acc.ID != id && acc.Secret == secret {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a voter with this secret already exists")
		}
	}

	updated := *existing
	updated.DisplayName = strings.TrimSpace(req.DisplayName)
	updated.Secret = secret
	updated.Segment = strings.TrimSpace(req.Segment)
	updated.Representative = strings.TrimSpace(req.Representative)
	updated.Axis = strings.TrimSpace(req.Axis)

	if err := s.repo.UpdateByID(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteVoter removes a provisioned voter account. Votes already cast under
// the account remain in the log.
func (s *AccountService) DeleteVoter(ctx context.Context, id string) error {
	state := s.state.Current()
	for i := range state.VoterAccounts {
		if state.VoterAccounts[i].ID == id {
			return s.repo.DeleteByID(ctx, id)
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "voter account not found")
}

// ListAdmins returns admin accounts with hashes redacted.
func (s *AccountService) ListAdmins(ctx context.Context) []AdminAccountView {
	state := s.state.Current()
	out := make([]AdminAccountView, 0, len(state.AdminAccounts))
	for _, acc := range state.AdminAccounts {
		out = append(out, AdminAccountView{
			ID:          acc.ID,
			Username:    acc.Username,
			Permissions: acc.Permissions,
			CreatedAt:   acc.RecordedAt,
		})
	}
	return out
}

// CreateAdmin provisions an administrator with a bcrypt hashed secret.
func (s *AccountService) CreateAdmin(ctx context.Context, req *models.AdminAccountRequest) (*AdminAccountView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin account")
	}

	username := strings.TrimSpace(req.Username)
	state := s.state.Current()
	for _, acc := range state.AdminAccounts {
		if strings.EqualFold(acc.Username, username) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "an admin with this username already exists")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(req.Secret)), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash secret")
	}

	acc := models.AdminAccount{
		Meta: models.Meta{
			ID:         uuid.NewString(),
			Kind:       models.KindAdminAccount,
			RecordedAt: time.Now().UTC(),
		},
		Username:    username,
		SecretHash:  string(hash),
		Permissions: req.Permissions,
	}
	if err := s.repo.Append(ctx, &acc); err != nil {
		return nil, err
	}

	return &AdminAccountView{
		ID:          acc.ID,
		Username:    acc.Username,
		Permissions: acc.Permissions,
		CreatedAt:   acc.RecordedAt,
	}, nil
}

// DeleteAdmin removes a provisioned admin account. The master secret always
// remains usable.
func (s *AccountService) DeleteAdmin(ctx context.Context, id string) error {
	state := s.state.Current()
	for i := range state.AdminAccounts {
		if state.AdminAccounts[i].ID == id {
			return s.repo.DeleteByID(ctx, id)
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "admin account not found")
}
