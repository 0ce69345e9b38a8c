package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/plenary-api/internal/models"
	"github.com/noah-isme/plenary-api/pkg/config"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

type rosterStub struct {
	entry *RosterEntry
	err   error
	calls int
}

func (r *rosterStub) Authenticate(ctx context.Context, cfg *models.RosterConfig, secret string) (*RosterEntry, error) {
	r.calls++
	return r.entry, r.err
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:         "test-secret",
		MasterAdminSecret: "master-key",
		AdminSessionTTL:   time.Hour,
		VoterSessionTTL:   24 * time.Hour,
		Issuer:            "plenary-api-test",
	}
}

func voterAccount(id, name, secret, axis string) models.VoterAccount {
	return models.VoterAccount{
		Meta:        models.Meta{ID: id, Kind: models.KindVoterAccount, RecordedAt: projBase},
		DisplayName: name,
		Secret:      secret,
		Axis:        axis,
	}
}

func TestVoterLoginProvisionedAccount(t *testing.T) {
	roster := &rosterStub{}
	state := newStateServiceWith(t, voterAccount("u1", "Alice", "secret-1", "Health"))
	svc := NewAuthService(testAuthConfig(), state, roster, nil)

	res, err := svc.VoterLogin(context.Background(), &models.VoterLoginRequest{Secret: "secret-1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleVoter, res.Role)
	assert.Equal(t, "Alice", res.DisplayName)
	assert.Equal(t, "Health", res.Axis)
	assert.Zero(t, roster.calls, "provisioned accounts resolve before the roster")

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.VoterID(), "ballots key on the account id, not the display name")
	assert.Equal(t, "Alice", claims.DisplayName)
	assert.Equal(t, "Health", claims.Axis)
}

func TestVoterLoginSharedDisplayNameStaysDistinct(t *testing.T) {
	state := newStateServiceWith(t,
		voterAccount("u1", "Maria Silva", "secret-1", "Health"),
		voterAccount("u2", "Maria Silva", "secret-2", "Education"),
	)
	svc := NewAuthService(testAuthConfig(), state, &rosterStub{}, nil)

	first, err := svc.VoterLogin(context.Background(), &models.VoterLoginRequest{Secret: "secret-1"})
	require.NoError(t, err)
	second, err := svc.VoterLogin(context.Background(), &models.VoterLoginRequest{Secret: "secret-2"})
	require.NoError(t, err)

	firstClaims, err := svc.ValidateToken(first.Token)
	require.NoError(t, err)
	secondClaims, err := svc.ValidateToken(second.Token)
	require.NoError(t, err)

	assert.Equal(t, firstClaims.DisplayName, secondClaims.DisplayName)
	assert.NotEqual(t, firstClaims.VoterID(), secondClaims.VoterID())
}

func TestVoterLoginFallsBackToRoster(t *testing.T) {
	roster := &rosterStub{entry: &RosterEntry{DisplayName: "Bob", Axis: "Education"}}
	rosterCfg := models.RosterConfig{
		Meta:      models.Meta{ID: "r1", Kind: models.KindRosterConfig, RecordedAt: projBase},
		SheetURL:  "https://docs.google.com/spreadsheets/d/abc123/edit",
		SheetName: "Sheet1",
		Columns:   models.RosterColumns{Name: "A", Secret: "B"},
	}
	svc := NewAuthService(testAuthConfig(), newStateServiceWith(t, rosterCfg), roster, nil)

	res, err := svc.VoterLogin(context.Background(), &models.VoterLoginRequest{Secret: "roster-secret"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", res.DisplayName)
	assert.Equal(t, 1, roster.calls)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.Subject)
	assert.NotEqual(t, claims.DisplayName, claims.VoterID(), "roster identity derives from the matched row, not the name")

	again, err := svc.VoterLogin(context.Background(), &models.VoterLoginRequest{Secret: "roster-secret"})
	require.NoError(t, err)
	againClaims, err := svc.ValidateToken(again.Token)
	require.NoError(t, err)
	assert.Equal(t, claims.VoterID(), againClaims.VoterID(), "same secret resolves to the same identity across sessions")
}

func TestVoterLoginUnknownSecret(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newStateServiceWith(t), &rosterStub{}, nil)

	_, err := svc.VoterLogin(context.Background(), &models.VoterLoginRequest{Secret: "nope"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestVoterLoginEmptySecret(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newStateServiceWith(t), &rosterStub{}, nil)

	_, err := svc.VoterLogin(context.Background(), &models.VoterLoginRequest{Secret: "   "})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAdminLoginMasterSecret(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newStateServiceWith(t), &rosterStub{}, nil)

	res, err := svc.AdminLogin(context.Background(), &models.AdminLoginRequest{Secret: "master-key"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.Role)
	require.NotNil(t, res.Permissions)
	assert.True(t, res.Permissions.ManageVoting)
	assert.True(t, res.Permissions.ManageConfig)
}

func TestAdminLoginProvisionedAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	account := models.AdminAccount{
		Meta:        models.Meta{ID: "a1", Kind: models.KindAdminAccount, RecordedAt: projBase},
		Username:    "chair",
		SecretHash:  string(hash),
		Permissions: &models.AdminPermissions{ManageVoting: true},
	}
	svc := NewAuthService(testAuthConfig(), newStateServiceWith(t, account), &rosterStub{}, nil)

	res, err := svc.AdminLogin(context.Background(), &models.AdminLoginRequest{Username: "Chair", Secret: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "chair", res.DisplayName)
	require.NotNil(t, res.Permissions)
	assert.True(t, res.Permissions.ManageVoting)
	assert.False(t, res.Permissions.ManageUsers)

	_, err = svc.AdminLogin(context.Background(), &models.AdminLoginRequest{Username: "chair", Secret: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newStateServiceWith(t), &rosterStub{}, nil)
	res, err := svc.AdminLogin(context.Background(), &models.AdminLoginRequest{Secret: "master-key"})
	require.NoError(t, err)

	otherCfg := testAuthConfig()
	otherCfg.JWTSecret = "different-secret"
	other := NewAuthService(otherCfg, newStateServiceWith(t), &rosterStub{}, nil)

	_, err = other.ValidateToken(res.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.ValidateToken(res.Token + "x")
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.AdminSessionTTL = -time.Minute
	svc := NewAuthService(cfg, newStateServiceWith(t), &rosterStub{}, nil)

	res, err := svc.AdminLogin(context.Background(), &models.AdminLoginRequest{Secret: "master-key"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
