package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/plenary-api/internal/models"
	"github.com/noah-isme/plenary-api/pkg/config"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

type rosterAuthenticator interface {
	Authenticate(ctx context.Context, cfg *models.RosterConfig, secret string) (*RosterEntry, error)
}

// AuthService issues and validates session tokens for voters and admins.
// Voters authenticate with a per-person secret resolved against provisioned
// accounts first and the external roster second; admins with a username and
// a bcrypt hashed secret, or with the master secret.
type AuthService struct {
	cfg    config.AuthConfig
	state  *StateService
	roster rosterAuthenticator
	logger *zap.Logger
}

func NewAuthService(cfg config.AuthConfig, state *StateService, roster rosterAuthenticator, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{cfg: cfg, state: state, roster: roster, logger: logger}
}

// VoterLogin resolves the secret and returns a voter session. Provisioned
// accounts win over roster rows so an operator can override a single row
// without editing the spreadsheet.
func (s *AuthService) VoterLogin(ctx context.Context, req *models.VoterLoginRequest) (*models.LoginResponse, error) {
	secret := strings.TrimSpace(req.Secret)
	if secret == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "secret is required")
	}

	state := s.state.Current()
	for i := range state.VoterAccounts {
		acc := &state.VoterAccounts[i]
		if acc.Secret == secret {
			return s.issueVoter(acc.ID, acc.DisplayName, acc.Segment, acc.Axis)
		}
	}

	if state.RosterConfig != nil {
		entry, err := s.roster.Authenticate(ctx, state.RosterConfig, secret)
		if err != nil {
			s.logger.Warn("roster authentication failed", zap.Error(err))
			return nil, err
		}
		if entry != nil {
			return s.issueVoter(rosterSubject(secret), entry.DisplayName, entry.Segment, entry.Axis)
		}
	}

	return nil, appErrors.ErrInvalidCredentials
}

// AdminLogin checks the master secret first, then provisioned admin
// accounts. Master sessions carry every permission.
func (s *AuthService) AdminLogin(ctx context.Context, req *models.AdminLoginRequest) (*models.LoginResponse, error) {
	secret := strings.TrimSpace(req.Secret)
	if secret == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "secret is required")
	}

	if s.cfg.MasterAdminSecret != "" && secret == s.cfg.MasterAdminSecret {
		all := models.AllPermissions()
		return s.issueAdmin("master", &all)
	}

	username := strings.TrimSpace(req.Username)
	state := s.state.Current()
	for i := range state.AdminAccounts {
		acc := &state.AdminAccounts[i]
		if !strings.EqualFold(acc.Username, username) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(acc.SecretHash), []byte(secret)) != nil {
			break
		}
		perms := acc.Permissions
		if perms == nil {
			all := models.AllPermissions()
			perms = &all
		}
		return s.issueAdmin(acc.Username, perms)
	}

	return nil, appErrors.ErrInvalidCredentials
}

// ValidateToken parses and verifies a session token, rejecting anything not
// signed with HS256.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.ErrUnauthorized
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired session")
	}
	return claims, nil
}

// rosterSubject derives a stable per-participant identity from the access
// secret of the matched roster row. Roster rows carry no id of their own,
// and the secret is unique per participant; a fingerprint keeps the secret
// itself out of the token payload.
func rosterSubject(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return "roster:" + hex.EncodeToString(sum[:8])
}

func (s *AuthService) issueVoter(subject, name, segment, axis string) (*models.LoginResponse, error) {
	claims := &models.SessionClaims{
		Role:        models.RoleVoter,
		DisplayName: name,
		Segment:     segment,
		Axis:        axis,
	}
	claims.Subject = subject
	return s.sign(claims, s.cfg.VoterSessionTTL)
}

func (s *AuthService) issueAdmin(username string, perms *models.AdminPermissions) (*models.LoginResponse, error) {
	claims := &models.SessionClaims{
		Role:        models.RoleAdmin,
		DisplayName: username,
		Permissions: perms,
	}
	return s.sign(claims, s.cfg.AdminSessionTTL)
}

func (s *AuthService) sign(claims *models.SessionClaims, ttl time.Duration) (*models.LoginResponse, error) {
	now := time.Now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   claims.Subject,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}

	return &models.LoginResponse{
		Token:       signed,
		Role:        claims.Role,
		ExpiresIn:   int64(ttl.Seconds()),
		DisplayName: claims.DisplayName,
		Segment:     claims.Segment,
		Axis:        claims.Axis,
		Permissions: claims.Permissions,
	}, nil
}
