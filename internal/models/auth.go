package models

import "github.com/golang-jwt/jwt/v5"

// VoterLoginRequest authenticates a voter by a single access secret.
type VoterLoginRequest struct {
	Secret string `json:"secret" validate:"required"`
}

// AdminLoginRequest authenticates an administrator. Username is empty when
// logging in with the master secret.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Secret   string `json:"secret" validate:"required"`
}

// SessionRole distinguishes voter and admin tokens.
type SessionRole string

const (
	RoleVoter SessionRole = "voter"
	RoleAdmin SessionRole = "admin"
)

// SessionClaims is the JWT payload for both session kinds. Axis is only set
// for voters; Permissions only for admins.
type SessionClaims struct {
	Role        SessionRole       `json:"role"`
	DisplayName string            `json:"display_name"`
	Axis        string            `json:"axis,omitempty"`
	Segment     string            `json:"segment,omitempty"`
	Permissions *AdminPermissions `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// VoterID is the identity votes are keyed by. Tokens carry a stable unique
// subject (the provisioned account id, or a fingerprint of the matched
// roster row), so two participants sharing a display name stay distinct.
func (c *SessionClaims) VoterID() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.DisplayName
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	Token       string            `json:"token"`
	Role        SessionRole       `json:"role"`
	ExpiresIn   int64             `json:"expires_in"`
	DisplayName string            `json:"display_name"`
	Axis        string            `json:"axis,omitempty"`
	Segment     string            `json:"segment,omitempty"`
	Permissions *AdminPermissions `json:"permissions,omitempty"`
}
