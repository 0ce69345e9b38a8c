package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plenary-api/internal/models"
	"github.com/noah-isme/plenary-api/internal/service"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
	"github.com/noah-isme/plenary-api/pkg/response"
)

// ContextSessionKey is the gin context key storing session claims.
const ContextSessionKey = "currentSession"

// Session protects routes by requiring a valid session token of any role.
func Session(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromHeader(c, authService)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextSessionKey, claims)
		c.Next()
	}
}

// OptionalSession attaches claims when present but does not block.
func OptionalSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := claimsFromHeader(c, authService); err == nil {
			c.Set(ContextSessionKey, claims)
		}
		c.Next()
	}
}

// RequireAdmin blocks non-admin sessions. Permission gates narrow further:
// each named permission must be granted on the session.
func RequireAdmin(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextSessionKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.SessionClaims)
		if claims.Role != models.RoleAdmin {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		granted := claims.Permissions
		if granted == nil {
			all := models.AllPermissions()
			granted = &all
		}
		for _, p := range perms {
			if !hasPermission(granted, p) {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "missing permission: "+p))
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// Permission names accepted by RequireAdmin.
const (
	PermManageVoting    = "manage_voting"
	PermManageProposals = "manage_proposals"
	PermManageUsers     = "manage_users"
	PermManageConfig    = "manage_config"
)

func hasPermission(p *models.AdminPermissions, name string) bool {
	switch name {
	case PermManageVoting:
		return p.ManageVoting
	case PermManageProposals:
		return p.ManageProposals
	case PermManageUsers:
		return p.ManageUsers
	case PermManageConfig:
		return p.ManageConfig
	default:
		return false
	}
}

func claimsFromHeader(c *gin.Context, authService *service.AuthService) (*models.SessionClaims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, appErrors.ErrUnauthorized
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return authService.ValidateToken(parts[1])
}
