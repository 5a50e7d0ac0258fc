package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/testhub-api/internal/rbac"
	"github.com/yourusername/testhub-api/pkg/auth"
)

// Context keys set by the auth middleware.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRoles  = "roles"
)

// AuthMiddleware authenticates requests via Bearer access tokens and
// enforces role and permission gates.
type AuthMiddleware struct {
	jwtService *auth.JWTService
	checker    *rbac.Checker
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(jwtService *auth.JWTService, checker *rbac.Checker) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService, checker: checker}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth rejects requests without a valid access token and stores
// the caller's identity in the gin context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_missing"})
			c.Abort()
			return
		}

		claims, err := m.jwtService.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRoles, claims.Roles)
		c.Next()
	}
}

// OptionalAuth stores the caller's identity when a valid token is
// present and lets anonymous requests through. Listing endpoints use it
// to scope visibility without requiring login.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := m.jwtService.ParseToken(token)
		if err != nil {
			// A token was sent but is unusable; do not silently downgrade.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRoles, claims.Roles)
		c.Next()
	}
}

// RequirePermission rejects authenticated callers whose roles do not
// grant the permission. Must run after RequireAuth.
func (m *AuthMiddleware) RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := SubjectFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		if !m.checker.AnyRole(subject.Roles, permission) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole rejects authenticated callers holding none of the roles.
// Must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := SubjectFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		if !hasAnyRole(subject.Roles, roles) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func hasAnyRole(held []string, wanted []string) bool {
	for _, h := range held {
		for _, w := range wanted {
			if h == w {
				return true
			}
		}
	}
	return false
}

// SubjectFromContext reads the authenticated caller out of the gin
// context. ok is false for anonymous requests.
func SubjectFromContext(c *gin.Context) (rbac.Subject, bool) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return rbac.Subject{}, false
	}

	subject := rbac.Subject{UserID: userID.(uint)}
	if roles, exists := c.Get(ContextRoles); exists {
		if names, ok := roles.([]string); ok {
			subject.Roles = names
		}
	}
	return subject, true
}
