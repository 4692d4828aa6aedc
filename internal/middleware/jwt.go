package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/circuit-breakers/teamhub/internal/auth"
	"github.com/circuit-breakers/teamhub/pkg/response"
)

const (
	// ContextUsername is the key for the session username in gin context.
	ContextUsername = "username"
	// ContextUserName is the key for the session display name in gin context.
	ContextUserName = "user_name"
	// ContextUserRole is the key for the session role in gin context.
	ContextUserRole = "user_role"
)

// JWT returns a middleware that validates the bearer token and sets
// session claims in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextUserName, claims.Name)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// SessionName returns the display name of the logged-in member, used
// to stamp author/created_by fields.
func SessionName(c *gin.Context) string {
	name, _ := c.Get(ContextUserName)
	s, _ := name.(string)
	return s
}

// SessionUsername returns the username of the logged-in member.
func SessionUsername(c *gin.Context) string {
	v, _ := c.Get(ContextUsername)
	s, _ := v.(string)
	return s
}
