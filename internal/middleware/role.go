package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/circuit-breakers/teamhub/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles.
// A request with no session role is rejected with 401; a session whose
// role is not in the set gets 403.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		roleVal, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		role, _ := roleVal.(string)
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
