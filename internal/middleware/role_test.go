package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func roleRouter(role string, allowed ...string) *gin.Engine {
	r := gin.New()
	r.GET("/guarded",
		func(c *gin.Context) {
			if role != "" {
				c.Set(ContextUserRole, role)
			}
		},
		RequireRole(allowed...),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return r
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    int
	}{
		{"allowed role passes", "admin", []string{"admin"}, http.StatusOK},
		{"any of several passes", "lead", []string{"admin", "lead"}, http.StatusOK},
		{"disallowed role is forbidden", "member", []string{"admin", "lead"}, http.StatusForbidden},
		{"missing session is unauthorized", "", []string{"admin"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			roleRouter(tt.role, tt.allowed...).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestSessionHelpers(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, SessionName(c))
	assert.Empty(t, SessionUsername(c))

	c.Set(ContextUserName, "Maria Garcia")
	c.Set(ContextUsername, "maria.garcia")
	assert.Equal(t, "Maria Garcia", SessionName(c))
	assert.Equal(t, "maria.garcia", SessionUsername(c))
}
