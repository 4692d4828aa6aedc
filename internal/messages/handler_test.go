package messages

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/middleware"
	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
)

type session struct {
	username, name, role string
}

func newTestRouter(t *testing.T, s session) (*gin.Engine, *Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := NewRepository(jsonstore.NewCollection[models.Message](filepath.Join(t.TempDir(), "messages.json"), nil), nil)
	h := NewHandler(repo, nil, zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUsername, s.username)
		c.Set(middleware.ContextUserName, s.name)
		c.Set(middleware.ContextUserRole, s.role)
	})
	r.GET("/messages", h.List)
	r.POST("/messages", h.Post)
	r.POST("/messages/:id/replies", h.Reply)
	r.PUT("/messages/:id", h.Edit)
	r.DELETE("/messages/:id", h.Delete)
	return r, repo
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_PostAndThreadedList(t *testing.T) {
	r, _ := newTestRouter(t, session{"maria.garcia", "Maria Garcia", "lead"})

	w := doJSON(t, r, http.MethodPost, "/messages", gin.H{
		"title": "Motor specs", "content": "Which motor?", "channel": "Engineering",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data models.Message `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Maria Garcia", created.Data.Author)
	assert.Equal(t, "Normal", created.Data.Priority)

	w = doJSON(t, r, http.MethodPost, "/messages/"+created.Data.ID+"/replies", gin.H{"content": "The 550"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/messages?channel=Engineering", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Data []Thread `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	require.Len(t, listed.Data[0].Replies, 1)
	assert.Equal(t, "The 550", listed.Data[0].Replies[0].Content)
	assert.Equal(t, ReplyCategory, listed.Data[0].Replies[0].Category)
}

func TestHandler_PostRejectsBadPriority(t *testing.T) {
	r, _ := newTestRouter(t, session{"maria.garcia", "Maria Garcia", "lead"})
	w := doJSON(t, r, http.MethodPost, "/messages", gin.H{
		"title": "t", "content": "c", "priority": "Panic",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DeletePermissions(t *testing.T) {
	member := session{"james.wilson", "James Wilson", "member"}
	r, repo := newTestRouter(t, member)

	// Someone else's message: a plain member may not delete it.
	foreign, err := repo.Create(context.Background(), models.Message{Title: "t", Content: "c", Author: "Maria Garcia"})
	require.NoError(t, err)
	w := doJSON(t, r, http.MethodDelete, "/messages/"+foreign.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Their own message is fine.
	own, err := repo.Create(context.Background(), models.Message{Title: "t", Content: "c", Author: "James Wilson"})
	require.NoError(t, err)
	w = doJSON(t, r, http.MethodDelete, "/messages/"+own.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// An admin can delete anyone's.
	admin, adminRepo := newTestRouter(t, session{"admin", "Admin User", "admin"})
	target, err := adminRepo.Create(context.Background(), models.Message{Title: "t", Content: "c", Author: "Maria Garcia"})
	require.NoError(t, err)
	w = doJSON(t, admin, http.MethodDelete, "/messages/"+target.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_EditOnlyByAuthor(t *testing.T) {
	r, repo := newTestRouter(t, session{"james.wilson", "James Wilson", "member"})
	foreign, err := repo.Create(context.Background(), models.Message{Title: "t", Content: "c", Author: "Maria Garcia"})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPut, "/messages/"+foreign.ID, gin.H{"content": "hijack"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
