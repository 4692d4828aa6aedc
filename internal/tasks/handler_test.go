package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/auth"
	"github.com/circuit-breakers/teamhub/internal/middleware"
	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
	"github.com/circuit-breakers/teamhub/pkg/response"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	repo := NewRepository(jsonstore.NewCollection[models.Task](filepath.Join(dir, "tasks.json"), nil), nil)
	users := auth.NewRepository(jsonstore.NewKeyed[models.User](filepath.Join(dir, "users.json"), nil), nil)
	h := NewHandler(repo, auth.NewResolver(users), zap.NewNop())

	r := gin.New()
	// Stand-in for the JWT middleware: a fixed session.
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUsername, "maria.garcia")
		c.Set(middleware.ContextUserName, "Maria Garcia")
		c.Set(middleware.ContextUserRole, "lead")
	})
	r.GET("/tasks", h.List)
	r.GET("/tasks/:id", h.Get)
	r.POST("/tasks", h.Create)
	r.PUT("/tasks/:id", h.Update)
	r.DELETE("/tasks/:id", h.Delete)
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

func TestHandler_CreateDefaultsAndRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/tasks", gin.H{"title": "Test"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data models.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Data.ID)
	assert.Equal(t, models.StatusToDo, created.Data.Status)
	assert.Equal(t, models.PriorityMedium, created.Data.Priority)
	assert.Equal(t, "Maria Garcia", created.Data.CreatedBy)

	w = doJSON(t, r, http.MethodGet, "/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Data []models.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, "Test", listed.Data[0].Title)
}

func TestHandler_CreateRejectsBadEnums(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/tasks", gin.H{"title": "x", "status": "Done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/tasks", gin.H{"title": "x", "priority": "Urgent"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/tasks", gin.H{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetResolvesUnknownAssignee(t *testing.T) {
	r, repo := newTestRouter(t)
	created, err := repo.Create(context.Background(), models.Task{Title: "t", AssignedTo: "Nobody Here"})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Data View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, auth.UnknownMember, got.Data.AssignedToDisplay)
}

func TestHandler_ListFilters(t *testing.T) {
	r, repo := newTestRouter(t)
	ctx := context.Background()
	_, err := repo.Create(ctx, models.Task{Title: "a", Status: models.StatusToDo, Category: "Engineering"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, models.Task{Title: "b", Status: models.StatusBlocked, Category: "Outreach"})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/tasks?status=Blocked", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Data []models.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, "b", listed.Data[0].Title)
}

func TestHandler_DeleteMissingIsNoOp(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodDelete, "/tasks/does-not-exist", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_CorruptCollectionSurfacesError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("{ nope"), 0o644))

	repo := NewRepository(jsonstore.NewCollection[models.Task](path, nil), nil)
	users := auth.NewRepository(jsonstore.NewKeyed[models.User](filepath.Join(dir, "users.json"), nil), nil)
	h := NewHandler(repo, auth.NewResolver(users), zap.NewNop())

	r := gin.New()
	r.GET("/tasks", h.List)

	w := doJSON(t, r, http.MethodGet, "/tasks", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "corrupted")
}
