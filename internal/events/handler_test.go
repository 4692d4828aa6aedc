package events

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/middleware"
	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := NewRepository(jsonstore.NewCollection[models.Event](filepath.Join(t.TempDir(), "events.json"), nil), nil)
	h := NewHandler(repo, zap.NewNop())

	r := gin.New()
	// Stand-in for the JWT middleware: a fixed session.
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUsername, "maria.garcia")
		c.Set(middleware.ContextUserName, "Maria Garcia")
		c.Set(middleware.ContextUserRole, "lead")
	})
	r.GET("/events", h.List)
	r.POST("/events", h.Create)
	r.PUT("/events/:id", h.Update)
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

func TestHandler_CreateStampsOrganizer(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/events", gin.H{
		"title":      "Scrimmage",
		"start_time": "2026-09-05T10:00:00Z",
		"end_time":   "2026-09-05T14:00:00Z",
		"location":   "Workshop",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data models.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Data.ID)
	assert.Equal(t, "Maria Garcia", created.Data.Organizer)
	assert.NotNil(t, created.Data.Participants)
}

func TestHandler_CreateRejectsInvertedRange(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/events", gin.H{
		"title":      "Backwards",
		"start_time": "2026-09-05T14:00:00Z",
		"end_time":   "2026-09-05T10:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/events", gin.H{
		"title":      "No dates",
		"start_time": "not-a-date",
		"end_time":   "2026-09-05T10:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_UpdateCannotInvertRange(t *testing.T) {
	r, repo := newTestRouter(t)
	start, _ := models.ParseTimestamp("2026-09-05T10:00:00Z")
	end, _ := models.ParseTimestamp("2026-09-05T14:00:00Z")
	created, err := repo.Create(context.Background(), models.Event{
		Title: "Scrimmage", StartTime: start, EndTime: end, Organizer: "Maria Garcia",
	})
	require.NoError(t, err)

	// Moving only the end before the existing start must fail, and
	// nothing may be written: the stored range stays as created.
	w := doJSON(t, r, http.MethodPut, "/events/"+created.ID, gin.H{
		"end_time": "2026-09-05T08:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stored, err := repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartTime.Equal(start.Time))
	assert.True(t, stored.EndTime.Equal(end.Time))
}

func TestHandler_ListUpcomingFilter(t *testing.T) {
	r, repo := newTestRouter(t)
	ctx := context.Background()

	past := models.At(time.Now().AddDate(0, 0, -7))
	future := models.At(time.Now().AddDate(0, 0, 7))
	_, err := repo.Create(ctx, models.Event{Title: "past", StartTime: past, EndTime: past})
	require.NoError(t, err)
	_, err = repo.Create(ctx, models.Event{Title: "future", StartTime: future, EndTime: future})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/events?upcoming=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Data []models.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, "future", listed.Data[0].Title)
}
