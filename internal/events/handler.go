package events

import (
	"errors"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/middleware"
	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
	"github.com/circuit-breakers/teamhub/pkg/response"
)

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	StartTime    string   `json:"start_time" binding:"required"`
	EndTime      string   `json:"end_time" binding:"required"`
	Location     string   `json:"location"`
	Participants []string `json:"participants"`
	Category     string   `json:"category"`
}

// UpdateRequest is the body for PUT /events/:id.
type UpdateRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	StartTime    *string   `json:"start_time"`
	EndTime      *string   `json:"end_time"`
	Location     *string   `json:"location"`
	Participants *[]string `json:"participants"`
	Category     *string   `json:"category"`
}

// Handler handles calendar HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a calendar handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

func (h *Handler) storeFail(c *gin.Context, err error, msg string) {
	if errors.Is(err, jsonstore.ErrCorrupt) {
		h.logger.Error("event collection corrupt", zap.Error(err))
		response.Internal(c, "event data file is corrupted")
		return
	}
	h.logger.Error(msg, zap.Error(err))
	response.Internal(c, msg)
}

// List handles GET /events, soonest first. ?upcoming=true hides past
// events, ?category= filters.
func (h *Handler) List(c *gin.Context) {
	all, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.storeFail(c, err, "failed to load events")
		return
	}
	category := c.Query("category")
	upcomingOnly := c.Query("upcoming") == "true"
	now := time.Now()

	out := make([]models.Event, 0, len(all))
	for _, e := range all {
		if category != "" && e.Category != category {
			continue
		}
		if upcomingOnly && e.EndTime.Before(now) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime.Time) })
	response.OK(c, out)
}

// Get handles GET /events/:id.
func (h *Handler) Get(c *gin.Context) {
	e, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.storeFail(c, err, "failed to load event")
		return
	}
	response.OK(c, e)
}

// Create handles POST /events. The organizer is the logged-in member.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	start, err := models.ParseTimestamp(req.StartTime)
	if err != nil || start.IsZero() {
		response.BadRequest(c, "invalid start_time")
		return
	}
	end, err := models.ParseTimestamp(req.EndTime)
	if err != nil || end.IsZero() {
		response.BadRequest(c, "invalid end_time")
		return
	}
	if end.Before(start.Time) {
		response.BadRequest(c, "end_time before start_time")
		return
	}
	created, err := h.repo.Create(c.Request.Context(), models.Event{
		Title:        req.Title,
		Description:  req.Description,
		StartTime:    start,
		EndTime:      end,
		Location:     req.Location,
		Organizer:    middleware.SessionName(c),
		Participants: req.Participants,
		Category:     req.Category,
	})
	if err != nil {
		h.storeFail(c, err, "failed to create event")
		return
	}
	response.Created(c, created)
}

// Update handles PUT /events/:id.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	var start, end models.Timestamp
	var err error
	if req.StartTime != nil {
		if start, err = models.ParseTimestamp(*req.StartTime); err != nil {
			response.BadRequest(c, "invalid start_time")
			return
		}
	}
	if req.EndTime != nil {
		if end, err = models.ParseTimestamp(*req.EndTime); err != nil {
			response.BadRequest(c, "invalid end_time")
			return
		}
	}
	updated, err := h.repo.Update(c.Request.Context(), c.Param("id"), func(e *models.Event) error {
		if req.Title != nil {
			e.Title = *req.Title
		}
		if req.Description != nil {
			e.Description = *req.Description
		}
		if req.StartTime != nil {
			e.StartTime = start
		}
		if req.EndTime != nil {
			e.EndTime = end
		}
		if req.Location != nil {
			e.Location = *req.Location
		}
		if req.Participants != nil {
			e.Participants = *req.Participants
		}
		if req.Category != nil {
			e.Category = *req.Category
		}
		// The ordering check runs against the merged record inside the
		// mutate cycle, so a rejected partial update never reaches the
		// data file.
		if e.EndTime.Before(e.StartTime.Time) {
			return ErrInvertedRange
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		if errors.Is(err, ErrInvertedRange) {
			response.BadRequest(c, "end_time before start_time")
			return
		}
		h.storeFail(c, err, "failed to update event")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /events/:id (admin or lead).
func (h *Handler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.storeFail(c, err, "failed to delete event")
		return
	}
	response.NoContent(c)
}
