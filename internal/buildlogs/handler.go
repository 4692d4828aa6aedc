package buildlogs

import (
	"errors"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/middleware"
	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
	"github.com/circuit-breakers/teamhub/pkg/response"
)

// CreateRequest is the body for POST /buildlogs.
type CreateRequest struct {
	Title            string `json:"title" binding:"required"`
	Description      string `json:"description" binding:"required"`
	Category         string `json:"category"`
	Date             string `json:"date"`
	ImageDescription string `json:"image_description"`
}

// UpdateRequest is the body for PUT /buildlogs/:id.
type UpdateRequest struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Category         *string `json:"category"`
	Date             *string `json:"date"`
	ImageDescription *string `json:"image_description"`
}

// Handler handles build log HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a build log handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

func (h *Handler) storeFail(c *gin.Context, err error, msg string) {
	if errors.Is(err, jsonstore.ErrCorrupt) {
		h.logger.Error("build log collection corrupt", zap.Error(err))
		response.Internal(c, "build log data file is corrupted")
		return
	}
	h.logger.Error(msg, zap.Error(err))
	response.Internal(c, msg)
}

// List handles GET /buildlogs, newest first. Optional ?category= filter.
func (h *Handler) List(c *gin.Context) {
	all, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.storeFail(c, err, "failed to load build logs")
		return
	}
	category := c.Query("category")
	out := make([]models.BuildLog, 0, len(all))
	for _, l := range all {
		if category != "" && l.Category != category {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	response.OK(c, out)
}

// Get handles GET /buildlogs/:id.
func (h *Handler) Get(c *gin.Context) {
	l, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "build log not found")
			return
		}
		h.storeFail(c, err, "failed to load build log")
		return
	}
	response.OK(c, l)
}

// Create handles POST /buildlogs. The author is always the logged-in
// member.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	date, err := models.ParseTimestamp(req.Date)
	if err != nil {
		response.BadRequest(c, "invalid date")
		return
	}
	created, err := h.repo.Create(c.Request.Context(), models.BuildLog{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Date:             date,
		Author:           middleware.SessionName(c),
		ImageDescription: req.ImageDescription,
	})
	if err != nil {
		h.storeFail(c, err, "failed to create build log")
		return
	}
	response.Created(c, created)
}

// Update handles PUT /buildlogs/:id.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	var date models.Timestamp
	if req.Date != nil {
		parsed, err := models.ParseTimestamp(*req.Date)
		if err != nil {
			response.BadRequest(c, "invalid date")
			return
		}
		date = parsed
	}
	updated, err := h.repo.Update(c.Request.Context(), c.Param("id"), func(l *models.BuildLog) {
		if req.Title != nil {
			l.Title = *req.Title
		}
		if req.Description != nil {
			l.Description = *req.Description
		}
		if req.Category != nil {
			l.Category = *req.Category
		}
		if req.Date != nil {
			l.Date = date
		}
		if req.ImageDescription != nil {
			l.ImageDescription = *req.ImageDescription
		}
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "build log not found")
			return
		}
		h.storeFail(c, err, "failed to update build log")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /buildlogs/:id (admin or lead).
func (h *Handler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.storeFail(c, err, "failed to delete build log")
		return
	}
	response.NoContent(c)
}
