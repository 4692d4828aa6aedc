package tasks

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/auth"
	"github.com/circuit-breakers/teamhub/internal/middleware"
	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
	"github.com/circuit-breakers/teamhub/pkg/response"
)

// CreateRequest is the body for POST /tasks.
type CreateRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	AssignedTo  string `json:"assigned_to"`
	DueDate     string `json:"due_date"`
	Category    string `json:"category"`
}

// UpdateRequest is the body for PUT /tasks/:id. Nil fields are left
// unchanged.
type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssignedTo  *string `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
	Category    *string `json:"category"`
}

// View is a task enriched with the resolved assignee for display.
type View struct {
	models.Task
	AssignedToDisplay string `json:"assigned_to_display"`
}

// Handler handles task HTTP endpoints.
type Handler struct {
	repo     *Repository
	resolver *auth.Resolver
	logger   *zap.Logger
}

// NewHandler creates a task handler.
func NewHandler(repo *Repository, resolver *auth.Resolver, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, resolver: resolver, logger: logger}
}

func (h *Handler) storeFail(c *gin.Context, err error, msg string) {
	if errors.Is(err, jsonstore.ErrCorrupt) {
		h.logger.Error("task collection corrupt", zap.Error(err))
		response.Internal(c, "task data file is corrupted")
		return
	}
	h.logger.Error(msg, zap.Error(err))
	response.Internal(c, msg)
}

// List handles GET /tasks. Optional query filters: status, category,
// assigned_to.
func (h *Handler) List(c *gin.Context) {
	all, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.storeFail(c, err, "failed to load tasks")
		return
	}
	status := c.Query("status")
	category := c.Query("category")
	assignedTo := c.Query("assigned_to")

	out := make([]models.Task, 0, len(all))
	for _, t := range all {
		if status != "" && string(t.Status) != status {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		if assignedTo != "" && t.AssignedTo != assignedTo {
			continue
		}
		out = append(out, t)
	}
	response.OK(c, out)
}

// Get handles GET /tasks/:id.
func (h *Handler) Get(c *gin.Context) {
	t, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "task not found")
			return
		}
		h.storeFail(c, err, "failed to load task")
		return
	}
	response.OK(c, View{Task: t, AssignedToDisplay: h.resolver.DisplayName(c.Request.Context(), t.AssignedTo)})
}

// Create handles POST /tasks.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Status == "" {
		req.Status = string(models.StatusToDo)
	}
	if req.Priority == "" {
		req.Priority = string(models.PriorityMedium)
	}
	if !models.ValidTaskStatus(req.Status) {
		response.BadRequest(c, "invalid status")
		return
	}
	if !models.ValidTaskPriority(req.Priority) {
		response.BadRequest(c, "invalid priority")
		return
	}
	due, err := models.ParseTimestamp(req.DueDate)
	if err != nil {
		response.BadRequest(c, "invalid due_date")
		return
	}

	t := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		AssignedTo:  req.AssignedTo,
		CreatedBy:   middleware.SessionName(c),
		DueDate:     due,
		Category:    req.Category,
	}
	created, err := h.repo.Create(c.Request.Context(), t)
	if err != nil {
		h.storeFail(c, err, "failed to create task")
		return
	}
	response.Created(c, created)
}

// Update handles PUT /tasks/:id.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Status != nil && !models.ValidTaskStatus(*req.Status) {
		response.BadRequest(c, "invalid status")
		return
	}
	if req.Priority != nil && !models.ValidTaskPriority(*req.Priority) {
		response.BadRequest(c, "invalid priority")
		return
	}
	var due models.Timestamp
	if req.DueDate != nil {
		parsed, err := models.ParseTimestamp(*req.DueDate)
		if err != nil {
			response.BadRequest(c, "invalid due_date")
			return
		}
		due = parsed
	}

	updated, err := h.repo.Update(c.Request.Context(), c.Param("id"), func(t *models.Task) {
		if req.Title != nil {
			t.Title = *req.Title
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Status != nil {
			t.Status = models.TaskStatus(*req.Status)
		}
		if req.Priority != nil {
			t.Priority = models.TaskPriority(*req.Priority)
		}
		if req.AssignedTo != nil {
			t.AssignedTo = *req.AssignedTo
		}
		if req.DueDate != nil {
			t.DueDate = due
		}
		if req.Category != nil {
			t.Category = *req.Category
		}
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "task not found")
			return
		}
		h.storeFail(c, err, "failed to update task")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /tasks/:id (admin or lead). Deleting an
// unknown id succeeds; the end state is the same.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.storeFail(c, err, "failed to delete task")
		return
	}
	response.NoContent(c)
}
