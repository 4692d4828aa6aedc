package admin

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/auth"
	"github.com/circuit-breakers/teamhub/internal/middleware"
	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
	"github.com/circuit-breakers/teamhub/pkg/queue"
	"github.com/circuit-breakers/teamhub/pkg/response"
)

// CreateUserRequest is the body for POST /admin/users.
type CreateUserRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required,min=6"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Role       string `json:"role" binding:"required"`
	Department string `json:"department"`
}

// UpdateUserRequest is the body for PUT /admin/users/:username.
type UpdateUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Password   *string `json:"password"`
}

// UpdateSettingsRequest is the body for PUT /admin/settings.
type UpdateSettingsRequest struct {
	AppName              *string `json:"app_name"`
	TeamLogo             *string `json:"team_logo"`
	PrimaryColor         *string `json:"primary_color"`
	ContactEmail         *string `json:"contact_email"`
	CompetitionName      *string `json:"competition_name"`
	CompetitionDate      *string `json:"competition_date"`
	EnableNotifications  *bool   `json:"enable_notifications"`
	MessageRetentionDays *int    `json:"message_retention_days"`
}

// Handler handles the admin panel endpoints. All routes behind it
// require the admin role.
type Handler struct {
	users    *auth.Repository
	settings *SettingsRepository
	audit    *AuditRepository
	jobs     *queue.Queue // nil when Redis is disabled
	logger   *zap.Logger
}

// NewHandler creates an admin handler. jobs may be nil.
func NewHandler(users *auth.Repository, settings *SettingsRepository, audit *AuditRepository, jobs *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{users: users, settings: settings, audit: audit, jobs: jobs, logger: logger}
}

func (h *Handler) storeFail(c *gin.Context, err error, msg string) {
	if errors.Is(err, jsonstore.ErrCorrupt) {
		h.logger.Error("admin data corrupt", zap.Error(err))
		response.Internal(c, "admin data file is corrupted")
		return
	}
	h.logger.Error(msg, zap.Error(err))
	response.Internal(c, msg)
}

func (h *Handler) record(c *gin.Context, action string) {
	h.audit.Append(c.Request.Context(), middleware.SessionUsername(c), action, c.ClientIP())
}

// ListUsers handles GET /admin/users.
func (h *Handler) ListUsers(c *gin.Context) {
	members, err := h.users.List(c.Request.Context())
	if err != nil {
		h.storeFail(c, err, "failed to load users")
		return
	}
	response.OK(c, members)
}

// CreateUser handles POST /admin/users.
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !models.ValidRole(req.Role) {
		response.BadRequest(c, "invalid role")
		return
	}
	created, err := h.users.Create(c.Request.Context(), auth.CreateParams{
		Username:   req.Username,
		Password:   req.Password,
		Name:       req.Name,
		Email:      req.Email,
		Role:       models.Role(req.Role),
		Department: req.Department,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			response.Conflict(c, "username already exists")
			return
		}
		h.storeFail(c, err, "failed to create user")
		return
	}
	h.record(c, "created user "+req.Username)
	response.Created(c, created)
}

// UpdateUser handles PUT /admin/users/:username.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	params := auth.UpdateParams{
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		Password:   req.Password,
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			response.BadRequest(c, "invalid role")
			return
		}
		role := models.Role(*req.Role)
		params.Role = &role
	}
	username := c.Param("username")
	updated, err := h.users.Update(c.Request.Context(), username, params)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			response.NotFound(c, "user not found")
		case errors.Is(err, auth.ErrLastAdmin):
			response.Conflict(c, "cannot demote the last admin user")
		default:
			h.storeFail(c, err, "failed to update user")
		}
		return
	}
	h.record(c, "updated user "+username)
	response.OK(c, updated)
}

// DeleteUser handles DELETE /admin/users/:username.
func (h *Handler) DeleteUser(c *gin.Context) {
	username := c.Param("username")
	if err := h.users.Delete(c.Request.Context(), username); err != nil {
		if errors.Is(err, auth.ErrLastAdmin) {
			response.Conflict(c, "cannot remove the last admin user")
			return
		}
		h.storeFail(c, err, "failed to delete user")
		return
	}
	h.record(c, "deleted user "+username)
	response.NoContent(c)
}

// GetSettings handles GET /admin/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		h.storeFail(c, err, "failed to load settings")
		return
	}
	response.OK(c, s)
}

// UpdateSettings handles PUT /admin/settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	var competitionDate models.Timestamp
	if req.CompetitionDate != nil {
		parsed, err := models.ParseTimestamp(*req.CompetitionDate)
		if err != nil {
			response.BadRequest(c, "invalid competition_date")
			return
		}
		competitionDate = parsed
	}
	if req.MessageRetentionDays != nil && *req.MessageRetentionDays < 1 {
		response.BadRequest(c, "message_retention_days must be positive")
		return
	}
	updated, err := h.settings.Update(c.Request.Context(), func(s *models.Settings) {
		if req.AppName != nil {
			s.AppName = *req.AppName
		}
		if req.TeamLogo != nil {
			s.TeamLogo = *req.TeamLogo
		}
		if req.PrimaryColor != nil {
			s.PrimaryColor = *req.PrimaryColor
		}
		if req.ContactEmail != nil {
			s.ContactEmail = *req.ContactEmail
		}
		if req.CompetitionName != nil {
			s.CompetitionName = *req.CompetitionName
		}
		if req.CompetitionDate != nil {
			s.CompetitionDate = competitionDate
		}
		if req.EnableNotifications != nil {
			s.EnableNotifications = *req.EnableNotifications
		}
		if req.MessageRetentionDays != nil {
			s.MessageRetentionDays = *req.MessageRetentionDays
		}
	})
	if err != nil {
		h.storeFail(c, err, "failed to update settings")
		return
	}
	h.record(c, "updated settings")
	response.OK(c, updated)
}

// ListAudit handles GET /admin/audit?limit=.
func (h *Handler) ListAudit(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}
	entries, err := h.audit.List(c.Request.Context(), limit)
	if err != nil {
		h.storeFail(c, err, "failed to load audit log")
		return
	}
	response.OK(c, entries)
}

// RunBackup handles POST /admin/maintenance/backup, queueing a backup
// job for the worker.
func (h *Handler) RunBackup(c *gin.Context) {
	if h.jobs == nil {
		response.Internal(c, "maintenance jobs require Redis")
		return
	}
	err := h.jobs.EnqueueBackup(c.Request.Context(), queue.BackupPayload{
		RequestedBy: middleware.SessionUsername(c),
	})
	if err != nil {
		h.logger.Error("enqueue backup", zap.Error(err))
		response.Internal(c, "failed to queue backup")
		return
	}
	h.record(c, "queued backup")
	response.OK(c, gin.H{"queued": true})
}

// RunCleanup handles POST /admin/maintenance/cleanup, queueing a
// retention cleanup job for the worker.
func (h *Handler) RunCleanup(c *gin.Context) {
	if h.jobs == nil {
		response.Internal(c, "maintenance jobs require Redis")
		return
	}
	err := h.jobs.EnqueueCleanup(c.Request.Context(), queue.CleanupPayload{
		RequestedBy: middleware.SessionUsername(c),
	})
	if err != nil {
		h.logger.Error("enqueue cleanup", zap.Error(err))
		response.Internal(c, "failed to queue cleanup")
		return
	}
	h.record(c, "queued cleanup")
	response.OK(c, gin.H{"queued": true})
}
