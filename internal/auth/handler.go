package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
	"github.com/circuit-breakers/teamhub/pkg/response"
)

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.TeamMember `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	member, err := h.repo.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid username or password")
			return
		}
		if errors.Is(err, jsonstore.ErrCorrupt) {
			h.logger.Error("user directory corrupt", zap.Error(err))
			response.Internal(c, "user directory unreadable")
			return
		}
		response.Internal(c, "login failed")
		return
	}

	token, err := h.jwt.Generate(member)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: token, User: member})
}

// ListMembers handles GET /team. Any authenticated member can see the
// roster (used for assignee/organizer pickers).
func (h *Handler) ListMembers(c *gin.Context) {
	members, err := h.repo.List(c.Request.Context())
	if err != nil {
		if errors.Is(err, jsonstore.ErrCorrupt) {
			h.logger.Error("user directory corrupt", zap.Error(err))
			response.Internal(c, "user directory unreadable")
			return
		}
		response.Internal(c, "failed to list team members")
		return
	}
	response.OK(c, members)
}
