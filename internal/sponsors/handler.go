package sponsors

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
	"github.com/circuit-breakers/teamhub/pkg/response"
)

// SponsorLevels in display order. Levels outside this list are kept
// as-is; the original data already contains ad-hoc values.
var SponsorLevels = []string{"Platinum", "Gold", "Silver", "Bronze", "Supporting"}

// CreateRequest is the body for POST /sponsors.
type CreateRequest struct {
	Name         string `json:"name" binding:"required"`
	Level        string `json:"level" binding:"required"`
	Contribution string `json:"contribution"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	Website      string `json:"website"`
	Description  string `json:"description"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// UpdateRequest is the body for PUT /sponsors/:id.
type UpdateRequest struct {
	Name         *string `json:"name"`
	Level        *string `json:"level"`
	Contribution *string `json:"contribution"`
	ContactName  *string `json:"contact_name"`
	ContactEmail *string `json:"contact_email"`
	Website      *string `json:"website"`
	Description  *string `json:"description"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
}

// Handler handles sponsor HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a sponsor handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

func (h *Handler) storeFail(c *gin.Context, err error, msg string) {
	if errors.Is(err, jsonstore.ErrCorrupt) {
		h.logger.Error("sponsor collection corrupt", zap.Error(err))
		response.Internal(c, "sponsor data file is corrupted")
		return
	}
	h.logger.Error(msg, zap.Error(err))
	response.Internal(c, msg)
}

// List handles GET /sponsors. ?level= filters, ?active=true keeps only
// sponsorships whose end date has not passed.
func (h *Handler) List(c *gin.Context) {
	all, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.storeFail(c, err, "failed to load sponsors")
		return
	}
	level := c.Query("level")
	activeOnly := c.Query("active") == "true"
	now := time.Now()

	out := make([]models.Sponsor, 0, len(all))
	for _, s := range all {
		if level != "" && s.Level != level {
			continue
		}
		if activeOnly && !s.EndDate.IsZero() && s.EndDate.Before(now) {
			continue
		}
		out = append(out, s)
	}
	response.OK(c, out)
}

// Get handles GET /sponsors/:id.
func (h *Handler) Get(c *gin.Context) {
	s, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "sponsor not found")
			return
		}
		h.storeFail(c, err, "failed to load sponsor")
		return
	}
	response.OK(c, s)
}

// Create handles POST /sponsors (admin or lead).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	start, err := models.ParseTimestamp(req.StartDate)
	if err != nil {
		response.BadRequest(c, "invalid start_date")
		return
	}
	end, err := models.ParseTimestamp(req.EndDate)
	if err != nil {
		response.BadRequest(c, "invalid end_date")
		return
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start.Time) {
		response.BadRequest(c, "end_date before start_date")
		return
	}
	created, err := h.repo.Create(c.Request.Context(), models.Sponsor{
		Name:         req.Name,
		Level:        req.Level,
		Contribution: req.Contribution,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		Website:      req.Website,
		Description:  req.Description,
		StartDate:    start,
		EndDate:      end,
	})
	if err != nil {
		h.storeFail(c, err, "failed to create sponsor")
		return
	}
	response.Created(c, created)
}

// Update handles PUT /sponsors/:id (admin or lead).
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	var start, end models.Timestamp
	var err error
	if req.StartDate != nil {
		if start, err = models.ParseTimestamp(*req.StartDate); err != nil {
			response.BadRequest(c, "invalid start_date")
			return
		}
	}
	if req.EndDate != nil {
		if end, err = models.ParseTimestamp(*req.EndDate); err != nil {
			response.BadRequest(c, "invalid end_date")
			return
		}
	}
	updated, err := h.repo.Update(c.Request.Context(), c.Param("id"), func(s *models.Sponsor) {
		if req.Name != nil {
			s.Name = *req.Name
		}
		if req.Level != nil {
			s.Level = *req.Level
		}
		if req.Contribution != nil {
			s.Contribution = *req.Contribution
		}
		if req.ContactName != nil {
			s.ContactName = *req.ContactName
		}
		if req.ContactEmail != nil {
			s.ContactEmail = *req.ContactEmail
		}
		if req.Website != nil {
			s.Website = *req.Website
		}
		if req.Description != nil {
			s.Description = *req.Description
		}
		if req.StartDate != nil {
			s.StartDate = start
		}
		if req.EndDate != nil {
			s.EndDate = end
		}
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "sponsor not found")
			return
		}
		h.storeFail(c, err, "failed to update sponsor")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /sponsors/:id (admin or lead).
func (h *Handler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.storeFail(c, err, "failed to delete sponsor")
		return
	}
	response.NoContent(c)
}
