// Package analytics serves the dashboard summary assembled from the
// other collections.
package analytics

import (
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/buildlogs"
	"github.com/circuit-breakers/teamhub/internal/events"
	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/internal/sponsors"
	"github.com/circuit-breakers/teamhub/internal/tasks"
	"github.com/circuit-breakers/teamhub/pkg/response"
)

// Summary is the dashboard payload.
type Summary struct {
	TaskCounts     map[string]int    `json:"task_counts"`
	TasksByMember  map[string]int    `json:"tasks_by_member"`
	OverdueTasks   int               `json:"overdue_tasks"`
	UpcomingEvents []models.Event    `json:"upcoming_events"`
	RecentLogs     []models.BuildLog `json:"recent_logs"`
	SponsorCount   int               `json:"sponsor_count"`
	ActiveSponsors int               `json:"active_sponsors"`
}

// Handler assembles the dashboard from the feature repositories.
type Handler struct {
	tasks    *tasks.Repository
	logs     *buildlogs.Repository
	events   *events.Repository
	sponsors *sponsors.Repository
	logger   *zap.Logger
}

// NewHandler creates a dashboard handler.
func NewHandler(t *tasks.Repository, l *buildlogs.Repository, e *events.Repository, s *sponsors.Repository, logger *zap.Logger) *Handler {
	return &Handler{tasks: t, logs: l, events: e, sponsors: s, logger: logger}
}

// Dashboard handles GET /dashboard. An unreadable collection degrades
// to its zero section rather than failing the whole page.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()
	summary := Summary{
		TaskCounts:     make(map[string]int),
		TasksByMember:  make(map[string]int),
		UpcomingEvents: []models.Event{},
		RecentLogs:     []models.BuildLog{},
	}

	if all, err := h.tasks.List(ctx); err != nil {
		h.logger.Warn("dashboard: tasks unavailable", zap.Error(err))
	} else {
		for _, t := range all {
			summary.TaskCounts[string(t.Status)]++
			if t.AssignedTo != "" {
				summary.TasksByMember[t.AssignedTo]++
			}
			if t.Status != models.StatusCompleted && !t.DueDate.IsZero() && t.DueDate.Before(now) {
				summary.OverdueTasks++
			}
		}
	}

	if all, err := h.events.List(ctx); err != nil {
		h.logger.Warn("dashboard: events unavailable", zap.Error(err))
	} else {
		for _, e := range all {
			if e.EndTime.Before(now) {
				continue
			}
			summary.UpcomingEvents = append(summary.UpcomingEvents, e)
		}
		sort.Slice(summary.UpcomingEvents, func(i, j int) bool {
			return summary.UpcomingEvents[i].StartTime.Before(summary.UpcomingEvents[j].StartTime.Time)
		})
		if len(summary.UpcomingEvents) > 5 {
			summary.UpcomingEvents = summary.UpcomingEvents[:5]
		}
	}

	if all, err := h.logs.List(ctx); err != nil {
		h.logger.Warn("dashboard: build logs unavailable", zap.Error(err))
	} else {
		sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date.Time) })
		if len(all) > 5 {
			all = all[:5]
		}
		summary.RecentLogs = all
	}

	if all, err := h.sponsors.List(ctx); err != nil {
		h.logger.Warn("dashboard: sponsors unavailable", zap.Error(err))
	} else {
		summary.SponsorCount = len(all)
		for _, s := range all {
			if s.EndDate.IsZero() || !s.EndDate.Before(now) {
				summary.ActiveSponsors++
			}
		}
	}

	response.OK(c, summary)
}
