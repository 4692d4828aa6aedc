package messages

import (
	"errors"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/middleware"
	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/internal/realtime"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
	"github.com/circuit-breakers/teamhub/pkg/response"
)

// DefaultChannel receives posts that name no channel.
const DefaultChannel = "General"

// MessagePriorities in escalation order.
var MessagePriorities = []string{"Normal", "High", "Urgent"}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	for _, v := range MessagePriorities {
		if p == v {
			return true
		}
	}
	return false
}

// PostRequest is the body for POST /messages.
type PostRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Channel  string `json:"channel"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

// ReplyRequest is the body for POST /messages/:id/replies.
type ReplyRequest struct {
	Content string `json:"content" binding:"required"`
}

// EditRequest is the body for PUT /messages/:id.
type EditRequest struct {
	Content string `json:"content" binding:"required"`
}

// Thread is a top-level message with its replies, oldest reply first.
type Thread struct {
	models.Message
	Replies []models.Message `json:"replies"`
}

// Handler handles message board HTTP endpoints.
type Handler struct {
	repo   *Repository
	hub    *realtime.Hub // nil disables live fan-out
	logger *zap.Logger
}

// NewHandler creates a message handler. hub may be nil.
func NewHandler(repo *Repository, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, hub: hub, logger: logger}
}

func (h *Handler) storeFail(c *gin.Context, err error, msg string) {
	if errors.Is(err, jsonstore.ErrCorrupt) {
		h.logger.Error("message collection corrupt", zap.Error(err))
		response.Internal(c, "message data file is corrupted")
		return
	}
	h.logger.Error(msg, zap.Error(err))
	response.Internal(c, msg)
}

func (h *Handler) publish(channel, event string, payload interface{}) {
	if h.hub != nil {
		h.hub.Publish(channel, event, payload)
	}
}

// List handles GET /messages: threads newest first, replies attached
// oldest first. ?channel= filters.
func (h *Handler) List(c *gin.Context) {
	all, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.storeFail(c, err, "failed to load messages")
		return
	}
	channel := c.Query("channel")

	replies := make(map[string][]models.Message)
	var tops []models.Message
	for _, m := range all {
		if channel != "" && m.Channel != channel {
			continue
		}
		if m.IsReply() {
			replies[m.ParentID] = append(replies[m.ParentID], m)
			continue
		}
		tops = append(tops, m)
	}
	sort.Slice(tops, func(i, j int) bool { return tops[i].Timestamp.After(tops[j].Timestamp.Time) })

	threads := make([]Thread, 0, len(tops))
	for _, m := range tops {
		rs := replies[m.ID]
		sort.Slice(rs, func(i, j int) bool { return rs[i].Timestamp.Before(rs[j].Timestamp.Time) })
		if rs == nil {
			rs = []models.Message{}
		}
		threads = append(threads, Thread{Message: m, Replies: rs})
	}
	response.OK(c, threads)
}

// Post handles POST /messages and fans the new thread out to the
// channel's live listeners.
func (h *Handler) Post(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Channel == "" {
		req.Channel = DefaultChannel
	}
	if req.Priority == "" {
		req.Priority = "Normal"
	}
	if !ValidPriority(req.Priority) {
		response.BadRequest(c, "invalid priority")
		return
	}
	created, err := h.repo.Create(c.Request.Context(), models.Message{
		Title:    req.Title,
		Content:  req.Content,
		Author:   middleware.SessionName(c),
		Channel:  req.Channel,
		Category: req.Category,
		Priority: req.Priority,
	})
	if err != nil {
		h.storeFail(c, err, "failed to post message")
		return
	}
	h.publish(created.Channel, "message", created)
	response.Created(c, created)
}

// Reply handles POST /messages/:id/replies.
func (h *Handler) Reply(c *gin.Context) {
	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	reply, err := h.repo.Reply(c.Request.Context(), c.Param("id"), middleware.SessionName(c), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "message not found")
		case errors.Is(err, ErrReplyToReply):
			response.BadRequest(c, "cannot reply to a reply")
		default:
			h.storeFail(c, err, "failed to post reply")
		}
		return
	}
	h.publish(reply.Channel, "reply", reply)
	response.Created(c, reply)
}

// Edit handles PUT /messages/:id. Only the author may edit.
func (h *Handler) Edit(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := h.repo.UpdateContent(c.Request.Context(), c.Param("id"), middleware.SessionName(c), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "message not found")
		case errors.Is(err, ErrNotAuthor):
			response.Forbidden(c, "only the author can edit a message")
		default:
			h.storeFail(c, err, "failed to edit message")
		}
		return
	}
	h.publish(updated.Channel, "message_edited", updated)
	response.OK(c, updated)
}

// Delete handles DELETE /messages/:id. The author can remove their own
// message; admins and leads can remove any. Replies go with their
// thread.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	m, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NoContent(c)
			return
		}
		h.storeFail(c, err, "failed to load message")
		return
	}
	role := c.GetString(middleware.ContextUserRole)
	if m.Author != middleware.SessionName(c) && role != string(models.RoleAdmin) && role != string(models.RoleLead) {
		response.Forbidden(c, "only the author or a lead can delete a message")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.storeFail(c, err, "failed to delete message")
		return
	}
	h.publish(m.Channel, "message_deleted", gin.H{"id": id})
	response.NoContent(c)
}
