package media

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/middleware"
	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/ids"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
	"github.com/circuit-breakers/teamhub/pkg/response"
	"github.com/circuit-breakers/teamhub/pkg/storage"
)

// UpdateRequest is the body for PUT /media/:id. The stored file is
// immutable; only the metadata can change.
type UpdateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	MediaType   *string   `json:"media_type"`
	Tags        *[]string `json:"tags"`
}

// Handler handles media HTTP endpoints.
type Handler struct {
	repo   *Repository
	files  *storage.Local
	mirror *storage.S3 // nil when S3 is disabled
	logger *zap.Logger
}

// NewHandler creates a media handler. mirror may be nil.
func NewHandler(repo *Repository, files *storage.Local, mirror *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, files: files, mirror: mirror, logger: logger}
}

func (h *Handler) storeFail(c *gin.Context, err error, msg string) {
	if errors.Is(err, jsonstore.ErrCorrupt) {
		h.logger.Error("media collection corrupt", zap.Error(err))
		response.Internal(c, "media data file is corrupted")
		return
	}
	h.logger.Error(msg, zap.Error(err))
	response.Internal(c, msg)
}

// List handles GET /media, newest first. ?category=, ?media_type= and
// ?tag= filter.
func (h *Handler) List(c *gin.Context) {
	all, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.storeFail(c, err, "failed to load media items")
		return
	}
	category := c.Query("category")
	mediaType := c.Query("media_type")
	tag := c.Query("tag")

	out := make([]models.MediaItem, 0, len(all))
	for _, m := range all {
		if category != "" && m.Category != category {
			continue
		}
		if mediaType != "" && m.MediaType != mediaType {
			continue
		}
		if tag != "" && !hasTag(m.Tags, tag) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadDate.After(out[j].UploadDate.Time) })
	response.OK(c, out)
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}

// Get handles GET /media/:id.
func (h *Handler) Get(c *gin.Context) {
	m, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "media item not found")
			return
		}
		h.storeFail(c, err, "failed to load media item")
		return
	}
	response.OK(c, m)
}

// Create handles POST /media as a multipart form: title, description,
// category, media_type, tags (comma-separated) and an optional file
// part. A missing media_type is derived from the file extension.
func (h *Handler) Create(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		response.BadRequest(c, "title is required")
		return
	}
	item := models.MediaItem{
		Title:       title,
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		MediaType:   c.PostForm("media_type"),
		UploadedBy:  middleware.SessionName(c),
		UploadDate:  models.Now(),
		Tags:        splitTags(c.PostForm("tags")),
	}

	file, err := c.FormFile("file")
	if err != nil {
		created, err := h.repo.Create(c.Request.Context(), item)
		if err != nil {
			h.storeFail(c, err, "failed to create media item")
			return
		}
		response.Created(c, created)
		return
	}

	if file.Size > storage.MaxUploadSize {
		response.BadRequest(c, "file too large")
		return
	}
	if !storage.AllowedExtension(file.Filename, storage.AllowedMediaExtensions) {
		response.BadRequest(c, "file type not allowed")
		return
	}
	src, err := file.Open()
	if err != nil {
		h.logger.Error("open upload", zap.Error(err))
		response.Internal(c, "failed to read upload")
		return
	}
	defer src.Close()

	// The file is stored before the record is written, under an id
	// assigned up front, so a failure on either side never leaves a
	// record pointing at a file that does not exist.
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if item.MediaType == "" {
		item.MediaType = mediaTypeForExt(ext)
	}
	item.ID = ids.New()
	stored := item.ID + ext
	path, _, err := h.files.Save(stored, src)
	if err != nil {
		h.logger.Error("store upload", zap.Error(err))
		response.Internal(c, "failed to store upload")
		return
	}
	item.FilePath = path
	created, err := h.repo.Create(c.Request.Context(), item)
	if err != nil {
		if rerr := h.files.Remove(path); rerr != nil {
			h.logger.Warn("remove stored upload", zap.String("path", path), zap.Error(rerr))
		}
		h.storeFail(c, err, "failed to create media item")
		return
	}
	if h.mirror != nil {
		if _, err := h.mirror.UploadFile(c.Request.Context(), storage.MediaKey(stored), path); err != nil {
			h.logger.Warn("s3 mirror failed", zap.String("path", path), zap.Error(err))
		}
	}
	response.Created(c, created)
}

func mediaTypeForExt(ext string) string {
	switch ext {
	case ".mp4", ".mov":
		return "Video"
	default:
		return "Photo"
	}
}

// File handles GET /media/:id/file, serving the stored bytes inline.
func (h *Handler) File(c *gin.Context) {
	m, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "media item not found")
			return
		}
		h.storeFail(c, err, "failed to load media item")
		return
	}
	if m.FilePath == "" {
		response.NotFound(c, "media item has no stored file")
		return
	}
	c.File(m.FilePath)
}

// Update handles PUT /media/:id.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := h.repo.Update(c.Request.Context(), c.Param("id"), func(m *models.MediaItem) {
		if req.Title != nil {
			m.Title = *req.Title
		}
		if req.Description != nil {
			m.Description = *req.Description
		}
		if req.Category != nil {
			m.Category = *req.Category
		}
		if req.MediaType != nil {
			m.MediaType = *req.MediaType
		}
		if req.Tags != nil {
			m.Tags = *req.Tags
		}
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "media item not found")
			return
		}
		h.storeFail(c, err, "failed to update media item")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /media/:id (admin or lead). The stored file
// goes with the record.
func (h *Handler) Delete(c *gin.Context) {
	removed, err := h.repo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeFail(c, err, "failed to delete media item")
		return
	}
	if removed.FilePath != "" {
		if err := h.files.Remove(removed.FilePath); err != nil {
			h.logger.Warn("remove media file", zap.String("path", removed.FilePath), zap.Error(err))
		}
	}
	response.NoContent(c)
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	var out []string
	for _, t := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}
