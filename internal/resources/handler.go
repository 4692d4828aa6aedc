package resources

import (
	"errors"
	"path/filepath"
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

// UpdateRequest is the body for PUT /resources/:id. The stored file is
// immutable; only the metadata can change.
type UpdateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Tags        *[]string `json:"tags"`
}

// Handler handles resource HTTP endpoints.
type Handler struct {
	repo   *Repository
	files  *storage.Local
	mirror *storage.S3 // nil when S3 is disabled
	logger *zap.Logger
}

// NewHandler creates a resource handler. mirror may be nil.
func NewHandler(repo *Repository, files *storage.Local, mirror *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, files: files, mirror: mirror, logger: logger}
}

func (h *Handler) storeFail(c *gin.Context, err error, msg string) {
	if errors.Is(err, jsonstore.ErrCorrupt) {
		h.logger.Error("resource collection corrupt", zap.Error(err))
		response.Internal(c, "resource data file is corrupted")
		return
	}
	h.logger.Error(msg, zap.Error(err))
	response.Internal(c, msg)
}

// List handles GET /resources, newest first. ?category= and ?tag=
// filter.
func (h *Handler) List(c *gin.Context) {
	all, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.storeFail(c, err, "failed to load resources")
		return
	}
	category := c.Query("category")
	tag := c.Query("tag")

	out := make([]models.Resource, 0, len(all))
	for _, r := range all {
		if category != "" && r.Category != category {
			continue
		}
		if tag != "" && !hasTag(r.Tags, tag) {
			continue
		}
		out = append(out, r)
	}
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

// Get handles GET /resources/:id.
func (h *Handler) Get(c *gin.Context) {
	r, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "resource not found")
			return
		}
		h.storeFail(c, err, "failed to load resource")
		return
	}
	response.OK(c, r)
}

// Create handles POST /resources as a multipart form: title,
// description, category, tags (comma-separated) and an optional file
// part. Without a file the record is metadata only, matching entries
// created before uploads existed.
func (h *Handler) Create(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		response.BadRequest(c, "title is required")
		return
	}
	res := models.Resource{
		Title:       title,
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		UploadedBy:  middleware.SessionName(c),
		UploadDate:  models.Now(),
		Tags:        splitTags(c.PostForm("tags")),
	}

	file, err := c.FormFile("file")
	if err == nil {
		if file.Size > storage.MaxUploadSize {
			response.BadRequest(c, "file too large")
			return
		}
		if !storage.AllowedExtension(file.Filename, storage.AllowedResourceExtensions) {
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
		res.ID = ids.New()
		stored := res.ID + ext
		path, size, err := h.files.Save(stored, src)
		if err != nil {
			h.logger.Error("store upload", zap.Error(err))
			response.Internal(c, "failed to store upload")
			return
		}
		res.FileType = strings.TrimPrefix(ext, ".")
		res.FileSize = storage.FormatSize(size)
		res.FilePath = path
		created, err := h.repo.Create(c.Request.Context(), res)
		if err != nil {
			if rerr := h.files.Remove(path); rerr != nil {
				h.logger.Warn("remove stored upload", zap.String("path", path), zap.Error(rerr))
			}
			h.storeFail(c, err, "failed to create resource")
			return
		}
		h.mirrorUpload(c, storage.ResourceKey(stored), path)
		response.Created(c, created)
		return
	}

	created, err := h.repo.Create(c.Request.Context(), res)
	if err != nil {
		h.storeFail(c, err, "failed to create resource")
		return
	}
	response.Created(c, created)
}

func (h *Handler) mirrorUpload(c *gin.Context, key, path string) {
	if h.mirror == nil {
		return
	}
	if _, err := h.mirror.UploadFile(c.Request.Context(), key, path); err != nil {
		// The local copy is authoritative; a failed mirror is logged
		// and retried on the next backup run.
		h.logger.Warn("s3 mirror failed", zap.String("key", key), zap.Error(err))
	}
}

// Download handles GET /resources/:id/download.
func (h *Handler) Download(c *gin.Context) {
	r, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "resource not found")
			return
		}
		h.storeFail(c, err, "failed to load resource")
		return
	}
	if r.FilePath == "" {
		response.NotFound(c, "resource has no stored file")
		return
	}
	name := r.Title + strings.ToLower(filepath.Ext(r.FilePath))
	c.FileAttachment(r.FilePath, name)
}

// Update handles PUT /resources/:id.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := h.repo.Update(c.Request.Context(), c.Param("id"), func(r *models.Resource) {
		if req.Title != nil {
			r.Title = *req.Title
		}
		if req.Description != nil {
			r.Description = *req.Description
		}
		if req.Category != nil {
			r.Category = *req.Category
		}
		if req.Tags != nil {
			r.Tags = *req.Tags
		}
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "resource not found")
			return
		}
		h.storeFail(c, err, "failed to update resource")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /resources/:id (admin or lead). The stored
// file goes with the record.
func (h *Handler) Delete(c *gin.Context) {
	removed, err := h.repo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeFail(c, err, "failed to delete resource")
		return
	}
	if removed.FilePath != "" {
		if err := h.files.Remove(removed.FilePath); err != nil {
			h.logger.Warn("remove resource file", zap.String("path", removed.FilePath), zap.Error(err))
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
