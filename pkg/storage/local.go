// Package storage persists uploaded files. The local store is always
// on; the S3 mirror is optional and additive.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// MaxUploadSize is the maximum allowed upload (50MB).
const MaxUploadSize = 50 * 1024 * 1024

// Allowed upload extensions per area, mapped to their MIME type.
var (
	AllowedResourceExtensions = map[string]string{
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".xls":  "application/vnd.ms-excel",
		".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		".ppt":  "application/vnd.ms-powerpoint",
		".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		".txt":  "text/plain",
		".md":   "text/markdown",
		".csv":  "text/csv",
		".zip":  "application/zip",
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
	}
	AllowedMediaExtensions = map[string]string{
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".gif":  "image/gif",
		".webp": "image/webp",
		".svg":  "image/svg+xml",
		".mp4":  "video/mp4",
		".mov":  "video/quicktime",
	}
)

// AllowedExtension reports whether the filename extension appears in
// the given allow list.
func AllowedExtension(filename string, allowed map[string]string) bool {
	_, ok := allowed[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ContentTypeForFilename returns the MIME type for a filename, falling
// back to octet-stream for anything unrecognised.
func ContentTypeForFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := AllowedResourceExtensions[ext]; ok {
		return ct
	}
	if ct, ok := AllowedMediaExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// FormatSize renders a byte count the way the records store it, e.g.
// "3.2 MB".
func FormatSize(n int64) string {
	switch {
	case n >= 1024*1024*1024:
		return fmt.Sprintf("%.1f GB", float64(n)/(1024*1024*1024))
	case n >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// Local writes uploads under a root directory.
type Local struct {
	root   string
	logger *zap.Logger
}

// NewLocal creates a local file store rooted at dir.
func NewLocal(dir string, logger *zap.Logger) *Local {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{root: dir, logger: logger}
}

// Root returns the store's root directory.
func (l *Local) Root() string { return l.root }

// Save writes r to <root>/<name> and returns the stored path and byte
// count. The name is reduced to its base so callers cannot escape the
// root.
func (l *Local) Save(name string, r io.Reader) (string, int64, error) {
	if err := os.MkdirAll(l.root, 0o755); err != nil {
		return "", 0, fmt.Errorf("create upload dir: %w", err)
	}
	dst := filepath.Join(l.root, filepath.Base(name))
	f, err := os.Create(dst)
	if err != nil {
		return "", 0, fmt.Errorf("create upload: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, MaxUploadSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return "", 0, fmt.Errorf("write upload: %w", err)
	}
	if n > MaxUploadSize {
		os.Remove(dst)
		return "", 0, fmt.Errorf("upload exceeds %d bytes", MaxUploadSize)
	}
	l.logger.Debug("upload stored", zap.String("path", dst), zap.Int64("bytes", n))
	return dst, n, nil
}

// Remove deletes a stored file; a missing file is not an error.
func (l *Local) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
