// Package worker runs maintenance jobs away from the request path:
// data-directory backups and retention cleanup.
package worker

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/config"
	"github.com/circuit-breakers/teamhub/internal/admin"
	"github.com/circuit-breakers/teamhub/internal/messages"
	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/queue"
	"github.com/circuit-breakers/teamhub/pkg/storage"
)

const archivePrefix = "teamhub-backup-"

// Processor consumes maintenance jobs from the queue.
type Processor struct {
	jobs     *queue.Queue
	data     config.DataConfig
	backup   config.BackupConfig
	settings *admin.SettingsRepository
	messages *messages.Repository
	mirror   *storage.S3 // nil when S3 is disabled
	logger   *zap.Logger
}

// NewProcessor creates a maintenance processor. mirror may be nil.
func NewProcessor(jobs *queue.Queue, data config.DataConfig, backup config.BackupConfig, settings *admin.SettingsRepository, msgs *messages.Repository, mirror *storage.S3, logger *zap.Logger) *Processor {
	return &Processor{
		jobs:     jobs,
		data:     data,
		backup:   backup,
		settings: settings,
		messages: msgs,
		mirror:   mirror,
		logger:   logger,
	}
}

// Run consumes jobs until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("maintenance worker started")
	for {
		job, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("maintenance worker stopping")
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}
		if err := p.process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.String("type", string(job.Type)), zap.Error(err))
			if err := p.jobs.Retry(ctx, job); err != nil {
				p.logger.Error("retry failed", zap.String("job_id", job.ID), zap.Error(err))
			}
			continue
		}
		p.logger.Info("job done", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	}
}

func (p *Processor) process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeBackup:
		return p.runBackup(ctx)
	case queue.JobTypeCleanup:
		return p.runCleanup(ctx)
	default:
		p.logger.Warn("unknown job type", zap.String("type", string(job.Type)))
		return nil
	}
}

// runBackup zips the data directory into the backup directory,
// mirrors the archive to S3 when configured, and stamps the settings
// document with the backup time.
func (p *Processor) runBackup(ctx context.Context) error {
	if err := os.MkdirAll(p.backup.Dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	now := time.Now().UTC()
	name := archivePrefix + now.Format("20060102150405") + ".zip"
	path := filepath.Join(p.backup.Dir, name)

	if err := zipDir(p.data.Dir, path); err != nil {
		os.Remove(path)
		return fmt.Errorf("archive data dir: %w", err)
	}
	p.logger.Info("backup written", zap.String("path", path))

	if p.mirror != nil {
		if _, err := p.mirror.UploadFile(ctx, storage.BackupKey(name), path); err != nil {
			p.logger.Warn("backup mirror failed", zap.String("key", name), zap.Error(err))
		}
	}

	if err := p.settings.RecordBackup(ctx, models.At(now)); err != nil {
		p.logger.Warn("record backup time failed", zap.Error(err))
	}
	return nil
}

// runCleanup prunes expired backup archives and messages past the
// retention window.
func (p *Processor) runCleanup(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -p.backup.RetentionDays)
	removed, err := pruneArchives(p.backup.Dir, cutoff)
	if err != nil {
		return fmt.Errorf("prune archives: %w", err)
	}
	if removed > 0 {
		p.logger.Info("expired backups removed", zap.Int("count", removed))
	}

	settings, err := p.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if settings.MessageRetentionDays > 0 {
		msgCutoff := models.At(time.Now().AddDate(0, 0, -settings.MessageRetentionDays))
		n, err := p.messages.PruneOlderThan(ctx, msgCutoff)
		if err != nil {
			return fmt.Errorf("prune messages: %w", err)
		}
		if n > 0 {
			p.logger.Info("stale messages removed", zap.Int("count", n))
		}
	}
	return nil
}

// zipDir writes the contents of dir into a zip archive at dst, with
// entry names relative to dir.
func zipDir(dir, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, f)
		f.Close()
		return err
	})
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

// pruneArchives removes backup archives modified before cutoff.
func pruneArchives(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), archivePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
