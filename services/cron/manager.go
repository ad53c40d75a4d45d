package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/services/storage"
	"github.com/EnmanuelReynoso23/el-pensum/utils/auth"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Job names as stored in cron_job_logs
const (
	JobPruneOrphanAssets = "prune_orphan_assets"
	JobCleanupOldData    = "cleanup_old_data"
)

// DefaultOrphanGrace keeps freshly uploaded objects that are not referenced yet
const DefaultOrphanGrace = 24 * time.Hour

// JobFunc is the body of a scheduled job. It returns a summary message and
// optional metadata stored with the run.
type JobFunc func(ctx context.Context) (string, map[string]interface{}, error)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron        *cron.Cron
	db          *gorm.DB
	blacklist   *auth.BlacklistService
	store       storage.ObjectStore
	orphanGrace time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewCronManager creates a new cron manager. store may be nil, in which case
// asset pruning is not scheduled.
func NewCronManager(db *gorm.DB, store storage.ObjectStore, orphanGrace time.Duration, logger *zap.Logger) *CronManager {
	if orphanGrace <= 0 {
		orphanGrace = DefaultOrphanGrace
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CronManager{
		cron:        cron.New(cron.WithSeconds()),
		db:          db,
		blacklist:   auth.NewBlacklistService(db),
		store:       store,
		orphanGrace: orphanGrace,
		logger:      logger.Named("cron"),
		now:         time.Now,
	}
}

// Start registers every job and starts the scheduler
func (m *CronManager) Start() error {
	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()
	m.logger.Info("cron jobs started", zap.Int("jobs", len(m.cron.Entries())))
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (m *CronManager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info("cron jobs stopped")
}

func (m *CronManager) registerJobs() error {
	// Every hour: delete stored files nothing references any more
	if m.store != nil {
		if _, err := m.cron.AddFunc("0 0 * * * *", func() {
			m.Run(JobPruneOrphanAssets, 10*time.Minute, m.PruneOrphanAssets)
		}); err != nil {
			return err
		}
	} else {
		m.logger.Warn("object storage not configured, orphan asset pruning disabled")
	}

	// Daily at 3 AM: expired blacklist entries and old job logs
	if _, err := m.cron.AddFunc("0 0 3 * * *", func() {
		m.Run(JobCleanupOldData, 5*time.Minute, m.CleanupOldData)
	}); err != nil {
		return err
	}

	return nil
}

// ErrUnknownJob is returned by RunByName for a name no job is registered under
var ErrUnknownJob = errors.New("unknown job")

// RunByName runs one job immediately, outside the schedule
func (m *CronManager) RunByName(name string) (*model.CronJobLog, error) {
	switch name {
	case JobPruneOrphanAssets:
		if m.store == nil {
			return nil, fmt.Errorf("%s needs object storage to be configured", name)
		}
		return m.Run(name, 10*time.Minute, m.PruneOrphanAssets), nil
	case JobCleanupOldData:
		return m.Run(name, 5*time.Minute, m.CleanupOldData), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownJob, name)
	}
}

// Run executes job with a timeout and records the run in cron_job_logs
func (m *CronManager) Run(name string, timeout time.Duration, job JobFunc) *model.CronJobLog {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	entry := m.logJobStart(name)

	message, metadata, err := job(ctx)
	if err != nil {
		m.logJobError(entry, err)
	} else {
		m.logJobComplete(entry, message, metadata)
	}
	return entry
}

func (m *CronManager) logJobStart(jobName string) *model.CronJobLog {
	m.logger.Info("starting job", zap.String("job", jobName))

	entry := &model.CronJobLog{
		JobName:   jobName,
		Status:    model.JobStatusStarted,
		StartedAt: m.now(),
		Metadata:  datatypes.JSON("{}"),
	}
	if err := m.db.Create(entry).Error; err != nil {
		m.logger.Error("failed to record job start", zap.String("job", jobName), zap.Error(err))
	}
	return entry
}

func (m *CronManager) logJobComplete(entry *model.CronJobLog, message string, metadata map[string]interface{}) {
	m.logger.Info("completed job", zap.String("job", entry.JobName), zap.String("message", message))

	completed := m.now()
	entry.Status = model.JobStatusCompleted
	entry.CompletedAt = &completed
	entry.Duration = completed.Sub(entry.StartedAt).Milliseconds()
	entry.Message = message
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			entry.Metadata = datatypes.JSON(raw)
		}
	}
	m.save(entry)
}

func (m *CronManager) logJobError(entry *model.CronJobLog, err error) {
	m.logger.Error("job failed", zap.String("job", entry.JobName), zap.Error(err))

	completed := m.now()
	entry.Status = model.JobStatusFailed
	entry.CompletedAt = &completed
	entry.Duration = completed.Sub(entry.StartedAt).Milliseconds()
	entry.ErrorMsg = err.Error()
	m.save(entry)
}

func (m *CronManager) save(entry *model.CronJobLog) {
	if entry.ID == 0 {
		return
	}
	if err := m.db.Save(entry).Error; err != nil {
		m.logger.Error("failed to record job result", zap.String("job", entry.JobName), zap.Error(err))
	}
}
