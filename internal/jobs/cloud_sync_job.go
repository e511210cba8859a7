package jobs

import (
	"context"
	"time"

	"github.com/aeworks/ops-api/internal/domain"
	"go.uber.org/zap"
)

// CloudSyncJobName is the name of the periodic cloud sync job
const CloudSyncJobName = "cloud_sync"

// Syncer runs one sync. service.SyncService implements it; defining it here
// keeps jobs free of the service package.
type Syncer interface {
	Sync(ctx context.Context, trigger, token string) domain.SyncResult
}

// CloudSyncJob runs the full sync with the stored token under a timeout.
type CloudSyncJob struct {
	syncer  Syncer
	logger  *zap.Logger
	timeout time.Duration
}

// NewCloudSyncJob creates a new cloud sync job.
func NewCloudSyncJob(syncer Syncer, logger *zap.Logger, timeout time.Duration) *CloudSyncJob {
	return &CloudSyncJob{syncer: syncer, logger: logger, timeout: timeout}
}

// Run executes a timer-triggered sync.
func (j *CloudSyncJob) Run() {
	j.RunTrigger(domain.TriggerTimer)
}

// RunTrigger executes a sync attributed to trigger.
func (j *CloudSyncJob) RunTrigger(trigger string) domain.SyncResult {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	res := j.syncer.Sync(ctx, trigger, "")

	switch {
	case res.AuthRequired:
		j.logger.Debug("cloud sync skipped, not connected", zap.String("trigger", trigger))
	case !res.Success:
		j.logger.Warn("cloud sync failed",
			zap.String("trigger", trigger),
			zap.String("message", res.Message),
			zap.Duration("duration", time.Since(start)))
	default:
		j.logger.Info("cloud sync job completed",
			zap.String("trigger", trigger),
			zap.Bool("pushed", res.Pushed),
			zap.Int("inbox_count", res.InboxCount),
			zap.Duration("duration", time.Since(start)))
	}
	return res
}

// RegisterCloudSyncJob registers the cloud sync job with the scheduler.
// If runOnStartup is true, a sync also runs immediately in a background
// goroutine so it doesn't block API startup.
func RegisterCloudSyncJob(scheduler *Scheduler, job *CloudSyncJob, cronExpr string, runOnStartup bool) error {
	if runOnStartup {
		go job.RunTrigger(domain.TriggerStartup)
	}
	return scheduler.AddJob(CloudSyncJobName, cronExpr, job.Run)
}
