package jobs

import (
	"time"

	"company-invites/internal/config"
	"company-invites/internal/logger"
	"company-invites/internal/repository"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	audit  repository.InviteAuditRepository
	config *config.Config
	now    func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(audit repository.InviteAuditRepository, cfg *config.Config) *JobRunner {
	return &JobRunner{
		audit:  audit,
		config: cfg,
		now:    time.Now,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
}
