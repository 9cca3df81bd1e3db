package jobs

import (
	"context"
	"time"

	"company-invites/internal/logger"
)

const pruneTimeout = 5 * time.Minute

// PruneInviteAudit deletes invite audit rows older than the retention window
func (jr *JobRunner) PruneInviteAudit() {
	jr.runWithRecovery("PruneInviteAudit", func() {
		ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
		defer cancel()

		cutoff := jr.now().UTC().Add(-jr.config.AuditRetention())
		deleted, err := jr.audit.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to prune invite audit", "cutoff", cutoff, "error", err)
			return
		}
		logger.Info("Pruned invite audit", "cutoff", cutoff, "deleted", deleted)
	})
}
