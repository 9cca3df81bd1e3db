package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"company-invites/internal/domain"
	"company-invites/internal/logger"
	"company-invites/internal/repository"
)

type inviteAuditRepository struct {
	db *sql.DB
}

func NewInviteAuditRepository(db *sql.DB) repository.InviteAuditRepository {
	return &inviteAuditRepository{db: db}
}

func (r *inviteAuditRepository) CreateBatch(ctx context.Context, entries []domain.InviteAuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	logger.DatabaseCall("INSERT", "invite_audit", "batchID", entries[0].BatchID, "count", len(entries))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO invite_audit
		(batch_id, invited_by, company_id, email, creation_success, email_success, company_connected, created_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("failed to prepare audit insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range entries {
		e := &entries[i]
		e.CreatedOn = now
		if _, err := stmt.ExecContext(ctx, e.BatchID, e.InvitedBy, e.CompanyID, e.Email,
			e.CreationSuccess, e.EmailSuccess, e.CompanyConnected, e.CreatedOn); err != nil {
			logger.DatabaseResult("INSERT", int64(i), err, "batchID", e.BatchID)
			return fmt.Errorf("failed to insert audit entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit batch: %w", err)
	}
	logger.DatabaseResult("INSERT", int64(len(entries)), nil, "batchID", entries[0].BatchID)
	return nil
}

func (r *inviteAuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	logger.DatabaseCall("DELETE", "invite_audit", "cutoff", cutoff)
	res, err := r.db.ExecContext(ctx, `DELETE FROM invite_audit WHERE created_on < $1`, cutoff)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err)
		return 0, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("DELETE", n, err)
	return n, err
}
