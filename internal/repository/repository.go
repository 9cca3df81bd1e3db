package repository

import (
	"context"
	"errors"
	"time"

	"company-invites/internal/domain"
)

var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpsertProfile(ctx context.Context, id, email string) error

	// AssignCompany sets company_id on the user with the given id and
	// returns the company ids read back from the updated rows.
	AssignCompany(ctx context.Context, userID, companyID string) ([]string, error)
}

type AccountRepository interface {
	// Create stores the account and its users profile row atomically
	Create(ctx context.Context, account *domain.Account) error
}

type InviteAuditRepository interface {
	CreateBatch(ctx context.Context, entries []domain.InviteAuditEntry) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
