package service

import (
	"context"
	"time"

	"company-invites/internal/domain"
	"company-invites/internal/logger"
	"company-invites/internal/repository"
)

const (
	companyErrNoMatch  = "no user record matched account"
	companyErrMismatch = "company id mismatch"
)

// Reconciler attaches created users to the caller's company and verifies
// the write by reading the company id back. Only the account created for an
// item is ever updated; other users sharing its email are left alone.
type Reconciler struct {
	users repository.UserRepository
	opts  BatchOptions
}

func NewReconciler(users repository.UserRepository, opts BatchOptions) *Reconciler {
	return &Reconciler{users: users, opts: opts}
}

func (r *Reconciler) Reconcile(ctx context.Context, items []domain.NotificationOutcome, companyID string) []domain.FinalOutcome {
	start := time.Now()
	created := func(i int) bool { return items[i].CreationSuccess }
	logger.StageStarted("reconcile", len(items), countWhere(len(items), created))

	settled := settle(ctx, r.opts, len(items), created, func(ctx context.Context, i int) ([]string, error) {
		if items[i].UserID == "" {
			return nil, errNoAccountID
		}
		return r.users.AssignCompany(ctx, items[i].UserID, companyID)
	})

	out := make([]domain.FinalOutcome, len(items))
	connected, failed := 0, 0
	for i, item := range items {
		out[i] = domain.FinalOutcome{NotificationOutcome: item}
		s := settled[i]
		if !s.attempted {
			continue
		}
		switch {
		case s.err != nil:
			out[i].CompanyError = s.err.Error()
		case len(s.value) == 0:
			out[i].CompanyError = companyErrNoMatch
		case s.value[0] != companyID:
			out[i].CompanyError = companyErrMismatch
		default:
			out[i].CompanyConnected = true
		}
		if out[i].CompanyConnected {
			connected++
		} else {
			failed++
		}
	}

	logger.StageSettled("reconcile", connected, failed, time.Since(start))
	return out
}
