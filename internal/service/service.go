package service

import (
	"context"

	"company-invites/internal/domain"
)

type InviteService interface {
	// ResolveCaller authenticates a bearer token and loads the caller's company
	ResolveCaller(ctx context.Context, token string) (*domain.Caller, error)
	// InviteUsers provisions, notifies and associates one account per email.
	// The result has exactly one outcome per email, in input order.
	InviteUsers(ctx context.Context, caller *domain.Caller, emails []string, inviteBaseURL string) ([]domain.FinalOutcome, error)
}

// IdentityProvider is the authentication backend accounts are created in
type IdentityProvider interface {
	ResolveCaller(ctx context.Context, token string) (*domain.Caller, error)
	// CreateAccount returns the id of the new account's user record
	CreateAccount(ctx context.Context, req domain.AccountRequest) (string, error)
}

type EmailSender interface {
	Send(ctx context.Context, to, subject, html string) (*domain.DeliveryStatus, error)
}

// InviteComposer renders the invitation email for a provisioned account
type InviteComposer interface {
	Compose(item domain.ProvisioningOutcome) (subject, html string, err error)
}
