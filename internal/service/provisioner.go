package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"company-invites/internal/domain"
	"company-invites/internal/logger"
)

// Provisioner creates one identity-provider account per request
type Provisioner struct {
	identity IdentityProvider
	opts     BatchOptions
}

func NewProvisioner(identity IdentityProvider, opts BatchOptions) *Provisioner {
	return &Provisioner{identity: identity, opts: opts}
}

// Provision creates all accounts concurrently and waits for every call to
// settle. A failed call only marks its own item as failed.
func (p *Provisioner) Provision(ctx context.Context, reqs []domain.AccountRequest, inviteBaseURL *url.URL) []domain.ProvisioningOutcome {
	start := time.Now()
	logger.StageStarted("provision", len(reqs), len(reqs))

	settled := settle(ctx, p.opts, len(reqs), always, func(ctx context.Context, i int) (string, error) {
		id, err := p.identity.CreateAccount(ctx, reqs[i])
		if err == nil && id == "" {
			err = errNoAccountID
		}
		return id, err
	})

	out := make([]domain.ProvisioningOutcome, len(reqs))
	failed := 0
	for i, req := range reqs {
		out[i] = domain.ProvisioningOutcome{
			Email:           req.Email,
			Password:        req.Password,
			CreationSuccess: settled[i].err == nil,
		}
		if out[i].CreationSuccess {
			out[i].UserID = settled[i].value
		}
		if err := settled[i].err; err != nil {
			out[i].Error = err.Error()
			failed++
		}
		if inviteBaseURL != nil {
			out[i].InviteURL = BuildInviteURL(inviteBaseURL, req.Email, req.Password)
		}
	}

	logger.StageSettled("provision", len(reqs)-failed, failed, time.Since(start))
	return out
}

var errNoAccountID = errors.New("identity provider returned no account id")

var ErrInvalidInviteURL = errors.New("invite url must be an absolute http(s) url")

// ParseInviteBaseURL validates the caller-supplied invite link base
func ParseInviteBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInviteURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidInviteURL
	}
	return u, nil
}

// BuildInviteURL appends email and password query parameters to base,
// keeping any parameters base already carries.
func BuildInviteURL(base *url.URL, email, password string) string {
	u := *base
	q := u.Query()
	q.Set("email", email)
	q.Set("password", password)
	u.RawQuery = q.Encode()
	return u.String()
}
