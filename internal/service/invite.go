package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"company-invites/internal/domain"
	"company-invites/internal/logger"
	"company-invites/internal/repository"
	"company-invites/internal/utils"

	"github.com/google/uuid"
)

// Request-level errors. The messages are part of the HTTP contract.
var (
	ErrUnknownCaller  = errors.New("function invoked by unknown user!")
	ErrCallerLookup   = errors.New("error fetching function invoker data")
	ErrNoCompany      = errors.New("function invoker is not associated with a company!")
	ErrInvalidBody    = errors.New("request body must be a JSON object")
	ErrEmailsRequired = errors.New("'emails' : string[] is required")
	ErrURLRequired    = errors.New("'url' : string is required")
)

type InviteOptions struct {
	PasswordLength int
	Batch          BatchOptions
}

type inviteService struct {
	identity    IdentityProvider
	users       repository.UserRepository
	audit       repository.InviteAuditRepository
	passwords   *utils.PasswordGenerator
	provisioner *Provisioner
	notifier    *Notifier
	reconciler  *Reconciler
	opts        InviteOptions
}

// NewInviteService wires the three batch stages. audit may be nil, which
// disables the audit trail.
func NewInviteService(
	identity IdentityProvider,
	users repository.UserRepository,
	audit repository.InviteAuditRepository,
	sender EmailSender,
	composer InviteComposer,
	passwords *utils.PasswordGenerator,
	opts InviteOptions,
) InviteService {
	if passwords == nil {
		passwords = utils.NewPasswordGenerator(nil)
	}
	if opts.PasswordLength <= 0 {
		opts.PasswordLength = 13
	}
	return &inviteService{
		identity:    identity,
		users:       users,
		audit:       audit,
		passwords:   passwords,
		provisioner: NewProvisioner(identity, opts.Batch),
		notifier:    NewNotifier(sender, composer, opts.Batch),
		reconciler:  NewReconciler(users, opts.Batch),
		opts:        opts,
	}
}

func (s *inviteService) ResolveCaller(ctx context.Context, token string) (*domain.Caller, error) {
	if token == "" {
		return nil, ErrUnknownCaller
	}

	caller, err := s.identity.ResolveCaller(ctx, token)
	if err != nil || caller == nil || caller.ID == "" {
		logger.Warn("Caller token rejected", "error", err)
		return nil, ErrUnknownCaller
	}

	user, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		logger.Error("Failed to load caller record", "userID", caller.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCallerLookup, err)
	}
	if user.CompanyID == "" {
		return nil, ErrNoCompany
	}

	caller.CompanyID = user.CompanyID
	if caller.Email == "" {
		caller.Email = user.Email
	}
	return caller, nil
}

func (s *inviteService) InviteUsers(ctx context.Context, caller *domain.Caller, emails []string, inviteBaseURL string) ([]domain.FinalOutcome, error) {
	if caller == nil || caller.ID == "" {
		return nil, ErrUnknownCaller
	}
	if caller.CompanyID == "" {
		return nil, ErrNoCompany
	}
	if emails == nil {
		return nil, ErrEmailsRequired
	}

	var base *url.URL
	if inviteBaseURL != "" {
		u, err := ParseInviteBaseURL(inviteBaseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrURLRequired, err)
		}
		base = u
	}

	reqs := make([]domain.AccountRequest, len(emails))
	for i, email := range emails {
		password, err := s.passwords.Generate(s.opts.PasswordLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
		reqs[i] = domain.AccountRequest{Email: email, Password: password, CompanyID: caller.CompanyID}
	}

	// Once issued, the batch always runs to settlement even if the client goes away.
	ctx = context.WithoutCancel(ctx)

	batchID := uuid.NewString()
	start := time.Now()
	logger.Info("Invite batch started", "batchID", batchID, "callerID", caller.ID, "companyID", caller.CompanyID, "emails", len(emails))

	provisioned := s.provisioner.Provision(ctx, reqs, base)
	notified := s.notifier.Notify(ctx, provisioned)
	final := s.reconciler.Reconcile(ctx, notified, caller.CompanyID)

	s.recordAudit(ctx, batchID, caller, final)

	logger.Info("Invite batch finished", "batchID", batchID, "duration", time.Since(start))
	return final, nil
}

func (s *inviteService) recordAudit(ctx context.Context, batchID string, caller *domain.Caller, outcomes []domain.FinalOutcome) {
	if s.audit == nil || len(outcomes) == 0 {
		return
	}

	entries := make([]domain.InviteAuditEntry, len(outcomes))
	for i, o := range outcomes {
		entries[i] = domain.InviteAuditEntry{
			BatchID:          batchID,
			InvitedBy:        caller.ID,
			CompanyID:        caller.CompanyID,
			Email:            o.Email,
			CreationSuccess:  o.CreationSuccess,
			EmailSuccess:     o.EmailSuccess,
			CompanyConnected: o.CompanyConnected,
		}
	}
	if err := s.audit.CreateBatch(ctx, entries); err != nil {
		logger.Error("Failed to record invite audit", "batchID", batchID, "error", err)
	}
}
