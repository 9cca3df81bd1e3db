package identity

import (
	"context"
	"fmt"

	"company-invites/internal/domain"
	"company-invites/internal/repository"
	"company-invites/internal/security"

	"golang.org/x/crypto/bcrypt"
)

// LocalProvider is a self-hosted identity provider: callers present HS256
// tokens and accounts live in Postgres with bcrypt hashes.
type LocalProvider struct {
	tokens   security.TokenManager
	accounts repository.AccountRepository
}

func NewLocalProvider(tokens security.TokenManager, accounts repository.AccountRepository) *LocalProvider {
	return &LocalProvider{tokens: tokens, accounts: accounts}
}

func (p *LocalProvider) ResolveCaller(ctx context.Context, token string) (*domain.Caller, error) {
	claims, err := p.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &domain.Caller{ID: claims.Subject, Email: claims.Email}, nil
}

func (p *LocalProvider) CreateAccount(ctx context.Context, req domain.AccountRequest) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		Email:          req.Email,
		PasswordHash:   string(hash),
		CompanyID:      req.CompanyID,
		EmailConfirmed: true,
	}
	if err := p.accounts.Create(ctx, account); err != nil {
		return "", err
	}
	return account.ID, nil
}
