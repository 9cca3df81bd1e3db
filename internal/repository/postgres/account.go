package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"company-invites/internal/domain"
	"company-invites/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrAccountExists is returned when an account with the same email exists
var ErrAccountExists = errors.New("account already exists")

const uniqueViolation = "23505"

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedOn = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	accountQuery := `INSERT INTO auth_accounts (id, email, password_hash, company_id, email_confirmed, created_on)
	                 VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, accountQuery, a.ID, a.Email, a.PasswordHash, a.CompanyID, a.EmailConfirmed, a.CreatedOn); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%s: %w", a.Email, ErrAccountExists)
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	profileQuery := `INSERT INTO users (id, email, created_on, updated_on) VALUES ($1, $2, $3, $3)`
	if _, err := tx.ExecContext(ctx, profileQuery, a.ID, a.Email, a.CreatedOn); err != nil {
		return fmt.Errorf("failed to insert user profile: %w", err)
	}

	return tx.Commit()
}
