package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"company-invites/internal/domain"
	"company-invites/internal/logger"
	"company-invites/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, email, COALESCE(company_id, ''), created_on, updated_on FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.CompanyID, &u.CreatedOn, &u.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) UpsertProfile(ctx context.Context, id, email string) error {
	query := `INSERT INTO users (id, email, created_on, updated_on) VALUES ($1, $2, $3, $3)
	          ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, updated_on = EXCLUDED.updated_on`
	_, err := r.db.ExecContext(ctx, query, id, email, time.Now().UTC())
	return err
}

func (r *userRepository) AssignCompany(ctx context.Context, userID, companyID string) ([]string, error) {
	query := `UPDATE users SET company_id = $1, updated_on = $2 WHERE id = $3 RETURNING COALESCE(company_id, '')`
	logger.DatabaseCall("UPDATE", "users", "userID", userID, "companyID", companyID)

	rows, err := r.db.QueryContext(ctx, query, companyID, time.Now().UTC(), userID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "userID", userID)
		return nil, err
	}
	defer rows.Close()

	var companyIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			logger.DatabaseResult("UPDATE", int64(len(companyIDs)), err, "userID", userID)
			return nil, err
		}
		companyIDs = append(companyIDs, id)
	}
	if err := rows.Err(); err != nil {
		logger.DatabaseResult("UPDATE", int64(len(companyIDs)), err, "userID", userID)
		return nil, err
	}

	logger.DatabaseResult("UPDATE", int64(len(companyIDs)), nil, "userID", userID)
	return companyIDs, nil
}
