package postgres

import (
	"database/sql"

	"company-invites/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.AccountRepository
	repository.InviteAuditRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		UserRepository:        NewUserRepository(db),
		AccountRepository:     NewAccountRepository(db),
		InviteAuditRepository: NewInviteAuditRepository(db),
	}
}

// DB exposes the underlying pool for health checks
func (s *Store) DB() *sql.DB {
	return s.db
}
