package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/renohub/reno_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		OrderRepo:    newPgxOrderRepository(dbPool),
		WorkItemRepo: newPgxWorkItemRepository(dbPool),
		WalletRepo:   newPgxWalletRepository(dbPool),
		UserRepo:     newPgxUserRepository(dbPool),
	}
}
