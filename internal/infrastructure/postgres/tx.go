package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/blood-donor-registry/internal/domain/repository"
)

// Transactor runs repository work inside a single pgx transaction.
type Transactor struct {
	pool *pgxpool.Pool
}

func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{pool: pool}
}

func (t *Transactor) RunInTx(ctx context.Context, fn func(s repository.Stores) error) error {
	return pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(repository.Stores{
			Users:  NewUserRepository(tx),
			Donors: NewDonorRepository(tx),
		})
	})
}

var _ repository.Transactor = (*Transactor)(nil)
